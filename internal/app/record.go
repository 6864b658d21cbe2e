package app

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/ayusman/bhava/internal/store"
)

// ThumbnailSize bounds the longer side of a fixture thumbnail.
const ThumbnailSize = 160

var (
	// ErrNoStore is returned when recording without a configured store.
	ErrNoStore = errors.New("no fixture store configured")

	// ErrNoFace is returned when recording a frame without a labelled face.
	ErrNoFace = errors.New("no face in frame")
)

// Record stores the first face of a processed frame as a fixture expected to
// keep its current label.
func (a *App) Record(frame *gocv.Mat, res FrameResult) (*store.Fixture, error) {
	if a.config.Store == nil {
		return nil, ErrNoStore
	}
	if len(res.Faces) == 0 {
		return nil, ErrNoFace
	}
	face := res.Faces[0]

	f := &store.Fixture{
		Name:        fmt.Sprintf("%s %s", face.Label, res.Timestamp.Format("2006-01-02 15:04:05")),
		Expected:    face.Label,
		FrameWidth:  res.Width,
		FrameHeight: res.Height,
		Landmarks:   face.Face.Points,
	}

	if frame != nil && !frame.Empty() {
		img, err := frame.ToImage()
		if err != nil {
			return nil, fmt.Errorf("convert frame: %w", err)
		}
		f.Thumbnail, err = Thumbnail(img, face.Bounds, ThumbnailSize)
		if err != nil {
			return nil, err
		}
	}

	if err := a.config.Store.Fixtures().Create(f); err != nil {
		return nil, fmt.Errorf("save fixture: %w", err)
	}

	return f, nil
}

// Thumbnail crops img to bounds grown by a quarter on each side, fits the
// crop within size x size and encodes it as JPEG. An empty bounds uses the
// whole image.
func Thumbnail(img image.Image, bounds image.Rectangle, size int) ([]byte, error) {
	if bounds.Empty() {
		bounds = img.Bounds()
	} else {
		pad := image.Pt(bounds.Dx()/4, bounds.Dy()/4)
		bounds = image.Rectangle{Min: bounds.Min.Sub(pad), Max: bounds.Max.Add(pad)}.Intersect(img.Bounds())
	}

	thumb := imaging.Fit(imaging.Crop(img, bounds), size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
