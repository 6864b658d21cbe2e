package emotion

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ayusman/bhava/internal/landmark"
)

var (
	// ErrDegenerateFace is returned when the mouth corners coincide and the
	// features cannot be normalized.
	ErrDegenerateFace = errors.New("degenerate face: mouth corners coincide")

	// ErrInvalidFrame is returned when the frame dimensions are not positive.
	ErrInvalidFrame = errors.New("invalid frame dimensions")

	// ErrTooFewLandmarks is returned when a face has fewer points than the mesh.
	ErrTooFewLandmarks = errors.New("too few landmarks")
)

// Points holds the pixel positions of the landmarks the features are
// measured from.
type Points struct {
	UpperLip         image.Point `json:"upper_lip"`
	LowerLip         image.Point `json:"lower_lip"`
	LeftEyeUpper     image.Point `json:"left_eye_upper"`
	LeftEyeLower     image.Point `json:"left_eye_lower"`
	RightEyeUpper    image.Point `json:"right_eye_upper"`
	RightEyeLower    image.Point `json:"right_eye_lower"`
	LeftBrow         image.Point `json:"left_brow"`
	RightBrow        image.Point `json:"right_brow"`
	NoseTip          image.Point `json:"nose_tip"`
	LeftMouthCorner  image.Point `json:"left_mouth_corner"`
	RightMouthCorner image.Point `json:"right_mouth_corner"`
}

// Scale returns the points multiplied by k.
func (p Points) Scale(k int) Points {
	return Points{
		UpperLip:         p.UpperLip.Mul(k),
		LowerLip:         p.LowerLip.Mul(k),
		LeftEyeUpper:     p.LeftEyeUpper.Mul(k),
		LeftEyeLower:     p.LeftEyeLower.Mul(k),
		RightEyeUpper:    p.RightEyeUpper.Mul(k),
		RightEyeLower:    p.RightEyeLower.Mul(k),
		LeftBrow:         p.LeftBrow.Mul(k),
		RightBrow:        p.RightBrow.Mul(k),
		NoseTip:          p.NoseTip.Mul(k),
		LeftMouthCorner:  p.LeftMouthCorner.Mul(k),
		RightMouthCorner: p.RightMouthCorner.Mul(k),
	}
}

// Features are the measurements the classifier reads. Every distance is
// divided by FaceWidth, the pixel distance between the mouth corners.
//
// LipOffsetY is the one raw value: the upper lip y minus the lower lip y, in
// pixels. Since image y grows downward it is negative for any face whose
// upper lip sits above the lower lip.
type Features struct {
	MouthOpen      float64 `json:"mouth_open"`
	EyeOpenLeft    float64 `json:"eye_open_left"`
	EyeOpenRight   float64 `json:"eye_open_right"`
	BrowRaiseLeft  float64 `json:"brow_raise_left"`
	BrowRaiseRight float64 `json:"brow_raise_right"`
	MouthAsym      float64 `json:"mouth_asym"`
	LipOffsetY     int     `json:"lip_offset_y"`
	FaceWidth      float64 `json:"face_width"`
}

// Resolve converts the landmarks used by the features to pixel positions in a
// frame of the given size.
func Resolve(face landmark.Face, width, height int) (Points, error) {
	if width <= 0 || height <= 0 {
		return Points{}, fmt.Errorf("%w: %dx%d", ErrInvalidFrame, width, height)
	}
	if !face.Complete() {
		return Points{}, fmt.Errorf("%w: got %d, need %d", ErrTooFewLandmarks, len(face.Points), landmark.NumMeshLandmarks)
	}

	at := func(i int) image.Point {
		return landmark.Pixel(face.Points[i], width, height)
	}

	return Points{
		UpperLip:         at(landmark.UpperLipCenter),
		LowerLip:         at(landmark.LowerLipCenter),
		LeftEyeUpper:     at(landmark.LeftEyeUpper),
		LeftEyeLower:     at(landmark.LeftEyeLower),
		RightEyeUpper:    at(landmark.RightEyeUpper),
		RightEyeLower:    at(landmark.RightEyeLower),
		LeftBrow:         at(landmark.LeftBrow),
		RightBrow:        at(landmark.RightBrow),
		NoseTip:          at(landmark.NoseTip),
		LeftMouthCorner:  at(landmark.LeftMouthCorner),
		RightMouthCorner: at(landmark.RightMouthCorner),
	}, nil
}

// Measure computes the normalized features from resolved pixel points.
// It returns ErrDegenerateFace when the mouth corners coincide.
func Measure(p Points) (Features, error) {
	faceWidth := dist(p.LeftMouthCorner, p.RightMouthCorner)
	if faceWidth == 0 {
		return Features{}, ErrDegenerateFace
	}

	asym := p.LeftMouthCorner.Y - p.RightMouthCorner.Y
	if asym < 0 {
		asym = -asym
	}

	return Features{
		MouthOpen:      dist(p.UpperLip, p.LowerLip) / faceWidth,
		EyeOpenLeft:    dist(p.LeftEyeUpper, p.LeftEyeLower) / faceWidth,
		EyeOpenRight:   dist(p.RightEyeUpper, p.RightEyeLower) / faceWidth,
		BrowRaiseLeft:  dist(p.LeftBrow, p.LeftEyeUpper) / faceWidth,
		BrowRaiseRight: dist(p.RightBrow, p.RightEyeUpper) / faceWidth,
		MouthAsym:      float64(asym) / faceWidth,
		LipOffsetY:     p.UpperLip.Y - p.LowerLip.Y,
		FaceWidth:      faceWidth,
	}, nil
}

// Extract resolves the landmarks of face in a width x height frame and
// measures its features.
func Extract(face landmark.Face, width, height int) (Features, error) {
	p, err := Resolve(face, width, height)
	if err != nil {
		return Features{}, err
	}
	return Measure(p)
}

// dist returns the Euclidean distance between two pixel points.
func dist(a, b image.Point) float64 {
	d := a.Sub(b)
	return math.Hypot(float64(d.X), float64(d.Y))
}
