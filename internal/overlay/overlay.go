// Package overlay draws face landmarks, feature measurements and emotion
// labels onto video frames.
package overlay

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"

	"github.com/ayusman/bhava/internal/emotion"
	"github.com/ayusman/bhava/internal/landmark"
)

// Label text placement.
const (
	LabelX         = 30
	LabelY         = 50
	LabelLineStep  = 45
	LabelFont      = gocv.FontHersheySimplex
	LabelScale     = 1.3
	LabelThickness = 3
)

var (
	labelTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	meshDotColor   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// Options selects what is drawn besides the label.
type Options struct {
	DrawMesh         bool
	DrawMeasurements bool
}

// Annotation is one face to draw.
type Annotation struct {
	Face   landmark.Face
	Result emotion.Result
}

// Renderer draws annotations onto frames.
type Renderer struct {
	opts Options
}

// NewRenderer creates a Renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Draw annotates frame in place. The first face's label is drawn at
// (LabelX, LabelY) and each further face one line below.
func (r *Renderer) Draw(frame *gocv.Mat, annotations []Annotation) {
	if frame == nil || frame.Empty() {
		return
	}
	width, height := frame.Cols(), frame.Rows()

	for i, a := range annotations {
		if r.opts.DrawMesh {
			drawMesh(frame, a.Face, width, height)
		}
		if r.opts.DrawMeasurements {
			drawMeasurements(frame, a.Result)
		}
		DrawLabel(frame, a.Result.Label, i)
	}
}

// DrawLabel writes the label name on line n of the label area. Hershey fonts
// have no emoji glyphs, so only the name is drawn.
func DrawLabel(frame *gocv.Mat, label emotion.Label, n int) {
	pt := image.Pt(LabelX, LabelY+n*LabelLineStep)
	gocv.PutText(frame, label.String(), pt, LabelFont, LabelScale, labelTextColor, LabelThickness)
}

func drawMesh(frame *gocv.Mat, face landmark.Face, width, height int) {
	for _, p := range face.Points {
		gocv.Circle(frame, landmark.Pixel(p, width, height), 1, meshDotColor, -1)
	}
}

// drawMeasurements draws a segment for each measured distance in the label
// color.
func drawMeasurements(frame *gocv.Mat, res emotion.Result) {
	c := LabelColor(res.Label)
	p := res.Points

	segments := [][2]image.Point{
		{p.UpperLip, p.LowerLip},
		{p.LeftEyeUpper, p.LeftEyeLower},
		{p.RightEyeUpper, p.RightEyeLower},
		{p.LeftBrow, p.LeftEyeUpper},
		{p.RightBrow, p.RightEyeUpper},
		{p.LeftMouthCorner, p.RightMouthCorner},
	}
	for _, s := range segments {
		gocv.Line(frame, s[0], s[1], c, 2)
	}
	gocv.Circle(frame, p.NoseTip, 3, c, -1)
}

// LabelColor returns a distinct color for each label. Neutral is gray.
func LabelColor(label emotion.Label) color.RGBA {
	if label == emotion.Neutral || !label.Valid() {
		return color.RGBA{R: 160, G: 160, B: 160, A: 255}
	}

	labels := emotion.Labels()
	idx := 0
	for i, l := range labels {
		if l == label {
			idx = i
			break
		}
	}

	hue := float64(idx) * 360 / float64(len(labels)-1)
	r, g, b := colorful.Hsv(hue, 0.85, 0.95).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
