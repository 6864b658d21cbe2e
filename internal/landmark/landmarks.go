// Package landmark provides face mesh landmark types shared by the detector
// backends and the emotion classifier.
package landmark

import "image"

// Face mesh landmark indices used by the emotion features.
// See: https://github.com/google-ai-edge/mediapipe/blob/master/mediapipe/modules/face_geometry/data/canonical_face_model_uv_visualization.png
const (
	NoseTip          = 1
	UpperLipCenter   = 13
	LowerLipCenter   = 14
	LeftMouthCorner  = 61
	LeftBrow         = 70
	LeftEyeLower     = 145
	LeftEyeUpper     = 159
	RightMouthCorner = 291
	RightBrow        = 300
	RightEyeLower    = 374
	RightEyeUpper    = 386
)

const (
	// NumMeshLandmarks is the number of points in a face mesh without iris refinement.
	NumMeshLandmarks = 468
	// NumRefinedLandmarks is the number of points when iris refinement is enabled.
	NumRefinedLandmarks = 478
)

// Point3D is a normalized landmark. X and Y are relative to the frame
// width and height, Z is depth relative to the face center.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Face holds the landmarks of one detected face.
type Face struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
}

// Complete reports whether the face has at least the full mesh.
func (f *Face) Complete() bool {
	return f != nil && len(f.Points) >= NumMeshLandmarks
}

// Pixel converts a normalized landmark to pixel coordinates for a frame of
// the given size. Coordinates are truncated toward zero.
func Pixel(p Point3D, width, height int) image.Point {
	return image.Point{
		X: int(p.X * float64(width)),
		Y: int(p.Y * float64(height)),
	}
}

// Bounds returns the pixel rectangle enclosing every landmark of the face,
// clipped to the frame.
func (f *Face) Bounds(width, height int) image.Rectangle {
	if f == nil || len(f.Points) == 0 {
		return image.Rectangle{}
	}

	first := Pixel(f.Points[0], width, height)
	r := image.Rectangle{Min: first, Max: first.Add(image.Pt(1, 1))}
	for _, p := range f.Points[1:] {
		px := Pixel(p, width, height)
		if px.X < r.Min.X {
			r.Min.X = px.X
		}
		if px.Y < r.Min.Y {
			r.Min.Y = px.Y
		}
		if px.X >= r.Max.X {
			r.Max.X = px.X + 1
		}
		if px.Y >= r.Max.Y {
			r.Max.Y = px.Y + 1
		}
	}

	return r.Intersect(image.Rect(0, 0, width, height))
}
