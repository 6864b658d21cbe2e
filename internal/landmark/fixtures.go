package landmark

import "image"

// Fixture frame size. Fixture geometry is laid out in pixels for this frame
// so that every measured distance is easy to read off: the mouth corners are
// 100px apart, which makes each normalized feature equal to its pixel length
// divided by 100.
const (
	FixtureWidth  = 640
	FixtureHeight = 480
)

// FromPixels builds a full refined mesh from pixel positions in a frame of the
// given size. Indices missing from pixels are placed at fill. Each pixel is
// stored at its center so that converting back with Pixel returns it exactly.
func FromPixels(width, height int, fill image.Point, pixels map[int]image.Point) Face {
	face := Face{
		Points: make([]Point3D, NumRefinedLandmarks),
		Score:  0.95,
	}

	for i := range face.Points {
		p, ok := pixels[i]
		if !ok {
			p = fill
		}
		face.Points[i] = Point3D{
			X: (float64(p.X) + 0.5) / float64(width),
			Y: (float64(p.Y) + 0.5) / float64(height),
		}
	}

	return face
}

// geometry is the pixel layout of the landmarks the emotion features read.
type geometry struct {
	upperLip, lowerLip           image.Point
	leftEyeUpper, leftEyeLower   image.Point
	rightEyeUpper, rightEyeLower image.Point
	leftBrow, rightBrow          image.Point
	nose                         image.Point
	leftCorner, rightCorner      image.Point
}

// restingGeometry is a calm face: mouth 0.11, eyes 0.10, brows 0.07.
func restingGeometry() geometry {
	return geometry{
		upperLip:      image.Pt(320, 325),
		lowerLip:      image.Pt(320, 336),
		leftEyeUpper:  image.Pt(280, 280),
		leftEyeLower:  image.Pt(280, 290),
		rightEyeUpper: image.Pt(360, 280),
		rightEyeLower: image.Pt(360, 290),
		leftBrow:      image.Pt(280, 273),
		rightBrow:     image.Pt(360, 273),
		nose:          image.Pt(320, 305),
		leftCorner:    image.Pt(270, 330),
		rightCorner:   image.Pt(370, 330),
	}
}

func (g geometry) face() Face {
	return FromPixels(FixtureWidth, FixtureHeight, image.Pt(320, 300), map[int]image.Point{
		UpperLipCenter:   g.upperLip,
		LowerLipCenter:   g.lowerLip,
		LeftEyeUpper:     g.leftEyeUpper,
		LeftEyeLower:     g.leftEyeLower,
		RightEyeUpper:    g.rightEyeUpper,
		RightEyeLower:    g.rightEyeLower,
		LeftBrow:         g.leftBrow,
		RightBrow:        g.rightBrow,
		NoseTip:          g.nose,
		LeftMouthCorner:  g.leftCorner,
		RightMouthCorner: g.rightCorner,
	})
}

// NeutralLandmarks returns a resting face that matches none of the emotion rules.
func NeutralLandmarks() Face {
	return restingGeometry().face()
}

// SurprisedLandmarks returns a face with a wide open mouth (0.30) and wide
// open eyes (0.15).
func SurprisedLandmarks() Face {
	g := restingGeometry()
	g.upperLip = image.Pt(320, 320)
	g.lowerLip = image.Pt(320, 350)
	g.leftEyeLower = image.Pt(280, 295)
	g.rightEyeLower = image.Pt(360, 295)
	g.leftBrow = image.Pt(280, 270)
	g.rightBrow = image.Pt(360, 270)
	return g.face()
}

// HappyLandmarks returns a smiling face: open mouth (0.20) and narrowed eyes (0.05).
func HappyLandmarks() Face {
	g := restingGeometry()
	g.lowerLip = image.Pt(320, 345)
	g.leftEyeUpper = image.Pt(280, 282)
	g.leftEyeLower = image.Pt(280, 287)
	g.rightEyeUpper = image.Pt(360, 282)
	g.rightEyeLower = image.Pt(360, 287)
	g.leftBrow = image.Pt(280, 277)
	g.rightBrow = image.Pt(360, 277)
	return g.face()
}

// SadLandmarks returns a face with both brows pressed onto the eyelids (0.02).
func SadLandmarks() Face {
	g := restingGeometry()
	g.leftBrow = image.Pt(280, 278)
	g.rightBrow = image.Pt(360, 278)
	return g.face()
}

// AngryLandmarks returns a face with lowered brows (about 0.041) and a mostly
// closed mouth.
func AngryLandmarks() Face {
	g := restingGeometry()
	g.leftBrow = image.Pt(281, 276)
	g.rightBrow = image.Pt(361, 276)
	return g.face()
}

// DisgustLandmarks returns a resting face with the lips nearly closed (0.05).
func DisgustLandmarks() Face {
	g := restingGeometry()
	g.lowerLip = image.Pt(320, 330)
	return g.face()
}

// FearLandmarks returns a face with a half open mouth (0.16) and raised brows (0.10).
func FearLandmarks() Face {
	g := restingGeometry()
	g.lowerLip = image.Pt(320, 341)
	g.leftBrow = image.Pt(280, 270)
	g.rightBrow = image.Pt(360, 270)
	return g.face()
}

// ContemptLandmarks returns a face whose right mouth corner sits 9px lower
// than the left one.
func ContemptLandmarks() Face {
	g := restingGeometry()
	g.rightCorner = image.Pt(370, 339)
	return g.face()
}

// ConfusedLandmarks returns a face with the left brow raised (0.11) and the
// right brow lowered (0.04).
func ConfusedLandmarks() Face {
	g := restingGeometry()
	g.leftBrow = image.Pt(280, 269)
	g.rightBrow = image.Pt(360, 276)
	return g.face()
}

// DegenerateLandmarks returns a face whose mouth corners coincide.
func DegenerateLandmarks() Face {
	g := restingGeometry()
	g.leftCorner = image.Pt(320, 330)
	g.rightCorner = image.Pt(320, 330)
	return g.face()
}
