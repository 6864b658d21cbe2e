package emotion

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/ayusman/bhava/internal/landmark"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func restingPoints() Points {
	return Points{
		UpperLip:         image.Pt(320, 325),
		LowerLip:         image.Pt(320, 336),
		LeftEyeUpper:     image.Pt(280, 280),
		LeftEyeLower:     image.Pt(280, 290),
		RightEyeUpper:    image.Pt(360, 280),
		RightEyeLower:    image.Pt(360, 290),
		LeftBrow:         image.Pt(280, 273),
		RightBrow:        image.Pt(360, 273),
		NoseTip:          image.Pt(320, 305),
		LeftMouthCorner:  image.Pt(270, 330),
		RightMouthCorner: image.Pt(370, 330),
	}
}

func TestMeasure(t *testing.T) {
	f, err := Measure(restingPoints())
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"face width", f.FaceWidth, 100},
		{"mouth open", f.MouthOpen, 0.11},
		{"eye open left", f.EyeOpenLeft, 0.10},
		{"eye open right", f.EyeOpenRight, 0.10},
		{"brow raise left", f.BrowRaiseLeft, 0.07},
		{"brow raise right", f.BrowRaiseRight, 0.07},
		{"mouth asym", f.MouthAsym, 0},
	}
	for _, c := range checks {
		if !approxEqual(c.got, c.want) {
			t.Errorf("%s = %f, want %f", c.name, c.got, c.want)
		}
	}

	if f.LipOffsetY != -11 {
		t.Errorf("LipOffsetY = %d, want -11", f.LipOffsetY)
	}
}

func TestMeasure_Asymmetry(t *testing.T) {
	p := restingPoints()
	p.RightMouthCorner = image.Pt(370, 339)

	f, err := Measure(p)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	width := math.Hypot(100, 9)
	if !approxEqual(f.FaceWidth, width) {
		t.Errorf("FaceWidth = %f, want %f", f.FaceWidth, width)
	}
	if !approxEqual(f.MouthAsym, 9/width) {
		t.Errorf("MouthAsym = %f, want %f", f.MouthAsym, 9/width)
	}

	// Asymmetry is unsigned.
	p.RightMouthCorner = image.Pt(370, 321)
	g, err := Measure(p)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}
	if !approxEqual(g.MouthAsym, f.MouthAsym) {
		t.Errorf("MouthAsym = %f, want %f", g.MouthAsym, f.MouthAsym)
	}
}

func TestMeasure_ScaleInvariant(t *testing.T) {
	base := restingPoints()
	base.RightMouthCorner = image.Pt(370, 337)
	base.LeftBrow = image.Pt(283, 268)

	want, err := Measure(base)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	for _, k := range []int{2, 3, 7} {
		got, err := Measure(base.Scale(k))
		if err != nil {
			t.Fatalf("Measure(scale %d) error = %v", k, err)
		}

		if !approxEqual(got.MouthOpen, want.MouthOpen) ||
			!approxEqual(got.EyeOpenLeft, want.EyeOpenLeft) ||
			!approxEqual(got.EyeOpenRight, want.EyeOpenRight) ||
			!approxEqual(got.BrowRaiseLeft, want.BrowRaiseLeft) ||
			!approxEqual(got.BrowRaiseRight, want.BrowRaiseRight) ||
			!approxEqual(got.MouthAsym, want.MouthAsym) {
			t.Errorf("scale %d: features %+v differ from %+v", k, got, want)
		}

		// The raw lip offset scales with the face.
		if got.LipOffsetY != want.LipOffsetY*k {
			t.Errorf("scale %d: LipOffsetY = %d, want %d", k, got.LipOffsetY, want.LipOffsetY*k)
		}
		if Classify(got) != Classify(want) {
			t.Errorf("scale %d: label %s, want %s", k, Classify(got), Classify(want))
		}
	}
}

func TestMeasure_Degenerate(t *testing.T) {
	p := restingPoints()
	p.RightMouthCorner = p.LeftMouthCorner

	if _, err := Measure(p); !errors.Is(err, ErrDegenerateFace) {
		t.Errorf("expected ErrDegenerateFace, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	face := landmark.NeutralLandmarks()

	p, err := Resolve(face, landmark.FixtureWidth, landmark.FixtureHeight)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if p != restingPoints() {
		t.Errorf("Resolve() = %+v, want %+v", p, restingPoints())
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name   string
		face   landmark.Face
		width  int
		height int
		want   error
	}{
		{"zero width", landmark.NeutralLandmarks(), 0, 480, ErrInvalidFrame},
		{"negative height", landmark.NeutralLandmarks(), 640, -1, ErrInvalidFrame},
		{"empty face", landmark.Face{}, 640, 480, ErrTooFewLandmarks},
		{
			"truncated face",
			landmark.Face{Points: make([]landmark.Point3D, landmark.NumMeshLandmarks-1)},
			640, 480,
			ErrTooFewLandmarks,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.face, tt.width, tt.height)
			if !errors.Is(err, tt.want) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExtract_FrameScaleInvariant(t *testing.T) {
	fixtures := map[string]landmark.Face{
		"neutral":  landmark.NeutralLandmarks(),
		"happy":    landmark.HappyLandmarks(),
		"contempt": landmark.ContemptLandmarks(),
		"confused": landmark.ConfusedLandmarks(),
	}

	for name, face := range fixtures {
		t.Run(name, func(t *testing.T) {
			small, err := Extract(face, landmark.FixtureWidth, landmark.FixtureHeight)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			large, err := Extract(face, landmark.FixtureWidth*3, landmark.FixtureHeight*3)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}

			if !approxEqual(small.MouthOpen, large.MouthOpen) ||
				!approxEqual(small.EyeOpenLeft, large.EyeOpenLeft) ||
				!approxEqual(small.BrowRaiseLeft, large.BrowRaiseLeft) ||
				!approxEqual(small.BrowRaiseRight, large.BrowRaiseRight) ||
				!approxEqual(small.MouthAsym, large.MouthAsym) {
				t.Errorf("features at 3x frame %+v differ from %+v", large, small)
			}
			if Classify(small) != Classify(large) {
				t.Errorf("label at 3x frame = %s, want %s", Classify(large), Classify(small))
			}
		})
	}
}

func TestExtract_DegenerateFixture(t *testing.T) {
	_, err := Extract(landmark.DegenerateLandmarks(), landmark.FixtureWidth, landmark.FixtureHeight)
	if !errors.Is(err, ErrDegenerateFace) {
		t.Errorf("expected ErrDegenerateFace, got %v", err)
	}
}

func TestLabel(t *testing.T) {
	if got := len(Labels()); got != 9 {
		t.Fatalf("expected 9 labels, got %d", got)
	}
	for _, l := range Labels() {
		if !l.Valid() {
			t.Errorf("%s should be valid", l)
		}
		if l.Emoji() == "" {
			t.Errorf("%s has no emoji", l)
		}
		parsed, err := ParseLabel(l.String())
		if err != nil || parsed != l {
			t.Errorf("ParseLabel(%q) = %s, %v", l, parsed, err)
		}
	}

	if got := Happy.Display(); got != "Happy 🙂" {
		t.Errorf("Display() = %q, want %q", got, "Happy 🙂")
	}
	if _, err := ParseLabel("happy"); err == nil {
		t.Error("expected error for lowercase label")
	}
	if Label("Bored").Display() != "Bored" {
		t.Error("unknown label should display bare")
	}
}
