package emotion

import "github.com/ayusman/bhava/internal/landmark"

// Rule pairs a label with the condition that selects it.
type Rule struct {
	Label Label
	Match func(f Features) bool
}

// rules is evaluated top to bottom and the first match wins. Conditions
// overlap, so the order matters.
var rules = []Rule{
	{Surprised, func(f Features) bool {
		return f.MouthOpen > 0.28 && f.EyeOpenLeft > 0.12 && f.EyeOpenRight > 0.12
	}},
	{Happy, func(f Features) bool {
		return f.MouthOpen > 0.18 && f.EyeOpenLeft < 0.09
	}},
	{Sad, func(f Features) bool {
		return f.BrowRaiseLeft < 0.04 && f.BrowRaiseRight < 0.04
	}},
	{Angry, func(f Features) bool {
		return f.BrowRaiseLeft < 0.045 && f.BrowRaiseRight < 0.045 && f.MouthOpen < 0.12
	}},
	// Compares raw pixels, not a normalized feature.
	{Disgust, func(f Features) bool {
		return f.LipOffsetY < 0 && f.MouthOpen < 0.1
	}},
	{Fear, func(f Features) bool {
		return f.MouthOpen > 0.15 && (f.BrowRaiseLeft > 0.09 || f.BrowRaiseRight > 0.09)
	}},
	{Contempt, func(f Features) bool {
		return f.MouthAsym > 0.08
	}},
	{Confused, func(f Features) bool {
		return f.BrowRaiseLeft > 0.1 && f.BrowRaiseRight < 0.05
	}},
}

// Rules returns a copy of the ordered rule table. Neutral is implied when no
// rule matches.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify returns the label of the first rule that matches f, or Neutral.
func Classify(f Features) Label {
	for _, r := range rules {
		if r.Match(f) {
			return r.Label
		}
	}
	return Neutral
}

// Result is the outcome of evaluating one face.
type Result struct {
	Label    Label    `json:"label"`
	Features Features `json:"features"`
	Points   Points   `json:"points"`
}

// Analyze extracts the features of a face and classifies them.
func Analyze(face landmark.Face, width, height int) (Result, error) {
	p, err := Resolve(face, width, height)
	if err != nil {
		return Result{}, err
	}

	f, err := Measure(p)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Label:    Classify(f),
		Features: f,
		Points:   p,
	}, nil
}
