// Package emotion turns face mesh landmarks into one of nine emotion labels
// using a fixed table of geometric thresholds.
package emotion

import "fmt"

// Label is an emotion name.
type Label string

const (
	Surprised Label = "Surprised"
	Happy     Label = "Happy"
	Sad       Label = "Sad"
	Angry     Label = "Angry"
	Disgust   Label = "Disgust"
	Fear      Label = "Fear"
	Contempt  Label = "Contempt"
	Confused  Label = "Confused"
	Neutral   Label = "Neutral"
)

var emoji = map[Label]string{
	Surprised: "😮",
	Happy:     "🙂",
	Sad:       "🙁",
	Angry:     "😠",
	Disgust:   "😒",
	Fear:      "😨",
	Contempt:  "😏",
	Confused:  "🤨",
	Neutral:   "😐",
}

// Labels returns every label in rule order, Neutral last.
func Labels() []Label {
	return []Label{Surprised, Happy, Sad, Angry, Disgust, Fear, Contempt, Confused, Neutral}
}

// ParseLabel returns the label with the given name.
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown emotion label %q", s)
	}
	return l, nil
}

// Valid reports whether l is one of the nine labels.
func (l Label) Valid() bool {
	_, ok := emoji[l]
	return ok
}

// String returns the label name.
func (l Label) String() string {
	return string(l)
}

// Emoji returns the face emoji for the label, or "" for an unknown label.
func (l Label) Emoji() string {
	return emoji[l]
}

// Display returns the label followed by its emoji, e.g. "Happy 🙂".
func (l Label) Display() string {
	if e := l.Emoji(); e != "" {
		return string(l) + " " + e
	}
	return string(l)
}
