package app

import (
	"github.com/ayusman/bhava/internal/emotion"
	"github.com/ayusman/bhava/internal/store"
)

// ReplayResult is the outcome of re-classifying one stored fixture.
type ReplayResult struct {
	Fixture *store.Fixture
	Got     emotion.Label
	Err     error
}

// Passed reports whether the fixture still classifies as expected.
func (r ReplayResult) Passed() bool {
	return r.Err == nil && r.Got == r.Fixture.Expected
}

// Replay re-classifies every stored fixture with the current rules.
func Replay(st *store.Store) ([]ReplayResult, error) {
	fixtures, err := st.Fixtures().List()
	if err != nil {
		return nil, err
	}

	results := make([]ReplayResult, 0, len(fixtures))
	for _, f := range fixtures {
		f.Landmarks, err = st.Fixtures().GetLandmarks(f.ID)
		if err != nil {
			return nil, err
		}

		r := ReplayResult{Fixture: f}
		res, err := emotion.Analyze(f.Face(), f.FrameWidth, f.FrameHeight)
		if err != nil {
			r.Err = err
		} else {
			r.Got = res.Label
		}
		results = append(results, r)
	}

	return results, nil
}
