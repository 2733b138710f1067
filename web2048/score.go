package web2048

import (
	"context"
	"strconv"
	"strings"
)

// ScoreTracker reads the cumulative score from the score container,
// excluding the transient "score increased by N" child annotation that
// the game renders inside it during a merge.
type ScoreTracker struct {
	session Session
}

func NewScoreTracker(session Session) *ScoreTracker {
	return &ScoreTracker{session: session}
}

// Read returns the cumulative score. An absent container is a hard
// failure; an absent annotation is the normal steady state.
func (s *ScoreTracker) Read(ctx context.Context) (int, error) {
	raw, err := s.session.Text(ctx, scoreSelector)
	if err != nil {
		return 0, &HardLookupError{Selector: scoreSelector, Err: err}
	}
	raw = strings.TrimSpace(raw)

	// the annotation lookup must succeed before the combined text can be
	// trusted: parsing it blind would report a wrong score
	additions, err := s.session.Find(ctx, scoreAdditionSelector)
	if err != nil {
		return 0, &HardLookupError{Selector: scoreAdditionSelector, Err: err}
	}
	if len(additions) > 0 {
		raw = stripAnnotation(raw, strings.TrimSpace(additions[0].Text))
	}

	score, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(raw, "+")))
	if err != nil {
		return 0, &HardLookupError{Selector: scoreSelector, Err: err}
	}
	return score, nil
}

// stripAnnotation removes one occurrence of the child annotation text
// from the combined container text. The child renders after the score,
// so the suffix is preferred when both match.
func stripAnnotation(combined, annotation string) string {
	if annotation == "" {
		return combined
	}
	if strings.HasSuffix(combined, annotation) {
		return combined[:len(combined)-len(annotation)]
	}
	if i := strings.Index(combined, annotation); i >= 0 {
		return combined[:i] + combined[i+len(annotation):]
	}
	return combined
}
