package detect

import (
	"strconv"
	"strings"

	"github.com/pmezentsev/mergebook/internal/model"
)

// Score value bounds. Anything outside becomes the missing sentinel,
// never an error and never clamped.
const (
	minScore = 0.0
	maxScore = 100.0
)

// ParseScore converts a raw cell value into a bounded score or the
// explicit missing sentinel. Missing is a first-class state: empty
// cells, non-numeric text, and out-of-range values all land there.
// A trailing percent sign is stripped before coercion, and a decimal
// comma is accepted since these sheets are human-authored.
func ParseScore(raw string) model.Score {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.MissingScore()
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.MissingScore()
	}
	if v < minScore || v > maxScore {
		return model.MissingScore()
	}

	return model.NewScore(v)
}
