// Package scoring derives the competence-suitability score from the free-form
// skill ratings attached to an application.
package scoring

import (
	"encoding/json"
	"math"
	"strings"

	"careers-backend/internal/models"
)

// Ratings self-assess each skill on a 0-5 scale; MaxRating anchors the
// percentage conversion.
const MaxRating = 5.0

// metaKeys are competence-map entries that describe the opening rather than
// the applicant. They never contribute to the score.
var metaKeys = map[string]struct{}{
	"exigences":    {},
	"exigences:":   {},
	"compétences":  {},
	"competences":  {},
	"requirements": {},
}

// Score computes the competence score in [0, 100]. Only numeric, non-meta
// entries count; a map with none of those scores 0. The result is the rounded
// proportion of points achieved over points possible.
func Score(ratings models.SkillRatings) int {
	var total float64
	var count int

	for key, value := range ratings {
		if _, meta := metaKeys[strings.ToLower(strings.TrimSpace(key))]; meta {
			continue
		}
		rating, ok := numericValue(value)
		if !ok {
			continue
		}
		total += rating
		count++
	}

	if count == 0 {
		return 0
	}

	score := int(math.Round(total / (MaxRating * float64(count)) * 100))
	return clamp(score, 0, 100)
}

// numericValue extracts a rating from the loosely typed values a JSON column
// produces. Strings are not ratings, even numeric-looking ones.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
