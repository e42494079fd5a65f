package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"careers-backend/internal/models"
)

func TestScore_AllMax(t *testing.T) {
	ratings := models.SkillRatings{
		"go": 5.0, "sql": 5.0, "linux": 5.0, "docker": 5.0, "react": 5.0,
	}
	assert.Equal(t, 100, Score(ratings))
}

func TestScore_Proportional(t *testing.T) {
	ratings := models.SkillRatings{
		"a": 3.0, "b": 4.0, "c": 5.0, "d": 2.0, "e": 1.0,
	}
	// 15 of 25 possible points
	assert.Equal(t, 60, Score(ratings))
}

func TestScore_AllZero(t *testing.T) {
	assert.Equal(t, 0, Score(models.SkillRatings{"a": 0.0, "b": 0.0}))
}

func TestScore_Empty(t *testing.T) {
	assert.Equal(t, 0, Score(models.SkillRatings{}))
	assert.Equal(t, 0, Score(nil))
}

func TestScore_MetaKeysExcluded(t *testing.T) {
	onlyMeta := models.SkillRatings{
		"Exigences":      5.0,
		" requirements ": 5.0,
		"COMPETENCES":    4.0,
	}
	assert.Equal(t, 0, Score(onlyMeta))

	mixed := models.SkillRatings{
		"exigences": 1.0,
		"python":    4.0,
	}
	// only python counts: 4/5
	assert.Equal(t, 80, Score(mixed))
}

func TestScore_NonNumericExcluded(t *testing.T) {
	ratings := models.SkillRatings{
		"exigences": "3 ans d'expérience minimum",
		"note":      []interface{}{"a", "b"},
		"java":      "5", // numeric-looking strings are not ratings
		"go":        5.0,
	}
	assert.Equal(t, 100, Score(ratings))
}

func TestScore_IntegerAndJSONNumberValues(t *testing.T) {
	ratings := models.SkillRatings{"a": 2, "b": int64(3)}
	assert.Equal(t, 50, Score(ratings))
}

func TestScore_AlwaysInRange(t *testing.T) {
	cases := []models.SkillRatings{
		{"a": 1.0},
		{"a": 5.0, "b": 0.0},
		{"a": 9.0},  // out-of-scale rating still clamps
		{"a": -2.0}, // negative rating clamps at 0
		{"a": 3.0, "b": 3.0, "c": 3.0, "d": 3.0, "e": 3.0, "f": 3.0},
	}
	for i, ratings := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			got := Score(ratings)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}
