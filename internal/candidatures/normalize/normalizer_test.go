package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"careers-backend/internal/models"
)

func TestParseSkills_EquivalentInputs(t *testing.T) {
	want := models.SkillRatings{"a": 5.0, "b": 5.0}

	fromString := ParseSkills(`{"a":5,"b":5}`)
	fromBytes := ParseSkills([]byte(`{"a":5,"b":5}`))
	fromMap := ParseSkills(map[string]interface{}{"a": 5.0, "b": 5.0})

	assert.Equal(t, want, fromString)
	assert.Equal(t, want, fromBytes)
	assert.Equal(t, want, fromMap)

	assert.Equal(t, models.SkillRatings{}, ParseSkills(nil))
}

func TestParseSkills_MalformedIsEmpty(t *testing.T) {
	assert.Equal(t, models.SkillRatings{}, ParseSkills("not json at all"))
	assert.Equal(t, models.SkillRatings{}, ParseSkills(`["a","b"]`))
	assert.Equal(t, models.SkillRatings{}, ParseSkills(`null`))
	assert.Equal(t, models.SkillRatings{}, ParseSkills(42))
}

func TestResolveSource_FromOpeningCategory(t *testing.T) {
	cases := []struct {
		category string
		want     models.ApplicationSource
	}{
		{"Stage d'été", models.SourceInternship},
		{"STAGE", models.SourceInternship},
		{"Projet PFE", models.SourcePFE},
		{"CDI", models.SourceJobOpening},
		{"Contrat CDD", models.SourceJobOpening},
		{"Freelance", models.SourceJobOpening}, // falls back to partition default
	}
	for _, tc := range cases {
		t.Run(tc.category, func(t *testing.T) {
			opening := &models.JobOpening{ID: 1, Title: "Dev", Category: tc.category}
			got := ResolveSource(opening, models.SourceJobOpening)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveSource_NoOpening(t *testing.T) {
	assert.Equal(t, models.SourceSpontaneous, ResolveSource(nil, models.SourceSpontaneous))
	assert.Equal(t, models.SourceInternship, ResolveSource(nil, models.SourceInternship))
}

func TestApplication_Canonicalization(t *testing.T) {
	openingID := int64(7)
	submitted := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	raw := models.RawApplication{
		ID:          42,
		LastName:    "Benali",
		FirstName:   "Yasmine",
		Email:       "yasmine@example.com",
		Phone:       "+212600000000",
		Position:    "Dev Backend",
		CVPath:      "/srv/uploads/1700000000-cv.pdf",
		Skills:      `{"go":4,"sql":3,"exigences":"3 ans"}`,
		Experience:  3,
		Status:      "en_attente",
		SubmittedAt: submitted,
		OpeningID:   &openingID,
		Opening:     &models.JobOpening{ID: 7, Title: "Ingénieur Backend", Category: "CDI"},
	}

	app := Application(raw, models.SourceJobOpening)

	assert.Equal(t, int64(42), app.ID)
	assert.Equal(t, models.SourceJobOpening, app.Source)
	assert.Equal(t, "Benali Yasmine", app.Name)
	// opening title wins over the free-text position
	assert.Equal(t, "Ingénieur Backend", app.Position)
	assert.Equal(t, "Ingénieur Backend", app.OpeningTitle)
	assert.Equal(t, "/uploads/1700000000-cv.pdf", app.CVURL)
	assert.Equal(t, models.StatusPending, app.Status)
	// 7 of 10 possible points across the two numeric entries
	assert.Equal(t, 70, app.Score)
	assert.Equal(t, submitted, app.SubmittedAt)
	assert.Equal(t, &openingID, app.OpeningID)
}

func TestApplication_Defaults(t *testing.T) {
	raw := models.RawApplication{ID: 1, LastName: "Seul"}

	app := Application(raw, models.SourceSpontaneous)

	assert.Equal(t, "Seul", app.Name)
	assert.Equal(t, "Non spécifié", app.Position)
	assert.Equal(t, "Non spécifié", app.Degree)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, 0, app.Score)
	assert.Empty(t, app.CVURL)
	assert.Equal(t, models.SourceSpontaneous, app.Source)
}

func TestApplication_DoesNotMutateInput(t *testing.T) {
	skills := map[string]interface{}{"go": 5.0}
	raw := models.RawApplication{ID: 3, Skills: skills, Status: "acceptee"}

	_ = Application(raw, models.SourceInternship)

	assert.Equal(t, map[string]interface{}{"go": 5.0}, skills)
	assert.Equal(t, "acceptee", raw.Status)
}

func TestFileURL(t *testing.T) {
	assert.Equal(t, "", FileURL(""))
	assert.Equal(t, "/uploads/cv.pdf", FileURL("/var/data/uploads/cv.pdf"))
	assert.Equal(t, "https://cdn.example.com/cv.pdf", FileURL("https://cdn.example.com/cv.pdf"))
}
