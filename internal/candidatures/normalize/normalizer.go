// Package normalize shapes raw partition rows into the canonical Application
// form consumed by the admin surface.
package normalize

import (
	"encoding/json"
	"path"
	"strings"

	"careers-backend/internal/candidatures/scoring"
	"careers-backend/internal/models"
)

// Application converts one raw partition row, plus its optional joined
// opening, into the canonical shape. fallback is the partition's default
// source; a joined opening's category can override it. The input row is never
// modified and no I/O happens here.
func Application(raw models.RawApplication, fallback models.ApplicationSource) models.Application {
	skills := ParseSkills(raw.Skills)

	status := models.StatusPending
	if parsed, ok := models.ParseStatus(raw.Status); ok {
		status = parsed
	}

	position := strings.TrimSpace(raw.Position)
	if raw.Opening != nil && raw.Opening.Title != "" {
		position = raw.Opening.Title
	}
	if position == "" {
		position = "Non spécifié"
	}

	degree := raw.Degree
	if degree == "" {
		degree = "Non spécifié"
	}

	app := models.Application{
		ID:          raw.ID,
		Source:      ResolveSource(raw.Opening, fallback),
		Name:        strings.TrimSpace(raw.LastName + " " + raw.FirstName),
		Email:       raw.Email,
		Phone:       raw.Phone,
		CVURL:       FileURL(raw.CVPath),
		LetterURL:   FileURL(raw.LetterPath),
		Position:    position,
		Degree:      degree,
		Experience:  raw.Experience,
		Skills:      skills,
		Score:       scoring.Score(skills),
		Status:      status,
		SubmittedAt: raw.SubmittedAt,
		OpeningID:   raw.OpeningID,
		Field:       raw.Field,
		Duration:    raw.Duration,
		Institution: raw.Institution,
	}
	if raw.Opening != nil {
		app.OpeningTitle = raw.Opening.Title
	}
	return app
}

// ResolveSource decides the intake channel once, at normalization time. A
// linked opening's category text wins over the partition default.
func ResolveSource(opening *models.JobOpening, fallback models.ApplicationSource) models.ApplicationSource {
	if opening == nil {
		return fallback
	}
	category := strings.ToLower(opening.Category)
	switch {
	case strings.Contains(category, "stage"):
		return models.SourceInternship
	case strings.Contains(category, "pfe"):
		return models.SourcePFE
	case strings.Contains(category, "cdi"), strings.Contains(category, "cdd"):
		return models.SourceJobOpening
	default:
		return fallback
	}
}

// ParseSkills accepts the competence column in any of the shapes the
// partitions produce: nil, a JSON-encoded string or []byte, or an already
// decoded map. Anything unparseable means "no skill data", never an error.
func ParseSkills(v interface{}) models.SkillRatings {
	switch data := v.(type) {
	case nil:
		return models.SkillRatings{}
	case models.SkillRatings:
		return data
	case map[string]interface{}:
		return models.SkillRatings(data)
	case []byte:
		return decodeSkills(data)
	case string:
		return decodeSkills([]byte(data))
	default:
		return models.SkillRatings{}
	}
}

func decodeSkills(data []byte) models.SkillRatings {
	if len(data) == 0 {
		return models.SkillRatings{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return models.SkillRatings{}
	}
	return models.SkillRatings(out)
}

// FileURL turns a stored document path into the URL the frontend serves it
// under. Absolute URLs pass through untouched.
func FileURL(filePath string) string {
	if filePath == "" {
		return ""
	}
	if strings.HasPrefix(filePath, "http") {
		return filePath
	}
	return "/uploads/" + path.Base(filePath)
}
