// internal/models/application.go
package models

import "time"

// ApplicationSource identifies the intake channel an application came through.
// The string values are the wire values used by the admin frontend and the
// status-update API.
type ApplicationSource string

const (
	SourceJobOpening  ApplicationSource = "emploi"
	SourceInternship  ApplicationSource = "stage"
	SourcePFE         ApplicationSource = "pfe"
	SourceSpontaneous ApplicationSource = "spontanee"
)

// ParseSource maps a wire value to a known source.
func ParseSource(s string) (ApplicationSource, bool) {
	switch ApplicationSource(s) {
	case SourceJobOpening, SourceInternship, SourcePFE, SourceSpontaneous:
		return ApplicationSource(s), true
	}
	return "", false
}

// LifecycleStatus is the application status as stored in every partition.
type LifecycleStatus string

const (
	StatusPending  LifecycleStatus = "en_attente"
	StatusAccepted LifecycleStatus = "acceptee"
	StatusRejected LifecycleStatus = "refusee"
)

// ParseStatus maps a wire value to a known status.
func ParseStatus(s string) (LifecycleStatus, bool) {
	switch LifecycleStatus(s) {
	case StatusPending, StatusAccepted, StatusRejected:
		return LifecycleStatus(s), true
	}
	return "", false
}

// Terminal reports whether the status is absorbing. Accepted and rejected
// applications never transition again.
func (s LifecycleStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// SkillRatings is the free-form competence map attached to an application.
// Values are expected to be numeric ratings on a 0-5 scale but the map may
// carry non-numeric meta entries (requirement notes and the like), which the
// scorer excludes.
type SkillRatings map[string]interface{}

// Application is the canonical, source-agnostic shape every partition row is
// normalized into. Its identity is (Source, ID); numeric IDs are only unique
// within a partition. JSON field names follow the admin API contract.
type Application struct {
	ID           int64             `json:"id"`
	Source       ApplicationSource `json:"type"`
	Name         string            `json:"nom"`
	Email        string            `json:"email"`
	Phone        string            `json:"telephone"`
	CVURL        string            `json:"cvUrl,omitempty"`
	LetterURL    string            `json:"lettreMotivationUrl,omitempty"`
	Position     string            `json:"poste"`
	Degree       string            `json:"diplome"`
	Experience   int               `json:"experience"`
	Skills       SkillRatings      `json:"competences,omitempty"`
	Score        int               `json:"competenceScore"`
	Status       LifecycleStatus   `json:"statut"`
	SubmittedAt  time.Time         `json:"dateSoumission"`
	OpeningID    *int64            `json:"offre_id,omitempty"`
	OpeningTitle string            `json:"titre_offre,omitempty"`
	Field        string            `json:"domaine,omitempty"`
	Duration     string            `json:"duree,omitempty"`
	Institution  string            `json:"type_etablissement,omitempty"`
}

// RoleLabel is the human-facing role or domain description used in outcome
// notifications.
func (a Application) RoleLabel() string {
	if a.Position != "" && a.Position != "Non spécifié" {
		return a.Position
	}
	if a.Field != "" {
		return a.Field
	}
	return "poste"
}

// RawApplication is one partition row as read from (or written to) storage,
// before normalization. Skills carries the competence column exactly as the
// driver returned it: nil, a JSON-encoded string or []byte, or an already
// decoded map.
type RawApplication struct {
	ID          int64
	LastName    string
	FirstName   string
	Email       string
	Phone       string
	Position    string
	CVPath      string
	LetterPath  string
	Institution string
	Degree      string
	Skills      interface{}
	Experience  int
	Status      string
	SubmittedAt time.Time
	Field       string
	Duration    string
	OpeningID   *int64
	Opening     *JobOpening
}
