// internal/models/opening.go
package models

import (
	"encoding/json"
	"time"
)

// JobOpening is a published position from the offres_emploi table. The core
// treats openings as read-only context while normalizing applications; the
// openings module owns their CRUD.
type JobOpening struct {
	ID           int64           `json:"id"`
	Title        string          `json:"titre"`
	Description  string          `json:"description,omitempty"`
	Salary       string          `json:"salaire,omitempty"`
	Category     string          `json:"type"`
	Location     string          `json:"localisation,omitempty"`
	Requirements json.RawMessage `json:"exigences,omitempty"`
	Status       string          `json:"statut"`
	ExpiresAt    time.Time       `json:"date_expiration"`
	ManagerID    int64           `json:"id_gestionnaire,omitempty"`
}

// Expired reports whether the opening is past its expiry date.
func (o JobOpening) Expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && o.ExpiresAt.Before(now)
}
