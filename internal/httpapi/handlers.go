// internal/httpapi/handlers.go
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"careers-backend/internal/candidatures/aggregate"
	"careers-backend/internal/candidatures/normalize"
	apperrors "careers-backend/internal/common/errors"
	"careers-backend/internal/common/validation"
	"careers-backend/internal/models"
)

// --- application listings ---

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	filter := aggregate.Filter{}

	if raw := r.URL.Query().Get("source"); raw != "" {
		source, ok := models.ParseSource(raw)
		if !ok {
			s.writeError(w, apperrors.NewValidationError(fmt.Sprintf("source inconnue: %q", raw)))
			return
		}
		filter.Sources = []models.ApplicationSource{source}
	}
	if raw := r.URL.Query().Get("statut"); raw != "" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			s.writeError(w, apperrors.NewValidationError(fmt.Sprintf("statut inconnu: %q", raw)))
			return
		}
		filter.Status = status
	}

	apps, err := s.aggregator.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleListInternships(w http.ResponseWriter, r *http.Request) {
	apps, err := s.aggregator.List(r.Context(), aggregate.Filter{
		Sources: []models.ApplicationSource{models.SourceInternship, models.SourcePFE},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleListSpontaneous(w http.ResponseWriter, r *http.Request) {
	apps, err := s.aggregator.List(r.Context(), aggregate.Filter{
		Sources: []models.ApplicationSource{models.SourceSpontaneous},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, apps)
}

// --- lifecycle transition ---

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	source, ok := models.ParseSource(vars["type"])
	if !ok {
		s.writeError(w, apperrors.NewValidationError(fmt.Sprintf("type de candidature inconnu: %q", vars["type"])))
		return
	}
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		s.writeError(w, apperrors.NewValidationError("identifiant invalide"))
		return
	}

	var body struct {
		Statut string `json:"statut"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperrors.NewValidationError("corps JSON invalide"))
		return
	}
	target, ok := models.ParseStatus(body.Statut)
	if !ok {
		s.writeError(w, apperrors.NewValidationError(fmt.Sprintf("statut inconnu: %q", body.Statut)))
		return
	}

	app, err := s.lifecycle.Transition(r.Context(), source, id, target)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Statut mis à jour",
		"candidature": app,
	})
}

// --- intake ---

type intakePayload struct {
	Nom               string      `json:"nom"`
	Prenom            string      `json:"prenom"`
	Email             string      `json:"email"`
	Telephone         string      `json:"telephone"`
	Poste             string      `json:"poste"`
	Domaine           string      `json:"domaine"`
	Duree             string      `json:"duree"`
	CVPath            string      `json:"cv_path"`
	LettreMotivation  string      `json:"lettre_motivation"`
	TypeEtablissement string      `json:"type_etablissement"`
	Diplome           string      `json:"diplome"`
	Competences       interface{} `json:"competences"`
	Experience        int         `json:"experience"`
	OffreID           *int64      `json:"offre_id"`
}

func (p intakePayload) toRaw() models.RawApplication {
	return models.RawApplication{
		LastName:    p.Nom,
		FirstName:   p.Prenom,
		Email:       p.Email,
		Phone:       p.Telephone,
		Position:    p.Poste,
		Field:       p.Domaine,
		Duration:    p.Duree,
		CVPath:      p.CVPath,
		LetterPath:  p.LettreMotivation,
		Institution: p.TypeEtablissement,
		Degree:      p.Diplome,
		Skills:      p.Competences,
		Experience:  p.Experience,
		OpeningID:   p.OffreID,
	}
}

func (s *Server) handleEmploiIntake(w http.ResponseWriter, r *http.Request) {
	s.handleIntake(w, r, emploiIntakeSchema, models.SourceJobOpening, true)
}

func (s *Server) handleStageIntake(w http.ResponseWriter, r *http.Request) {
	s.handleIntake(w, r, stageIntakeSchema, models.SourceInternship, false)
}

func (s *Server) handleSpontaneeIntake(w http.ResponseWriter, r *http.Request) {
	s.handleIntake(w, r, spontaneeIntakeSchema, models.SourceSpontaneous, false)
}

func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request, schema string, source models.ApplicationSource, allowOpening bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, apperrors.NewValidationError("corps de requête illisible"))
		return
	}
	if err := validation.CheckBytes(schema, body); err != nil {
		s.writeError(w, err)
		return
	}

	var payload intakePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.writeError(w, apperrors.NewValidationError("corps JSON invalide"))
		return
	}

	raw := payload.toRaw()
	if !allowOpening {
		raw.OpeningID = nil
	}
	// Reject unreadable ratings at the door instead of storing junk.
	if raw.Skills != nil {
		if parsed := normalize.ParseSkills(raw.Skills); len(parsed) == 0 {
			if str, isStr := raw.Skills.(string); isStr && str != "" && str != "{}" {
				s.writeError(w, apperrors.NewValidationError("competences: JSON invalide"))
				return
			}
		}
	}

	partition, err := s.registry.Partition(source)
	if err != nil {
		s.writeError(w, apperrors.NewValidationError(err.Error()))
		return
	}
	id, err := partition.Create(r.Context(), raw)
	if err != nil {
		s.writeError(w, apperrors.NewPartitionUnavailable(string(source), err))
		return
	}

	s.logger.Info("application received", map[string]interface{}{
		"source": string(source),
		"id":     id,
	})
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Candidature envoyée avec succès",
		"id":      id,
	})
}

// --- openings ---

func (s *Server) handleListOpenings(w http.ResponseWriter, r *http.Request) {
	out, err := s.openings.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetOpening(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	opening, err := s.openings.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, opening)
}

func (s *Server) handleCreateOpening(w http.ResponseWriter, r *http.Request) {
	var opening models.JobOpening
	if err := json.NewDecoder(r.Body).Decode(&opening); err != nil {
		s.writeError(w, apperrors.NewValidationError("corps JSON invalide"))
		return
	}
	created, err := s.openings.Create(r.Context(), opening)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Offre ajoutée avec succès",
		"offre":   created,
	})
}

func (s *Server) handleUpdateOpening(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var opening models.JobOpening
	if err := json.NewDecoder(r.Body).Decode(&opening); err != nil {
		s.writeError(w, apperrors.NewValidationError("corps JSON invalide"))
		return
	}
	opening.ID = id
	updated, err := s.openings.Update(r.Context(), opening)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Offre modifiée avec succès",
		"offre":   updated,
	})
}

func (s *Server) handleDeleteOpening(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	detached, err := s.openings.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":                 "Offre supprimée avec succès",
		"candidatures_dissociees": detached,
	})
}

// --- contact ---

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, apperrors.NewValidationError("corps de requête illisible"))
		return
	}
	if err := validation.CheckBytes(contactSchema, body); err != nil {
		s.writeError(w, err)
		return
	}
	var msg models.ContactMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.writeError(w, apperrors.NewValidationError("corps JSON invalide"))
		return
	}
	if err := s.contact.Submit(r.Context(), msg); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Message envoyé avec succès.",
	})
}

// --- health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDBPing(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.writeError(w, apperrors.NewPartitionUnavailable("database", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"database": "ok"})
}
