// internal/candidatures/lifecycle/controller.go
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"careers-backend/internal/candidatures/normalize"
	"careers-backend/internal/candidatures/storage"
	apperrors "careers-backend/internal/common/errors"
	"careers-backend/internal/common/logger"
	"careers-backend/internal/common/metrics"
	"careers-backend/internal/models"
)

// Event describes a committed transition. It carries everything the
// notification side needs so dispatch never re-reads storage.
type Event struct {
	Source models.ApplicationSource
	ID     int64
	Email  string
	Phone  string
	Name   string
	Role   string
	Status models.LifecycleStatus
	At     time.Time
}

// Dispatcher receives transition events after the database write commits.
// Implementations must not block: the controller calls Dispatch on the
// request path.
type Dispatcher interface {
	Dispatch(event Event)
}

// NopDispatcher discards events. It stands in when notifications are
// disabled by configuration.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(Event) {}

// Controller moves applications through their status lifecycle. The only
// legal move is pending to a terminal status, enforced twice: once against
// the row read and again by the guarded update, so racing decisions cannot
// both commit and a candidate never receives two outcome emails.
type Controller struct {
	registry   *storage.Registry
	dispatcher Dispatcher
	logger     logger.Logger
}

func NewController(registry *storage.Registry, dispatcher Dispatcher, log logger.Logger) *Controller {
	if dispatcher == nil {
		dispatcher = NopDispatcher{}
	}
	return &Controller{
		registry:   registry,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Transition applies a decision to one application and, on success, emits a
// notification event. The returned application reflects the new status.
func (c *Controller) Transition(ctx context.Context, source models.ApplicationSource, id int64, target models.LifecycleStatus) (models.Application, error) {
	if !target.Terminal() {
		return models.Application{}, apperrors.NewValidationError(
			fmt.Sprintf("statut cible invalide: %q (attendu acceptee ou refusee)", target))
	}

	partition, err := c.registry.Partition(source)
	if err != nil {
		return models.Application{}, apperrors.NewValidationError(err.Error())
	}

	raw, err := partition.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Application{}, apperrors.NewApplicationNotFound(string(source), id)
		}
		return models.Application{}, apperrors.NewPartitionUnavailable(string(source), err)
	}

	current, ok := models.ParseStatus(raw.Status)
	if !ok {
		current = models.StatusPending
	}
	if current != models.StatusPending {
		metrics.TransitionConflicts.WithLabelValues(string(source)).Inc()
		return models.Application{}, apperrors.NewInvalidStateTransition(
			fmt.Sprintf("candidature %d deja traitee (statut %s)", id, current))
	}

	applied, err := partition.UpdateStatus(ctx, id, models.StatusPending, target)
	if err != nil {
		return models.Application{}, apperrors.NewPartitionUnavailable(string(source), err)
	}
	if !applied {
		// Someone else won the race between our read and our write.
		metrics.TransitionConflicts.WithLabelValues(string(source)).Inc()
		return models.Application{}, apperrors.NewInvalidStateTransition(
			fmt.Sprintf("candidature %d deja traitee", id))
	}

	raw.Status = string(target)
	app := normalize.Application(raw, partition.Source())

	metrics.TransitionsTotal.WithLabelValues(string(app.Source), string(target)).Inc()
	c.logger.Info("application status transitioned", map[string]interface{}{
		"source": string(app.Source),
		"id":     id,
		"status": string(target),
	})

	c.dispatcher.Dispatch(Event{
		Source: app.Source,
		ID:     app.ID,
		Email:  app.Email,
		Phone:  app.Phone,
		Name:   app.Name,
		Role:   app.RoleLabel(),
		Status: target,
		At:     time.Now(),
	})

	return app, nil
}
