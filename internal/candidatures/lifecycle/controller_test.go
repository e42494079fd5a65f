package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careers-backend/internal/candidatures/storage"
	apperrors "careers-backend/internal/common/errors"
	"careers-backend/internal/common/logger"
	"careers-backend/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

// memPartition is a mutex-guarded in-memory partition so concurrent
// transition tests exercise the real compare-and-swap semantics.
type memPartition struct {
	mu     sync.Mutex
	source models.ApplicationSource
	rows   map[int64]models.RawApplication
}

func newMemPartition(source models.ApplicationSource, rows ...models.RawApplication) *memPartition {
	p := &memPartition{source: source, rows: make(map[int64]models.RawApplication)}
	for _, r := range rows {
		p.rows[r.ID] = r
	}
	return p
}

func (p *memPartition) Source() models.ApplicationSource { return p.source }

func (p *memPartition) List(ctx context.Context) ([]models.RawApplication, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.RawApplication, 0, len(p.rows))
	for _, r := range p.rows {
		out = append(out, r)
	}
	return out, nil
}

func (p *memPartition) Get(ctx context.Context, id int64) (models.RawApplication, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	row, ok := p.rows[id]
	if !ok {
		return models.RawApplication{}, sql.ErrNoRows
	}
	return row, nil
}

func (p *memPartition) Create(ctx context.Context, row models.RawApplication) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := int64(len(p.rows) + 1)
	row.ID = id
	p.rows[id] = row
	return id, nil
}

func (p *memPartition) UpdateStatus(ctx context.Context, id int64, expected, next models.LifecycleStatus) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	row, ok := p.rows[id]
	if !ok || row.Status != string(expected) {
		return false, nil
	}
	row.Status = string(next)
	p.rows[id] = row
	return true, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []Event
}

func (d *recordingDispatcher) Dispatch(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) all() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

func pendingRow(id int64) models.RawApplication {
	return models.RawApplication{
		ID:          id,
		LastName:    "Benali",
		FirstName:   "Yassine",
		Email:       "yassine@example.com",
		Position:    "Backend Developer",
		Status:      "en_attente",
		SubmittedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestController(t *testing.T, emploi *memPartition) (*Controller, *recordingDispatcher) {
	stage := newMemPartition(models.SourceInternship)
	spontanee := newMemPartition(models.SourceSpontaneous)
	reg := storage.NewRegistry(emploi, stage, spontanee)
	dispatcher := &recordingDispatcher{}
	return NewController(reg, dispatcher, logger.NewTestLogger(t)), dispatcher
}

// ==========================
// Transition Tests
// ==========================

func TestController_Transition_AcceptsPendingApplication(t *testing.T) {
	emploi := newMemPartition(models.SourceJobOpening, pendingRow(7))
	controller, dispatcher := newTestController(t, emploi)

	app, err := controller.Transition(context.Background(), models.SourceJobOpening, 7, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, app.Status)
	assert.Equal(t, "Benali Yassine", app.Name)

	events := dispatcher.all()
	require.Len(t, events, 1)
	assert.Equal(t, int64(7), events[0].ID)
	assert.Equal(t, "yassine@example.com", events[0].Email)
	assert.Equal(t, "Backend Developer", events[0].Role)
	assert.Equal(t, models.StatusAccepted, events[0].Status)
}

func TestController_Transition_RejectsNonTerminalTarget(t *testing.T) {
	emploi := newMemPartition(models.SourceJobOpening, pendingRow(7))
	controller, dispatcher := newTestController(t, emploi)

	_, err := controller.Transition(context.Background(), models.SourceJobOpening, 7, models.StatusPending)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))
	assert.Empty(t, dispatcher.all())
}

func TestController_Transition_NotFound(t *testing.T) {
	emploi := newMemPartition(models.SourceJobOpening)
	controller, dispatcher := newTestController(t, emploi)

	_, err := controller.Transition(context.Background(), models.SourceJobOpening, 99, models.StatusAccepted)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeApplicationNotFound))
	assert.Empty(t, dispatcher.all())
}

func TestController_Transition_AlreadyDecided(t *testing.T) {
	decided := pendingRow(7)
	decided.Status = "acceptee"
	emploi := newMemPartition(models.SourceJobOpening, decided)
	controller, dispatcher := newTestController(t, emploi)

	// Re-issuing a decision on a terminal row must fail and must not emit a
	// second notification.
	_, err := controller.Transition(context.Background(), models.SourceJobOpening, 7, models.StatusRejected)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidStateTransition))
	assert.Empty(t, dispatcher.all())
}

func TestController_Transition_ConcurrentDecisionsSingleWinner(t *testing.T) {
	emploi := newMemPartition(models.SourceJobOpening, pendingRow(7))
	controller, dispatcher := newTestController(t, emploi)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	start := make(chan struct{})
	for _, target := range []models.LifecycleStatus{models.StatusAccepted, models.StatusRejected} {
		wg.Add(1)
		go func(target models.LifecycleStatus) {
			defer wg.Done()
			<-start
			_, err := controller.Transition(context.Background(), models.SourceJobOpening, 7, target)
			results <- err
		}(target)
	}
	close(start)
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case apperrors.IsCode(err, apperrors.ErrCodeInvalidStateTransition):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)
	assert.Len(t, dispatcher.all(), 1)
}

func TestController_Transition_PartitionError(t *testing.T) {
	emploi := newMemPartition(models.SourceJobOpening, pendingRow(7))
	stage := &failingPartition{source: models.SourceInternship}
	spontanee := newMemPartition(models.SourceSpontaneous)
	reg := storage.NewRegistry(emploi, stage, spontanee)
	controller := NewController(reg, nil, logger.NewTestLogger(t))

	_, err := controller.Transition(context.Background(), models.SourceInternship, 1, models.StatusAccepted)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodePartitionUnavailable))
}

type failingPartition struct {
	source models.ApplicationSource
}

func (f *failingPartition) Source() models.ApplicationSource { return f.source }

func (f *failingPartition) List(ctx context.Context) ([]models.RawApplication, error) {
	return nil, errors.New("connection refused")
}

func (f *failingPartition) Get(ctx context.Context, id int64) (models.RawApplication, error) {
	return models.RawApplication{}, errors.New("connection refused")
}

func (f *failingPartition) Create(ctx context.Context, row models.RawApplication) (int64, error) {
	return 0, errors.New("connection refused")
}

func (f *failingPartition) UpdateStatus(ctx context.Context, id int64, expected, next models.LifecycleStatus) (bool, error) {
	return false, errors.New("connection refused")
}
