package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careers-backend/internal/candidatures/aggregate"
	"careers-backend/internal/candidatures/lifecycle"
	"careers-backend/internal/candidatures/storage"
	"careers-backend/internal/common/logger"
	"careers-backend/internal/contact"
	"careers-backend/internal/models"
	"careers-backend/internal/openings"
)

// ==========================
// Test Helper Functions
// ==========================

type memPartition struct {
	mu     sync.Mutex
	source models.ApplicationSource
	nextID int64
	rows   map[int64]models.RawApplication
}

func newMemPartition(source models.ApplicationSource, rows ...models.RawApplication) *memPartition {
	p := &memPartition{source: source, rows: make(map[int64]models.RawApplication)}
	for _, r := range rows {
		p.rows[r.ID] = r
		if r.ID > p.nextID {
			p.nextID = r.ID
		}
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
	p.nextID++
	row.ID = p.nextID
	row.Status = "en_attente"
	p.rows[row.ID] = row
	return row.ID, nil
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

type testEnv struct {
	server *Server
	router http.Handler
	mock   sqlmock.Sqlmock
	emploi *memPartition
}

func newTestEnv(t *testing.T) *testEnv {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	emploi := newMemPartition(models.SourceJobOpening, models.RawApplication{
		ID:          7,
		LastName:    "Benali",
		FirstName:   "Yassine",
		Email:       "yassine@example.com",
		Position:    "Backend Developer",
		Status:      "en_attente",
		SubmittedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	stage := newMemPartition(models.SourceInternship, models.RawApplication{
		ID:          3,
		LastName:    "Haddad",
		FirstName:   "Lina",
		Email:       "lina@example.com",
		Field:       "Data",
		Status:      "en_attente",
		SubmittedAt: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
	})
	spontanee := newMemPartition(models.SourceSpontaneous)
	reg := storage.NewRegistry(emploi, stage, spontanee)

	srv := NewServer(Deps{
		Aggregator: aggregate.NewService(reg, aggregate.Config{PartitionTimeout: time.Second}, log),
		Lifecycle:  lifecycle.NewController(reg, nil, log),
		Registry:   reg,
		Openings:   openings.NewService(openings.NewStore(db), nil, time.Minute, log),
		Contact:    contact.NewService(db, nil, "", log),
		DB:         db,
		Logger:     log,
	})
	return &testEnv{server: srv, router: srv.Router(), mock: mock, emploi: emploi}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// ==========================
// Listing Tests
// ==========================

func TestListApplications(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/candidatures", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var apps []models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	require.Len(t, apps, 2)
	assert.Equal(t, int64(7), apps[0].ID)
	assert.Equal(t, models.SourceJobOpening, apps[0].Source)
}

func TestListApplications_StatusFilter(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/candidatures?statut=acceptee", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var apps []models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	assert.Empty(t, apps)
}

func TestListApplications_UnknownSource(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/api/candidatures?source=freelance", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListInternships(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/candidatures/stages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var apps []models.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, models.SourceInternship, apps[0].Source)
}

// ==========================
// Transition Tests
// ==========================

func TestTransition_Accept(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPut, "/api/candidatures/statut/emploi/7", `{"statut":"acceptee"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"statut":"acceptee"`)

	// A second decision on the same application conflicts.
	rec = env.do(http.MethodPut, "/api/candidatures/statut/emploi/7", `{"statut":"refusee"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransition_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPut, "/api/candidatures/statut/emploi/999", `{"statut":"acceptee"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransition_InvalidTarget(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPut, "/api/candidatures/statut/emploi/7", `{"statut":"en_attente"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// Intake Tests
// ==========================

func TestIntake_Emploi(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/candidature-emploi", `{
		"nom": "Martin", "prenom": "Claire", "email": "claire@example.com",
		"telephone": "0698765432", "poste": "Data Analyst",
		"competences": {"python": 5, "sql": 4}, "experience": 2
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id"`)
}

func TestIntake_MissingRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/api/candidature-stage", `{"nom": "Martin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIntake_SpontaneeIgnoresOpening(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/candidature-spontanee", `{
		"nom": "Martin", "prenom": "Claire", "email": "claire@example.com",
		"telephone": "0698765432", "offre_id": 12
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The unsolicited partition never keeps an opening reference.
	list := env.do(http.MethodGet, "/api/candidatures/spontanees", "")
	assert.NotContains(t, list.Body.String(), `"offre_id"`)
}

// ==========================
// Openings and Contact Tests
// ==========================

func TestGetOpening_NotFound(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`(?s)SELECT .+ FROM offres_emploi WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	rec := env.do(http.MethodGet, "/api/offres/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOpening_Validation(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/api/offres", `{"titre": "Sans le reste"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContact_Validation(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/api/contact", `{"firstName": "Claire"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContact_Success(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectExec(`INSERT INTO messages_contact`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := env.do(http.MethodPost, "/api/contact", `{
		"firstName": "Claire", "lastName": "Martin", "email": "claire@example.com",
		"subject": "Partenariat", "message": "Bonjour"
	}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==========================
// Health Tests
// ==========================

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestDBPing(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/api/db/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
