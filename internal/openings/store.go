// internal/openings/store.go
package openings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"careers-backend/internal/models"
)

// Store owns the offres_emploi table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const openingColumns = `id, titre, description, salaire, date_expiration,
	       statut, type, localisation, exigences, id_gestionnaire`

func (s *Store) List(ctx context.Context) ([]models.JobOpening, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+openingColumns+` FROM offres_emploi ORDER BY date_expiration ASC`)
	if err != nil {
		return nil, fmt.Errorf("list openings: %w", err)
	}
	defer rows.Close()

	var out []models.JobOpening
	for rows.Next() {
		opening, err := scanOpening(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opening: %w", err)
		}
		out = append(out, opening)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (models.JobOpening, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+openingColumns+` FROM offres_emploi WHERE id = $1`, id)
	return scanOpening(row)
}

func (s *Store) Create(ctx context.Context, opening models.JobOpening) (models.JobOpening, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO offres_emploi
		(titre, description, salaire, date_expiration, statut, type,
		 localisation, exigences, id_gestionnaire)
		VALUES ($1,$2,$3,$4,'active',$5,$6,$7,$8)
		RETURNING `+openingColumns,
		opening.Title, opening.Description, nullable(opening.Salary),
		opening.ExpiresAt, opening.Category, opening.Location,
		requirementsValue(opening.Requirements), opening.ManagerID,
	)
	created, err := scanOpening(row)
	if err != nil {
		return models.JobOpening{}, fmt.Errorf("insert opening: %w", err)
	}
	return created, nil
}

func (s *Store) Update(ctx context.Context, opening models.JobOpening) (models.JobOpening, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE offres_emploi
		SET titre = $1, description = $2, salaire = $3, date_expiration = $4,
		    type = $5, localisation = $6, exigences = $7, statut = $8
		WHERE id = $9
		RETURNING `+openingColumns,
		opening.Title, opening.Description, nullable(opening.Salary),
		opening.ExpiresAt, opening.Category, opening.Location,
		requirementsValue(opening.Requirements), opening.Status, opening.ID,
	)
	updated, err := scanOpening(row)
	if err != nil {
		return models.JobOpening{}, err
	}
	return updated, nil
}

// Delete removes an opening after detaching any applications that reference
// it, in one transaction. Detached applications keep their data and simply
// lose the opening link, so past candidates are never lost with the posting.
// Returns the number of detached applications.
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete opening: %w", err)
	}
	defer tx.Rollback()

	var title string
	if err := tx.QueryRowContext(ctx,
		`SELECT titre FROM offres_emploi WHERE id = $1`, id).Scan(&title); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE candidatures_emploi SET offre_id = NULL WHERE offre_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("detach applications from opening %d: %w", id, err)
	}
	detached, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("detach applications from opening %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM offres_emploi WHERE id = $1`, id); err != nil {
		return 0, fmt.Errorf("delete opening %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete opening %d: %w", id, err)
	}
	return detached, nil
}

func scanOpening(row interface{ Scan(...interface{}) error }) (models.JobOpening, error) {
	var (
		o            models.JobOpening
		description  sql.NullString
		salary       sql.NullString
		expiresAt    sql.NullTime
		status       sql.NullString
		category     sql.NullString
		location     sql.NullString
		requirements []byte
		managerID    sql.NullInt64
	)
	err := row.Scan(
		&o.ID, &o.Title, &description, &salary, &expiresAt,
		&status, &category, &location, &requirements, &managerID,
	)
	if err != nil {
		return models.JobOpening{}, err
	}
	o.Description = description.String
	o.Salary = salary.String
	o.ExpiresAt = expiresAt.Time
	o.Status = status.String
	o.Category = category.String
	o.Location = location.String
	if requirements != nil {
		o.Requirements = json.RawMessage(requirements)
	}
	o.ManagerID = managerID.Int64
	return o, nil
}

// requirementsValue normalizes the exigences payload for storage. Free text
// that is not valid JSON is wrapped into a one-element array, matching what
// admin clients have always sent.
func requirementsValue(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return []byte(raw)
	}
	wrapped, err := json.Marshal([]string{string(raw)})
	if err != nil {
		return nil
	}
	return wrapped
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
