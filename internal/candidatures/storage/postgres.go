// internal/candidatures/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"careers-backend/internal/models"
)

// EmploiPartition backs open-position applications. It is the only partition
// carrying a foreign reference to the openings table, joined on every read so
// the normalizer can resolve the real source from the opening category.
type EmploiPartition struct {
	db *sql.DB
}

func NewEmploiPartition(db *sql.DB) *EmploiPartition {
	return &EmploiPartition{db: db}
}

func (p *EmploiPartition) Source() models.ApplicationSource {
	return models.SourceJobOpening
}

const emploiColumns = `c.id, c.nom, c.prenom, c.email, c.telephone, c.poste,
	       c.cv_path, c.lettre_motivation, c.type_etablissement, c.diplome,
	       c.competences, c.experience, c.statut, c.date_soumission,
	       c.offre_id, o.titre, o.type`

func (p *EmploiPartition) List(ctx context.Context) ([]models.RawApplication, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+emploiColumns+`
		FROM candidatures_emploi c
		LEFT JOIN offres_emploi o ON c.offre_id = o.id
		ORDER BY c.date_soumission DESC`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tableEmploi, err)
	}
	defer rows.Close()

	var out []models.RawApplication
	for rows.Next() {
		raw, err := scanEmploiRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", tableEmploi, err)
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

func (p *EmploiPartition) Get(ctx context.Context, id int64) (models.RawApplication, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+emploiColumns+`
		FROM candidatures_emploi c
		LEFT JOIN offres_emploi o ON c.offre_id = o.id
		WHERE c.id = $1`, id)
	return scanEmploiRow(row)
}

func (p *EmploiPartition) Create(ctx context.Context, row models.RawApplication) (int64, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO candidatures_emploi
		(nom, prenom, email, telephone, poste, cv_path, lettre_motivation,
		 type_etablissement, diplome, competences, experience, offre_id,
		 statut, date_soumission)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW())
		RETURNING id`,
		row.LastName, row.FirstName, row.Email, row.Phone,
		nullString(row.Position), nullString(row.CVPath), nullString(row.LetterPath),
		nullString(row.Institution), nullString(row.Degree),
		encodeSkills(row.Skills), row.Experience, row.OpeningID,
		string(models.StatusPending),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", tableEmploi, err)
	}
	return id, nil
}

func (p *EmploiPartition) UpdateStatus(ctx context.Context, id int64, expected, next models.LifecycleStatus) (bool, error) {
	return conditionalStatusUpdate(ctx, p.db, tableEmploi, id, expected, next)
}

func scanEmploiRow(row scanner) (models.RawApplication, error) {
	var (
		raw          models.RawApplication
		position     sql.NullString
		cvPath       sql.NullString
		letterPath   sql.NullString
		institution  sql.NullString
		degree       sql.NullString
		skills       []byte
		experience   sql.NullInt64
		status       sql.NullString
		submittedAt  sql.NullTime
		openingID    sql.NullInt64
		openingTitle sql.NullString
		openingType  sql.NullString
	)

	err := row.Scan(
		&raw.ID, &raw.LastName, &raw.FirstName, &raw.Email, &raw.Phone,
		&position, &cvPath, &letterPath, &institution, &degree,
		&skills, &experience, &status, &submittedAt,
		&openingID, &openingTitle, &openingType,
	)
	if err != nil {
		return models.RawApplication{}, err
	}

	raw.Position = position.String
	raw.CVPath = cvPath.String
	raw.LetterPath = letterPath.String
	raw.Institution = institution.String
	raw.Degree = degree.String
	if skills != nil {
		raw.Skills = skills
	}
	raw.Experience = int(experience.Int64)
	raw.Status = status.String
	raw.SubmittedAt = submittedAt.Time
	if openingID.Valid {
		id := openingID.Int64
		raw.OpeningID = &id
		raw.Opening = &models.JobOpening{
			ID:       id,
			Title:    openingTitle.String,
			Category: openingType.String,
		}
	}
	return raw, nil
}

// StagePartition backs internship applications.
type StagePartition struct {
	db *sql.DB
}

func NewStagePartition(db *sql.DB) *StagePartition {
	return &StagePartition{db: db}
}

func (p *StagePartition) Source() models.ApplicationSource {
	return models.SourceInternship
}

func (p *StagePartition) List(ctx context.Context) ([]models.RawApplication, error) {
	return listPlainPartition(ctx, p.db, tableStage)
}

func (p *StagePartition) Get(ctx context.Context, id int64) (models.RawApplication, error) {
	return getPlainPartition(ctx, p.db, tableStage, id)
}

func (p *StagePartition) Create(ctx context.Context, row models.RawApplication) (int64, error) {
	return createPlainPartition(ctx, p.db, tableStage, row)
}

func (p *StagePartition) UpdateStatus(ctx context.Context, id int64, expected, next models.LifecycleStatus) (bool, error) {
	return conditionalStatusUpdate(ctx, p.db, tableStage, id, expected, next)
}

// SpontaneePartition backs unsolicited applications.
type SpontaneePartition struct {
	db *sql.DB
}

func NewSpontaneePartition(db *sql.DB) *SpontaneePartition {
	return &SpontaneePartition{db: db}
}

func (p *SpontaneePartition) Source() models.ApplicationSource {
	return models.SourceSpontaneous
}

func (p *SpontaneePartition) List(ctx context.Context) ([]models.RawApplication, error) {
	return listPlainPartition(ctx, p.db, tableSpontanee)
}

func (p *SpontaneePartition) Get(ctx context.Context, id int64) (models.RawApplication, error) {
	return getPlainPartition(ctx, p.db, tableSpontanee, id)
}

func (p *SpontaneePartition) Create(ctx context.Context, row models.RawApplication) (int64, error) {
	return createPlainPartition(ctx, p.db, tableSpontanee, row)
}

func (p *SpontaneePartition) UpdateStatus(ctx context.Context, id int64, expected, next models.LifecycleStatus) (bool, error) {
	return conditionalStatusUpdate(ctx, p.db, tableSpontanee, id, expected, next)
}

// --- shared plumbing for the two partitions without an openings join ---

const plainColumns = `id, nom, prenom, email, telephone, poste,
	       cv_path, lettre_motivation, type_etablissement, diplome,
	       competences, experience, statut, date_soumission, domaine, duree`

func listPlainPartition(ctx context.Context, db *sql.DB, table string) ([]models.RawApplication, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+plainColumns+` FROM `+table+` ORDER BY date_soumission DESC`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []models.RawApplication
	for rows.Next() {
		raw, err := scanPlainRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

func getPlainPartition(ctx context.Context, db *sql.DB, table string, id int64) (models.RawApplication, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+plainColumns+` FROM `+table+` WHERE id = $1`, id)
	return scanPlainRow(row)
}

func createPlainPartition(ctx context.Context, db *sql.DB, table string, row models.RawApplication) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO `+table+`
		(nom, prenom, email, telephone, poste, cv_path, lettre_motivation,
		 type_etablissement, diplome, competences, experience, domaine, duree,
		 statut, date_soumission)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,NOW())
		RETURNING id`,
		row.LastName, row.FirstName, row.Email, row.Phone,
		nullString(row.Position), nullString(row.CVPath), nullString(row.LetterPath),
		nullString(row.Institution), nullString(row.Degree),
		encodeSkills(row.Skills), row.Experience,
		nullString(row.Field), nullString(row.Duration),
		string(models.StatusPending),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return id, nil
}

func scanPlainRow(row scanner) (models.RawApplication, error) {
	var (
		raw         models.RawApplication
		position    sql.NullString
		cvPath      sql.NullString
		letterPath  sql.NullString
		institution sql.NullString
		degree      sql.NullString
		skills      []byte
		experience  sql.NullInt64
		status      sql.NullString
		submittedAt sql.NullTime
		field       sql.NullString
		duration    sql.NullString
	)

	err := row.Scan(
		&raw.ID, &raw.LastName, &raw.FirstName, &raw.Email, &raw.Phone,
		&position, &cvPath, &letterPath, &institution, &degree,
		&skills, &experience, &status, &submittedAt, &field, &duration,
	)
	if err != nil {
		return models.RawApplication{}, err
	}

	raw.Position = position.String
	raw.CVPath = cvPath.String
	raw.LetterPath = letterPath.String
	raw.Institution = institution.String
	raw.Degree = degree.String
	if skills != nil {
		raw.Skills = skills
	}
	raw.Experience = int(experience.Int64)
	raw.Status = status.String
	raw.SubmittedAt = submittedAt.Time
	raw.Field = field.String
	raw.Duration = duration.String
	return raw, nil
}

// conditionalStatusUpdate is the compare-and-swap both the lifecycle
// controller and the partitions share: the write applies only if the row's
// status still equals expected at update time, so two racing transitions
// cannot both win.
func conditionalStatusUpdate(ctx context.Context, db *sql.DB, table string, id int64, expected, next models.LifecycleStatus) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET statut = $1 WHERE id = $2 AND statut = $3`,
		string(next), id, string(expected))
	if err != nil {
		return false, fmt.Errorf("conditional status update on %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected on %s: %w", table, err)
	}
	return affected == 1, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// encodeSkills serializes the competence map for the JSONB column. Anything
// already serialized passes through; an absent map stores NULL.
func encodeSkills(v interface{}) interface{} {
	switch data := v.(type) {
	case nil:
		return nil
	case []byte:
		return data
	case string:
		return []byte(data)
	default:
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil
		}
		return encoded
	}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
