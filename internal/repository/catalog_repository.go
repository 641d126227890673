package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jlindhorst/studiprogress-api/internal/models"
)

// CatalogRepository handles persistence of institutions and programs of study.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindHochschuleByName returns the institution with the given name.
func (r *CatalogRepository) FindHochschuleByName(ctx context.Context, name string) (*models.Hochschule, error) {
	const query = `SELECT id, name, created_at FROM hochschulen WHERE name = $1`
	var hochschule models.Hochschule
	if err := r.db.GetContext(ctx, &hochschule, query, name); err != nil {
		return nil, err
	}
	return &hochschule, nil
}

// CreateHochschule persists a new institution.
func (r *CatalogRepository) CreateHochschule(ctx context.Context, hochschule *models.Hochschule) error {
	if hochschule.ID == "" {
		hochschule.ID = uuid.NewString()
	}
	hochschule.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO hochschulen (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hochschule); err != nil {
		return fmt.Errorf("create hochschule: %w", err)
	}
	return nil
}

// ListHochschulen returns all known institutions ordered by name.
func (r *CatalogRepository) ListHochschulen(ctx context.Context) ([]models.Hochschule, error) {
	const query = `SELECT id, name, created_at FROM hochschulen ORDER BY name ASC`
	var hochschulen []models.Hochschule
	if err := r.db.SelectContext(ctx, &hochschulen, query); err != nil {
		return nil, fmt.Errorf("list hochschulen: %w", err)
	}
	return hochschulen, nil
}

// FindStudiengangByName returns the program with the given name at an institution.
func (r *CatalogRepository) FindStudiengangByName(ctx context.Context, hochschuleID, name string) (*models.Studiengang, error) {
	const query = `SELECT id, name, hochschule_id, ects_gesamt, created_at
        FROM studiengaenge WHERE hochschule_id = $1 AND name = $2`
	var studiengang models.Studiengang
	if err := r.db.GetContext(ctx, &studiengang, query, hochschuleID, name); err != nil {
		return nil, err
	}
	return &studiengang, nil
}

// FindStudiengangByID returns the program by primary key.
func (r *CatalogRepository) FindStudiengangByID(ctx context.Context, id string) (*models.Studiengang, error) {
	const query = `SELECT id, name, hochschule_id, ects_gesamt, created_at FROM studiengaenge WHERE id = $1`
	var studiengang models.Studiengang
	if err := r.db.GetContext(ctx, &studiengang, query, id); err != nil {
		return nil, err
	}
	return &studiengang, nil
}

// CreateStudiengang persists a new program of study.
func (r *CatalogRepository) CreateStudiengang(ctx context.Context, studiengang *models.Studiengang) error {
	if studiengang.ID == "" {
		studiengang.ID = uuid.NewString()
	}
	studiengang.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO studiengaenge (id, name, hochschule_id, ects_gesamt, created_at)
        VALUES (:id, :name, :hochschule_id, :ects_gesamt, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, studiengang); err != nil {
		return fmt.Errorf("create studiengang: %w", err)
	}
	return nil
}

// ListStudiengaenge returns programs, optionally scoped to one institution.
func (r *CatalogRepository) ListStudiengaenge(ctx context.Context, hochschuleID string) ([]models.Studiengang, error) {
	query := `SELECT id, name, hochschule_id, ects_gesamt, created_at FROM studiengaenge`
	var args []interface{}
	if hochschuleID != "" {
		query += ` WHERE hochschule_id = $1`
		args = append(args, hochschuleID)
	}
	query += ` ORDER BY name ASC`
	var studiengaenge []models.Studiengang
	if err := r.db.SelectContext(ctx, &studiengaenge, query, args...); err != nil {
		return nil, fmt.Errorf("list studiengaenge: %w", err)
	}
	return studiengaenge, nil
}
