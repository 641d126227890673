package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jlindhorst/studiprogress-api/internal/models"
)

// ModulRepository handles persistence of modules and their courses.
type ModulRepository struct {
	db *sqlx.DB
}

// NewModulRepository constructs the repository.
func NewModulRepository(db *sqlx.DB) *ModulRepository {
	return &ModulRepository{db: db}
}

// FindByID returns a module by primary key.
func (r *ModulRepository) FindByID(ctx context.Context, id string) (*models.Modul, error) {
	const query = `SELECT id, code, name, ects_punkte, studiengang_id, created_at FROM module WHERE id = $1`
	var modul models.Modul
	if err := r.db.GetContext(ctx, &modul, query, id); err != nil {
		return nil, err
	}
	return &modul, nil
}

// FindByCode returns a module by its unique code.
func (r *ModulRepository) FindByCode(ctx context.Context, code string) (*models.Modul, error) {
	const query = `SELECT id, code, name, ects_punkte, studiengang_id, created_at FROM module WHERE code = $1`
	var modul models.Modul
	if err := r.db.GetContext(ctx, &modul, query, code); err != nil {
		return nil, err
	}
	return &modul, nil
}

// List returns modules filtered by the provided criteria.
func (r *ModulRepository) List(ctx context.Context, filter models.ModulFilter) ([]models.Modul, int, error) {
	base := `FROM module m`
	var conditions []string
	var args []interface{}

	if filter.StudiengangID != "" {
		conditions = append(conditions, fmt.Sprintf("m.studiengang_id = $%d", len(args)+1))
		args = append(args, filter.StudiengangID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(m.name ILIKE $%d OR m.code ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT m.id, m.code, m.name, m.ects_punkte, m.studiengang_id, m.created_at
        %s ORDER BY m.code ASC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var module []models.Modul
	if err := r.db.SelectContext(ctx, &module, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list module: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count module: %w", err)
	}
	return module, total, nil
}

// Create persists a new module.
func (r *ModulRepository) Create(ctx context.Context, modul *models.Modul) error {
	if modul.ID == "" {
		modul.ID = uuid.NewString()
	}
	modul.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO module (id, code, name, ects_punkte, studiengang_id, created_at)
        VALUES (:id, :code, :name, :ects_punkte, :studiengang_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, modul); err != nil {
		return fmt.Errorf("create modul: %w", err)
	}
	return nil
}

// ListKurse returns the constituent courses of a module.
func (r *ModulRepository) ListKurse(ctx context.Context, modulID string) ([]models.Kurs, error) {
	const query = `SELECT id, nummer, name, modul_id FROM kurse WHERE modul_id = $1 ORDER BY nummer ASC`
	var kurse []models.Kurs
	if err := r.db.SelectContext(ctx, &kurse, query, modulID); err != nil {
		return nil, fmt.Errorf("list kurse: %w", err)
	}
	return kurse, nil
}

// FindKursByNummer returns a course by its catalogue number.
func (r *ModulRepository) FindKursByNummer(ctx context.Context, nummer string) (*models.Kurs, error) {
	const query = `SELECT id, nummer, name, modul_id FROM kurse WHERE nummer = $1`
	var kurs models.Kurs
	if err := r.db.GetContext(ctx, &kurs, query, nummer); err != nil {
		return nil, err
	}
	return &kurs, nil
}

// CreateKurs persists a new course under a module.
func (r *ModulRepository) CreateKurs(ctx context.Context, kurs *models.Kurs) error {
	if kurs.ID == "" {
		kurs.ID = uuid.NewString()
	}
	const query = `INSERT INTO kurse (id, nummer, name, modul_id) VALUES (:id, :nummer, :name, :modul_id)`
	if _, err := r.db.NamedExecContext(ctx, query, kurs); err != nil {
		return fmt.Errorf("create kurs: %w", err)
	}
	return nil
}
