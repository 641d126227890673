package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jlindhorst/studiprogress-api/internal/models"
)

// SemesterRepository handles persistence of semesters.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs the repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// ListByStudent returns the student's semesters ordered by number.
func (r *SemesterRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Semester, error) {
	const query = `SELECT id, student_id, nummer, beginn, ende FROM semester WHERE student_id = $1 ORDER BY nummer ASC`
	var semester []models.Semester
	if err := r.db.SelectContext(ctx, &semester, query, studentID); err != nil {
		return nil, fmt.Errorf("list semester: %w", err)
	}
	return semester, nil
}

// ExistsByNummer checks whether the student already has the numbered semester.
func (r *SemesterRepository) ExistsByNummer(ctx context.Context, studentID string, nummer int) (bool, error) {
	const query = `SELECT COUNT(*) FROM semester WHERE student_id = $1 AND nummer = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, nummer); err != nil {
		return false, fmt.Errorf("check semester: %w", err)
	}
	return count > 0, nil
}

// Create persists a new semester.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	const query = `INSERT INTO semester (id, student_id, nummer, beginn, ende)
        VALUES (:id, :student_id, :nummer, :beginn, :ende)`
	if _, err := r.db.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}
