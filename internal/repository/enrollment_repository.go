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

// EnrollmentRepository handles persistence of enrollments and their attempts.
// Attempt mutations and the status recompute they trigger commit as a single
// transaction so the stored status can never drift from the attempt data.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EingeschriebenAm.IsZero() {
		enrollment.EingeschriebenAm = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusInBearbeitung
	}
	const query = `INSERT INTO enrollments (id, student_id, modul_id, eingeschrieben_am,
        anzahl_pruefungsleistungen, abgeschlossen_am, status)
        VALUES (:id, :student_id, :modul_id, :eingeschrieben_am,
        :anzahl_pruefungsleistungen, :abgeschlossen_am, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, modul_id, eingeschrieben_am, anzahl_pruefungsleistungen,
        abgeschlossen_am, status FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with module context.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.modul_id, e.eingeschrieben_am,
        e.anzahl_pruefungsleistungen, e.abgeschlossen_am, e.status,
        m.code AS modul_code, m.name AS modul_name, m.ects_punkte, sg.name AS studiengang_name
        FROM enrollments e
        JOIN module m ON m.id = e.modul_id
        LEFT JOIN studiengaenge sg ON sg.id = m.studiengang_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
JOIN module m ON m.id = e.modul_id
LEFT JOIN studiengaenge sg ON sg.id = m.studiengang_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ModulID != "" {
		conditions = append(conditions, fmt.Sprintf("e.modul_id = $%d", len(args)+1))
		args = append(args, filter.ModulID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
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

	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.modul_id, e.eingeschrieben_am,
        e.anzahl_pruefungsleistungen, e.abgeschlossen_am, e.status,
        m.code AS modul_code, m.name AS modul_name, m.ects_punkte, sg.name AS studiengang_name
        %s ORDER BY e.eingeschrieben_am DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListByStudent returns all enrollments of the student with module context.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.modul_id, e.eingeschrieben_am,
        e.anzahl_pruefungsleistungen, e.abgeschlossen_am, e.status,
        m.code AS modul_code, m.name AS modul_name, m.ects_punkte, sg.name AS studiengang_name
        FROM enrollments e
        JOIN module m ON m.id = e.modul_id
        LEFT JOIN studiengaenge sg ON sg.id = m.studiengang_id
        WHERE e.student_id = $1
        ORDER BY e.eingeschrieben_am ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ExistsForModul checks whether the student is already enrolled in the module.
func (r *EnrollmentRepository) ExistsForModul(ctx context.Context, studentID, modulID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE student_id = $1 AND modul_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, modulID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return count > 0, nil
}

// ListAttempts returns all attempts of an enrollment ordered by slot and number.
func (r *EnrollmentRepository) ListAttempts(ctx context.Context, enrollmentID string) ([]models.Pruefungsleistung, error) {
	const query = `SELECT id, enrollment_id, teilpruefung, versuch, gewicht, note, abgelegt_am, created_at
        FROM pruefungsleistungen WHERE enrollment_id = $1 ORDER BY teilpruefung ASC, versuch ASC`
	var attempts []models.Pruefungsleistung
	if err := r.db.SelectContext(ctx, &attempts, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// FindAttemptByID returns a single attempt row.
func (r *EnrollmentRepository) FindAttemptByID(ctx context.Context, id string) (*models.Pruefungsleistung, error) {
	const query = `SELECT id, enrollment_id, teilpruefung, versuch, gewicht, note, abgelegt_am, created_at
        FROM pruefungsleistungen WHERE id = $1`
	var attempt models.Pruefungsleistung
	if err := r.db.GetContext(ctx, &attempt, query, id); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// CreateAttempt inserts the attempt and writes the recomputed enrollment
// status in the same transaction.
func (r *EnrollmentRepository) CreateAttempt(ctx context.Context, attempt *models.Pruefungsleistung, status models.EnrollmentStatus, abgeschlossenAm *time.Time) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	attempt.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attempt tx: %w", err)
	}
	const insertAttempt = `INSERT INTO pruefungsleistungen (id, enrollment_id, teilpruefung, versuch, gewicht, note, abgelegt_am, created_at)
        VALUES (:id, :enrollment_id, :teilpruefung, :versuch, :gewicht, :note, :abgelegt_am, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertAttempt, attempt); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert attempt: %w", err)
	}
	const updateEnrollment = `UPDATE enrollments SET status = $2, abgeschlossen_am = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateEnrollment, attempt.EnrollmentID, status, abgeschlossenAm); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attempt tx: %w", err)
	}
	return nil
}

// GradeAttempt records the grade on the attempt and writes the recomputed
// enrollment status in the same transaction.
func (r *EnrollmentRepository) GradeAttempt(ctx context.Context, attemptID, enrollmentID string, note float64, abgelegtAm time.Time, status models.EnrollmentStatus, abgeschlossenAm *time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grade tx: %w", err)
	}
	const updateAttempt = `UPDATE pruefungsleistungen SET note = $2, abgelegt_am = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateAttempt, attemptID, note, abgelegtAm); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("grade attempt: %w", err)
	}
	const updateEnrollment = `UPDATE enrollments SET status = $2, abgeschlossen_am = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateEnrollment, enrollmentID, status, abgeschlossenAm); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade tx: %w", err)
	}
	return nil
}

// Delete removes an enrollment together with its attempts.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pruefungsleistungen WHERE enrollment_id = $1`, id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete attempts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}
