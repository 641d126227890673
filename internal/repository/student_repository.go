package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jlindhorst/studiprogress-api/internal/models"
)

// StudentRepository handles persistence of the student account.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, vorname, nachname, matrikelnummer, email, password_hash,
        anzahl_semester, anzahl_module, start_datum, ziel_datum, ziel_note,
        exmatrikulationsdatum, studiengang_id, hochschule_id, created_at, updated_at`

// FindByEmail returns the student with the given email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE email = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByID returns the student by primary key.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindDetailByID returns the student with resolved program and institution names.
func (r *StudentRepository) FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	const query = `SELECT s.id, s.vorname, s.nachname, s.matrikelnummer, s.email, s.password_hash,
        s.anzahl_semester, s.anzahl_module, s.start_datum, s.ziel_datum, s.ziel_note,
        s.exmatrikulationsdatum, s.studiengang_id, s.hochschule_id, s.created_at, s.updated_at,
        sg.name AS studiengang_name, h.name AS hochschule_name
        FROM students s
        LEFT JOIN studiengaenge sg ON sg.id = s.studiengang_id
        LEFT JOIN hochschulen h ON h.id = s.hochschule_id
        WHERE s.id = $1`
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns all registered students ordered by name. A single-user
// installation holds at most one row.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students ORDER BY nachname, vorname`, studentColumns)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ExistsByEmailOrMatrikelnummer checks uniqueness before account creation.
func (r *StudentRepository) ExistsByEmailOrMatrikelnummer(ctx context.Context, email, matrikelnummer string) (bool, error) {
	const query = `SELECT COUNT(*) FROM students WHERE email = $1 OR matrikelnummer = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, email, matrikelnummer); err != nil {
		return false, fmt.Errorf("check student uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create persists a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, vorname, nachname, matrikelnummer, email, password_hash,
        anzahl_semester, anzahl_module, start_datum, ziel_datum, ziel_note,
        exmatrikulationsdatum, studiengang_id, hochschule_id, created_at, updated_at)
        VALUES (:id, :vorname, :nachname, :matrikelnummer, :email, :password_hash,
        :anzahl_semester, :anzahl_module, :start_datum, :ziel_datum, :ziel_note,
        :exmatrikulationsdatum, :studiengang_id, :hochschule_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update persists mutable profile fields.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET vorname = :vorname, nachname = :nachname,
        anzahl_semester = :anzahl_semester, anzahl_module = :anzahl_module,
        start_datum = :start_datum, ziel_datum = :ziel_datum, ziel_note = :ziel_note,
        exmatrikulationsdatum = :exmatrikulationsdatum,
        studiengang_id = :studiengang_id, hochschule_id = :hochschule_id,
        updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE students SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update student password: %w", err)
	}
	return nil
}
