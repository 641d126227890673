package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jlindhorst/studiprogress-api/internal/dto"
	"github.com/jlindhorst/studiprogress-api/internal/models"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
	"github.com/jlindhorst/studiprogress-api/pkg/hash"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error)
	List(ctx context.Context) ([]models.Student, error)
	ExistsByEmailOrMatrikelnummer(ctx context.Context, email, matrikelnummer string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type semesterRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Semester, error)
	ExistsByNummer(ctx context.Context, studentID string, nummer int) (bool, error)
	Create(ctx context.Context, semester *models.Semester) error
}

type catalogResolver interface {
	FindOrCreateHochschule(ctx context.Context, name string) (*models.Hochschule, error)
	FindOrCreateStudiengang(ctx context.Context, req CreateStudiengangRequest) (*models.Studiengang, error)
}

// RegisterStudentRequest carries the account creation payload. Institution and
// program are given by name and resolved or created on the fly.
type RegisterStudentRequest struct {
	Vorname        string   `json:"vorname" validate:"required"`
	Nachname       string   `json:"nachname" validate:"required"`
	Matrikelnummer string   `json:"matrikelnummer" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=8"`
	AnzahlSemester int      `json:"anzahl_semester" validate:"required,gt=0"`
	AnzahlModule   int      `json:"anzahl_module" validate:"required,gt=0"`
	StartDatum     string   `json:"start_datum" validate:"required"`
	ZielDatum      string   `json:"ziel_datum" validate:"required"`
	ZielNote       *float64 `json:"ziel_note,omitempty" validate:"omitempty,gte=1,lte=4"`
	Hochschule     string   `json:"hochschule" validate:"required"`
	Studiengang    string   `json:"studiengang" validate:"required"`
	ECTSGesamt     int      `json:"ects_gesamt" validate:"required,gt=0"`
}

// UpdateStudentRequest carries the mutable profile fields.
type UpdateStudentRequest struct {
	Vorname        *string  `json:"vorname,omitempty"`
	Nachname       *string  `json:"nachname,omitempty"`
	AnzahlSemester *int     `json:"anzahl_semester,omitempty" validate:"omitempty,gt=0"`
	AnzahlModule   *int     `json:"anzahl_module,omitempty" validate:"omitempty,gt=0"`
	ZielDatum      *string  `json:"ziel_datum,omitempty"`
	ZielNote       *float64 `json:"ziel_note,omitempty" validate:"omitempty,gte=1,lte=4"`
}

// ExmatrikulationRequest records the date the student left the program.
type ExmatrikulationRequest struct {
	Datum string `json:"datum" validate:"required"`
}

// CreateSemesterRequest carries a new semester period.
type CreateSemesterRequest struct {
	Nummer int    `json:"nummer" validate:"required,gt=0"`
	Beginn string `json:"beginn" validate:"required"`
	Ende   string `json:"ende" validate:"required"`
}

// StudentService manages the student account, profile and semesters.
type StudentService struct {
	repo      studentRepository
	semester  semesterRepository
	catalog   catalogResolver
	hasher    hash.Hasher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, semester semesterRepository, catalog catalogResolver, hasher hash.Hasher, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, semester: semester, catalog: catalog, hasher: hasher, validator: validate, logger: logger}
}

const dateLayout = "2006-01-02"

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, field+" must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// Register creates the student account together with its institution and program.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	startDatum, err := parseDate(req.StartDatum, "start_datum")
	if err != nil {
		return nil, err
	}
	zielDatum, err := parseDate(req.ZielDatum, "ziel_datum")
	if err != nil {
		return nil, err
	}
	if !zielDatum.After(startDatum) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ziel_datum must be after start_datum")
	}

	exists, err := s.repo.ExistsByEmailOrMatrikelnummer(ctx, req.Email, req.Matrikelnummer)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check account uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email or matrikelnummer already registered")
	}

	studiengang, err := s.catalog.FindOrCreateStudiengang(ctx, CreateStudiengangRequest{
		Name:       req.Studiengang,
		Hochschule: req.Hochschule,
		ECTSGesamt: req.ECTSGesamt,
	})
	if err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		Vorname:        req.Vorname,
		Nachname:       req.Nachname,
		Matrikelnummer: req.Matrikelnummer,
		Email:          req.Email,
		PasswordHash:   passwordHash,
		AnzahlSemester: req.AnzahlSemester,
		AnzahlModule:   req.AnzahlModule,
		StartDatum:     startDatum,
		ZielDatum:      zielDatum,
		ZielNote:       req.ZielNote,
		StudiengangID:  &studiengang.ID,
		HochschuleID:   &studiengang.HochschuleID,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student registered", zap.String("student_id", student.ID))
	return s.GetProfile(ctx, student.ID)
}

// GetProfile returns the student with resolved program and institution names.
func (s *StudentService) GetProfile(ctx context.Context, id string) (*models.StudentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return detail, nil
}

// List returns all registered students.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Update applies the provided profile fields.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if req.Vorname != nil {
		student.Vorname = *req.Vorname
	}
	if req.Nachname != nil {
		student.Nachname = *req.Nachname
	}
	if req.AnzahlSemester != nil {
		student.AnzahlSemester = *req.AnzahlSemester
	}
	if req.AnzahlModule != nil {
		student.AnzahlModule = *req.AnzahlModule
	}
	if req.ZielDatum != nil {
		zielDatum, err := parseDate(*req.ZielDatum, "ziel_datum")
		if err != nil {
			return nil, err
		}
		if !zielDatum.After(student.StartDatum) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "ziel_datum must be after start_datum")
		}
		student.ZielDatum = zielDatum
	}
	if req.ZielNote != nil {
		student.ZielNote = req.ZielNote
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return s.GetProfile(ctx, id)
}

// Exmatrikulieren records the exmatriculation date. Time-based progress
// freezes at this date.
func (s *StudentService) Exmatrikulieren(ctx context.Context, id string, req ExmatrikulationRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exmatrikulation payload")
	}
	datum, err := parseDate(req.Datum, "datum")
	if err != nil {
		return nil, err
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if datum.Before(student.StartDatum) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exmatrikulation cannot predate start_datum")
	}
	student.Exmatrikulationsdatum = &datum
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return s.GetProfile(ctx, id)
}

// AddSemester registers a new semester period for the student.
func (s *StudentService) AddSemester(ctx context.Context, studentID string, req CreateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}
	beginn, err := parseDate(req.Beginn, "beginn")
	if err != nil {
		return nil, err
	}
	ende, err := parseDate(req.Ende, "ende")
	if err != nil {
		return nil, err
	}
	if !ende.After(beginn) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ende must be after beginn")
	}
	if _, err := s.repo.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	exists, err := s.semester.ExistsByNummer(ctx, studentID, req.Nummer)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "semester nummer already exists")
	}
	semester := &models.Semester{StudentID: studentID, Nummer: req.Nummer, Beginn: beginn, Ende: ende}
	if err := s.semester.Create(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}
	return semester, nil
}

// ListSemester returns the student's semesters ordered by number, each with
// its status relative to today.
func (s *StudentService) ListSemester(ctx context.Context, studentID string) ([]dto.SemesterView, error) {
	semester, err := s.semester.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester")
	}

	now := time.Now()
	views := make([]dto.SemesterView, 0, len(semester))
	for i := range semester {
		views = append(views, dto.SemesterView{
			ID:        semester[i].ID,
			StudentID: semester[i].StudentID,
			Nummer:    semester[i].Nummer,
			Beginn:    semester[i].Beginn,
			Ende:      semester[i].Ende,
			Status:    string(semester[i].StatusAm(now)),
		})
	}
	return views, nil
}
