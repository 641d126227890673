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
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	ExistsForModul(ctx context.Context, studentID, modulID string) (bool, error)
	ListAttempts(ctx context.Context, enrollmentID string) ([]models.Pruefungsleistung, error)
	FindAttemptByID(ctx context.Context, id string) (*models.Pruefungsleistung, error)
	CreateAttempt(ctx context.Context, attempt *models.Pruefungsleistung, status models.EnrollmentStatus, abgeschlossenAm *time.Time) error
	GradeAttempt(ctx context.Context, attemptID, enrollmentID string, note float64, abgelegtAm time.Time, status models.EnrollmentStatus, abgeschlossenAm *time.Time) error
	Delete(ctx context.Context, id string) error
}

type modulReader interface {
	FindByID(ctx context.Context, id string) (*models.Modul, error)
	ListKurse(ctx context.Context, modulID string) ([]models.Kurs, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// EnrollRequest registers the student into a module. The examination slot
// count is fixed at creation.
type EnrollRequest struct {
	StudentID                 string    `json:"student_id" validate:"required"`
	ModulID                   string    `json:"modul_id" validate:"required"`
	AnzahlPruefungsleistungen int       `json:"anzahl_pruefungsleistungen" validate:"required,gt=0"`
	EingeschriebenAm          *string   `json:"eingeschrieben_am,omitempty"`
	Gewichte                  []float64 `json:"gewichte,omitempty"`
}

// CreateAttemptRequest adds an explicit attempt to a slot. The grade may be
// recorded later via RecordGrade.
type CreateAttemptRequest struct {
	Teilpruefung int      `json:"teilpruefung" validate:"gte=0"`
	Versuch      int      `json:"versuch" validate:"required,gte=1"`
	Gewicht      float64  `json:"gewicht" validate:"required,gt=0"`
	Note         *float64 `json:"note,omitempty" validate:"omitempty,gte=1,lte=5"`
	AbgelegtAm   *string  `json:"abgelegt_am,omitempty"`
}

// AutoAttemptRequest adds a graded attempt to the next open slot.
type AutoAttemptRequest struct {
	Note       float64  `json:"note" validate:"required,gte=1,lte=5"`
	AbgelegtAm string   `json:"abgelegt_am" validate:"required"`
	Gewicht    *float64 `json:"gewicht,omitempty" validate:"omitempty,gt=0"`
}

// GradeAttemptRequest records the grade on a pending attempt, exactly once.
type GradeAttemptRequest struct {
	Note       float64 `json:"note" validate:"required,gte=1,lte=5"`
	AbgelegtAm string  `json:"abgelegt_am" validate:"required"`
}

// EnrollmentService orchestrates enrollments and their examination attempts.
// Every attempt mutation recomputes the enrollment status from the full
// attempt set and persists both in one transaction.
type EnrollmentService struct {
	repo      enrollmentRepository
	module    modulReader
	students  studentReader
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, module modulReader, students studentReader, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, module: module, students: students, cache: cache, validator: validate, logger: logger}
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return enrollments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Enroll registers the student in a module.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if len(req.Gewichte) > 0 && len(req.Gewichte) != req.AnzahlPruefungsleistungen {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "gewichte must match anzahl_pruefungsleistungen")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.module.FindByID(ctx, req.ModulID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "modul not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load modul")
	}
	exists, err := s.repo.ExistsForModul(ctx, req.StudentID, req.ModulID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in modul")
	}

	enrollment := &models.Enrollment{
		StudentID:                 req.StudentID,
		ModulID:                   req.ModulID,
		AnzahlPruefungsleistungen: req.AnzahlPruefungsleistungen,
		Status:                    models.EnrollmentStatusInBearbeitung,
	}
	if req.EingeschriebenAm != nil {
		eingeschrieben, err := parseDate(*req.EingeschriebenAm, "eingeschrieben_am")
		if err != nil {
			return nil, err
		}
		enrollment.EingeschriebenAm = eingeschrieben
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	s.invalidateDashboard(ctx, req.StudentID)

	detail, err := s.repo.FindDetailByID(ctx, enrollment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment detail")
	}
	return detail, nil
}

// AddAttempt creates an explicit attempt at (teilpruefung, versuch) and
// recomputes the enrollment status in the same transaction.
func (s *EnrollmentService) AddAttempt(ctx context.Context, enrollmentID string, req CreateAttemptRequest) (*models.Pruefungsleistung, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attempt payload")
	}
	enrollment, attempts, err := s.loadOpenEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := models.ValidiereNeuenVersuch(attempts, enrollment.AnzahlPruefungsleistungen, req.Teilpruefung, req.Versuch); err != nil {
		return nil, err
	}

	attempt := &models.Pruefungsleistung{
		EnrollmentID: enrollmentID,
		Teilpruefung: req.Teilpruefung,
		Versuch:      req.Versuch,
		Gewicht:      req.Gewicht,
		Note:         req.Note,
	}
	if req.AbgelegtAm != nil {
		abgelegt, err := parseDate(*req.AbgelegtAm, "abgelegt_am")
		if err != nil {
			return nil, err
		}
		attempt.AbgelegtAm = &abgelegt
	}

	return s.persistAttempt(ctx, enrollment, attempts, attempt)
}

// AddAttemptAuto creates a graded attempt on the first open slot with the
// next attempt number.
func (s *EnrollmentService) AddAttemptAuto(ctx context.Context, enrollmentID string, req AutoAttemptRequest) (*models.Pruefungsleistung, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attempt payload")
	}
	abgelegt, err := parseDate(req.AbgelegtAm, "abgelegt_am")
	if err != nil {
		return nil, err
	}
	enrollment, attempts, err := s.loadOpenEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	teilpruefung, versuch, err := models.NaechsterOffenerVersuch(attempts, enrollment.AnzahlPruefungsleistungen)
	if err != nil {
		return nil, err
	}

	gewicht := slotGewicht(attempts, teilpruefung)
	if req.Gewicht != nil {
		gewicht = *req.Gewicht
	}
	note := req.Note
	attempt := &models.Pruefungsleistung{
		EnrollmentID: enrollmentID,
		Teilpruefung: teilpruefung,
		Versuch:      versuch,
		Gewicht:      gewicht,
		Note:         &note,
		AbgelegtAm:   &abgelegt,
	}

	return s.persistAttempt(ctx, enrollment, attempts, attempt)
}

// RecordGrade records the grade on a pending attempt and recomputes the
// enrollment status in the same transaction. Grading is a one-shot operation.
func (s *EnrollmentService) RecordGrade(ctx context.Context, attemptID string, req GradeAttemptRequest) (*models.Pruefungsleistung, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	abgelegt, err := parseDate(req.AbgelegtAm, "abgelegt_am")
	if err != nil {
		return nil, err
	}

	attempt, err := s.repo.FindAttemptByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attempt not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attempt")
	}
	if attempt.IstBewertet() {
		return nil, appErrors.ErrAlreadyGraded
	}
	enrollment, attempts, err := s.loadOpenEnrollment(ctx, attempt.EnrollmentID)
	if err != nil {
		return nil, err
	}

	for i := range attempts {
		if attempts[i].ID == attempt.ID {
			attempts[i].Note = &req.Note
			attempts[i].AbgelegtAm = &abgelegt
		}
	}
	status, abgeschlossenAm := models.DeriveEnrollmentStatus(attempts, enrollment.AnzahlPruefungsleistungen)
	if err := s.repo.GradeAttempt(ctx, attemptID, enrollment.ID, req.Note, abgelegt, status, abgeschlossenAm); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}
	s.logger.Info("attempt graded",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("attempt_id", attemptID),
		zap.Float64("note", req.Note),
		zap.String("status", string(status)))
	s.invalidateDashboard(ctx, enrollment.StudentID)

	attempt.Note = &req.Note
	attempt.AbgelegtAm = &abgelegt
	return attempt, nil
}

// Detail assembles the enrollment view-model with module info, courses and
// the per-slot attempt grid.
func (s *EnrollmentService) Detail(ctx context.Context, id string) (*dto.EnrollmentDetailResponse, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	attempts, err := s.repo.ListAttempts(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attempts")
	}
	kurse, err := s.module.ListKurse(ctx, detail.ModulID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kurse")
	}

	note, err := models.BerechneEnrollmentNote(attempts, detail.AnzahlPruefungsleistungen)
	if err != nil {
		return nil, err
	}

	resp := &dto.EnrollmentDetailResponse{
		ID:                        detail.ID,
		Status:                    detail.Status,
		EingeschriebenAm:          detail.EingeschriebenAm,
		AbgeschlossenAm:           detail.AbgeschlossenAm,
		AnzahlPruefungsleistungen: detail.AnzahlPruefungsleistungen,
		Note:                      note,
		Modul: dto.ModulView{
			ID:         detail.ModulID,
			Code:       detail.ModulCode,
			Name:       detail.ModulName,
			ECTSPunkte: detail.ECTSPunkte,
		},
	}
	for _, kurs := range kurse {
		resp.Modul.Kurse = append(resp.Modul.Kurse, dto.KursView{Nummer: kurs.Nummer, Name: kurs.Name})
	}

	slots := models.GruppiereSlots(attempts, detail.AnzahlPruefungsleistungen)
	for i := range slots {
		slot := &slots[i]
		view := dto.SlotView{
			Teilpruefung: slot.Teilpruefung,
			Gewicht:      slotGewicht(attempts, slot.Teilpruefung),
			Erschoepft:   slot.Erschoepft,
		}
		if slot.Bestanden != nil {
			passed := true
			view.Bestanden = &passed
			view.Note = slot.Bestanden.Note
		}
		for j := range slot.Versuche {
			versuch := &slot.Versuche[j]
			view.Versuche = append(view.Versuche, dto.AttemptView{
				ID:         versuch.ID,
				Versuch:    versuch.Versuch,
				Note:       versuch.Note,
				Bestanden:  versuch.IstBestanden(),
				AbgelegtAm: versuch.AbgelegtAm,
			})
		}
		resp.Slots = append(resp.Slots, view)
	}
	return resp, nil
}

// Delete removes the enrollment and its attempts.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	s.invalidateDashboard(ctx, enrollment.StudentID)
	return nil
}

func (s *EnrollmentService) loadOpenEnrollment(ctx context.Context, id string) (*models.Enrollment, []models.Pruefungsleistung, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status.Terminal() {
		return nil, nil, appErrors.ErrEnrollmentClosed
	}
	attempts, err := s.repo.ListAttempts(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attempts")
	}
	return enrollment, attempts, nil
}

func (s *EnrollmentService) persistAttempt(ctx context.Context, enrollment *models.Enrollment, attempts []models.Pruefungsleistung, attempt *models.Pruefungsleistung) (*models.Pruefungsleistung, error) {
	status, abgeschlossenAm := models.DeriveEnrollmentStatus(append(attempts, *attempt), enrollment.AnzahlPruefungsleistungen)
	if err := s.repo.CreateAttempt(ctx, attempt, status, abgeschlossenAm); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attempt")
	}
	s.logger.Info("attempt created",
		zap.String("enrollment_id", enrollment.ID),
		zap.Int("teilpruefung", attempt.Teilpruefung),
		zap.Int("versuch", attempt.Versuch),
		zap.String("status", string(status)))
	s.invalidateDashboard(ctx, enrollment.StudentID)
	return attempt, nil
}

func (s *EnrollmentService) invalidateDashboard(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:"+studentID+"*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

// slotGewicht picks the weight attached to the slot's existing attempts, or
// an equal weight of 1 for a slot without history.
func slotGewicht(attempts []models.Pruefungsleistung, teilpruefung int) float64 {
	for i := len(attempts) - 1; i >= 0; i-- {
		if attempts[i].Teilpruefung == teilpruefung {
			return attempts[i].Gewicht
		}
	}
	return 1
}
