package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jlindhorst/studiprogress-api/internal/models"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
)

type fakeEnrollmentRepo struct {
	enrollments map[string]models.Enrollment
	attempts    map[string][]models.Pruefungsleistung
	statusWrite map[string]models.EnrollmentStatus
	deleted     []string
	seq         int
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{
		enrollments: make(map[string]models.Enrollment),
		attempts:    make(map[string][]models.Pruefungsleistung),
		statusWrite: make(map[string]models.EnrollmentStatus),
	}
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, e *models.Enrollment) error {
	if e.ID == "" {
		e.ID = "enr-new"
	}
	if e.EingeschriebenAm.IsZero() {
		e.EingeschriebenAm = time.Now()
	}
	f.enrollments[e.ID] = *e
	return nil
}

func (f *fakeEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := f.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	if e, ok := f.enrollments[id]; ok {
		return &models.EnrollmentDetail{Enrollment: e, ModulCode: "INF-101", ModulName: "Programmierung", ECTSPunkte: 5}, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeEnrollmentRepo) ExistsForModul(ctx context.Context, studentID, modulID string) (bool, error) {
	for _, e := range f.enrollments {
		if e.StudentID == studentID && e.ModulID == modulID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentRepo) ListAttempts(ctx context.Context, enrollmentID string) ([]models.Pruefungsleistung, error) {
	return f.attempts[enrollmentID], nil
}

func (f *fakeEnrollmentRepo) FindAttemptByID(ctx context.Context, id string) (*models.Pruefungsleistung, error) {
	for _, list := range f.attempts {
		for _, a := range list {
			if a.ID == id {
				return &a, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) CreateAttempt(ctx context.Context, attempt *models.Pruefungsleistung, status models.EnrollmentStatus, abgeschlossenAm *time.Time) error {
	if attempt.ID == "" {
		f.seq++
		attempt.ID = fmt.Sprintf("pl-%d", f.seq)
	}
	f.attempts[attempt.EnrollmentID] = append(f.attempts[attempt.EnrollmentID], *attempt)
	e := f.enrollments[attempt.EnrollmentID]
	e.Status = status
	e.AbgeschlossenAm = abgeschlossenAm
	f.enrollments[attempt.EnrollmentID] = e
	f.statusWrite[attempt.EnrollmentID] = status
	return nil
}

func (f *fakeEnrollmentRepo) GradeAttempt(ctx context.Context, attemptID, enrollmentID string, note float64, abgelegtAm time.Time, status models.EnrollmentStatus, abgeschlossenAm *time.Time) error {
	list := f.attempts[enrollmentID]
	for i := range list {
		if list[i].ID == attemptID {
			list[i].Note = &note
			list[i].AbgelegtAm = &abgelegtAm
		}
	}
	f.attempts[enrollmentID] = list
	e := f.enrollments[enrollmentID]
	e.Status = status
	e.AbgeschlossenAm = abgeschlossenAm
	f.enrollments[enrollmentID] = e
	f.statusWrite[enrollmentID] = status
	return nil
}

func (f *fakeEnrollmentRepo) Delete(ctx context.Context, id string) error {
	delete(f.enrollments, id)
	delete(f.attempts, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeModulReader struct{}

func (f *fakeModulReader) FindByID(ctx context.Context, id string) (*models.Modul, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Modul{ID: id, Code: "INF-101", Name: "Programmierung", ECTSPunkte: 5}, nil
}

func (f *fakeModulReader) ListKurse(ctx context.Context, modulID string) ([]models.Kurs, error) {
	return []models.Kurs{{Nummer: "INF-101-01", Name: "Einfuehrung", ModulID: modulID}}, nil
}

type fakeStudentReader struct{}

func (f *fakeStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Student{ID: id, AnzahlModule: 12}, nil
}

type fakeCache struct {
	invalidated []string
}

func (f *fakeCache) Invalidate(ctx context.Context, pattern string) error {
	f.invalidated = append(f.invalidated, pattern)
	return nil
}

func newEnrollmentService(repo *fakeEnrollmentRepo, cache *fakeCache) *EnrollmentService {
	return NewEnrollmentService(repo, &fakeModulReader{}, &fakeStudentReader{}, cache, validator.New(), zap.NewNop())
}

func seedEnrollment(repo *fakeEnrollmentRepo, anzahl int) {
	repo.enrollments["enr-1"] = models.Enrollment{
		ID:                        "enr-1",
		StudentID:                 "stu-1",
		ModulID:                   "mod-1",
		EingeschriebenAm:          time.Now(),
		AnzahlPruefungsleistungen: anzahl,
		Status:                    models.EnrollmentStatusInBearbeitung,
	}
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	cache := &fakeCache{}
	svc := newEnrollmentService(repo, cache)

	detail, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu-1", ModulID: "mod-1", AnzahlPruefungsleistungen: 2})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusInBearbeitung, detail.Status)
	assert.NotEmpty(t, cache.invalidated)

	_, err = svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu-1", ModulID: "mod-1", AnzahlPruefungsleistungen: 2})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestEnrollmentServiceAddAttemptSequencing(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newEnrollmentService(repo, &fakeCache{})
	seedEnrollment(repo, 1)

	// versuch 2 before versuch 1 is out of order
	_, err := svc.AddAttempt(context.Background(), "enr-1", CreateAttemptRequest{Teilpruefung: 0, Versuch: 2, Gewicht: 1})
	assert.True(t, appErrors.Is(err, appErrors.ErrSequence))

	attempt, err := svc.AddAttempt(context.Background(), "enr-1", CreateAttemptRequest{Teilpruefung: 0, Versuch: 1, Gewicht: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.Versuch)
	assert.Equal(t, models.EnrollmentStatusInBearbeitung, repo.statusWrite["enr-1"])

	// retry while the first attempt is still ungraded
	_, err = svc.AddAttempt(context.Background(), "enr-1", CreateAttemptRequest{Teilpruefung: 0, Versuch: 2, Gewicht: 1})
	assert.True(t, appErrors.Is(err, appErrors.ErrSequence))
}

func TestEnrollmentServiceRetryAfterFailThenPass(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newEnrollmentService(repo, &fakeCache{})
	seedEnrollment(repo, 1)

	fail := 5.0
	_, err := svc.AddAttempt(context.Background(), "enr-1", CreateAttemptRequest{Teilpruefung: 0, Versuch: 1, Gewicht: 1, Note: &fail, AbgelegtAm: strPtr("2026-02-10")})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusInBearbeitung, repo.statusWrite["enr-1"])

	pass := 3.4
	_, err = svc.AddAttempt(context.Background(), "enr-1", CreateAttemptRequest{Teilpruefung: 0, Versuch: 2, Gewicht: 1, Note: &pass, AbgelegtAm: strPtr("2026-03-15")})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusAbgeschlossen, repo.statusWrite["enr-1"])

	detail, err := svc.Detail(context.Background(), "enr-1")
	require.NoError(t, err)
	require.NotNil(t, detail.Note)
	assert.InDelta(t, 3.4, *detail.Note, 1e-9)
}

func TestEnrollmentServiceTerminalRejectsMutations(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newEnrollmentService(repo, &fakeCache{})
	seedEnrollment(repo, 1)

	fail := 4.7
	for versuch := 1; versuch <= 3; versuch++ {
		_, err := svc.AddAttempt(context.Background(), "enr-1", CreateAttemptRequest{Teilpruefung: 0, Versuch: versuch, Gewicht: 1, Note: &fail, AbgelegtAm: strPtr("2026-02-10")})
		require.NoError(t, err)
	}
	assert.Equal(t, models.EnrollmentStatusNichtBestanden, repo.statusWrite["enr-1"])

	_, err := svc.AddAttempt(context.Background(), "enr-1", CreateAttemptRequest{Teilpruefung: 0, Versuch: 4, Gewicht: 1})
	assert.True(t, appErrors.Is(err, appErrors.ErrEnrollmentClosed))

	_, err = svc.AddAttemptAuto(context.Background(), "enr-1", AutoAttemptRequest{Note: 2.0, AbgelegtAm: "2026-04-01"})
	assert.True(t, appErrors.Is(err, appErrors.ErrEnrollmentClosed))
}

func TestEnrollmentServiceAutoAttemptPicksOpenSlot(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newEnrollmentService(repo, &fakeCache{})
	seedEnrollment(repo, 2)

	first, err := svc.AddAttemptAuto(context.Background(), "enr-1", AutoAttemptRequest{Note: 2.0, AbgelegtAm: "2026-02-10"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Teilpruefung)
	assert.Equal(t, 1, first.Versuch)

	second, err := svc.AddAttemptAuto(context.Background(), "enr-1", AutoAttemptRequest{Note: 3.0, AbgelegtAm: "2026-03-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Teilpruefung)
	assert.Equal(t, models.EnrollmentStatusAbgeschlossen, repo.statusWrite["enr-1"])

	_, err = svc.AddAttemptAuto(context.Background(), "enr-1", AutoAttemptRequest{Note: 1.0, AbgelegtAm: "2026-04-01"})
	assert.True(t, appErrors.Is(err, appErrors.ErrEnrollmentClosed))
}

func TestEnrollmentServiceRecordGradeOnce(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	svc := newEnrollmentService(repo, &fakeCache{})
	seedEnrollment(repo, 1)

	attempt, err := svc.AddAttempt(context.Background(), "enr-1", CreateAttemptRequest{Teilpruefung: 0, Versuch: 1, Gewicht: 1})
	require.NoError(t, err)

	graded, err := svc.RecordGrade(context.Background(), attempt.ID, GradeAttemptRequest{Note: 1.7, AbgelegtAm: "2026-03-01"})
	require.NoError(t, err)
	require.NotNil(t, graded.Note)
	assert.InDelta(t, 1.7, *graded.Note, 1e-9)
	assert.Equal(t, models.EnrollmentStatusAbgeschlossen, repo.statusWrite["enr-1"])

	_, err = svc.RecordGrade(context.Background(), attempt.ID, GradeAttemptRequest{Note: 2.0, AbgelegtAm: "2026-03-02"})
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyGraded))
}

func TestEnrollmentServiceDeleteInvalidatesCache(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	cache := &fakeCache{}
	svc := newEnrollmentService(repo, cache)
	seedEnrollment(repo, 1)

	require.NoError(t, svc.Delete(context.Background(), "enr-1"))
	assert.Contains(t, repo.deleted, "enr-1")
	assert.NotEmpty(t, cache.invalidated)

	err := svc.Delete(context.Background(), "enr-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func strPtr(s string) *string { return &s }
