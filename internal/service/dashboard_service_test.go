package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jlindhorst/studiprogress-api/internal/dto"
	"github.com/jlindhorst/studiprogress-api/internal/models"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
)

type fakeDashboardStudents struct {
	student *models.Student
}

func (f *fakeDashboardStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if f.student == nil {
		return nil, sql.ErrNoRows
	}
	return f.student, nil
}

type fakeStudiengangReader struct{}

func (f *fakeStudiengangReader) FindStudiengangByID(ctx context.Context, id string) (*models.Studiengang, error) {
	return &models.Studiengang{ID: id, Name: "Informatik", ECTSGesamt: 180}, nil
}

type fakeCacheRepo struct {
	store map[string][]byte
	gets  int
	sets  int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{store: make(map[string][]byte)}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	f.gets++
	raw, ok := f.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = raw
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	f.store = make(map[string][]byte)
	return nil
}

func newDashboardFixture(cacheRepo *fakeCacheRepo) (*DashboardService, *ProgressService) {
	studiengangID := "sg-1"
	zielNote := 2.0
	students := &fakeDashboardStudents{student: &models.Student{
		ID:             "stu-1",
		AnzahlModule:   4,
		StartDatum:     date(2024, 10, 1),
		ZielDatum:      date(2027, 10, 1),
		ZielNote:       &zielNote,
		StudiengangID:  &studiengangID,
		AnzahlSemester: 6,
	}}
	enrollments := &fakeProgressEnrollments{
		enrollments: []models.EnrollmentDetail{
			{Enrollment: models.Enrollment{ID: "e1", Status: models.EnrollmentStatusAbgeschlossen, AnzahlPruefungsleistungen: 1}, ECTSPunkte: 5},
			{Enrollment: models.Enrollment{ID: "e2", Status: models.EnrollmentStatusInBearbeitung, AnzahlPruefungsleistungen: 1}, ECTSPunkte: 10},
		},
		attempts: map[string][]models.Pruefungsleistung{
			"e1": {gradedAttempt("e1", 1.3, date(2026, 2, 1))},
		},
	}
	progress := NewProgressService(enrollments, &fakeSemesterReader{}, zap.NewNop())
	progress.now = func() time.Time { return date(2026, 4, 1) }

	var cache *CacheService
	if cacheRepo != nil {
		cache = NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	}
	return NewDashboardService(students, &fakeStudiengangReader{}, progress, cache, zap.NewNop()), progress
}

func TestDashboardServiceAggregates(t *testing.T) {
	svc, _ := newDashboardFixture(nil)

	resp, err := svc.Get(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 5, resp.ErarbeiteteECTS)
	assert.Equal(t, 180, resp.ECTSGesamt)
	require.NotNil(t, resp.Notendurchschnitt)
	assert.InDelta(t, 1.3, *resp.Notendurchschnitt, 1e-9)
	assert.Equal(t, "1.30", resp.NotendurchschnittText)
	assert.Greater(t, resp.Zeitfortschritt, 0.0)
	assert.Less(t, resp.Zeitfortschritt, 1.0)
	assert.Equal(t, 1, resp.Counts.Abgeschlossen)
	assert.Equal(t, 1, resp.Counts.InBearbeitung)
	assert.Equal(t, 2, resp.Counts.Ausstehend)
}

func TestDashboardServiceNoDataMark(t *testing.T) {
	students := &fakeDashboardStudents{student: &models.Student{ID: "stu-1", AnzahlModule: 4}}
	progress := NewProgressService(&fakeProgressEnrollments{}, &fakeSemesterReader{}, zap.NewNop())
	svc := NewDashboardService(students, &fakeStudiengangReader{}, progress, nil, zap.NewNop())

	resp, err := svc.Get(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Nil(t, resp.Notendurchschnitt)
	assert.Equal(t, dto.NoDataMark, resp.NotendurchschnittText)
}

func TestDashboardServiceServesFromCache(t *testing.T) {
	cacheRepo := newFakeCacheRepo()
	svc, _ := newDashboardFixture(cacheRepo)

	first, err := svc.Get(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cacheRepo.sets)

	second, err := svc.Get(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, first.ErarbeiteteECTS, second.ErarbeiteteECTS)
	assert.Equal(t, 1, cacheRepo.sets)
	assert.Equal(t, 2, cacheRepo.gets)
}
