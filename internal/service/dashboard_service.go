package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jlindhorst/studiprogress-api/internal/dto"
	"github.com/jlindhorst/studiprogress-api/internal/models"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
)

type studiengangReader interface {
	FindStudiengangByID(ctx context.Context, id string) (*models.Studiengang, error)
}

// DashboardService composes the read-only dashboard aggregate. The assembled
// view-model is served from Redis when caching is enabled.
type DashboardService struct {
	students studentReader
	catalog  studiengangReader
	progress *ProgressService
	cache    *CacheService
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(students studentReader, catalog studiengangReader, progress *ProgressService, cache *CacheService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{students: students, catalog: catalog, progress: progress, cache: cache, logger: logger}
}

// Get returns the dashboard aggregate for the student.
func (s *DashboardService) Get(ctx context.Context, studentID string) (*dto.DashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:%s", studentID)
	if s.cache.Enabled() {
		var cached dto.DashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	enrollments, err := s.progress.ListEnrollments(ctx, studentID)
	if err != nil {
		return nil, err
	}
	notendurchschnitt, err := s.progress.Notendurchschnitt(ctx, enrollments)
	if err != nil {
		return nil, err
	}
	timeline, err := s.progress.SemesterTimeline(ctx, studentID)
	if err != nil {
		return nil, err
	}

	ectsGesamt := 0
	if student.StudiengangID != nil {
		studiengang, err := s.catalog.FindStudiengangByID(ctx, *student.StudiengangID)
		if err == nil {
			ectsGesamt = studiengang.ECTSGesamt
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load studiengang")
		}
	}

	resp := &dto.DashboardResponse{
		StudentID:             studentID,
		ErarbeiteteECTS:       s.progress.ErarbeiteteECTS(enrollments),
		ECTSGesamt:            ectsGesamt,
		Notendurchschnitt:     notendurchschnitt,
		NotendurchschnittText: dto.NoDataMark,
		ZielNote:              student.ZielNote,
		Zeitfortschritt:       s.progress.Zeitfortschritt(student),
		Counts:                s.progress.Counts(student, enrollments),
		Semester:              timeline,
	}
	if notendurchschnitt != nil {
		resp.NotendurchschnittText = fmt.Sprintf("%.2f", *notendurchschnitt)
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, resp, 0); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return resp, nil
}
