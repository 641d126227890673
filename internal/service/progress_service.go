package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jlindhorst/studiprogress-api/internal/dto"
	"github.com/jlindhorst/studiprogress-api/internal/models"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
)

type progressEnrollmentReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ListAttempts(ctx context.Context, enrollmentID string) ([]models.Pruefungsleistung, error)
}

type progressSemesterReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Semester, error)
}

// ProgressService derives study progress figures from enrollments, attempts
// and the student's timeline. All derivations are read-only.
type ProgressService struct {
	enrollments progressEnrollmentReader
	semester    progressSemesterReader
	logger      *zap.Logger
	now         func() time.Time
}

// NewProgressService constructs a ProgressService.
func NewProgressService(enrollments progressEnrollmentReader, semester progressSemesterReader, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{enrollments: enrollments, semester: semester, logger: logger, now: time.Now}
}

// ErarbeiteteECTS sums module credits over completed enrollments.
func (s *ProgressService) ErarbeiteteECTS(enrollments []models.EnrollmentDetail) int {
	sum := 0
	for i := range enrollments {
		if enrollments[i].Status == models.EnrollmentStatusAbgeschlossen {
			sum += enrollments[i].ECTSPunkte
		}
	}
	return sum
}

// Notendurchschnitt computes the unweighted mean of the final notes across
// completed enrollments. It is nil while no enrollment contributes a note.
func (s *ProgressService) Notendurchschnitt(ctx context.Context, enrollments []models.EnrollmentDetail) (*float64, error) {
	sum := 0.0
	count := 0
	for i := range enrollments {
		enrollment := &enrollments[i]
		if enrollment.Status != models.EnrollmentStatusAbgeschlossen {
			continue
		}
		attempts, err := s.enrollments.ListAttempts(ctx, enrollment.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attempts")
		}
		note, err := models.BerechneEnrollmentNote(attempts, enrollment.AnzahlPruefungsleistungen)
		if err != nil {
			return nil, err
		}
		if note == nil {
			continue
		}
		sum += *note
		count++
	}
	if count == 0 {
		return nil, nil
	}
	avg := sum / float64(count)
	return &avg, nil
}

// Zeitfortschritt returns the elapsed fraction of the study period in [0,1].
// The numerator is capped at the target date and, once set, frozen at the
// exmatriculation date.
func (s *ProgressService) Zeitfortschritt(student *models.Student) float64 {
	total := student.ZielDatum.Sub(student.StartDatum)
	if total <= 0 {
		return 0
	}
	reference := s.now()
	if student.Exmatrikulationsdatum != nil && student.Exmatrikulationsdatum.Before(reference) {
		reference = *student.Exmatrikulationsdatum
	}
	if reference.After(student.ZielDatum) {
		reference = student.ZielDatum
	}
	elapsed := reference.Sub(student.StartDatum)
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(total)
}

// Counts tallies enrollments by status. Ausstehend is the gap between the
// student's target module count and the modules already enrolled.
func (s *ProgressService) Counts(student *models.Student, enrollments []models.EnrollmentDetail) dto.EnrollmentCounts {
	counts := dto.EnrollmentCounts{}
	for i := range enrollments {
		switch enrollments[i].Status {
		case models.EnrollmentStatusInBearbeitung:
			counts.InBearbeitung++
		case models.EnrollmentStatusAbgeschlossen:
			counts.Abgeschlossen++
		case models.EnrollmentStatusNichtBestanden:
			counts.NichtBestanden++
		}
	}
	if remaining := student.AnzahlModule - len(enrollments); remaining > 0 {
		counts.Ausstehend = remaining
	}
	return counts
}

// SemesterTimeline classifies each semester of the student against today.
func (s *ProgressService) SemesterTimeline(ctx context.Context, studentID string) ([]dto.SemesterTimelineEntry, error) {
	semester, err := s.semester.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester")
	}
	reference := s.now()
	entries := make([]dto.SemesterTimelineEntry, 0, len(semester))
	for i := range semester {
		sem := &semester[i]
		entries = append(entries, dto.SemesterTimelineEntry{
			Nummer: sem.Nummer,
			Beginn: sem.Beginn,
			Ende:   sem.Ende,
			Status: string(sem.StatusAm(reference)),
		})
	}
	return entries, nil
}

// ListEnrollments loads all enrollments of the student with module context.
func (s *ProgressService) ListEnrollments(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}
