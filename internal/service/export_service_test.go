package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jlindhorst/studiprogress-api/internal/models"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
	"github.com/jlindhorst/studiprogress-api/pkg/export"
)

type fakeExportStudents struct {
	detail *models.StudentDetail
}

func (f *fakeExportStudents) FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if f.detail == nil {
		return nil, sql.ErrNoRows
	}
	return f.detail, nil
}

func newExportFixture(enabled bool) *ExportService {
	students := &fakeExportStudents{detail: &models.StudentDetail{Student: models.Student{
		ID: "stu-1", Vorname: "Lena", Nachname: "Weber", Matrikelnummer: "1234567",
	}}}
	abgeschlossen := date(2026, 3, 15)
	enrollments := &fakeProgressEnrollments{
		enrollments: []models.EnrollmentDetail{
			{
				Enrollment: models.Enrollment{ID: "e1", Status: models.EnrollmentStatusAbgeschlossen, AnzahlPruefungsleistungen: 1, AbgeschlossenAm: &abgeschlossen},
				ModulCode:  "INF-101", ModulName: "Programmierung", ECTSPunkte: 5,
			},
			{
				Enrollment: models.Enrollment{ID: "e2", Status: models.EnrollmentStatusInBearbeitung, AnzahlPruefungsleistungen: 1},
				ModulCode:  "MAT-201", ModulName: "Analysis", ECTSPunkte: 8,
			},
		},
		attempts: map[string][]models.Pruefungsleistung{
			"e1": {gradedAttempt("e1", 1.7, date(2026, 3, 15))},
		},
	}
	return NewExportService(students, enrollments, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop(), enabled)
}

func TestExportServiceTranscriptCSV(t *testing.T) {
	svc := newExportFixture(true)

	result, err := svc.Transcript(context.Background(), "stu-1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "notenspiegel.csv", result.Filename)

	body := string(result.Content)
	assert.Contains(t, body, "INF-101")
	assert.Contains(t, body, "1.7")
	assert.Contains(t, body, "ABGESCHLOSSEN")
	// open enrollments carry the no-data mark instead of a grade
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "--")
}

func TestExportServiceTranscriptPDF(t *testing.T) {
	svc := newExportFixture(true)

	result, err := svc.Transcript(context.Background(), "stu-1", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc := newExportFixture(true)

	_, err := svc.Transcript(context.Background(), "stu-1", ExportFormat("xlsx"))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestExportServiceDisabled(t *testing.T) {
	svc := newExportFixture(false)

	_, err := svc.Transcript(context.Background(), "stu-1", ExportFormatCSV)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
