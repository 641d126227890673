package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jlindhorst/studiprogress-api/internal/dto"
	"github.com/jlindhorst/studiprogress-api/internal/models"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
	"github.com/jlindhorst/studiprogress-api/pkg/export"
)

type studentDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// ExportFormat identifies a transcript output format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult bundles rendered bytes with response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the transcript (Notenspiegel): one row per
// enrollment with final note, credits and status.
type ExportService struct {
	students    studentDetailReader
	enrollments progressEnrollmentReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
	enabled     bool
}

// NewExportService constructs an ExportService.
func NewExportService(students studentDetailReader, enrollments progressEnrollmentReader, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{students: students, enrollments: enrollments, csv: csv, pdf: pdf, logger: logger, enabled: enabled}
}

var transcriptHeaders = []string{"Code", "Modul", "ECTS", "Note", "Status", "Abgeschlossen am"}

// Transcript renders the student's transcript in the requested format.
func (s *ExportService) Transcript(ctx context.Context, studentID string, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export is disabled")
	}
	switch format {
	case ExportFormatCSV, ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	student, err := s.students.FindDetailByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	dataset := export.Dataset{Headers: transcriptHeaders}
	for i := range enrollments {
		enrollment := &enrollments[i]
		attempts, err := s.enrollments.ListAttempts(ctx, enrollment.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attempts")
		}
		note, err := models.BerechneEnrollmentNote(attempts, enrollment.AnzahlPruefungsleistungen)
		if err != nil {
			return nil, err
		}
		row := map[string]string{
			"Code":             enrollment.ModulCode,
			"Modul":            enrollment.ModulName,
			"ECTS":             fmt.Sprintf("%d", enrollment.ECTSPunkte),
			"Note":             dto.NoDataMark,
			"Status":           string(enrollment.Status),
			"Abgeschlossen am": dto.NoDataMark,
		}
		if note != nil {
			row["Note"] = fmt.Sprintf("%.1f", *note)
		}
		if enrollment.AbgeschlossenAm != nil {
			row["Abgeschlossen am"] = enrollment.AbgeschlossenAm.Format("2006-01-02")
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	name := strings.TrimSpace(student.Vorname + " " + student.Nachname)
	subtitle := fmt.Sprintf("%s, Matrikelnummer %s", name, student.Matrikelnummer)

	switch format {
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, "Notenspiegel", subtitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "notenspiegel.pdf"}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "notenspiegel.csv"}, nil
	}
}
