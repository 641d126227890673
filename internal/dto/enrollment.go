package dto

import (
	"time"

	"github.com/jlindhorst/studiprogress-api/internal/models"
)

// EnrollmentDetailResponse is the read-only view of one enrollment with its
// module info, courses and per-slot attempt grid.
type EnrollmentDetailResponse struct {
	ID                        string                  `json:"id"`
	Status                    models.EnrollmentStatus `json:"status"`
	EingeschriebenAm          time.Time               `json:"eingeschrieben_am"`
	AbgeschlossenAm           *time.Time              `json:"abgeschlossen_am,omitempty"`
	AnzahlPruefungsleistungen int                     `json:"anzahl_pruefungsleistungen"`
	Note                      *float64                `json:"note,omitempty"`
	Modul                     ModulView               `json:"modul"`
	Slots                     []SlotView              `json:"slots"`
}

// ModulView summarises the enrolled module.
type ModulView struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	ECTSPunkte int        `json:"ects_punkte"`
	Kurse      []KursView `json:"kurse,omitempty"`
}

// KursView describes one constituent course.
type KursView struct {
	Nummer string `json:"nummer"`
	Name   string `json:"name"`
}

// SlotView renders one examination slot with all its attempts.
type SlotView struct {
	Teilpruefung int           `json:"teilpruefung"`
	Gewicht      float64       `json:"gewicht"`
	Bestanden    *bool         `json:"bestanden,omitempty"`
	Note         *float64      `json:"note,omitempty"`
	Erschoepft   bool          `json:"erschoepft"`
	Versuche     []AttemptView `json:"versuche"`
}

// AttemptView renders one attempt row.
type AttemptView struct {
	ID         string     `json:"id"`
	Versuch    int        `json:"versuch"`
	Note       *float64   `json:"note,omitempty"`
	Bestanden  *bool      `json:"bestanden,omitempty"`
	AbgelegtAm *time.Time `json:"abgelegt_am,omitempty"`
}
