package models

import "time"

// MaxVersuche caps the number of attempts per examination slot.
const MaxVersuche = 3

// Pruefungsleistung is one try at a sub-examination slot of an enrollment.
// It is identified by the slot index (Teilpruefung, 0-based) and the attempt
// number within that slot (Versuch, starting at 1).
type Pruefungsleistung struct {
	ID           string     `db:"id" json:"id"`
	EnrollmentID string     `db:"enrollment_id" json:"enrollment_id"`
	Teilpruefung int        `db:"teilpruefung" json:"teilpruefung"`
	Versuch      int        `db:"versuch" json:"versuch"`
	Gewicht      float64    `db:"gewicht" json:"gewicht"`
	Note         *float64   `db:"note" json:"note,omitempty"`
	AbgelegtAm   *time.Time `db:"abgelegt_am" json:"abgelegt_am,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// IstBewertet reports whether a grade has been recorded.
func (p *Pruefungsleistung) IstBewertet() bool {
	return p.Note != nil
}

// IstBestanden returns nil while the attempt is ungraded, otherwise whether
// the recorded grade passes.
func (p *Pruefungsleistung) IstBestanden() *bool {
	if p.Note == nil {
		return nil
	}
	passed := IstBestandeneNote(*p.Note)
	return &passed
}

// IstDurchgefallen reports a graded, failing attempt.
func (p *Pruefungsleistung) IstDurchgefallen() bool {
	return p.Note != nil && !IstBestandeneNote(*p.Note)
}
