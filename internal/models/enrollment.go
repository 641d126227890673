package models

import (
	"fmt"
	"sort"
	"time"

	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
)

// EnrollmentStatus represents the lifecycle of a module enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. ABGESCHLOSSEN and NICHT_BESTANDEN are terminal.
const (
	EnrollmentStatusInBearbeitung  EnrollmentStatus = "IN_BEARBEITUNG"
	EnrollmentStatusAbgeschlossen  EnrollmentStatus = "ABGESCHLOSSEN"
	EnrollmentStatusNichtBestanden EnrollmentStatus = "NICHT_BESTANDEN"
)

// Terminal reports whether the status admits no further attempts.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentStatusAbgeschlossen || s == EnrollmentStatusNichtBestanden
}

// Enrollment captures a student's registration in one module. Its status is a
// pure function of the owned attempts and is recomputed on every attempt
// mutation rather than maintained incrementally.
type Enrollment struct {
	ID                        string           `db:"id" json:"id"`
	StudentID                 string           `db:"student_id" json:"student_id"`
	ModulID                   string           `db:"modul_id" json:"modul_id"`
	EingeschriebenAm          time.Time        `db:"eingeschrieben_am" json:"eingeschrieben_am"`
	AnzahlPruefungsleistungen int              `db:"anzahl_pruefungsleistungen" json:"anzahl_pruefungsleistungen"`
	AbgeschlossenAm           *time.Time       `db:"abgeschlossen_am" json:"abgeschlossen_am,omitempty"`
	Status                    EnrollmentStatus `db:"status" json:"status"`
}

// EnrollmentDetail enriches Enrollment with module info.
type EnrollmentDetail struct {
	Enrollment
	ModulCode   string  `db:"modul_code" json:"modul_code"`
	ModulName   string  `db:"modul_name" json:"modul_name"`
	ECTSPunkte  int     `db:"ects_punkte" json:"ects_punkte"`
	Studiengang *string `db:"studiengang_name" json:"studiengang_name,omitempty"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	ModulID   string
	Status    EnrollmentStatus
	Page      int
	PageSize  int
}

// SlotErgebnis summarises one examination slot of an enrollment.
type SlotErgebnis struct {
	Teilpruefung int
	Versuche     []Pruefungsleistung
	// Bestanden points at the first passing attempt, nil while the slot is open
	// or exhausted. The first passing attempt determines the slot grade.
	Bestanden *Pruefungsleistung
	// Erschoepft marks a slot with MaxVersuche graded failing attempts.
	Erschoepft bool
}

// Offen reports whether the slot still accepts attempts.
func (s *SlotErgebnis) Offen() bool {
	return s.Bestanden == nil && !s.Erschoepft
}

// GruppiereSlots partitions attempts into the enrollment's examination slots,
// ordered by attempt number within each slot.
func GruppiereSlots(versuche []Pruefungsleistung, anzahl int) []SlotErgebnis {
	slots := make([]SlotErgebnis, anzahl)
	for i := range slots {
		slots[i].Teilpruefung = i
	}
	for _, v := range versuche {
		if v.Teilpruefung < 0 || v.Teilpruefung >= anzahl {
			continue
		}
		slots[v.Teilpruefung].Versuche = append(slots[v.Teilpruefung].Versuche, v)
	}
	for i := range slots {
		slot := &slots[i]
		sort.Slice(slot.Versuche, func(a, b int) bool {
			return slot.Versuche[a].Versuch < slot.Versuche[b].Versuch
		})
		failed := 0
		for j := range slot.Versuche {
			v := &slot.Versuche[j]
			if passed := v.IstBestanden(); passed != nil && *passed {
				if slot.Bestanden == nil {
					slot.Bestanden = v
				}
			} else if v.IstDurchgefallen() {
				failed++
			}
		}
		slot.Erschoepft = slot.Bestanden == nil && failed >= MaxVersuche
	}
	return slots
}

// DeriveEnrollmentStatus recomputes the enrollment status from its attempts.
// The returned time is the completion date: the latest submission date among
// the slots' first passing attempts, nil unless every slot passed.
func DeriveEnrollmentStatus(versuche []Pruefungsleistung, anzahl int) (EnrollmentStatus, *time.Time) {
	slots := GruppiereSlots(versuche, anzahl)

	allPassed := true
	var completed *time.Time
	for i := range slots {
		slot := &slots[i]
		if slot.Erschoepft {
			return EnrollmentStatusNichtBestanden, nil
		}
		if slot.Bestanden == nil {
			allPassed = false
			continue
		}
		if at := slot.Bestanden.AbgelegtAm; at != nil {
			if completed == nil || at.After(*completed) {
				completed = at
			}
		}
	}
	if allPassed && anzahl > 0 {
		return EnrollmentStatusAbgeschlossen, completed
	}
	return EnrollmentStatusInBearbeitung, nil
}

// ValidiereNeuenVersuch checks that (teilpruefung, versuch) is the next legal
// attempt given the existing ones. Attempt 1 is always allowed on an open
// slot; attempt k+1 requires attempt k to be graded failing.
func ValidiereNeuenVersuch(versuche []Pruefungsleistung, anzahl, teilpruefung, versuch int) error {
	if teilpruefung < 0 || teilpruefung >= anzahl {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("teilpruefung %d outside 0..%d", teilpruefung, anzahl-1))
	}
	if versuch < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "versuch starts at 1")
	}
	if versuch > MaxVersuche {
		return appErrors.ErrAttemptLimit
	}

	slot := GruppiereSlots(versuche, anzahl)[teilpruefung]
	if slot.Bestanden != nil {
		return appErrors.Clone(appErrors.ErrSequence, "slot already passed")
	}
	if slot.Erschoepft {
		return appErrors.ErrAttemptLimit
	}
	if versuch != len(slot.Versuche)+1 {
		return appErrors.Clone(appErrors.ErrSequence, fmt.Sprintf("expected versuch %d, got %d", len(slot.Versuche)+1, versuch))
	}
	if versuch > 1 {
		prev := slot.Versuche[versuch-2]
		if !prev.IstBewertet() {
			return appErrors.Clone(appErrors.ErrSequence, "previous attempt is not graded yet")
		}
		if !prev.IstDurchgefallen() {
			return appErrors.Clone(appErrors.ErrSequence, "previous attempt did not fail")
		}
	}
	return nil
}

// NaechsterOffenerVersuch picks the slot and attempt number for the
// convenience add operation: the first unresolved slot, next attempt number.
// All slots resolved yields ENROLLMENT_FULL; an unresolved slot blocked by an
// ungraded attempt yields SEQUENCE_VIOLATION.
func NaechsterOffenerVersuch(versuche []Pruefungsleistung, anzahl int) (int, int, error) {
	slots := GruppiereSlots(versuche, anzahl)
	for i := range slots {
		slot := &slots[i]
		if !slot.Offen() {
			continue
		}
		if n := len(slot.Versuche); n > 0 && !slot.Versuche[n-1].IstBewertet() {
			return 0, 0, appErrors.Clone(appErrors.ErrSequence, "ungraded attempt pending for this slot")
		}
		return slot.Teilpruefung, len(slot.Versuche) + 1, nil
	}
	return 0, 0, appErrors.ErrEnrollmentFull
}

// BerechneEnrollmentNote returns the weighted average over the slots' first
// passing grades. It is nil unless the derived status is ABGESCHLOSSEN.
func BerechneEnrollmentNote(versuche []Pruefungsleistung, anzahl int) (*float64, error) {
	status, _ := DeriveEnrollmentStatus(versuche, anzahl)
	if status != EnrollmentStatusAbgeschlossen {
		return nil, nil
	}
	slots := GruppiereSlots(versuche, anzahl)
	noten := make([]float64, 0, anzahl)
	gewichte := make([]float64, 0, anzahl)
	for i := range slots {
		passed := slots[i].Bestanden
		if passed == nil || passed.Note == nil {
			return nil, nil
		}
		noten = append(noten, *passed.Note)
		gewichte = append(gewichte, passed.Gewicht)
	}
	note, err := GewichteterDurchschnitt(noten, gewichte)
	if err != nil {
		return nil, err
	}
	return &note, nil
}
