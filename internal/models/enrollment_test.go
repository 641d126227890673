package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
)

func attempt(slot, versuch int, gewicht float64, note *float64, day int) Pruefungsleistung {
	var at *time.Time
	if note != nil {
		ts := time.Date(2024, 6, day, 10, 0, 0, 0, time.UTC)
		at = &ts
	}
	return Pruefungsleistung{
		Teilpruefung: slot,
		Versuch:      versuch,
		Gewicht:      gewicht,
		Note:         note,
		AbgelegtAm:   at,
	}
}

func note(v float64) *float64 { return &v }

func TestDeriveEnrollmentStatusSingleSlotRetry(t *testing.T) {
	// Attempt 1 fails, status stays open; attempt 2 passes and completes.
	attempts := []Pruefungsleistung{attempt(0, 1, 1, note(5.0), 1)}
	status, completed := DeriveEnrollmentStatus(attempts, 1)
	assert.Equal(t, EnrollmentStatusInBearbeitung, status)
	assert.Nil(t, completed)

	attempts = append(attempts, attempt(0, 2, 1, note(3.4), 8))
	status, completed = DeriveEnrollmentStatus(attempts, 1)
	assert.Equal(t, EnrollmentStatusAbgeschlossen, status)
	require.NotNil(t, completed)
	assert.Equal(t, 8, completed.Day())

	enrNote, err := BerechneEnrollmentNote(attempts, 1)
	require.NoError(t, err)
	require.NotNil(t, enrNote)
	assert.InDelta(t, 3.4, *enrNote, 1e-9)
}

func TestDeriveEnrollmentStatusThreeFailsIsTerminal(t *testing.T) {
	// 4.1 > 4.0 counts as the third fail.
	attempts := []Pruefungsleistung{
		attempt(0, 1, 1, note(5.0), 1),
		attempt(0, 2, 1, note(4.3), 2),
		attempt(0, 3, 1, note(4.1), 3),
	}
	status, completed := DeriveEnrollmentStatus(attempts, 1)
	assert.Equal(t, EnrollmentStatusNichtBestanden, status)
	assert.Nil(t, completed)

	err := ValidiereNeuenVersuch(attempts, 1, 0, 4)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAttemptLimit.Code, appErrors.FromError(err).Code)
}

func TestDeriveEnrollmentStatusMultiSlot(t *testing.T) {
	attempts := []Pruefungsleistung{
		attempt(0, 1, 60, note(2.0), 3),
		attempt(1, 1, 40, note(5.0), 4),
	}
	status, _ := DeriveEnrollmentStatus(attempts, 2)
	assert.Equal(t, EnrollmentStatusInBearbeitung, status)

	enrNote, err := BerechneEnrollmentNote(attempts, 2)
	require.NoError(t, err)
	assert.Nil(t, enrNote, "note is nil while slots are unresolved")

	attempts = append(attempts, attempt(1, 2, 40, note(3.0), 9))
	status, completed := DeriveEnrollmentStatus(attempts, 2)
	assert.Equal(t, EnrollmentStatusAbgeschlossen, status)
	require.NotNil(t, completed)
	assert.Equal(t, 9, completed.Day())

	enrNote, err = BerechneEnrollmentNote(attempts, 2)
	require.NoError(t, err)
	require.NotNil(t, enrNote)
	// (2.0*60 + 3.0*40) / 100 = 2.4
	assert.InDelta(t, 2.4, *enrNote, 1e-9)

	// Stable across repeated calls.
	again, err := BerechneEnrollmentNote(attempts, 2)
	require.NoError(t, err)
	assert.Equal(t, *enrNote, *again)
}

func TestFirstPassingAttemptDeterminesSlotGrade(t *testing.T) {
	attempts := []Pruefungsleistung{
		attempt(0, 1, 1, note(4.7), 1),
		attempt(0, 2, 1, note(3.7), 2),
	}
	enrNote, err := BerechneEnrollmentNote(attempts, 1)
	require.NoError(t, err)
	require.NotNil(t, enrNote)
	assert.InDelta(t, 3.7, *enrNote, 1e-9)
}

func TestBerechneEnrollmentNoteInvalidWeights(t *testing.T) {
	attempts := []Pruefungsleistung{attempt(0, 1, 0, note(2.0), 1)}
	_, err := BerechneEnrollmentNote(attempts, 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErrors.FromError(err).Code)
}

func TestValidiereNeuenVersuchSequencing(t *testing.T) {
	// Attempt 1 is always allowed.
	require.NoError(t, ValidiereNeuenVersuch(nil, 1, 0, 1))

	// Attempt 2 before attempt 1 exists is out of order.
	err := ValidiereNeuenVersuch(nil, 1, 0, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSequence.Code, appErrors.FromError(err).Code)

	// Attempt 2 while attempt 1 is ungraded is out of order.
	ungraded := []Pruefungsleistung{attempt(0, 1, 1, nil, 0)}
	err = ValidiereNeuenVersuch(ungraded, 1, 0, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSequence.Code, appErrors.FromError(err).Code)

	// Attempt 2 after a passing attempt 1 is rejected.
	passed := []Pruefungsleistung{attempt(0, 1, 1, note(2.3), 1)}
	err = ValidiereNeuenVersuch(passed, 1, 0, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSequence.Code, appErrors.FromError(err).Code)

	// Attempt 2 after a failing attempt 1 is fine.
	failed := []Pruefungsleistung{attempt(0, 1, 1, note(5.0), 1)}
	require.NoError(t, ValidiereNeuenVersuch(failed, 1, 0, 2))

	// Attempt 4 never exists.
	err = ValidiereNeuenVersuch(failed, 1, 0, 4)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAttemptLimit.Code, appErrors.FromError(err).Code)

	// Slot index outside the configured range.
	err = ValidiereNeuenVersuch(nil, 1, 1, 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNaechsterOffenerVersuch(t *testing.T) {
	// Fresh enrollment starts at slot 0, versuch 1.
	slot, versuch, err := NaechsterOffenerVersuch(nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, slot)
	assert.Equal(t, 1, versuch)

	// Slot 0 passed, slot 1 failed once: next is slot 1, versuch 2.
	attempts := []Pruefungsleistung{
		attempt(0, 1, 1, note(1.7), 1),
		attempt(1, 1, 1, note(4.3), 2),
	}
	slot, versuch, err = NaechsterOffenerVersuch(attempts, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
	assert.Equal(t, 2, versuch)

	// All slots resolved: full.
	attempts = append(attempts, attempt(1, 2, 1, note(2.0), 3))
	_, _, err = NaechsterOffenerVersuch(attempts, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEnrollmentFull.Code, appErrors.FromError(err).Code)

	// Pending ungraded attempt blocks the convenience add.
	pending := []Pruefungsleistung{attempt(0, 1, 1, nil, 0)}
	_, _, err = NaechsterOffenerVersuch(pending, 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSequence.Code, appErrors.FromError(err).Code)
}

func TestGewichteterDurchschnitt(t *testing.T) {
	avg, err := GewichteterDurchschnitt([]float64{1.0, 3.0}, []float64{1, 3})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, avg, 1e-9)

	_, err = GewichteterDurchschnitt([]float64{2.0}, []float64{0})
	require.Error(t, err)

	_, err = GewichteterDurchschnitt([]float64{2.0}, []float64{-1})
	require.Error(t, err)
}

func TestSemesterStatusAm(t *testing.T) {
	s := Semester{
		Beginn: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Ende:   time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, SemesterStatusZukuenftig, s.StatusAm(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SemesterStatusAktuell, s.StatusAm(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SemesterStatusAktuell, s.StatusAm(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SemesterStatusZurueckliegend, s.StatusAm(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)))
}
