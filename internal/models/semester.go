package models

import "time"

// SemesterStatus classifies a semester relative to today.
type SemesterStatus string

const (
	SemesterStatusZurueckliegend SemesterStatus = "ZURUECKLIEGEND"
	SemesterStatusAktuell        SemesterStatus = "AKTUELL"
	SemesterStatusZukuenftig     SemesterStatus = "ZUKUENFTIG"
)

// Semester is a numbered study period belonging to the student. It carries no
// business rules beyond date containment.
type Semester struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Nummer    int       `db:"nummer" json:"nummer"`
	Beginn    time.Time `db:"beginn" json:"beginn"`
	Ende      time.Time `db:"ende" json:"ende"`
}

// StatusAm classifies the semester against the given reference date.
func (s *Semester) StatusAm(now time.Time) SemesterStatus {
	switch {
	case now.Before(s.Beginn):
		return SemesterStatusZukuenftig
	case now.After(s.Ende):
		return SemesterStatusZurueckliegend
	default:
		return SemesterStatusAktuell
	}
}
