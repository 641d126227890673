package dto

import "time"

// NoDataMark is rendered when no completed enrollment contributes a grade yet.
const NoDataMark = "--"

// DashboardResponse is the read-only aggregate view for the dashboard.
type DashboardResponse struct {
	StudentID             string                  `json:"student_id"`
	ErarbeiteteECTS       int                     `json:"erarbeitete_ects"`
	ECTSGesamt            int                     `json:"ects_gesamt"`
	Notendurchschnitt     *float64                `json:"notendurchschnitt,omitempty"`
	NotendurchschnittText string                  `json:"notendurchschnitt_text"`
	ZielNote              *float64                `json:"ziel_note,omitempty"`
	Zeitfortschritt       float64                 `json:"zeitfortschritt"`
	Counts                EnrollmentCounts        `json:"counts"`
	Semester              []SemesterTimelineEntry `json:"semester"`
}

// EnrollmentCounts summarises enrollments by status for the dashboard.
type EnrollmentCounts struct {
	InBearbeitung  int `json:"in_bearbeitung"`
	Abgeschlossen  int `json:"abgeschlossen"`
	NichtBestanden int `json:"nicht_bestanden"`
	Ausstehend     int `json:"ausstehend"`
}

// SemesterTimelineEntry renders one semester with its derived status.
type SemesterTimelineEntry struct {
	Nummer int       `json:"nummer"`
	Beginn time.Time `json:"beginn"`
	Ende   time.Time `json:"ende"`
	Status string    `json:"status"`
}

// SemesterView is the list representation of a semester including its
// status relative to today.
type SemesterView struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Nummer    int       `json:"nummer"`
	Beginn    time.Time `json:"beginn"`
	Ende      time.Time `json:"ende"`
	Status    string    `json:"status"`
}
