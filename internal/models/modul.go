package models

import "time"

// Modul is a curriculum unit worth a fixed ECTS credit value.
type Modul struct {
	ID            string    `db:"id" json:"id"`
	Code          string    `db:"code" json:"code"`
	Name          string    `db:"name" json:"name"`
	ECTSPunkte    int       `db:"ects_punkte" json:"ects_punkte"`
	StudiengangID string    `db:"studiengang_id" json:"studiengang_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Kurs is a constituent course of a module. Courses are descriptive only and
// are not graded separately.
type Kurs struct {
	ID      string `db:"id" json:"id"`
	Nummer  string `db:"nummer" json:"nummer"`
	Name    string `db:"name" json:"name"`
	ModulID string `db:"modul_id" json:"modul_id"`
}

// ModulFilter provides filters for listing modules.
type ModulFilter struct {
	StudiengangID string
	Search        string
	Page          int
	PageSize      int
}
