package models

import "time"

// Student is the single account tracked by the application. The password is
// only ever stored as a hash; the hash never leaves the API surface.
type Student struct {
	ID                    string     `db:"id" json:"id"`
	Vorname               string     `db:"vorname" json:"vorname"`
	Nachname              string     `db:"nachname" json:"nachname"`
	Matrikelnummer        string     `db:"matrikelnummer" json:"matrikelnummer"`
	Email                 string     `db:"email" json:"email"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	AnzahlSemester        int        `db:"anzahl_semester" json:"anzahl_semester"`
	AnzahlModule          int        `db:"anzahl_module" json:"anzahl_module"`
	StartDatum            time.Time  `db:"start_datum" json:"start_datum"`
	ZielDatum             time.Time  `db:"ziel_datum" json:"ziel_datum"`
	ZielNote              *float64   `db:"ziel_note" json:"ziel_note,omitempty"`
	Exmatrikulationsdatum *time.Time `db:"exmatrikulationsdatum" json:"exmatrikulationsdatum,omitempty"`
	StudiengangID         *string    `db:"studiengang_id" json:"studiengang_id,omitempty"`
	HochschuleID          *string    `db:"hochschule_id" json:"hochschule_id,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentDetail adds resolved program and institution names.
type StudentDetail struct {
	Student
	StudiengangName *string `db:"studiengang_name" json:"studiengang_name,omitempty"`
	HochschuleName  *string `db:"hochschule_name" json:"hochschule_name,omitempty"`
}
