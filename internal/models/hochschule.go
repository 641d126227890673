package models

import "time"

// Hochschule is a university or other institution, looked up or created by name.
type Hochschule struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Studiengang is a program of study offered by exactly one Hochschule.
type Studiengang struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	HochschuleID string    `db:"hochschule_id" json:"hochschule_id"`
	ECTSGesamt   int       `db:"ects_gesamt" json:"ects_gesamt"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
