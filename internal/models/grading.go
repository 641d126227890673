package models

import (
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
)

// NotenBestehensgrenze is the passing threshold on the German grading scale
// (1.0 best, 5.0 fail). A grade passes when it is less than or equal to 4.0.
const NotenBestehensgrenze = 4.0

// IstBestandeneNote reports whether the grade value passes.
func IstBestandeneNote(note float64) bool {
	return note <= NotenBestehensgrenze
}

// GewichteterDurchschnitt computes sum(note_i * gewicht_i) / sum(gewicht_i).
// Weights are taken as given and are not normalised. A non-positive total
// weight is a configuration error.
func GewichteterDurchschnitt(noten, gewichte []float64) (float64, error) {
	if len(noten) != len(gewichte) {
		return 0, appErrors.Clone(appErrors.ErrInvalidWeights, "grades and weights must align")
	}
	total := 0.0
	sum := 0.0
	for i, note := range noten {
		total += gewichte[i]
		sum += note * gewichte[i]
	}
	if total <= 0 {
		return 0, appErrors.ErrInvalidWeights
	}
	return sum / total, nil
}
