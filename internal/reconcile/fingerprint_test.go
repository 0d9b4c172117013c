package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"headsign.transitboard.org/internal/models"
)

func fpPrediction(stop, departure string) models.Prediction {
	return models.Prediction{
		RouteID:       "Red",
		StopID:        stop,
		DepartureTime: strPtr(departure),
		Direction:     models.Inbound,
	}
}

func TestFingerprintIgnoresOrder(t *testing.T) {
	a := fpPrediction("70061", "2025-01-15T10:30:00Z")
	b := fpPrediction("70063", "2025-01-15T10:35:00Z")
	c := fpPrediction("70065", "2025-01-15T10:40:00Z")

	first := Fingerprint([]models.Prediction{a, b, c})
	second := Fingerprint([]models.Prediction{c, a, b})

	assert.Equal(t, first, second)
}

func TestFingerprintSensitiveToEveryField(t *testing.T) {
	base := models.Prediction{
		RouteID:       "Red",
		StopID:        "70061",
		DepartureTime: strPtr("2025-01-15T10:30:00Z"),
		ArrivalTime:   strPtr("2025-01-15T10:29:00Z"),
		Direction:     models.Inbound,
	}
	baseline := Fingerprint([]models.Prediction{base})

	mutations := map[string]func(p *models.Prediction){
		"route":     func(p *models.Prediction) { p.RouteID = "Orange" },
		"stop":      func(p *models.Prediction) { p.StopID = "70063" },
		"departure": func(p *models.Prediction) { p.DepartureTime = strPtr("2025-01-15T10:31:00Z") },
		"arrival":   func(p *models.Prediction) { p.ArrivalTime = strPtr("2025-01-15T10:30:00Z") },
		"direction": func(p *models.Prediction) { p.Direction = models.Outbound },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			p := base
			mutate(&p)
			assert.NotEqual(t, baseline, Fingerprint([]models.Prediction{p}))
		})
	}
}

func TestFingerprintNilTimesDifferFromEmpty(t *testing.T) {
	withNil := models.Prediction{RouteID: "Red", StopID: "70061", Direction: models.Inbound}
	withTime := withNil
	withTime.DepartureTime = strPtr("2025-01-15T10:30:00Z")

	assert.NotEqual(t,
		Fingerprint([]models.Prediction{withNil}),
		Fingerprint([]models.Prediction{withTime}))
}

func TestFingerprintCountsDuplicates(t *testing.T) {
	p := fpPrediction("70061", "2025-01-15T10:30:00Z")

	assert.NotEqual(t,
		Fingerprint([]models.Prediction{p}),
		Fingerprint([]models.Prediction{p, p}))
}

func TestFingerprintEmptySnapshotIsStable(t *testing.T) {
	assert.Equal(t, Fingerprint(nil), Fingerprint([]models.Prediction{}))
}
