package metrics

import (
	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/models"
)

// Default returns the metrics recorded for every crankshaft run.
func Default(shaft *models.Crankshaft) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(shaft),
		NewControlEffort(models.ElectromagneticMoment),
		NewPeakRPM(),
	}
}
