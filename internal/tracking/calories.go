package tracking

import "time"

// MET values per activity type; anything else counts as a steady run.
var metByActivity = map[string]float64{
	"interval": 12,
	"tempo":    10,
}

const defaultMET = 8.0

func MET(activityType string) float64 {
	if met, ok := metByActivity[activityType]; ok {
		return met
	}
	return defaultMET
}

// EstimateCalories is a rough MET * weight * hours estimate, not a measurement.
func EstimateCalories(activityType string, weightKg float64, elapsed time.Duration) float64 {
	if elapsed <= 0 || weightKg <= 0 {
		return 0
	}
	return MET(activityType) * weightKg * elapsed.Hours()
}
