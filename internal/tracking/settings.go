package tracking

// Settings tunes the acceptance filter, splits and estimates.
type Settings struct {
	MinMovementKm     float64
	MaxAccuracyM      float64
	MinStopDistanceKm float64
	SplitUnitKm       float64
	DefaultWeightKg   float64
	Source            string
	SourceOptions     SourceOptions
}

func DefaultSettings() Settings {
	return Settings{
		MinMovementKm:     0.001,
		MaxAccuracyM:      20,
		MinStopDistanceKm: 0.1,
		SplitUnitKm:       1,
		DefaultWeightKg:   70,
		Source:            "live_tracking",
		SourceOptions:     DefaultSourceOptions(),
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.MinMovementKm <= 0 {
		s.MinMovementKm = d.MinMovementKm
	}
	if s.MaxAccuracyM <= 0 {
		s.MaxAccuracyM = d.MaxAccuracyM
	}
	if s.MinStopDistanceKm <= 0 {
		s.MinStopDistanceKm = d.MinStopDistanceKm
	}
	if s.SplitUnitKm <= 0 {
		s.SplitUnitKm = d.SplitUnitKm
	}
	if s.DefaultWeightKg <= 0 {
		s.DefaultWeightKg = d.DefaultWeightKg
	}
	if s.Source == "" {
		s.Source = d.Source
	}
	if s.SourceOptions == (SourceOptions{}) {
		s.SourceOptions = d.SourceOptions
	}
	return s
}
