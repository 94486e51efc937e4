package tracking

import (
	"testing"
	"time"
)

func TestFilterEvaluate(t *testing.T) {
	f := Filter{MinMovementKm: 0.001, MaxAccuracyM: 20}

	if _, ok := f.Evaluate(nil, LocationSample{Latitude: 1, Longitude: 1, Accuracy: 1}); ok {
		t.Fatalf("expected rejection without a previous point")
	}

	last := &TrackPoint{Latitude: 59.3293, Longitude: 18.0686}
	inc, ok := f.Evaluate(last, LocationSample{Latitude: 59.3303, Longitude: 18.0686, Accuracy: 5})
	if !ok || inc < 0.11 || inc > 0.112 {
		t.Fatalf("expected accepted ~0.111 km increment, got %v %v", inc, ok)
	}
	if _, ok := f.Evaluate(last, LocationSample{Latitude: 59.3303, Longitude: 18.0686, Accuracy: 35}); ok {
		t.Fatalf("expected inaccurate sample to be rejected")
	}
	if _, ok := f.Evaluate(last, LocationSample{Latitude: 59.329305, Longitude: 18.0686, Accuracy: 5}); ok {
		t.Fatalf("expected sub-meter move to be rejected")
	}
}

func TestInstantPace(t *testing.T) {
	if pace, ok := InstantPace(60, 0.2); !ok || pace != 300 {
		t.Fatalf("expected 300 s/km, got %v", pace)
	}
	if _, ok := InstantPace(0, 0.2); ok {
		t.Fatalf("expected no pace for zero elapsed")
	}
	if _, ok := InstantPace(10, 0); ok {
		t.Fatalf("expected no pace for zero distance")
	}
}

func TestSplitterCustomUnit(t *testing.T) {
	sp := splitter{unitKm: 0.5}
	if got := sp.advance(0, 0.4, 100); len(got) != 0 {
		t.Fatalf("expected no split below one unit")
	}
	got := sp.advance(0.4, 1.1, 260)
	if len(got) != 2 || got[0].Index != 1 || got[1].Index != 2 {
		t.Fatalf("unexpected splits: %+v", got)
	}
	got = sp.advance(1.1, 1.6, 400)
	if len(got) != 1 || got[0].SegmentDuration != 140 || got[0].CumulativeDuration != 400 {
		t.Fatalf("unexpected split: %+v", got)
	}
}

func TestEstimateCalories(t *testing.T) {
	cases := []struct {
		activity string
		want     float64
	}{
		{"interval", 840},
		{"tempo", 700},
		{"easy", 560},
		{"", 560},
	}
	for _, c := range cases {
		if got := EstimateCalories(c.activity, 70, time.Hour); got != c.want {
			t.Fatalf("%q: expected %v, got %v", c.activity, c.want, got)
		}
	}
	if EstimateCalories("easy", 70, 0) != 0 {
		t.Fatalf("expected zero calories for zero duration")
	}
}

func TestSourceErrorFromCode(t *testing.T) {
	if err, ok := SourceErrorFromCode("permission-denied"); !ok || err != ErrPermissionDenied {
		t.Fatalf("expected permission denied")
	}
	if err, ok := SourceErrorFromCode("3"); !ok || err != ErrSampleTimeout {
		t.Fatalf("expected timeout")
	}
	if _, ok := SourceErrorFromCode("bogus"); ok {
		t.Fatalf("expected unknown code")
	}
}

func TestPushSourceStaleUnsubscribe(t *testing.T) {
	src := NewPushSource()
	first := src.Subscribe(DefaultSourceOptions(), func(LocationSample) {}, func(error) {})
	var got int
	src.Subscribe(DefaultSourceOptions(), func(LocationSample) { got++ }, func(error) {})

	first()
	if !src.Push(LocationSample{Latitude: 1}) || got != 1 {
		t.Fatalf("expected stale unsubscribe to leave the newer subscriber attached")
	}
}

func TestSettingsDefaults(t *testing.T) {
	s := Settings{MaxAccuracyM: 30}.withDefaults()
	if s.MaxAccuracyM != 30 || s.MinMovementKm != 0.001 || s.SplitUnitKm != 1 || s.DefaultWeightKg != 70 {
		t.Fatalf("unexpected settings: %+v", s)
	}
}
