package docpager

import "testing"

func TestLimits_IsNormalized(t *testing.T) {
	tests := []struct {
		name     string
		limits   Limits
		limit    int
		want     int
		isStrict bool
	}{
		{"zero uses default", Limits{Max: 50}, 0, DefaultLimit, false},
		{"negative uses default", Limits{Max: 50}, -10, DefaultLimit, false},
		{"within max unchanged", Limits{Max: 50}, 7, 7, true},
		{"equal max unchanged", Limits{Max: 50}, 50, 50, true},
		{"above max clamped", Limits{Max: 50}, 51, 50, false},
		{"custom default", Limits{Default: 25, Max: 50}, 0, 25, false},
		{"default above max clamped", Limits{Default: 80, Max: 50}, 0, 50, false},
		{"zero max uses MaxLimit", Limits{}, MaxLimit + 1, MaxLimit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strict := tt.limits.IsNormalized(tt.limit)
			if got != tt.want || strict != tt.isStrict {
				t.Errorf("%s: got=(%d,%v) want=(%d,%v)", tt.name, got, strict, tt.want, tt.isStrict)
			}
		})
	}
}

func TestLimits_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero -> default", 0, DefaultLimit},
		{"negative -> default", -1, DefaultLimit},
		{"clamp to MaxLimit", MaxLimit + 1, MaxLimit},
		{"keep when ok", 17, 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Limits{}).Normalize(tt.limit); got != tt.want {
				t.Errorf("%s: got %d want %d", tt.name, got, tt.want)
			}
		})
	}
}
