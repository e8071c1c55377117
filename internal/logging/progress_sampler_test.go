package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	type report struct {
		pass    string
		percent float64
		want    bool
	}
	tests := []struct {
		name    string
		step    float64
		reports []report
	}{
		{
			name: "single pass at ten percent",
			step: 10,
			reports: []report{
				{"encode", 0.5, true},
				{"encode", 4, false},
				{"encode", 10.2, true},
				{"encode", 19.9, false},
				{"encode", 35, true},
				{"encode", 100, true},
				{"encode", 100, false},
			},
		},
		{
			name: "two passes restart buckets",
			step: 25,
			reports: []report{
				{"pass 1", 0, true},
				{"pass 1", 60, true},
				{"pass 1", 100, true},
				{"pass 2", 0, true},
				{"pass 2", 20, false},
				{"pass 2", 30, true},
			},
		},
		{
			name: "unknown duration logs once per pass",
			step: 10,
			reports: []report{
				{"encode", -1, true},
				{"encode", -1, false},
				{"encode", -1, false},
			},
		},
		{
			name: "overshoot clamps to the last bucket",
			step: 50,
			reports: []report{
				{"encode", 99, true},
				{"encode", 140, true},
				{"encode", 180, false},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewProgressSampler(tc.step)
			for i, r := range tc.reports {
				if got := s.ShouldLog(r.pass, r.percent); got != r.want {
					t.Fatalf("report %d (%s %.1f%%) = %v, want %v", i, r.pass, r.percent, got, r.want)
				}
			}
		})
	}
}

func TestProgressSamplerDefaultStep(t *testing.T) {
	s := NewProgressSampler(0)
	if s.step != 10 {
		t.Fatalf("step = %v, want 10", s.step)
	}
}
