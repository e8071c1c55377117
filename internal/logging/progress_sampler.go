package logging

// ProgressSampler thins engine progress so each pass logs roughly once per
// percentage bucket. The first report of a new pass is always logged.
// It is not safe for concurrent use.
type ProgressSampler struct {
	step   float64
	pass   string
	bucket int
	seen   bool
}

// NewProgressSampler returns a sampler logging every step percent. A
// non-positive step defaults to 10.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 10
	}
	return &ProgressSampler{step: step}
}

// ShouldLog reports whether a report for pass at percent is worth a log line.
// A negative percent means the duration is unknown: only the first report of
// each pass is logged then.
func (s *ProgressSampler) ShouldLog(pass string, percent float64) bool {
	if !s.seen || pass != s.pass {
		s.seen = true
		s.pass = pass
		s.bucket = s.bucketOf(percent)
		return true
	}
	if percent < 0 {
		return false
	}
	bucket := s.bucketOf(percent)
	if bucket <= s.bucket {
		return false
	}
	s.bucket = bucket
	return true
}

func (s *ProgressSampler) bucketOf(percent float64) int {
	if percent < 0 {
		return -1
	}
	return int(min(percent, 100) / s.step)
}
