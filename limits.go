package docpager

const (
	MaxLimit     = 100
	DefaultLimit = 10
)

// Limits bounds the page sizes requested by clients.
type Limits struct {
	Default int `mapstructure:"default_limit"`
	Max     int `mapstructure:"max_limit"`
}

// DefaultLimits returns Limits{DefaultLimit, MaxLimit}.
func DefaultLimits() Limits {
	return Limits{Default: DefaultLimit, Max: MaxLimit}
}

// IsNormalized normalizes limit and reports whether it was left unchanged.
// Non-positive limits become the default one, limits above the maximum are
// clamped. Zero fields of l fall back to DefaultLimit and MaxLimit.
func (l Limits) IsNormalized(limit int) (int, bool) {
	def := l.Default
	if def <= 0 {
		def = DefaultLimit
	}

	maxLimit := l.Max
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}

	if limit <= 0 {
		return min(def, maxLimit), false
	} else if limit > maxLimit {
		return maxLimit, false
	}

	return limit, true
}

// Normalize is IsNormalized without the flag.
func (l Limits) Normalize(limit int) int {
	ret, _ := l.IsNormalized(limit)
	return ret
}
