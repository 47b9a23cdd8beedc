package resilience

import (
	"math"
	"math/rand"
	"time"
)

// BackoffConfig configures the delay between retry attempts.
type BackoffConfig struct {
	// InitialBackoff is the delay after the first failure.
	InitialBackoff time.Duration `yaml:"initial" mapstructure:"initial"`
	// MaxBackoff caps the delay.
	MaxBackoff time.Duration `yaml:"max" mapstructure:"max"`
	// BackoffFactor is the multiplier for exponential backoff.
	BackoffFactor float64 `yaml:"factor" mapstructure:"factor" validate:"gte=0"`
	// Jitter adds randomness to the delay (0.0 to 1.0).
	Jitter float64 `yaml:"jitter" mapstructure:"jitter" validate:"gte=0,lte=1"`
}

// DefaultBackoffConfig returns sensible defaults.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
	}
}

// ApplyDefaults fills in zero-value fields.
func (c *BackoffConfig) ApplyDefaults() {
	d := DefaultBackoffConfig()
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = d.BackoffFactor
	}
}

// Delay returns the wait before the retry that follows the attempt-th
// failure: initial * factor^(attempt-1), jittered and capped.
func (c BackoffConfig) Delay(attempt int) time.Duration {
	c.ApplyDefaults()
	if attempt < 1 {
		attempt = 1
	}
	d := float64(c.InitialBackoff) * math.Pow(c.BackoffFactor, float64(attempt-1))

	if c.Jitter > 0 {
		jitterRange := d * c.Jitter
		d += (rand.Float64()*2 - 1) * jitterRange
	}
	if d > float64(c.MaxBackoff) {
		d = float64(c.MaxBackoff)
	}
	if d < 0 {
		d = float64(c.InitialBackoff)
	}
	return time.Duration(d)
}
