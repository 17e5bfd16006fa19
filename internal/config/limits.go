package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default per-tier request quotas (requests per minute).
const (
	DefaultFreeLimit    = 5
	DefaultPremiumLimit = 50
)

// TierLimits holds per-minute request quotas by account tier.
type TierLimits struct {
	free    int
	premium int
}

// DefaultTierLimits returns the built-in quotas.
func DefaultTierLimits() TierLimits {
	return TierLimits{
		free:    DefaultFreeLimit,
		premium: DefaultPremiumLimit,
	}
}

// NewTierLimits creates TierLimits with explicit quotas.
func NewTierLimits(free, premium int) TierLimits {
	return TierLimits{free: free, premium: premium}
}

// Free returns the FREE tier quota per minute.
func (t TierLimits) Free() int { return t.free }

// Premium returns the PREMIUM tier quota per minute.
func (t TierLimits) Premium() int { return t.premium }

// tierLimitsFile is the YAML shape of a rate-limits override file.
type tierLimitsFile struct {
	Free    int `yaml:"free"`
	Premium int `yaml:"premium"`
}

// LoadTierLimits reads per-tier quotas from a YAML file.
// Missing or zero fields fall back to the built-in defaults.
func LoadTierLimits(path string) (TierLimits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TierLimits{}, fmt.Errorf("read rate limits file: %w", err)
	}

	var f tierLimitsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return TierLimits{}, fmt.Errorf("parse rate limits file: %w", err)
	}

	limits := DefaultTierLimits()
	if f.Free > 0 {
		limits.free = f.Free
	}
	if f.Premium > 0 {
		limits.premium = f.Premium
	}
	return limits, nil
}
