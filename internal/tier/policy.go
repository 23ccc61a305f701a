// Package tier classifies request text by size and operation into cache
// policy buckets: TTL, compression, and hot-tier eligibility.
package tier

import (
	"time"

	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/types"
)

// Class is a size bucket derived from input byte length.
type Class int

const (
	ClassSmall Class = iota + 1
	ClassMedium
	ClassLarge
	ClassXLarge
)

func (c Class) String() string {
	switch c {
	case ClassSmall:
		return "small"
	case ClassMedium:
		return "medium"
	case ClassLarge:
		return "large"
	case ClassXLarge:
		return "xlarge"
	default:
		return "unknown"
	}
}

// Classification is the policy tuple for one (operation, size) pair. It is
// derived, never stored.
type Classification struct {
	Class       Class
	TTL         time.Duration
	Compress    bool
	HotEligible bool
}

// Policy resolves classifications. It is pure and deterministic: the same
// (operation, size) always yields the same classification for a given
// configuration.
type Policy struct {
	smallMax  int
	mediumMax int
	largeMax  int

	classes map[Class]config.TierClassConfig
	opTTL   map[types.Operation]time.Duration
}

// NewPolicy builds a Policy from validated configuration.
func NewPolicy(tiers config.TiersConfig, ops config.OperationsConfig) (*Policy, error) {
	p := &Policy{
		smallMax:  tiers.SmallMaxBytes,
		mediumMax: tiers.MediumMaxBytes,
		largeMax:  tiers.LargeMaxBytes,
		classes: map[Class]config.TierClassConfig{
			ClassSmall:  tiers.Small,
			ClassMedium: tiers.Medium,
			ClassLarge:  tiers.Large,
			ClassXLarge: tiers.XLarge,
		},
		opTTL: make(map[types.Operation]time.Duration, len(ops.TTLOverrides)),
	}

	for name, ttl := range ops.TTLOverrides {
		op, err := types.ParseOperation(name)
		if err != nil {
			return nil, err
		}
		p.opTTL[op] = ttl
	}

	return p, nil
}

// Classify maps an operation and input size to its policy bucket. The
// operation TTL override, when present, replaces the size-derived TTL but
// leaves compression and hot-tier eligibility untouched.
func (p *Policy) Classify(op types.Operation, sizeBytes int) Classification {
	class := p.classOf(sizeBytes)
	cfg := p.classes[class]

	c := Classification{
		Class:       class,
		TTL:         cfg.TTL,
		Compress:    cfg.Compress,
		HotEligible: cfg.HotEligible,
	}

	if ttl, ok := p.opTTL[op]; ok {
		c.TTL = ttl
	}

	return c
}

func (p *Policy) classOf(sizeBytes int) Class {
	switch {
	case sizeBytes <= p.smallMax:
		return ClassSmall
	case sizeBytes <= p.mediumMax:
		return ClassMedium
	case sizeBytes <= p.largeMax:
		return ClassLarge
	default:
		return ClassXLarge
	}
}
