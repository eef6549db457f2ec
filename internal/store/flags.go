package store

import (
	"slices"

	"github.com/yourorg/adminstate/internal/domain"
)

// SetFlag upserts the flag for req.Key, replacing any prior record wholesale.
func (s *Store) SetFlag(req domain.SetFeatureFlagRequest) domain.FeatureFlag {
	flag := domain.FeatureFlag{
		Key:         req.Key,
		Enabled:     req.Enabled,
		Description: req.Description,
		Percentage:  req.Percentage,
		AllowList:   slices.Clone(req.AllowList),
		UpdatedAt:   s.clock.Now(),
	}
	s.flags[req.Key] = flag
	return flag
}

// Flag looks up a flag by key.
func (s *Store) Flag(key string) (domain.FeatureFlag, bool) {
	f, ok := s.flags[key]
	return f, ok
}

// Flags lists all flags sorted by key.
func (s *Store) Flags() []domain.FeatureFlag {
	keys := make([]string, 0, len(s.flags))
	for k := range s.flags {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]domain.FeatureFlag, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.flags[k])
	}
	return out
}

// IsFeatureEnabled evaluates a flag for id. Unknown or disabled flags are
// off. A non-empty allow-list decides by membership alone; otherwise a set
// percentage buckets the identity deterministically; otherwise enabled means
// on for everyone.
func (s *Store) IsFeatureEnabled(key string, id domain.Identity) bool {
	flag, ok := s.flags[key]
	if !ok || !flag.Enabled {
		return false
	}
	if len(flag.AllowList) > 0 {
		return slices.Contains(flag.AllowList, id)
	}
	if flag.Percentage != nil {
		return rolloutBucket(id) < uint32(*flag.Percentage)
	}
	return true
}

// rolloutBucket maps an identity to a stable bucket in [0, 100): the byte
// sum of the raw identity reduced mod 256, then mod 100. The distribution is
// intentionally left as-is; changing it would silently reassign identities
// between rollout buckets.
func rolloutBucket(id domain.Identity) uint32 {
	var sum uint32
	for _, b := range []byte(id) {
		sum += uint32(b)
	}
	return (sum % 256) % 100
}
