package regions

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vietdv277/cirrus/internal/config"
	"github.com/vietdv277/cirrus/pkg/provider"
)

// Store persists the region set of one config profile
type Store struct {
	path     string
	profile  string
	defaults Set
	logger   *zap.Logger
}

// StoreOption allows customizing the Store
type StoreOption func(*Store)

// WithDefaults sets the regions used when nothing has been saved yet
func WithDefaults(defaults Set) StoreOption {
	return func(s *Store) {
		if len(defaults) > 0 {
			s.defaults = defaults
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store backed by the config file at path
func NewStore(path, profile string, opts ...StoreOption) *Store {
	s := &Store{
		path:     path,
		profile:  profile,
		defaults: DefaultRegions,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Profile returns the config profile the store is keyed by
func (s *Store) Profile() string {
	return s.profile
}

// Load returns the saved region set, or the defaults when the store or
// the profile entry does not exist yet.
func (s *Store) Load() (Set, error) {
	cfg, err := config.Load(s.path)
	if err != nil {
		return nil, err
	}

	p := cfg.Profile(s.profile)
	if p == nil || p.Regions == nil {
		s.logger.Debug("no saved regions, using defaults",
			zap.String("profile", s.profile),
			zap.Strings("regions", s.defaults),
		)
		return Normalize(s.defaults), nil
	}

	return Parse(*p.Regions), nil
}

// Save persists the region set for the profile
func (s *Store) Save(set Set) error {
	joined := Normalize(set).String()

	err := config.Update(s.path, func(cfg *config.Config) error {
		cfg.EnsureProfile(s.profile).Regions = &joined
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save regions: %w", err)
	}

	s.logger.Debug("saved regions", zap.String("profile", s.profile), zap.String("regions", joined))
	return nil
}

// Reconfigure lets the user pick regions among candidates with the current
// ones pre-checked. The selection replaces the set, even when empty, and
// is always saved. Cancelling leaves the set untouched and unsaved.
func (s *Store) Reconfigure(p provider.Prompter, candidates []string, current Set) (Set, error) {
	choices := make([]provider.Choice, 0, len(candidates))
	for _, r := range Sort(candidates) {
		choices = append(choices, provider.Choice{
			Title:    r,
			Value:    r,
			Selected: current.Contains(r),
		})
	}

	selected, err := p.MultiSelect("Which regions do you want to display?", choices)
	if err != nil {
		if errors.Is(err, provider.ErrCancelled) {
			return current, err
		}
		return current, fmt.Errorf("failed to select regions: %w", err)
	}

	set := Normalize(selected)
	if err := s.Save(set); err != nil {
		return set, err
	}
	return set, nil
}

// Remove drops region from the set and saves the result
func (s *Store) Remove(current Set, region string) (Set, error) {
	set, removed := current.Remove(region)
	if !removed {
		return current, nil
	}
	if err := s.Save(set); err != nil {
		return set, err
	}
	return set, nil
}
