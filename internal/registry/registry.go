package registry

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/avelis/probed/internal/config"
	"github.com/avelis/probed/internal/domain"
)

// Registry is the loaded, validated set of checks. It is built once at
// startup and read-only afterwards; the scheduler iterates it and no
// component mutates it.
type Registry struct {
	checks []domain.Check
	byName map[string]int
}

// Load validates every check definition and builds the registry. All
// validation failures are collected and returned together so a bad config
// is reported in one pass; any error is fatal to startup.
func Load(cfg config.Config) (*Registry, error) {
	var errs error
	if len(cfg.Checks) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("config defines no checks"))
	}

	r := &Registry{
		checks: make([]domain.Check, 0, len(cfg.Checks)),
		byName: make(map[string]int, len(cfg.Checks)),
	}
	for i, def := range cfg.Checks {
		name := def.Name
		if name == "" {
			errs = multierr.Append(errs, fmt.Errorf("check %d: name is required", i))
			continue
		}
		if _, dup := r.byName[name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("check %q: duplicate name", name))
			continue
		}
		kind, err := domain.ParseKind(def.Kind)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("check %q: %w", name, err))
			continue
		}
		if def.Target == "" {
			errs = multierr.Append(errs, fmt.Errorf("check %q: target is required", name))
			continue
		}
		if def.Interval.Duration() <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("check %q: interval must be positive", name))
			continue
		}
		if def.Timeout.Duration() <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("check %q: timeout must be positive", name))
			continue
		}

		r.byName[name] = len(r.checks)
		r.checks = append(r.checks, domain.Check{
			ID:       domain.CheckID(uuid.NewString()),
			Name:     name,
			Kind:     kind,
			Target:   def.Target,
			Interval: def.Interval.Duration(),
			Timeout:  def.Timeout.Duration(),
		})
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid config: %w", errs)
	}
	return r, nil
}

// Checks returns a copy of the check set.
func (r *Registry) Checks() []domain.Check {
	out := make([]domain.Check, len(r.checks))
	copy(out, r.checks)
	return out
}

// Get looks a check up by name.
func (r *Registry) Get(name string) (domain.Check, bool) {
	i, ok := r.byName[name]
	if !ok {
		return domain.Check{}, false
	}
	return r.checks[i], true
}

func (r *Registry) Len() int { return len(r.checks) }
