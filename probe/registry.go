package probe

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gpuspy"
)

// Source resolves an Environment.
type Source func() (*Environment, error)

// ErrNoSource is returned by Resolve when no source succeeds.
var ErrNoSource = errors.New("probe: no environment source available")

// Registry selects environment sources by priority.
// Registry is safe for concurrent use.
type Registry struct {
	sources  *gpucontext.Registry[Source]
	priority []string
}

// NewRegistry creates a registry that prefers sources in the given order.
// Sources not in the list are tried last, in name order.
func NewRegistry(priority ...string) *Registry {
	return &Registry{
		sources:  gpucontext.NewRegistry[Source](gpucontext.WithPriority(priority...)),
		priority: slices.Clone(priority),
	}
}

// Default returns a registry with a "wgpu" source backed by src and the
// "headless" fallback.
func Default(src Source) *Registry {
	r := NewRegistry("wgpu", "headless")
	if src != nil {
		r.Register("wgpu", src)
	}
	r.Register("headless", func() (*Environment, error) { return Headless(), nil })
	return r
}

// Register adds or replaces the source for name.
func (r *Registry) Register(name string, src Source) {
	r.sources.Register(name, func() Source { return src })
}

// Names returns the registered source names in resolution order.
func (r *Registry) Names() []string {
	available := r.sources.Available()
	names := make([]string, 0, len(available))
	for _, name := range r.priority {
		if slices.Contains(available, name) {
			names = append(names, name)
		}
	}
	slices.Sort(available)
	for _, name := range available {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// Best returns the name of the highest-priority registered source.
func (r *Registry) Best() string {
	return r.sources.BestName()
}

// Resolve tries the sources in order and returns the first environment that
// resolves, together with its source name. Failing sources are logged and
// skipped.
func (r *Registry) Resolve() (gpuspy.Environment, string, error) {
	var errs []error
	for _, name := range r.Names() {
		src := r.sources.Get(name)
		if src == nil {
			continue
		}
		env, err := src()
		if err != nil {
			gpuspy.Logger().Warn("probe: source failed", "source", name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		return env, name, nil
	}
	return nil, "", errors.Join(append([]error{ErrNoSource}, errs...)...)
}
