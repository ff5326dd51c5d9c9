package analysis

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/gogpu/naga"
)

// Factory returns a fresh analyzer. Pipelines built by name call it once
// per pipeline, so analyzers may keep per-capture state.
type Factory func() Analyzer

var (
	registryMu sync.RWMutex
	factories  = map[string]Factory{}
)

func init() {
	Register(CommandsSummaryName, func() Analyzer { return CommandsSummary{} })
	Register(ShadersName, func() Analyzer { return NewShaders(naga.DefaultOptions()) })
}

// Register makes an analyzer available to NewPipelineByName under name.
//
//	analysis.Register("overdraw", func() analysis.Analyzer { return overdraw{} })
//
// A nil factory or a name registered twice is a programming error and panics.
func Register(name string, factory Factory) {
	if factory == nil {
		panic("analysis: nil factory for " + name)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := factories[name]; dup {
		panic("analysis: analyzer " + name + " registered twice")
	}
	factories[name] = factory
}

// Unregister removes name. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// New returns a new instance of the analyzer registered under name.
func New(name string) (Analyzer, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("analysis: unknown analyzer %q (registered: %v)", name, Names())
	}
	return factory(), nil
}

// Names returns the registered analyzer names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(factories))
}

// IsRegistered reports whether an analyzer is registered under name.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}
