package gpuspy

import (
	"slices"
	"time"
)

// ContextInformation is the capability handle shared with every collaborator.
//
// It is created once by NewContextSpy and passed by pointer. Besides the host
// and its extensions it exposes two controls: ToggleCapture pauses or resumes
// global observation, and TagObject tags opaque objects through the
// configured ObjectTagger. Any collaborator may use ToggleCapture; the
// analysis pipeline uses it to keep its own host calls out of a capture.
type ContextInformation struct {
	host       Host
	version    int
	extensions map[string]Surface
	extNames   []string

	lc     *lifecycle
	tagger ObjectTagger
	clock  Clock
}

// Host returns the observed context.
func (ci *ContextInformation) Host() Host { return ci.host }

// Version returns the API version of the host.
func (ci *ContextInformation) Version() int { return ci.version }

// ToggleCapture turns global observation on or off.
// While off, intercepted calls return from the dispatch funnel immediately.
func (ci *ContextInformation) ToggleCapture(on bool) {
	ci.lc.enabled = on
}

// Capturing reports whether global observation is on.
func (ci *ContextInformation) Capturing() bool {
	return ci.lc.enabled
}

// TagObject returns the identity tag of obj, assigning one if needed.
func (ci *ContextInformation) TagObject(obj any) Tag {
	return ci.tagger.TagObject(obj)
}

// Extension returns the extension sub-context registered under name.
func (ci *ContextInformation) Extension(name string) (Surface, bool) {
	ext, ok := ci.extensions[name]
	return ext, ok
}

// ExtensionNames returns the sorted extension names.
func (ci *ContextInformation) ExtensionNames() []string {
	return slices.Clone(ci.extNames)
}

// Now returns the current timestamp from the configured clock.
func (ci *ContextInformation) Now() time.Time {
	return ci.clock.Now()
}
