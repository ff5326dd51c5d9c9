package gpuspy

import (
	"log/slog"
	"slices"
)

// Option configures a ContextSpy during creation.
//
// Example:
//
//	spy, err := gpuspy.NewContextSpy(host,
//	    gpuspy.WithRecordAlways(true),
//	    gpuspy.WithRecorder(rec),
//	    gpuspy.WithObjectTagger(tagging.New()),
//	)
type Option func(*options)

// options holds the collaborators and policies of a ContextSpy.
type options struct {
	recordAlways  bool
	operations    []string
	factory       InterceptorFactory
	state         StateCollector
	recorder      Recorder
	tagger        ObjectTagger
	analyser      Analyser
	newAnalyser   func(*ContextInformation) Analyser
	env           Environment
	clock         Clock
	logger        *slog.Logger
	onMaxCommands func(*ContextSpy)
}

// defaultOptions returns options with nop collaborators and the system clock.
func defaultOptions() options {
	return options{
		factory:  NewCommandInterceptor,
		state:    nopState{},
		recorder: nopRecorder{},
		tagger:   nopTagger{},
		analyser: nopAnalyser{},
		clock:    systemClock{},
	}
}

// WithRecordAlways keeps interceptors installed for the lifetime of the spy.
// UnSpy becomes a no-op and sessions open and close without rewrapping.
func WithRecordAlways(on bool) Option {
	return func(o *options) {
		o.recordAlways = on
	}
}

// WithOperations declares the interceptable member names.
// Without it every member a surface enumerates is a candidate.
func WithOperations(names ...string) Option {
	return func(o *options) {
		o.operations = slices.Clone(names)
	}
}

// WithInterceptorFactory replaces the default NewCommandInterceptor.
func WithInterceptorFactory(f InterceptorFactory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithStateCollector sets the state snapshot collaborator.
func WithStateCollector(sc StateCollector) Option {
	return func(o *options) {
		if sc != nil {
			o.state = sc
		}
	}
}

// WithRecorder sets the replay recording collaborator.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithObjectTagger sets the object identity collaborator.
func WithObjectTagger(t ObjectTagger) Option {
	return func(o *options) {
		if t != nil {
			o.tagger = t
		}
	}
}

// WithAnalyser sets the post-capture analysis collaborator.
func WithAnalyser(a Analyser) Option {
	return func(o *options) {
		if a != nil {
			o.analyser = a
		}
	}
}

// WithAnalyserFunc builds the analyser from the spy's ContextInformation,
// for analysers that need the capability handle (for example to pause
// observation while they run). It takes precedence over WithAnalyser.
func WithAnalyserFunc(fn func(*ContextInformation) Analyser) Option {
	return func(o *options) {
		o.newAnalyser = fn
	}
}

// WithEnvironment sets the static metadata source.
func WithEnvironment(env Environment) Option {
	return func(o *options) {
		o.env = env
	}
}

// WithClock sets the timestamp source.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets a logger for this spy instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxCommandsHook sets the callback fired when an open capture reaches
// its MaxCommands. The hook runs inside the dispatch funnel and may call
// StopCapture.
func WithMaxCommandsHook(fn func(*ContextSpy)) Option {
	return func(o *options) {
		o.onMaxCommands = fn
	}
}
