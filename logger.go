package gpuspy

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled reports false for all levels, so
// the dispatch funnel pays nothing for its debug lines unless a logger is set.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// pkgLogger is shared by every ContextSpy without WithLogger and by the
// sub-packages. A host may be driven from one goroutine while another
// reconfigures logging, hence the atomic.
var pkgLogger atomic.Pointer[slog.Logger]

func init() {
	pkgLogger.Store(newNopLogger())
}

// SetLogger configures the logger for gpuspy and its sub-packages.
// By default gpuspy produces no log output. Pass nil to restore silence.
// A ContextSpy created with WithLogger uses its own logger instead.
//
// Log levels used by gpuspy:
//   - [slog.LevelDebug]: lifecycle transitions (spy, unspy, capture start/stop)
//   - [slog.LevelWarn]: open captures dropped by UnSpy or a new StartCapture
//   - [slog.LevelError]: members that could not be intercepted, collaborator
//     failures while dropping a capture
//
// Example:
//
//	gpuspy.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	pkgLogger.Store(l)
}

// Logger returns the current package logger.
// Sub-packages (analysis, probe) call this to share the configuration.
func Logger() *slog.Logger {
	return pkgLogger.Load()
}
