// Package gpuspy instruments a live graphics-API context and records its
// calls into structured captures.
//
// # Overview
//
// gpuspy is a debugging aid for hardware-accelerated rendering. A [Host]
// exposes its entry points as named members of a [Surface]; [ContextSpy]
// replaces each callable member with an interceptor that reports every call
// to a single dispatch funnel. While a capture is open the funnel appends one
// [CommandCapture] per call, in call order, so a frame can be reconstructed
// after the fact.
//
// # Quick Start
//
//	host := gpuspy.NewTable(2, gpuspy.Canvas{Width: 800, Height: 600})
//	host.Define("clear", clearFn)
//	host.Define("drawArrays", drawArraysFn)
//
//	spy, err := gpuspy.NewContextSpy(host)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	spy.StartCapture()
//	host.Call("clear", 0x4000)
//	host.Call("drawArrays", 4, 0, 3)
//	capture, _ := spy.StopCapture()
//	// capture.Commands[0].Name == "clear", capture.Commands[1].ID == 1
//
// # Lifecycle
//
// A spy is in one of three states:
//
//   - Unwrapped: host members are untouched
//   - Wrapped: interceptors installed, calls are tagged and recorded for replay
//   - Recording: interceptors installed and a capture is open
//
// Spy and UnSpy move between Unwrapped and Wrapped. StartCapture and
// StopCapture open and close captures, wrapping and unwrapping the host
// around the session unless the spy was created with WithRecordAlways(true).
//
// # Collaborators
//
// State snapshots, replay recording, object tagging, analysis and static
// environment metadata are supplied through options ([WithStateCollector],
// [WithRecorder], [WithObjectTagger], [WithAnalyser], [WithEnvironment]).
// Sub-packages provide implementations:
//
//   - tagging: per-type sequential tags for opaque GPU handles
//   - analysis: command summaries and WGSL shader diagnostics
//   - probe: adapter limits and features from gogpu/wgpu and gpucontext
//   - export: JSON encoding of captures
//
// # Thread Safety
//
// ContextSpy is not safe for concurrent use. Interception is synchronous and
// happens on the goroutine making the host call.
package gpuspy
