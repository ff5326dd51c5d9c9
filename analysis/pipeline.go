// Package analysis derives summaries from finished captures.
//
// An Analyzer inspects a capture and returns one named result. A Pipeline
// runs a list of analyzers and implements gpuspy.Analyser, so it plugs into
// a ContextSpy with gpuspy.WithAnalyserFunc:
//
//	spy, err := gpuspy.NewContextSpy(host,
//	    gpuspy.WithAnalyserFunc(func(info *gpuspy.ContextInformation) gpuspy.Analyser {
//	        return analysis.NewPipeline(info, analysis.CommandsSummary{}, analysis.NewShaders(naga.DefaultOptions()))
//	    }),
//	)
//
// Analyzers are also available by name through the package registry
// (see Register and New).
package analysis

import (
	"fmt"

	"github.com/gogpu/gpuspy"
)

// Analyzer produces one named analysis of a capture.
type Analyzer interface {
	// Name identifies the analysis in Capture.Analyses.
	Name() string

	// Analyse returns the analysis data for c.
	Analyse(c *gpuspy.Capture) (any, error)
}

// Pipeline runs analyzers in order and appends their results to a capture.
//
// Observation is paused while the pipeline runs so that analyzers may call
// into the host without their calls being recorded.
type Pipeline struct {
	info      *gpuspy.ContextInformation
	analyzers []Analyzer
}

// NewPipeline creates a pipeline over info. A nil info disables pausing.
func NewPipeline(info *gpuspy.ContextInformation, analyzers ...Analyzer) *Pipeline {
	return &Pipeline{info: info, analyzers: analyzers}
}

// NewPipelineByName creates a pipeline from registered analyzer names.
func NewPipelineByName(info *gpuspy.ContextInformation, names ...string) (*Pipeline, error) {
	analyzers := make([]Analyzer, 0, len(names))
	for _, name := range names {
		a, err := New(name)
		if err != nil {
			return nil, err
		}
		analyzers = append(analyzers, a)
	}
	return NewPipeline(info, analyzers...), nil
}

// Analyzers returns the names of the pipeline's analyzers in run order.
func (p *Pipeline) Analyzers() []string {
	names := make([]string, len(p.analyzers))
	for i, a := range p.analyzers {
		names[i] = a.Name()
	}
	return names
}

// AppendAnalyses implements gpuspy.Analyser.
// The first failing analyzer aborts the pipeline; results of the analyzers
// that ran before it stay appended.
func (p *Pipeline) AppendAnalyses(c *gpuspy.Capture) error {
	if p.info != nil {
		prev := p.info.Capturing()
		p.info.ToggleCapture(false)
		defer p.info.ToggleCapture(prev)
	}

	for _, a := range p.analyzers {
		data, err := a.Analyse(c)
		if err != nil {
			return fmt.Errorf("analysis: %s: %w", a.Name(), err)
		}
		c.Analyses = append(c.Analyses, gpuspy.Analysis{Name: a.Name(), Data: data})
	}
	gpuspy.Logger().Debug("analysis: appended", "capture", c.ID, "analyses", len(p.analyzers))
	return nil
}
