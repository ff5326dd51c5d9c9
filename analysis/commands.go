package analysis

import "github.com/gogpu/gpuspy"

// CommandsSummaryName is the registry name of CommandsSummary.
const CommandsSummaryName = "commands"

// CommandsSummaryData is the result of CommandsSummary.
type CommandsSummaryData struct {
	Total   int            `json:"total"`
	Errors  int            `json:"errors"`
	Counts  map[string]int `json:"counts"`
	Markers map[string]int `json:"markers,omitempty"`
}

// CommandsSummary counts captured commands per name and per marker.
type CommandsSummary struct{}

// Name implements Analyzer.
func (CommandsSummary) Name() string { return CommandsSummaryName }

// Analyse implements Analyzer.
func (CommandsSummary) Analyse(c *gpuspy.Capture) (any, error) {
	data := CommandsSummaryData{
		Total:  len(c.Commands),
		Counts: make(map[string]int),
	}
	for _, cmd := range c.Commands {
		data.Counts[cmd.Name]++
		if cmd.Err != nil {
			data.Errors++
		}
		if cmd.Marker != "" {
			if data.Markers == nil {
				data.Markers = make(map[string]int)
			}
			data.Markers[cmd.Marker]++
		}
	}
	return data, nil
}
