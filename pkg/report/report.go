// Package report serializes the outcome of a debloating run: a JSON report
// with the final mapping and removal statistics, plus the final
// configuration re-rendered in its native file form. The recorder runs on
// every exit path, so an interrupted run still leaves its best result on
// disk.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dd0wney/cluso-debloat/pkg/kconfig"
	"github.com/dd0wney/cluso-debloat/pkg/logging"
	"github.com/dd0wney/cluso-debloat/pkg/search"
)

// Results is the JSON report for one run.
type Results struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// BaseConfigSize counts the enabled options in the baseline;
	// FinalConfigSize counts them in the final configuration. The two
	// always differ by exactly SymbolsRemoved.
	BaseConfigSize      int     `json:"base_config_size"`
	FinalConfigSize     int     `json:"final_config_size"`
	SymbolsRemoved      int     `json:"symbols_removed"`
	ReductionPercentage float64 `json:"reduction_percentage"`

	TotalTests          int `json:"total_tests"`
	ImprovingIterations int `json:"improving_iterations"`

	FinalConfig    map[string]string `json:"final_config"`
	RemovedSymbols []string          `json:"removed_symbols"`
}

// Build assembles the report from a finished (or interrupted) search.
func Build(runID string, startedAt time.Time, baseline map[string]string, res search.Result) Results {
	removed := make([]string, 0, len(res.Best.Disabled))
	for name := range res.Best.Disabled {
		removed = append(removed, name)
	}
	sort.Strings(removed)

	baseSize := enabledCount(baseline)
	r := Results{
		RunID:               runID,
		StartedAt:           startedAt,
		FinishedAt:          time.Now().UTC(),
		BaseConfigSize:      baseSize,
		FinalConfigSize:     enabledCount(res.Best.Config),
		SymbolsRemoved:      len(removed),
		TotalTests:          len(res.History),
		ImprovingIterations: res.ImprovingIterations,
		FinalConfig:         res.Best.Config,
		RemovedSymbols:      removed,
	}
	if baseSize > 0 {
		r.ReductionPercentage = float64(r.SymbolsRemoved) / float64(baseSize) * 100
	}
	return r
}

// Recorder writes the report and its sibling config file.
type Recorder struct {
	path   string
	model  kconfig.Model
	logger logging.Logger
}

// NewRecorder creates a recorder targeting the given report path. The
// rendered config lands next to it with a .config extension.
func NewRecorder(path string, model kconfig.Model, logger logging.Logger) *Recorder {
	return &Recorder{
		path:   path,
		model:  model,
		logger: logger.With(logging.Component("report")),
	}
}

// ConfigPath is where the rendered final configuration is written.
func (r *Recorder) ConfigPath() string {
	return strings.TrimSuffix(r.path, filepath.Ext(r.path)) + ".config"
}

// Write persists the JSON report and the rendered configuration.
func (r *Recorder) Write(res Results) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	configPath := r.ConfigPath()
	if err := os.WriteFile(configPath, r.model.Render(res.FinalConfig), 0644); err != nil {
		return fmt.Errorf("write final config: %w", err)
	}

	r.logger.Info("report written",
		logging.String("report", r.path),
		logging.String("config", configPath),
		logging.Count("removed", res.SymbolsRemoved),
	)
	return nil
}

func enabledCount(config map[string]string) int {
	n := 0
	for _, v := range config {
		if v != kconfig.No && v != "" {
			n++
		}
	}
	return n
}
