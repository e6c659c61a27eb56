package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/forest/config"
)

// OutputManager handles run output: a config snapshot and yearly CSV rows.
type OutputManager struct {
	dir       string
	yearsFile *os.File

	// Track if headers have been written
	yearsHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "years.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating years.csv: %w", err)
	}

	return &OutputManager{dir: dir, yearsFile: f}, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteYear writes a yearly record to years.csv.
func (om *OutputManager) WriteYear(stats YearStats) error {
	if om == nil {
		return nil
	}

	records := []YearStats{stats}

	if !om.yearsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.yearsFile); err != nil {
			return fmt.Errorf("writing year: %w", err)
		}
		om.yearsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.yearsFile); err != nil {
			return fmt.Errorf("writing year: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil || om.yearsFile == nil {
		return nil
	}
	return om.yearsFile.Close()
}

// ReadYears loads the rows of a years.csv file.
func ReadYears(path string) ([]YearStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var years []YearStats
	if err := gocsv.UnmarshalFile(f, &years); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return years, nil
}
