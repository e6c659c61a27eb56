package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/forest/config"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}
	if err := om.WriteYear(YearStats{Year: 1}); err != nil {
		t.Errorf("WriteYear on nil manager: %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Errorf("WriteConfig on nil manager: %v", err)
	}
	if om.Dir() != "" {
		t.Error("nil manager should report an empty dir")
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestOutputManager_WritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	rows := []YearStats{
		{Year: 1, EndTick: 12, Trees: 40, Lumberjacks: 3, Lumber: 2},
		{Year: 2, EndTick: 24, Trees: 38, Lumberjacks: 4, Maulings: 1},
		{Year: 3, EndTick: 36, Trees: 35, Bears: 2},
	}
	for _, r := range rows {
		if err := om.WriteYear(r); err != nil {
			t.Fatalf("WriteYear: %v", err)
		}
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "years.csv"))
	if err != nil {
		t.Fatalf("reading years.csv: %v", err)
	}
	if n := strings.Count(string(data), "year,tick,"); n != 1 {
		t.Errorf("header written %d times, want 1", n)
	}

	got, err := ReadYears(filepath.Join(dir, "years.csv"))
	if err != nil {
		t.Fatalf("ReadYears: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("read %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("loading config snapshot: %v", err)
	}
	if cfg.Forest.Size != config.Default().Forest.Size {
		t.Errorf("snapshot forest.size = %d", cfg.Forest.Size)
	}
}

func TestReadYears_MissingFile(t *testing.T) {
	if _, err := ReadYears(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
