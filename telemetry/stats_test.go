package telemetry

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	years := []YearStats{
		{Year: 1, Lumberjacks: 2, Bears: 1, Trees: 10, ElderTrees: 0, Lumber: 3, Maulings: 1},
		{Year: 2, Lumberjacks: 4, Bears: 2, Trees: 8, ElderTrees: 2, Lumber: 5, Maulings: 0},
		{Year: 3, Lumberjacks: 6, Bears: 3, Trees: 5, ElderTrees: 1, Lumber: 2, Maulings: 2},
	}

	s := Summarize(years)

	if s.Years != 3 {
		t.Errorf("Years = %d, want 3", s.Years)
	}
	if s.Lumber != 10 {
		t.Errorf("Lumber = %d, want 10", s.Lumber)
	}
	if s.Maulings != 3 {
		t.Errorf("Maulings = %d, want 3", s.Maulings)
	}

	tests := []struct {
		name string
		got  Series
		want Series
	}{
		{"lumberjacks", s.Lumberjacks, Series{Mean: 4, Std: 2, Min: 2, Max: 6}},
		{"bears", s.Bears, Series{Mean: 2, Std: 1, Min: 1, Max: 3}},
		{"trees", s.Trees, Series{Mean: 26.0 / 3, Std: math.Sqrt(16.0 / 3), Min: 6, Max: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got.Mean-tt.want.Mean) > 1e-9 {
				t.Errorf("mean = %v, want %v", tt.got.Mean, tt.want.Mean)
			}
			if math.Abs(tt.got.Std-tt.want.Std) > 1e-9 {
				t.Errorf("std = %v, want %v", tt.got.Std, tt.want.Std)
			}
			if tt.got.Min != tt.want.Min || tt.got.Max != tt.want.Max {
				t.Errorf("range = [%v,%v], want [%v,%v]", tt.got.Min, tt.got.Max, tt.want.Min, tt.want.Max)
			}
		})
	}
}

func TestSummarizeSingleYear(t *testing.T) {
	s := Summarize([]YearStats{{Year: 1, Lumberjacks: 7, Bears: 2, Trees: 3}})
	if s.Lumberjacks.Mean != 7 || s.Lumberjacks.Std != 0 {
		t.Errorf("single sample: %+v, want mean 7 and std 0", s.Lumberjacks)
	}
	if s.Lumberjacks.Min != 7 || s.Lumberjacks.Max != 7 {
		t.Errorf("single sample range: %+v", s.Lumberjacks)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Years != 0 || s.Lumber != 0 || s.Lumberjacks != (Series{}) {
		t.Errorf("empty summary = %+v, want zero", s)
	}
}
