package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// Series summarizes one yearly quantity over a run.
type Series struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Summary aggregates the yearly records of a run.
type Summary struct {
	Years       int
	Lumberjacks Series
	Bears       Series
	Trees       Series // trees plus elder trees
	Lumber      int    // lumber harvested over all years
	Maulings    int
}

// Summarize computes population statistics across yearly records.
func Summarize(years []YearStats) Summary {
	s := Summary{Years: len(years)}
	if len(years) == 0 {
		return s
	}

	lumberjacks := make([]float64, len(years))
	bears := make([]float64, len(years))
	trees := make([]float64, len(years))
	for i, y := range years {
		lumberjacks[i] = float64(y.Lumberjacks)
		bears[i] = float64(y.Bears)
		trees[i] = float64(y.Trees + y.ElderTrees)
		s.Lumber += y.Lumber
		s.Maulings += y.Maulings
	}

	s.Lumberjacks = summarizeSeries(lumberjacks)
	s.Bears = summarizeSeries(bears)
	s.Trees = summarizeSeries(trees)
	return s
}

// summarizeSeries returns mean, sample standard deviation and range.
// A single sample has zero deviation.
func summarizeSeries(values []float64) Series {
	var out Series
	if len(values) == 0 {
		return out
	}
	if len(values) == 1 {
		out.Mean = values[0]
	} else {
		out.Mean, out.Std = stat.MeanStdDev(values, nil)
	}
	out.Min, out.Max = values[0], values[0]
	for _, v := range values[1:] {
		if v < out.Min {
			out.Min = v
		}
		if v > out.Max {
			out.Max = v
		}
	}
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (s Series) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("years", s.Years),
		slog.Any("lumberjacks", s.Lumberjacks),
		slog.Any("bears", s.Bears),
		slog.Any("trees", s.Trees),
		slog.Int("lumber", s.Lumber),
		slog.Int("maulings", s.Maulings),
	)
}
