package perf

import (
	"time"

	"github.com/rs/zerolog"
)

// ConversionPerf records how long each stage of one conversion took.
type ConversionPerf struct {
	Input  string
	Start  time.Time
	End    time.Time
	Blocks []PerfBlock

	now func() time.Time
}

func MakeNewConversionPerf(input string) *ConversionPerf {
	return makeConversionPerf(input, time.Now)
}

func makeConversionPerf(input string, now func() time.Time) *ConversionPerf {
	return &ConversionPerf{
		Input: input,
		Start: now(),
		now:   now,
	}
}

func (cp *ConversionPerf) EndConversion() {
	for cp.EndBlock() {
	}
	cp.End = cp.now()
}

// Checkpoint records a zero-length block, marking when a step between
// stages happened.
func (cp *ConversionPerf) Checkpoint(category string) {
	now := cp.now()
	cp.Blocks = append(cp.Blocks, PerfBlock{
		Start:    now,
		End:      now,
		Category: category,
	})
}

func (cp *ConversionPerf) StartBlock(category string) {
	cp.Blocks = append(cp.Blocks, PerfBlock{
		Start:    cp.now(),
		Category: category,
	})
}

// EndBlock closes the most recently started open block. It returns false if
// there was none.
func (cp *ConversionPerf) EndBlock() bool {
	for i := len(cp.Blocks) - 1; i >= 0; i -= 1 {
		if cp.Blocks[i].End.IsZero() {
			cp.Blocks[i].End = cp.now()
			return true
		}
	}
	return false
}

func (cp *ConversionPerf) DurationMs() float64 {
	return float64(cp.End.Sub(cp.Start).Nanoseconds()) / 1000 / 1000
}

// MarshalZerologObject logs the total and one field per block, keyed by
// category.
func (cp *ConversionPerf) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("totalMs", cp.DurationMs())
	for i := range cp.Blocks {
		e.Float64(cp.Blocks[i].Category+"Ms", cp.Blocks[i].DurationMs())
	}
}

type PerfBlock struct {
	Start    time.Time
	End      time.Time
	Category string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}
