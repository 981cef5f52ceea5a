package cleanup

import (
	"fmt"

	"github.com/arxos/boqtakeoff/internal/config"
	"github.com/arxos/boqtakeoff/internal/logging"
	"github.com/arxos/boqtakeoff/internal/model"
)

// Result carries the cleaned segments plus every warning emitted by the
// individual sub-passes.
type Result struct {
	Segments []model.Segment
	Warnings []string
}

// Run applies the four geometry cleanup sub-passes in order: snap,
// collinear merge, gap close, undershoot snap. Each sub-pass is
// independently toggled by opts and wrapped so a panic inside it
// degrades to a no-op with a warning rather than aborting the run.
func Run(segments []model.Segment, opts config.Options, log *logging.Logger) Result {
	res := Result{Segments: segments}

	res.Segments = guarded(log, "snap", res.Segments, func(in []model.Segment) []model.Segment {
		if opts.SnapTolerance <= 0 {
			return in
		}
		return Snap(in, opts.SnapTolerance)
	})

	res.Segments = guarded(log, "collinear_merge", res.Segments, func(in []model.Segment) []model.Segment {
		if !opts.MergeCollinear {
			return in
		}
		return MergeCollinear(in)
	})

	if opts.CloseGaps {
		before := res.Segments
		after, warnings := safeCloseGaps(log, before, opts.MaxGap)
		res.Segments = after
		res.Warnings = append(res.Warnings, warnings...)
	}

	res.Segments = guarded(log, "undershoot", res.Segments, func(in []model.Segment) []model.Segment {
		if opts.UndershootTolerance <= 0 {
			return in
		}
		return Undershoot(in, opts.UndershootTolerance)
	})

	return res
}

// guarded runs fn and, if it panics, logs the recovery and returns the
// input untouched rather than propagating the panic.
func guarded(log *logging.Logger, pass string, in []model.Segment, fn func([]model.Segment) []model.Segment) (out []model.Segment) {
	out = in
	defer func() {
		if r := recover(); r != nil {
			if log != nil {
				log.WithField("pass", pass).WithField("panic", fmt.Sprintf("%v", r)).
					Warn("cleanup sub-pass failed, returning input untouched")
			}
			out = in
		}
	}()
	out = fn(in)
	return out
}

func safeCloseGaps(log *logging.Logger, in []model.Segment, maxGap float64) (out []model.Segment, warnings []string) {
	out = in
	defer func() {
		if r := recover(); r != nil {
			if log != nil {
				log.WithField("pass", "gap_close").WithField("panic", fmt.Sprintf("%v", r)).
					Warn("cleanup sub-pass failed, returning input untouched")
			}
			out = in
			warnings = nil
		}
	}()
	out, warnings = CloseGaps(in, maxGap)
	return out, warnings
}
