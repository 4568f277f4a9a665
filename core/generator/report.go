package generator

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tristendillon/minireact/core/logger"
)

type FileFailure struct {
	Path string
	Err  error
}

// Report summarizes one full pass.
type Report struct {
	Transformed  int
	Copied       int
	Unchanged    int
	BytesWritten int64
	Failures     []FileFailure
	Duration     time.Duration
}

func (r *Report) add(o outcome) {
	switch {
	case o.err != nil:
		r.Failures = append(r.Failures, FileFailure{Path: o.asset.RelativePath, Err: o.err})
		return
	case o.copied:
		r.Copied++
	case o.written:
		r.Transformed++
	default:
		r.Unchanged++
		return
	}
	r.BytesWritten += o.bytes
}

func (r *Report) sort() {
	sort.Slice(r.Failures, func(i, j int) bool {
		return r.Failures[i].Path < r.Failures[j].Path
	})
}

func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

func (r *Report) Total() int {
	return r.Transformed + r.Copied + r.Unchanged + len(r.Failures)
}

func (r *Report) Log() {
	logger.Info("Processed %d files in %s: %d transformed, %d copied, %d unchanged, %s written",
		r.Total(),
		r.Duration.Round(time.Millisecond),
		r.Transformed,
		r.Copied,
		r.Unchanged,
		humanize.Bytes(uint64(max(r.BytesWritten, 0))),
	)
	for _, f := range r.Failures {
		logger.Error("  %s: %v", f.Path, f.Err)
	}
	if r.Failed() {
		logger.Warn("%d files failed", len(r.Failures))
	}
}
