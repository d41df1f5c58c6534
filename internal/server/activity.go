package server

import (
	"log/slog"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// activity holds running request counters for periodic stats logging.
type activity struct {
	requests atomic.Int64
	limited  atomic.Int64

	// Snapshot from the previous log call, used to report per-interval rates.
	lastRequests int64
	lastLimited  int64
}

func newActivity() *activity {
	return &activity{}
}

// log emits a stats line when anything happened since the last call.
func (a *activity) log(logger *slog.Logger) {
	requests := a.requests.Load()
	limited := a.limited.Load()

	intervalRequests := requests - a.lastRequests
	intervalLimited := limited - a.lastLimited
	a.lastRequests = requests
	a.lastLimited = limited

	if intervalRequests == 0 && intervalLimited == 0 {
		return
	}

	logger.Info("activity",
		"requests", humanize.Comma(intervalRequests),
		"limited", humanize.Comma(intervalLimited),
		"totalRequests", humanize.Comma(requests),
		"totalLimited", humanize.Comma(limited),
	)
}
