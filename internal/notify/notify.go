package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/thetechguyfromvietnam/lolibub/internal/order"
)

// ErrNoPrimarySink is returned when no primary notification channel is
// configured. Without one the merchant never learns about the order, so the
// submission must fail rather than silently succeed.
var ErrNoPrimarySink = errors.New("no primary notification sink configured")

// Sink delivers one composed order to a single notification channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, rec *order.Record, message string) error
}

// Result carries the per-order artifacts of a dispatch.
type Result struct {
	ZaloLink string
}

// Fanout delivers the same logical order to every configured sink. The
// primary sink's outcome decides the dispatch outcome; auxiliary sinks
// (spreadsheet row, dashboard feed) are best-effort and their failures are
// logged, never propagated.
type Fanout struct {
	primary   Sink
	auxiliary []Sink
	zalo      *ZaloLink
}

// NewFanout creates a Fanout. primary may be nil (unconfigured), in which
// case Dispatch fails; nil auxiliary sinks are skipped.
func NewFanout(primary Sink, zalo *ZaloLink, auxiliary ...Sink) *Fanout {
	f := &Fanout{primary: primary, zalo: zalo}
	for _, s := range auxiliary {
		if s != nil {
			f.auxiliary = append(f.auxiliary, s)
		}
	}
	return f
}

// Dispatch sends the composed order everywhere at once. Remote sinks fire
// concurrently and are all awaited (settle-all, no short-circuit); only the
// primary sink's error is returned.
func (f *Fanout) Dispatch(ctx context.Context, rec *order.Record, message string) (Result, error) {
	res := Result{ZaloLink: f.zalo.Build(message)}

	if f.primary == nil {
		return res, ErrNoPrimarySink
	}

	sinks := make([]Sink, 0, len(f.auxiliary)+1)
	sinks = append(sinks, f.primary)
	sinks = append(sinks, f.auxiliary...)

	errs := make([]error, len(sinks))
	var wg sync.WaitGroup
	for i, s := range sinks {
		wg.Add(1)
		go func(i int, s Sink) {
			defer wg.Done()
			errs[i] = s.Send(ctx, rec, message)
		}(i, s)
	}
	wg.Wait()

	for i, s := range sinks[1:] {
		if err := errs[i+1]; err != nil {
			log.Printf("WARN: %s notification failed: %v", s.Name(), err)
		}
	}

	if err := errs[0]; err != nil {
		return res, fmt.Errorf("%s: %w", f.primary.Name(), err)
	}
	return res, nil
}
