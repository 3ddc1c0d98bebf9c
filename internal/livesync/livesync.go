// Package livesync keeps a store current by refetching it whenever the
// backend announces a change on its table.
package livesync

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/realtime"
)

// Subscriber opens change subscriptions
type Subscriber interface {
	Subscribe(table string) *realtime.Subscription
}

// Refresher is a store that can refetch its collection and be closed
type Refresher interface {
	Refresh(ctx context.Context) bool
	Close()
}

// Binding ties one store to one table subscription
type Binding struct {
	table  string
	sub    *realtime.Subscription
	target Refresher
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Bind subscribes to table, loads target once and refetches it on every
// change. Bursts of events that arrive while a fetch runs collapse into a
// single follow-up fetch.
func Bind(ctx context.Context, hub Subscriber, table string, target Refresher, logger *zap.Logger) *Binding {
	ctx, cancel := context.WithCancel(ctx)
	b := &Binding{
		table:  table,
		sub:    hub.Subscribe(table),
		target: target,
		logger: logger.With(zap.String("table", table)),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go b.run(ctx)
	return b
}

func (b *Binding) run(ctx context.Context) {
	defer close(b.done)

	b.target.Refresh(ctx)

	events := b.sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			coalesced := b.drain(events)
			b.logger.Debug("change received, refetching",
				zap.String("op", string(ev.Op)),
				zap.Int("coalesced", coalesced))
			b.target.Refresh(ctx)
		}
	}
}

// drain empties whatever is already queued and returns how many events it dropped
func (b *Binding) drain(events <-chan realtime.Event) int {
	n := 0
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// Table returns the bound table name
func (b *Binding) Table() string {
	return b.table
}

// Close tears the binding down: later fetch results are discarded, the
// subscription is cancelled and the worker has exited when Close returns.
func (b *Binding) Close() {
	b.once.Do(func() {
		b.target.Close()
		b.sub.Close()
		b.cancel()
		<-b.done
	})
}

// Group manages several bindings with a single Close
type Group struct {
	bindings []*Binding
}

// Add binds target and tracks the binding
func (g *Group) Add(ctx context.Context, hub Subscriber, table string, target Refresher, logger *zap.Logger) *Binding {
	b := Bind(ctx, hub, table, target, logger)
	g.bindings = append(g.bindings, b)
	return b
}

// Close closes every binding
func (g *Group) Close() {
	for _, b := range g.bindings {
		b.Close()
	}
}
