package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultSendTimeout = 10 * time.Second

// Dispatcher fans every notification out to its sinks in the background.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:   sinks,
		timeout: defaultSendTimeout,
		now:     time.Now,
	}
}

// AddSink registers another delivery channel. Call it during wiring, before the
// first Notify.
func (d *Dispatcher) AddSink(sink Sink) {
	d.sinks = append(d.sinks, sink)
}

// Notify returns immediately; the sends outlive the caller's context cancellation.
func (d *Dispatcher) Notify(ctx context.Context, userID string, kind Kind, payload map[string]any) {
	if len(d.sinks) == 0 {
		return
	}
	n := Notification{
		UserID:    userID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: d.now().UTC(),
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.send(sendCtx, n); err != nil {
			log.Printf("[warn] notify %s %s: %v", n.Kind, n.UserID, err)
		}
	}()
}

func (d *Dispatcher) send(ctx context.Context, n Notification) error {
	var g errgroup.Group
	for _, sink := range d.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.Send(ctx, n); err != nil {
				return fmt.Errorf("%s: %w", sink.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Wait blocks until in-flight notifications finish or ctx expires.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
