package watch

import (
	"context"
	"sync"

	"github.com/indaco/venvsync/internal/logging"
)

// RunFunc runs one cycle for file.
type RunFunc func(ctx context.Context, file string)

// Dispatcher serializes triggers onto a single goroutine.
type Dispatcher struct {
	workspace string
	run       RunFunc
	log       *logging.Channel
	queue     chan Event
	done      chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	lastActive string
	onActive   func(file string)
}

// queueSize bounds pending triggers. Refreshes beyond it are dropped since
// a queued refresh already covers them.
const queueSize = 64

// NewDispatcher creates a Dispatcher. Refreshes issued before any Python
// document was active run for workspace.
func NewDispatcher(workspace string, run RunFunc, log *logging.Channel) *Dispatcher {
	if log == nil {
		log = logging.Discard()
	}
	return &Dispatcher{
		workspace: workspace,
		run:       run,
		log:       log,
		queue:     make(chan Event, queueSize),
		done:      make(chan struct{}),
	}
}

// OnActive registers a callback invoked, on the dispatcher goroutine, each
// time a Python document becomes active.
func (d *Dispatcher) OnActive(fn func(file string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onActive = fn
}

// Submit queues ev. Editor changes block while the queue is full; refresh
// requests are dropped instead.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) {
	if ev.Kind == KindRefresh {
		select {
		case d.queue <- ev:
		case <-d.done:
		default:
			d.log.Debug("refresh dropped, queue full")
		}
		return
	}
	select {
	case d.queue <- ev:
	case <-d.done:
	case <-ctx.Done():
	}
}

// Close stops accepting events. Run handles whatever is already queued
// and returns.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.done) })
}

// Refresh queues a refresh for the last active document.
func (d *Dispatcher) Refresh(ctx context.Context) {
	d.Submit(ctx, Event{Kind: KindRefresh})
}

// LastActive returns the last Python document seen, or "".
func (d *Dispatcher) LastActive() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastActive
}

// Run processes queued events until ctx is done or Close is called.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.done:
			d.Drain(ctx)
			return nil
		case ev := <-d.queue:
			d.handle(ctx, ev)
		}
	}
}

// Drain processes every event already queued, then returns.
func (d *Dispatcher) Drain(ctx context.Context) {
	for {
		select {
		case ev := <-d.queue:
			d.handle(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) {
	switch ev.Kind {
	case KindActiveEditorChanged:
		if !ev.IsPython() {
			d.log.Debug("ignoring non-python editor", "file", ev.File, "language", ev.Language)
			return
		}
		d.mu.Lock()
		d.lastActive = ev.File
		onActive := d.onActive
		d.mu.Unlock()
		if onActive != nil {
			onActive(ev.File)
		}
		d.run(ctx, ev.File)

	case KindRefresh:
		file := d.LastActive()
		if file == "" {
			file = d.workspace
		}
		d.run(ctx, file)
	}
}
