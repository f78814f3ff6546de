package sequencer

import (
	"sync"
	"time"

	"github.com/lixenwraith/beat-buddy/core"
	"github.com/lixenwraith/beat-buddy/parameter"
)

// Clock schedules a repeating task
type Clock interface {
	// Schedule runs tick every interval until the returned handle is stopped
	Schedule(interval time.Duration, tick func()) Handle
}

// Handle cancels one scheduled task
type Handle interface {
	// Stop cancels the task and releases its timer; idempotent and non-blocking
	Stop()
	// Done is closed once no further tick can start
	Done() <-chan struct{}
}

// TickerClock runs each task on its own goroutine driven by a time.Ticker
type TickerClock struct{}

// Schedule implements Clock
// Non-positive intervals are raised to parameter.MinStepInterval
func (TickerClock) Schedule(interval time.Duration, tick func()) Handle {
	if interval <= 0 {
		interval = parameter.MinStepInterval
	}
	h := &tickerHandle{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	core.Go(func() { h.run(tick) })
	return h
}

type tickerHandle struct {
	ticker   *time.Ticker
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func (h *tickerHandle) run(tick func()) {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			return
		case <-h.ticker.C:
			// Stop may have raced with the ticker
			select {
			case <-h.stop:
				return
			default:
			}
			tick()
		}
	}
}

func (h *tickerHandle) Stop() {
	h.stopOnce.Do(func() {
		h.ticker.Stop()
		close(h.stop)
	})
}

func (h *tickerHandle) Done() <-chan struct{} {
	return h.done
}

// ManualClock fires ticks only when Tick is called
// Used for tests and offline rendering
type ManualClock struct {
	mu    sync.Mutex
	tasks []*manualHandle
}

// NewManualClock creates a clock with no tasks
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

type manualHandle struct {
	clock    *ManualClock
	interval time.Duration
	tick     func()
	done     chan struct{}
	stopOnce sync.Once
}

// Schedule implements Clock
func (c *ManualClock) Schedule(interval time.Duration, tick func()) Handle {
	h := &manualHandle{
		clock:    c,
		interval: interval,
		tick:     tick,
		done:     make(chan struct{}),
	}
	c.mu.Lock()
	c.tasks = append(c.tasks, h)
	c.mu.Unlock()
	return h
}

func (h *manualHandle) Stop() {
	h.stopOnce.Do(func() {
		h.clock.remove(h)
		close(h.done)
	})
}

func (h *manualHandle) Done() <-chan struct{} {
	return h.done
}

func (c *ManualClock) remove(h *manualHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.tasks {
		if t == h {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return
		}
	}
}

// Tick fires every active task once, in schedule order
func (c *ManualClock) Tick() {
	c.mu.Lock()
	tasks := make([]*manualHandle, len(c.tasks))
	copy(tasks, c.tasks)
	c.mu.Unlock()

	for _, t := range tasks {
		t.tick()
	}
}

// Active returns the number of scheduled tasks not yet stopped
func (c *ManualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// Interval returns the interval of the most recent active task, 0 if none
func (c *ManualClock) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tasks) == 0 {
		return 0
	}
	return c.tasks[len(c.tasks)-1].interval
}
