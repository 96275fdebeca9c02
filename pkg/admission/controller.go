package admission

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/chunkstream/internal/logger"
)

// DefaultMaxConcurrent is the default cap on simultaneously executing
// work items.
const DefaultMaxConcurrent = 3

// ErrCleared is reported through the completion callback for items dropped
// by Clear before they were dispatched.
var ErrCleared = errors.New("cleared before dispatch")

// Config holds constructor-time controller configuration.
type Config struct {
	// MaxConcurrent caps simultaneously executing items. Must be > 0.
	MaxConcurrent int
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{MaxConcurrent: DefaultMaxConcurrent}
}

// Metrics receives controller observability events. A nil Metrics disables
// collection with zero overhead.
type Metrics interface {
	ObserveEnqueued(priority string)
	ObserveDispatched(wait time.Duration)
	ObserveCompleted(ok bool, runtime time.Duration)
	SetQueueDepth(n int)
	SetActive(n int)
}

// Controller bounds concurrent work and dispatches strictly by priority,
// then enqueue order.
//
// One dispatch loop exists per controller. It blocks on a permit semaphore
// when all slots are busy and on a condition variable when the queue is
// empty, so an idle controller consumes no CPU. Submissions are accepted
// from any goroutine.
type Controller struct {
	maxConcurrent int
	metrics       Metrics

	mu          sync.Mutex
	cond        *sync.Cond // signaled on enqueue and on stop
	queue       requestHeap
	queued      map[string]bool
	active      map[string]bool
	seq         uint64
	idleWaiters []chan struct{}
	started     bool
	stopping    bool

	// Completion stats, protected by mu.
	completed int
	failed    int
	lastErr   error
	lastErrAt time.Time

	sem       chan struct{} // one token per executing item
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New creates a stopped controller. Call Start to begin dispatching.
func New(cfg Config, metrics Metrics) (*Controller, error) {
	if cfg.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("invalid max concurrent %d: must be > 0", cfg.MaxConcurrent)
	}

	c := &Controller{
		maxConcurrent: cfg.MaxConcurrent,
		metrics:       metrics,
		queued:        make(map[string]bool),
		active:        make(map[string]bool),
		sem:           make(chan struct{}, cfg.MaxConcurrent),
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	return c, nil
}

// Submit enqueues a work item. It returns false, performing no enqueue,
// when an item with the same identity is already queued or executing, or
// when the controller has been stopped. Acceptance is non-blocking; the
// outcome arrives asynchronously through onComplete.
func (c *Controller) Submit(identity string, priority Priority, meta any, execute ExecuteFunc, onComplete CompleteFunc) bool {
	if execute == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopping {
		return false
	}
	if c.queued[identity] || c.active[identity] {
		return false
	}

	c.seq++
	c.queue.push(&item{
		identity:   identity,
		priority:   priority,
		enqueuedAt: time.Now(),
		seq:        c.seq,
		meta:       meta,
		execute:    execute,
		onComplete: onComplete,
	})
	c.queued[identity] = true

	if c.metrics != nil {
		c.metrics.ObserveEnqueued(priority.String())
		c.metrics.SetQueueDepth(c.queue.Len())
	}

	c.cond.Signal()
	return true
}

// Start launches the dispatch loop. Idempotent.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started || c.stopping {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	logger.Debug("admission controller started", "maxConcurrent", c.maxConcurrent)
	go c.dispatch()
}

// Stop signals the dispatch loop to exit and blocks until it has observed
// the signal. Queued items stay queued; in-flight executions are not
// cancelled and still report their completion. Idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		<-c.stoppedCh
		return
	}
	c.stopping = true
	started := c.started
	c.mu.Unlock()

	close(c.stopCh)
	c.cond.Broadcast()

	if !started {
		close(c.stoppedCh)
		return
	}
	<-c.stoppedCh
	logger.Debug("admission controller stopped",
		"queued", c.QueueDepth(), "active", c.ActiveCount())
}

// dispatch is the single dispatch loop: reserve a permit, pull the next
// item, hand it to a worker goroutine.
func (c *Controller) dispatch() {
	defer close(c.stoppedCh)

	for {
		select {
		case <-c.stopCh:
			return
		case c.sem <- struct{}{}:
		}

		it, ok := c.next()
		if !ok {
			<-c.sem
			return
		}
		go c.run(it)
	}
}

// next blocks until an item is available or the controller is stopping.
// Popping the queue and recording the identity as active happen under one
// lock, so the concurrency ceiling cannot be overrun by racing submits.
func (c *Controller) next() (*item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.queue.Len() == 0 && !c.stopping {
		c.cond.Wait()
	}
	if c.stopping {
		return nil, false
	}

	it := c.queue.pop()
	delete(c.queued, it.identity)
	c.active[it.identity] = true

	if c.metrics != nil {
		c.metrics.ObserveDispatched(time.Since(it.enqueuedAt))
		c.metrics.SetQueueDepth(c.queue.Len())
		c.metrics.SetActive(len(c.active))
	}
	return it, true
}

// run executes one item on its own goroutine. Executor failures and panics
// are contained: they surface through the completion callback, never to
// the dispatch loop.
func (c *Controller) run(it *item) {
	start := time.Now()
	err := c.safeExecute(it)
	runtime := time.Since(start)

	c.mu.Lock()
	delete(c.active, it.identity)
	if err == nil {
		c.completed++
	} else {
		c.failed++
		c.lastErr = err
		c.lastErrAt = time.Now()
	}
	if c.metrics != nil {
		c.metrics.SetActive(len(c.active))
		c.metrics.ObserveCompleted(err == nil, runtime)
	}
	c.mu.Unlock()
	<-c.sem

	if err != nil {
		logger.Debug("work item failed", "identity", it.identity, "error", err)
	}

	it.complete(Result{
		Identity: it.identity,
		OK:       err == nil,
		Err:      err,
		Meta:     it.meta,
		Wait:     start.Sub(it.enqueuedAt),
		Runtime:  runtime,
	})

	c.notifyIdle()
}

// safeExecute runs the executor, converting panics into errors.
func (c *Controller) safeExecute(it *item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()
	return it.execute()
}

// Clear drops all not-yet-dispatched queued items. Each dropped item is
// reported failed with ErrCleared through its completion callback, so no
// accepted work disappears silently. In-flight executions are unaffected.
// Returns the number of items dropped.
func (c *Controller) Clear() int {
	c.mu.Lock()
	dropped := make([]*item, 0, c.queue.Len())
	for {
		it := c.queue.pop()
		if it == nil {
			break
		}
		delete(c.queued, it.identity)
		dropped = append(dropped, it)
	}
	if c.metrics != nil {
		c.metrics.SetQueueDepth(0)
	}
	c.mu.Unlock()

	for _, it := range dropped {
		go it.complete(Result{
			Identity: it.identity,
			Err:      ErrCleared,
			Meta:     it.meta,
			Wait:     time.Since(it.enqueuedAt),
		})
	}

	c.notifyIdle()
	return len(dropped)
}

// AwaitIdle blocks until the queue is empty and no item is executing, or
// until timeout elapses. With a non-positive timeout it reports the
// current idleness without blocking.
func (c *Controller) AwaitIdle(timeout time.Duration) bool {
	c.mu.Lock()
	if c.isIdleLocked() {
		c.mu.Unlock()
		return true
	}
	if timeout <= 0 {
		c.mu.Unlock()
		return false
	}

	ch := make(chan struct{})
	c.idleWaiters = append(c.idleWaiters, ch)
	c.mu.Unlock()

	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (c *Controller) isIdleLocked() bool {
	return c.queue.Len() == 0 && len(c.active) == 0
}

// notifyIdle releases idle waiters when the controller has gone idle.
func (c *Controller) notifyIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isIdleLocked() {
		return
	}
	for _, ch := range c.idleWaiters {
		close(ch)
	}
	c.idleWaiters = nil
}

// ActiveCount returns the number of currently executing items.
func (c *Controller) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

// QueueDepth returns the number of queued, not-yet-dispatched items.
func (c *Controller) QueueDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

// ActiveIdentities returns a snapshot of the executing identities.
func (c *Controller) ActiveIdentities() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.active))
	for id := range c.active {
		ids = append(ids, id)
	}
	return ids
}

// Stats returns completion counters.
func (c *Controller) Stats() (completed, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed, c.failed
}

// LastError returns the most recent executor error and when it occurred.
func (c *Controller) LastError() (error, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr, c.lastErrAt
}
