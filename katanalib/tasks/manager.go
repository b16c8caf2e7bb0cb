// Package tasks provides the central task manager spec §5 names: long-
// running background workers are spawned on it and carry a cancellation
// handle (cmd/katana spawns the block producer and the RPC server; the gas
// oracle and the chain-tip watcher are not run on it). Graceful shutdown
// cancels every outstanding task and waits for them to return.
//
// Grounded on original_source's crates/tasks/src/manager.rs: a cancellation
// token shared by every spawned task, a tracker of in-flight tasks, and a
// shutdown() that cancels then waits. golang.org/x/sync/errgroup plus
// context.CancelFunc give the same two primitives idiomatically in Go.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/katana-go/katana/katanalib/log"
)

// Manager tracks every task spawned on it and can cancel them all at once.
type Manager struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu      sync.Mutex
	spawned int
}

// New creates a Manager whose cancellation derives from parent.
func New(parent context.Context) *Manager {
	ctx, cancel := context.WithCancel(parent)
	group, ctx := errgroup.WithContext(ctx)
	return &Manager{ctx: ctx, cancel: cancel, group: group}
}

// Spawn runs fn on its own goroutine. fn must return promptly once
// m.Context() is done. A panic inside fn is recovered and surfaced as an
// error from Wait, mirroring the Rust manager's "panicked tasks are
// critical" policy without tearing down the whole process.
func (m *Manager) Spawn(name string, fn func(ctx context.Context) error) {
	m.mu.Lock()
	m.spawned++
	m.mu.Unlock()

	m.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.New(m.ctx).Error("task panicked", "task", name, "panic", r)
				err = fmt.Errorf("tasks: task %s panicked: %v", name, r)
			}
		}()
		if err = fn(m.ctx); err != nil {
			log.New(m.ctx).Warn("task exited with error", "task", name, "err", err)
		}
		return err
	})
}

// Context is the cancellation context every spawned task observes.
func (m *Manager) Context() context.Context { return m.ctx }

// Shutdown cancels every task and blocks until they have all returned.
func (m *Manager) Shutdown() error {
	m.cancel()
	return m.group.Wait()
}

// Count returns the number of tasks ever spawned on this manager.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spawned
}
