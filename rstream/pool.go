package rstream

import (
	"sync/atomic"

	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	conc "github.com/sourcegraph/conc/pool"
)

// Pool is the task runtime the kernel schedules stage work on. Stages
// submit each item's work to a shared Pool; the number of in-flight items
// per stage is bounded by the stage's own concurrency setting, and any
// further limit comes from the Pool implementation (the default pool
// starts one goroutine per task and adds no limit).
type Pool interface {
	// Go submits f for concurrent execution. Go MUST NOT block the caller
	// beyond what the underlying implementation needs to accept the task.
	Go(f func())
}

var defaultPool atomic.Value

// DefaultPool returns the process-wide default Pool, a plain
// goroutine-per-task runtime with panic recovery.
func DefaultPool() Pool {
	p, _ := defaultPool.Load().(Pool)
	if p == nil {
		return goroutinePool{}
	}
	return p
}

// SetDefaultPool replaces the process-wide default Pool. A nil pool is
// ignored.
func SetDefaultPool(p Pool) {
	if p == nil {
		return
	}
	defaultPool.Store(p)
}

func init() {
	defaultPool.Store(goroutinePool{})
}

type goroutinePool struct{}

func (goroutinePool) Go(f func()) {
	go func() {
		defer func() { recover() }()
		f()
	}()
}

type poolFunc func(f func())

func (p poolFunc) Go(f func()) { p(f) }

// PoolOfConc adapts a sourcegraph/conc pool.
func PoolOfConc(p *conc.Pool) Pool {
	if p == nil {
		panic("rstream: conc pool is nil")
	}
	return poolFunc(func(f func()) { p.Go(f) })
}

// PoolOfAnts adapts a panjf2000/ants pool.
func PoolOfAnts(p *ants.Pool) Pool {
	if p == nil {
		panic("rstream: ants pool is nil")
	}
	return poolFunc(func(f func()) { _ = p.Submit(f) })
}

// PoolOfWorkerpool adapts a gammazero/workerpool.
func PoolOfWorkerpool(p *workerpool.WorkerPool) Pool {
	if p == nil {
		panic("rstream: workerpool is nil")
	}
	return poolFunc(func(f func()) { p.Submit(f) })
}
