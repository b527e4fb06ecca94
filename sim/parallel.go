package sim

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/pthm-cable/multilife/life"
)

// Phase is one barrier-delimited stage of a generation. Run is called once
// per partition with the partition's index; calls for different partitions
// run concurrently and must only write state owned by that partition.
type Phase struct {
	Name string
	Run  func(i int, p life.Partition)
}

// PhaseError reports a panic raised while a worker ran a phase.
type PhaseError struct {
	Phase     string
	Partition life.Partition
	Value     any
	Stack     []byte
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase panicked on %v: %v", e.Phase, e.Partition, e.Value)
}

// task is one partition of a dispatched phase.
type task struct {
	index int
	part  life.Partition
	phase *Phase
	batch *batch
}

// batch tracks completion of one Dispatch call.
type batch struct {
	wg   sync.WaitGroup
	errs []error
}

// Pool runs phases on persistent worker goroutines. Workers are started once
// and reused for every generation.
type Pool struct {
	numWorkers int

	// Worker pool channels
	workChan chan task     // sends work to workers
	stopChan chan struct{} // signals workers to exit
	wg       sync.WaitGroup
	running  bool

	batch batch
}

// NewPool creates a pool of n workers. n < 1 is treated as 1.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{numWorkers: n}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.numWorkers
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	if p.running {
		return
	}

	p.workChan = make(chan task, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop signals all workers to exit and waits for them.
func (p *Pool) Stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	p.running = false
}

// worker runs in a goroutine, processing tasks until stopped.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case t, ok := <-p.workChan:
			if !ok {
				return
			}
			t.batch.errs[t.index] = runTask(t.phase, t.index, t.part)
			t.batch.wg.Done()
		}
	}
}

// runTask runs one partition and converts a panic into a PhaseError.
func runTask(phase *Phase, i int, part life.Partition) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PhaseError{Phase: phase.Name, Partition: part, Value: r, Stack: debug.Stack()}
		}
	}()
	phase.Run(i, part)
	return nil
}

// Dispatch runs phase over every partition and returns once all of them have
// finished. A failed partition does not stop the others; the first error in
// partition order is returned after the barrier. Dispatch must not be called
// concurrently.
func (p *Pool) Dispatch(phase *Phase, parts []life.Partition) error {
	if !p.running {
		p.Start()
	}

	b := &p.batch
	if cap(b.errs) < len(parts) {
		b.errs = make([]error, len(parts))
	}
	b.errs = b.errs[:len(parts)]
	clear(b.errs)

	b.wg.Add(len(parts))
	for i, part := range parts {
		p.workChan <- task{index: i, part: part, phase: phase, batch: b}
	}
	b.wg.Wait()

	return firstError(b.errs)
}

// dispatchInline runs phase over every partition on the calling goroutine.
func dispatchInline(phase *Phase, parts []life.Partition) error {
	var firstErr error
	for i, part := range parts {
		if err := runTask(phase, i, part); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
