package engine

import (
	"errors"
	"fmt"
	"time"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when evaluation runs past the engine timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one was started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// outcome carries one evaluation back from its goroutine.
type outcome struct {
	result EvalResult
	err    error
}

// begin starts a new generation and returns its number.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

// latest reports whether gen is still the newest generation.
func (e *Engine) latest(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// await blocks until ch delivers or the engine timeout elapses. A timed out
// goroutine keeps running; whatever it sends later is never read.
func (e *Engine) await(ch <-chan outcome, gen uint64) (EvalResult, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case o := <-ch:
		if !e.latest(gen) {
			return EvalResult{}, ErrSuperseded
		}
		return o.result, o.err
	case <-timer.C:
		return EvalResult{}, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}
