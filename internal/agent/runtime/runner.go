package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Result wraps the raw output of one handler invocation.
type Result struct {
	Output any
}

// As converts a Result's output into T. An output that already is a T
// comes back unchanged. A map[string]any gets exactly one construction
// attempt, field by field through a JSON round trip. Anything else is
// an immediate CoercionError; there is no second best-effort pass.
func As[T any](r Result) (T, error) {
	var zero T
	if v, ok := r.Output.(T); ok {
		return v, nil
	}
	m, ok := r.Output.(map[string]any)
	if !ok {
		return zero, &CoercionError{Target: fmt.Sprintf("%T", zero), Source: fmt.Sprintf("%T", r.Output)}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return zero, &CoercionError{Target: fmt.Sprintf("%T", zero), Source: fmt.Sprintf("%T", r.Output), Err: err}
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, &CoercionError{Target: fmt.Sprintf("%T", zero), Source: fmt.Sprintf("%T", r.Output), Err: err}
	}
	return v, nil
}

// Runner dispatches payloads to registered handlers.
type Runner struct {
	registry *Registry
	logger   *log.Logger
}

// NewRunner creates a Runner over a registry.
func NewRunner(registry *Registry) *Runner {
	return &Runner{
		registry: registry,
		logger:   log.New(log.Writer(), "[RUNNER] ", log.LstdFlags),
	}
}

type handlerOutcome struct {
	out any
	err error
}

// Run looks up the handler for agent.Name and invokes it with payload.
// A zero timeout means no deadline beyond ctx's own. The handler runs
// on its own goroutine, so a blocking handler never stalls concurrent
// runs; on timeout its context is cancelled and, if it does not
// observe that, the goroutine is abandoned.
func (r *Runner) Run(ctx context.Context, agent *Agent, payload any, timeout time.Duration) (Result, error) {
	handler, ok := r.registry.Handler(agent.Name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnregisteredAgent, agent.Name)
	}

	hctx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		hctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan handlerOutcome, 1)
	go func() {
		out, err := handler.Run(hctx, payload)
		done <- handlerOutcome{out: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return Result{}, res.err
		}
		return Result{Output: res.out}, nil
	case <-hctx.Done():
		if timeout > 0 && ctx.Err() == nil {
			r.logger.Printf("agent %s timed out after %v", agent.Name, timeout)
			return Result{}, fmt.Errorf("%w: %s after %v", ErrTimeout, agent.Name, timeout)
		}
		return Result{}, hctx.Err()
	}
}
