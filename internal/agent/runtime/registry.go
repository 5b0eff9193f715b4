package runtime

import (
	"context"
	"sync"
)

// Handler is the behavior behind an agent name. Implementations may
// suspend on network I/O or run to completion synchronously; the Runner
// treats both uniformly. Handlers must honor ctx cancellation where
// they can.
type Handler interface {
	Run(ctx context.Context, payload any) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, payload any) (any, error)

func (f HandlerFunc) Run(ctx context.Context, payload any) (any, error) { return f(ctx, payload) }

// Blocking adapts a function that neither suspends nor observes a
// context. The Runner already executes every handler on its own
// goroutine, so the adapter only bridges the signature; a timed-out
// blocking call is abandoned rather than interrupted.
func Blocking(fn func(payload any) (any, error)) Handler {
	return HandlerFunc(func(_ context.Context, payload any) (any, error) {
		return fn(payload)
	})
}

// Registry maps agent names to handlers. It is populated once at
// startup and read-mostly afterwards; the last registration for a name
// wins. A Registry is an explicit value passed into the Runner, not
// package state.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register stores or overwrites the handler for an agent name.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Handler looks up the handler for an agent name.
func (r *Registry) Handler(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}
