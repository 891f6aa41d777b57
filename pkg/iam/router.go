package iam

import (
	"context"
	"time"
)

// Recorder observes the outcome of every routed request.
type Recorder interface {
	Observe(resource, outcome string, elapsed time.Duration)
}

// Router dispatches requests to handlers by resource.
type Router struct {
	handlers map[string]Handler
	recorder Recorder
}

// NewRouter creates an empty router. recorder may be nil.
func NewRouter(recorder Recorder) *Router {
	return &Router{handlers: make(map[string]Handler), recorder: recorder}
}

// Handle mounts h on each resource.
func (r *Router) Handle(h Handler, resources ...string) {
	for _, res := range resources {
		r.handlers[res] = h
	}
}

// Resources lists the mounted resources.
func (r *Router) Resources() []string {
	out := make([]string, 0, len(r.handlers))
	for res := range r.handlers {
		out = append(out, res)
	}
	return out
}

// Dispatch runs the handler mounted on req.Resource. Warming requests that
// name no mounted resource are answered here.
func (r *Router) Dispatch(ctx context.Context, req *Request) (Response, error) {
	h, ok := r.handlers[req.Resource]
	if !ok {
		if req.Warming {
			return Warmed(), nil
		}
		return nil, ErrUnknownResource(req.Resource)
	}

	start := time.Now()
	resp, err := h.Handle(ctx, req)
	if r.recorder != nil {
		r.recorder.Observe(req.Resource, Outcome(err), time.Since(start))
	}
	return resp, err
}
