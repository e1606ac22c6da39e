package events

import (
	"context"
	"sync"
)

// Published is one captured call to Recorder.Publish.
type Published struct {
	Subject string
	Payload any
}

// Recorder is an in-memory Publisher. It also serves deployments that run
// without NATS, where events are simply dropped after being logged.
type Recorder struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

func (r *Recorder) Publish(_ context.Context, subject string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Published{Subject: subject, Payload: payload})
	return nil
}

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}
