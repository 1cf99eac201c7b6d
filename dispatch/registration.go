// File: dispatch/registration.go
// Scoped client handle over one dispatch queue registration.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dispatch

import (
	"sync"

	"github.com/google/uuid"

	"github.com/momentics/hioload-vsync/api"
)

// Registration is the handle a client holds for one recurring or one-shot
// wake request. It refers to the queue's registration table by token; the
// queue keeps exclusive ownership of the underlying entry.
//
// Destroy always removes any pending wakeup and is safe while a fire for
// this registration is in flight: that invocation completes independently
// and no further one starts.
type Registration struct {
	dispatch api.VSyncDispatch
	token    api.CallbackToken
	id       uuid.UUID
	name     string

	mu        sync.Mutex
	destroyed bool
}

// NewRegistration registers fn with the dispatch queue and wraps the
// resulting token. name is a human-readable label for diagnostics.
func NewRegistration(d api.VSyncDispatch, fn api.VSyncCallback, name string) (*Registration, error) {
	token, err := d.RegisterCallback(fn, name)
	if err != nil {
		return nil, err
	}
	return &Registration{
		dispatch: d,
		token:    token,
		id:       uuid.New(),
		name:     name,
	}, nil
}

// Schedule records or replaces this registration's pending wakeup.
// Two calls before a fire leave one pending schedule, never two.
func (r *Registration) Schedule(timing api.ScheduleTiming) (api.ScheduleResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return api.ScheduleResult{}, api.ErrNotInitialized
	}
	return r.dispatch.Schedule(r.token, timing)
}

// Cancel removes the pending wakeup if present. Idempotent.
func (r *Registration) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return nil
	}
	return r.dispatch.Cancel(r.token)
}

// Destroy cancels and unregisters. Idempotent.
func (r *Registration) Destroy() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return nil
	}
	r.destroyed = true
	return r.dispatch.UnregisterCallback(r.token)
}

// Token returns the queue-local registration token.
func (r *Registration) Token() api.CallbackToken { return r.token }

// ID returns the registration's stable diagnostic identity.
func (r *Registration) ID() uuid.UUID { return r.id }

// Name returns the human-readable label.
func (r *Registration) Name() string { return r.name }
