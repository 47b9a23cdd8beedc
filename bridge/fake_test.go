package bridge

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/kbukum/synchttp/transport"
)

// fakeTransport completes calls through respond, run on its own goroutine
// when a handle starts.
type fakeTransport struct {
	respond func(h *fakeHandle)

	mu      sync.Mutex
	handles []*fakeHandle
	closed  atomic.Bool
}

func (f *fakeTransport) Dispatch(call transport.Call, hooks transport.Hooks) transport.Handle {
	return f.track(&fakeHandle{call: call, hooks: hooks})
}

func (f *fakeTransport) DispatchMultipart(build func(*transport.Form) error, call transport.Call, hooks transport.Hooks) transport.Handle {
	form := &transport.Form{}
	h := &fakeHandle{call: call, hooks: hooks, form: form, buildErr: build(form)}
	return f.track(h)
}

func (f *fakeTransport) Close(context.Context) error {
	f.closed.Store(true)
	return nil
}

func (f *fakeTransport) track(h *fakeHandle) *fakeHandle {
	h.transport = f
	f.mu.Lock()
	f.handles = append(f.handles, h)
	f.mu.Unlock()
	return h
}

func (f *fakeTransport) last() *fakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.handles) == 0 {
		return nil
	}
	return f.handles[len(f.handles)-1]
}

type fakeHandle struct {
	transport *fakeTransport
	call      transport.Call
	hooks     transport.Hooks
	form      *transport.Form
	buildErr  error

	fn       func(transport.Outcome)
	canceled atomic.Bool
}

func (h *fakeHandle) OnCompletion(fn func(transport.Outcome)) { h.fn = fn }
func (h *fakeHandle) Start()                                  { go h.transport.respond(h) }
func (h *fakeHandle) Cancel()                                 { h.canceled.Store(true) }

func (h *fakeHandle) complete(out transport.Outcome) { h.fn(out) }

func jsonOutcome(status int, body string) transport.Outcome {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return transport.Outcome{StatusCode: status, Header: header, Body: []byte(body), Attempts: 1}
}

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
