package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/synchttp/errors"
	"github.com/kbukum/synchttp/interceptor"
	"github.com/kbukum/synchttp/logger"
	"github.com/kbukum/synchttp/request"
	"github.com/kbukum/synchttp/transport"
)

const testURL = "https://api.example.com/items"

func TestNew_PanicsOnNilTransport(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	New(nil)
}

func TestDispatch_Success(t *testing.T) {
	ft := &fakeTransport{respond: func(h *fakeHandle) {
		h.complete(jsonOutcome(200, `{"id":7}`))
	}}
	c := New(ft)

	res, err := c.Get(context.Background(), testURL, request.WithParam("id", 7), request.WithEncoding(request.EncodingQuery))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != 200 {
		t.Errorf("status = %d", res.StatusCode)
	}
	if m, ok := res.Value.(map[string]any); !ok || m["id"] != float64(7) {
		t.Errorf("value = %#v", res.Value)
	}

	call := ft.last().call
	if call.Method != "GET" || call.URL != testURL || call.Encoding != request.EncodingQuery {
		t.Errorf("unexpected call: %+v", call)
	}
	if v, _ := call.Params.Get("id"); v != 7 {
		t.Errorf("params = %v", call.Params)
	}
}

func TestDispatch_ValidationFailsBeforeTransport(t *testing.T) {
	ft := &fakeTransport{respond: func(h *fakeHandle) { t.Error("transport must not be used") }}
	c := New(ft)

	_, err := c.Get(context.Background(), "ftp://example.com/file")
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := c.Dispatch(context.Background(), nil); !errors.IsValidation(err) {
		t.Errorf("nil request: expected validation error, got %v", err)
	}
	if ft.last() != nil {
		t.Error("no call should have been made")
	}
}

func TestDispatch_ResponseHandlerOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		handler  interceptor.ResponseFunc
		wantKind errors.Kind
	}{
		{
			name: "error wins over result",
			handler: func(*request.Request, transport.Outcome) (*interceptor.Result, error) {
				return &interceptor.Result{StatusCode: 200}, errors.Decode("custom", fmt.Errorf("bad"))
			},
			wantKind: errors.KindDecode,
		},
		{
			name: "no outcome",
			handler: func(*request.Request, transport.Outcome) (*interceptor.Result, error) {
				return nil, nil
			},
			wantKind: errors.KindInterceptor,
		},
		{
			name: "plain error becomes interceptor error",
			handler: func(*request.Request, transport.Outcome) (*interceptor.Result, error) {
				return nil, fmt.Errorf("quota exceeded")
			},
			wantKind: errors.KindInterceptor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{respond: func(h *fakeHandle) { h.complete(jsonOutcome(200, `{}`)) }}
			c := New(ft, WithInterceptor(interceptor.Interceptor{Response: tt.handler}))

			res, err := c.Get(context.Background(), testURL)
			if errors.KindOf(err) != tt.wantKind {
				t.Fatalf("kind = %v (%v), want %v", errors.KindOf(err), err, tt.wantKind)
			}
			if res != nil {
				t.Error("result must be nil when an error is returned")
			}
		})
	}
}

func TestDispatch_DefaultHandlerMapsFailures(t *testing.T) {
	tests := []struct {
		name     string
		out      transport.Outcome
		wantKind errors.Kind
	}{
		{"transport failure", transport.Outcome{Err: errors.Network(fmt.Errorf("connection refused"))}, errors.KindNetwork},
		{"server error", jsonOutcome(500, `{}`), errors.KindNetwork},
		{"undecodable body", jsonOutcome(200, `{"id":`), errors.KindDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.out
			c := New(&fakeTransport{respond: func(h *fakeHandle) { h.complete(out) }})
			if _, err := c.Get(context.Background(), testURL); errors.KindOf(err) != tt.wantKind {
				t.Errorf("kind = %v (%v), want %v", errors.KindOf(err), err, tt.wantKind)
			}
		})
	}
}

func TestDispatch_ConcurrentCallersGetTheirOwnOutcome(t *testing.T) {
	ft := &fakeTransport{respond: func(h *fakeHandle) {
		id, _ := h.call.Params.Get("id")
		time.Sleep(time.Duration(id.(int)%5) * time.Millisecond)
		body, _ := json.Marshal(map[string]any{"id": id})
		h.complete(jsonOutcome(200, string(body)))
	}}
	c := New(ft)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.Post(context.Background(), testURL, request.WithParam("id", i))
			if err != nil {
				t.Errorf("call %d: %v", i, err)
				return
			}
			if got := res.Value.(map[string]any)["id"]; got != float64(i) {
				t.Errorf("call %d received outcome for %v", i, got)
			}
		}(i)
	}
	wg.Wait()
}

func TestDispatch_TimeoutDiscardsLateCompletion(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	var handled atomic.Int32

	ft := &fakeTransport{respond: func(h *fakeHandle) {
		<-release
		h.complete(jsonOutcome(200, `{}`))
		close(finished)
	}}
	logs := &syncBuffer{}
	c := New(ft,
		WithTimeout(30*time.Millisecond),
		WithLogger(logger.NewWriter(logs, "debug")),
		WithInterceptor(interceptor.Interceptor{Response: func(req *request.Request, out transport.Outcome) (*interceptor.Result, error) {
			handled.Add(1)
			return interceptor.DefaultResponseHandler(req, out)
		}}),
	)

	start := time.Now()
	_, err := c.Get(context.Background(), testURL)
	if !errors.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("wait was not bounded by the timeout")
	}
	if !ft.last().canceled.Load() {
		t.Error("transport call was not canceled")
	}

	close(release)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("late completion blocked")
	}
	if handled.Load() != 0 {
		t.Error("response handler ran for an abandoned dispatch")
	}
	if !strings.Contains(logs.String(), "late completion discarded") {
		t.Errorf("late completion not logged: %s", logs.String())
	}
}

func TestDispatch_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	ft := &fakeTransport{respond: func(h *fakeHandle) {
		<-release
		h.complete(jsonOutcome(200, `{}`))
	}}
	c := New(ft)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	if _, err := c.Get(ctx, testURL); !errors.IsCanceled(err) {
		t.Fatalf("expected canceled error, got %v", err)
	}

	deadline, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	if _, err := c.Get(deadline, testURL); !errors.IsTimeout(err) {
		t.Fatalf("expected timeout from context deadline, got %v", err)
	}
}

func TestDispatch_DuplicateCompletionIgnored(t *testing.T) {
	finished := make(chan struct{})
	ft := &fakeTransport{respond: func(h *fakeHandle) {
		h.complete(jsonOutcome(200, `{"n":1}`))
		h.complete(jsonOutcome(500, `{"n":2}`))
		close(finished)
	}}
	logs := &syncBuffer{}
	c := New(ft, WithLogger(logger.NewWriter(logs, "debug")))

	res, err := c.Get(context.Background(), testURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.(map[string]any)["n"] != float64(1) {
		t.Errorf("expected first outcome, got %v", res.Value)
	}
	<-finished
	if !strings.Contains(logs.String(), "duplicate completion ignored") {
		t.Errorf("duplicate completion not logged: %s", logs.String())
	}
}

func TestInterceptor_GetSet(t *testing.T) {
	ft := &fakeTransport{respond: func(h *fakeHandle) {
		action := transport.GiveUp
		if h.hooks.Retry != nil {
			action = h.hooks.Retry(context.Background(), errors.Network(fmt.Errorf("reset")), 1)
		}
		h.complete(jsonOutcome(200, fmt.Sprintf(`{"action":%q}`, action)))
	}}
	c := New(ft)

	if c.Interceptor().Response == nil {
		t.Fatal("default interceptor should have a response handler")
	}

	res, err := c.Get(context.Background(), testURL)
	if err != nil || res.Value.(map[string]any)["action"] != "give_up" {
		t.Fatalf("default retry decision: %v %v", res, err)
	}

	c.SetInterceptor(interceptor.Interceptor{Retry: interceptor.RetryUpTo(3)})
	if c.Interceptor().Retry == nil || c.Interceptor().Response != nil {
		t.Error("Interceptor() does not return the value set")
	}

	res, err = c.Get(context.Background(), testURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.(map[string]any)["action"] != "retry" {
		t.Errorf("new interceptor not used: %v", res.Value)
	}
}

func TestInterceptor_ConcurrentSetAndDispatch(t *testing.T) {
	ft := &fakeTransport{respond: func(h *fakeHandle) { h.complete(jsonOutcome(200, `{}`)) }}
	c := New(ft)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.SetInterceptor(interceptor.Interceptor{Retry: interceptor.RetryUpTo(2)})
		}()
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background(), testURL); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestUpload_BuildsFormAndWireMethod(t *testing.T) {
	ft := &fakeTransport{respond: func(h *fakeHandle) { h.complete(jsonOutcome(201, `{}`)) }}
	c := New(ft)

	_, err := c.Upload(context.Background(), testURL,
		[]request.Part{request.DataPart("file", []byte{1, 2}, "f1", "application/octet-stream")},
		request.WithParam("name", "abc"),
		request.WithUploadMethod("PUT"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := ft.last()
	if h.form == nil {
		t.Fatal("upload did not use the multipart path")
	}
	if h.buildErr != nil {
		t.Fatalf("form build failed: %v", h.buildErr)
	}
	if h.form.Len() != 2 {
		t.Errorf("form has %d parts, want 2", h.form.Len())
	}
	if h.call.Method != "PUT" {
		t.Errorf("wire method = %q, want PUT", h.call.Method)
	}
}

func TestUpload_RequiresParts(t *testing.T) {
	c := New(&fakeTransport{respond: func(h *fakeHandle) { t.Error("transport must not be used") }})
	if _, err := c.Upload(context.Background(), testURL, nil); !errors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestClose_ClosesTransport(t *testing.T) {
	ft := &fakeTransport{}
	if err := New(ft).Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ft.closed.Load() {
		t.Error("transport not closed")
	}
}
