package interceptor

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/kbukum/synchttp/errors"
	"github.com/kbukum/synchttp/request"
	"github.com/kbukum/synchttp/serializer"
	"github.com/kbukum/synchttp/transport"
)

func mustRequest(t *testing.T, method request.Method, opts ...request.Option) *request.Request {
	t.Helper()
	req, err := request.New(method, "https://api.example.com/items", opts...)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func jsonHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return h
}

func TestDefaultResponseHandler(t *testing.T) {
	tests := []struct {
		name     string
		opts     []request.Option
		out      transport.Outcome
		wantKind errors.Kind
		check    func(t *testing.T, r *Result)
	}{
		{
			name: "json body decoded by content type",
			out:  transport.Outcome{StatusCode: 200, Header: jsonHeader(), Body: []byte(`{"id":7}`)},
			check: func(t *testing.T, r *Result) {
				m, ok := r.Value.(map[string]any)
				if !ok || m["id"] != float64(7) {
					t.Errorf("value = %#v", r.Value)
				}
			},
		},
		{
			name: "request serializer wins",
			opts: []request.Option{request.WithSerializer(serializer.String())},
			out:  transport.Outcome{StatusCode: 201, Header: jsonHeader(), Body: []byte(`{"id":7}`)},
			check: func(t *testing.T, r *Result) {
				if r.Value != `{"id":7}` || r.StatusCode != 201 {
					t.Errorf("result = %+v", r)
				}
			},
		},
		{
			name:     "malformed json is a decode error",
			out:      transport.Outcome{StatusCode: 200, Header: jsonHeader(), Body: []byte(`{"id":`)},
			wantKind: errors.KindDecode,
		},
		{
			name:     "non-2xx status is a network error",
			out:      transport.Outcome{StatusCode: 404, Body: []byte("missing")},
			wantKind: errors.KindNetwork,
		},
		{
			name:     "plain transport error becomes network",
			out:      transport.Outcome{Err: fmt.Errorf("connection reset")},
			wantKind: errors.KindNetwork,
		},
		{
			name:     "typed transport error keeps its kind",
			out:      transport.Outcome{Err: errors.Validation("relative URL")},
			wantKind: errors.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DefaultResponseHandler(mustRequest(t, request.MethodGet, tt.opts...), tt.out)
			if tt.wantKind != 0 {
				if errors.KindOf(err) != tt.wantKind {
					t.Fatalf("kind = %v (%v), want %v", errors.KindOf(err), err, tt.wantKind)
				}
				if res != nil {
					t.Error("result must be nil on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, res)
		})
	}
}

func TestDefaultResponseHandler_StatusErrorCarriesBody(t *testing.T) {
	_, err := DefaultResponseHandler(mustRequest(t, request.MethodGet),
		transport.Outcome{StatusCode: 503, Body: []byte("busy")})
	e, ok := errors.As(err)
	if !ok || e.StatusCode != 503 || string(e.Body) != "busy" || !e.Retryable {
		t.Errorf("unexpected error: %#v", err)
	}
}

func TestWithDefaults(t *testing.T) {
	i := Interceptor{}.WithDefaults()
	if i.Adapt != nil {
		t.Error("Adapt should stay nil")
	}
	if i.Retry == nil || i.Response == nil {
		t.Fatal("defaults not applied")
	}
	if got := i.Retry(mustRequest(t, request.MethodGet), errors.Network(fmt.Errorf("x")), 1); got != GiveUp {
		t.Errorf("default retry = %v, want give_up", got)
	}
}

func TestHooksBindRequest(t *testing.T) {
	req := mustRequest(t, request.MethodPut)
	var seen *request.Request
	i := Interceptor{Retry: func(r *request.Request, _ error, attempt int) RetryAction {
		seen = r
		if attempt == 1 {
			return Retry
		}
		return GiveUp
	}}

	hooks := i.Hooks(req)
	if hooks.Retry(context.Background(), errors.Network(fmt.Errorf("x")), 1) != Retry {
		t.Error("expected retry on first attempt")
	}
	if seen != req {
		t.Error("retry decision did not receive the dispatched request")
	}
	if (Interceptor{}).Hooks(req).Retry != nil {
		t.Error("nil decision should leave the hook unset")
	}
}

func TestRetryUpTo(t *testing.T) {
	req := mustRequest(t, request.MethodGet)
	decide := RetryUpTo(3)
	retryable := errors.FromStatus(503, nil)

	for attempt, want := range map[int]RetryAction{1: Retry, 2: Retry, 3: GiveUp, 4: GiveUp} {
		if got := decide(req, retryable, attempt); got != want {
			t.Errorf("attempt %d: got %v, want %v", attempt, got, want)
		}
	}
	if got := decide(req, errors.Validation("bad"), 1); got != GiveUp {
		t.Errorf("non-retryable error: got %v", got)
	}
}

func TestRetryIdempotent(t *testing.T) {
	decide := RetryIdempotent(RetryIf(nil, 5))
	err := errors.Network(fmt.Errorf("reset"))

	if got := decide(mustRequest(t, request.MethodGet), err, 1); got != Retry {
		t.Errorf("GET: got %v", got)
	}
	if got := decide(mustRequest(t, request.MethodPost), err, 1); got != GiveUp {
		t.Errorf("POST: got %v", got)
	}
}
