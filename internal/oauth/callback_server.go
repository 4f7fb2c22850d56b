package oauth

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"apsconnect/pkg/logging"
)

// DefaultCallbackTimeout is how long WaitForResult blocks by default.
const DefaultCallbackTimeout = 5 * time.Minute

// shutdownTimeout bounds Stop's graceful shutdown of the listener.
const shutdownTimeout = 5 * time.Second

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

var callbackErrorTmpl = template.Must(template.New("error").Parse(callbackErrorHTML))

// CallbackServer is a transient loopback HTTP server that captures one
// OAuth redirect. The first request to arrive latches the terminal Result;
// later duplicates (browser retries, prefetches) still receive a full HTML
// page but never alter the latched value.
type CallbackServer struct {
	port     int
	server   *http.Server
	listener net.Listener
	resultCh chan Result
	stopOnce sync.Once
}

// NewCallbackServer creates a callback server for the given loopback port.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:     port,
		resultCh: make(chan Result, 1),
	}
}

// Start binds the loopback listener and begins serving on a background
// goroutine without blocking the caller. Bind failures (port in use,
// permission denied) are reported as a BindFailure FlowError, never
// conflated with a timeout.
func (s *CallbackServer) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return wrapFlowError(BindFailure, err,
			"cannot listen on %s (%s)", addr, bindFailureHint)
	}

	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("CallbackServer", err, "listener terminated unexpectedly")
		}
	}()

	logging.Debug("CallbackServer", "listening on %s", addr)
	return nil
}

// WaitForResult blocks until the latch fires, the timeout elapses, or the
// context is cancelled. The listener is torn down on every exit path, so
// the port is free again by the time this returns. A timeout of zero or
// less falls back to DefaultCallbackTimeout.
func (s *CallbackServer) WaitForResult(ctx context.Context, timeout time.Duration) Result {
	defer s.Stop()

	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-s.resultCh:
		return result
	case <-timer.C:
		return Result{
			Kind:    ResultTimeout,
			Message: fmt.Sprintf("no callback received within %s", timeout),
		}
	case <-ctx.Done():
		return Result{
			Kind:    ResultTimeout,
			Message: fmt.Sprintf("authorization wait cancelled: %v", ctx.Err()),
		}
	}
}

// handleCallback serves one inbound redirect request. Result precedence:
// a code parameter wins over everything else, then a provider error, then
// the fixed no-code message. Every request gets an immediate, fully framed
// HTML response so the user sees a definitive outcome regardless of what
// the orchestrator does afterwards.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var result Result
	switch {
	case query.Get("code") != "":
		result = Result{
			Kind:  ResultCode,
			Code:  query.Get("code"),
			State: query.Get("state"),
		}
	case query.Get("error") != "":
		msg := query.Get("error")
		if desc := query.Get("error_description"); desc != "" {
			msg = fmt.Sprintf("%s: %s", msg, desc)
		}
		result = Result{Kind: ResultError, Message: msg}
	default:
		result = Result{Kind: ResultError, Message: noCodeMessage}
	}

	s.writePage(w, result)
	s.latch(result)
}

// latch posts the result into the single-slot channel. First write wins;
// the non-blocking send makes duplicate requests harmless.
func (s *CallbackServer) latch(result Result) {
	select {
	case s.resultCh <- result:
	default:
		logging.Debug("CallbackServer", "duplicate callback ignored (%s)", result.Kind)
	}
}

// writePage renders the themed success or error page with exact length
// framing so the browser displays it immediately.
func (s *CallbackServer) writePage(w http.ResponseWriter, result Result) {
	var body []byte
	if result.Kind == ResultCode {
		body = []byte(callbackSuccessHTML)
	} else {
		var buf bytes.Buffer
		if err := callbackErrorTmpl.Execute(&buf, map[string]string{"Message": result.Message}); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		body = buf.Bytes()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Stop shuts the listener down and waits (bounded) for in-flight handlers.
// It is idempotent and safe to call even if Start was never called or
// failed.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
		logging.Debug("CallbackServer", "stopped, port %d released", s.port)
	})
}

// Port returns the port the server listens on.
func (s *CallbackServer) Port() int {
	return s.port
}
