package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloser struct {
	calls atomic.Int32
	err   error
}

func (c *fakeCloser) Close() error {
	c.calls.Add(1)
	return c.err
}

// blockingHandler holds every request until release is closed or the
// connection goes away.
type blockingHandler struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingHandler() *blockingHandler {
	return &blockingHandler{
		started: make(chan struct{}, 10),
		release: make(chan struct{}),
	}
}

func (h *blockingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.started <- struct{}{}
	select {
	case <-h.release:
		w.Write([]byte("finished"))
	case <-r.Context().Done():
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type result struct {
	body string
	err  error
}

func startServer(t *testing.T, cfg Config, handler http.Handler, closers ...io.Closer) (*Server, string, chan os.Signal, <-chan error) {
	t.Helper()

	cfg.Addr = "127.0.0.1:0"
	srv := New(cfg, handler, testLogger(), closers...)
	assert.Equal(t, StateStarting, srv.State())

	ln, err := srv.Listen()
	require.NoError(t, err)

	signals := make(chan os.Signal, 2)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), ln, signals) }()

	require.Eventually(t, func() bool { return srv.State() == StateServing }, time.Second, 5*time.Millisecond)
	return srv, "http://" + ln.Addr().String(), signals, done
}

func get(url string) <-chan result {
	out := make(chan result, 1)
	go func() {
		resp, err := http.Get(url)
		if err != nil {
			out <- result{err: err}
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		out <- result{body: string(body), err: err}
	}()
	return out
}

func waitErr(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
		return nil
	}
}

func TestServe_DrainsInFlightRequests(t *testing.T) {
	h := newBlockingHandler()
	closer := &fakeCloser{}
	srv, url, signals, done := startServer(t, Config{}, h, closer)

	reply := get(url)
	<-h.started

	signals <- syscall.SIGTERM
	require.Eventually(t, func() bool { return srv.State() == StateDraining }, time.Second, 5*time.Millisecond)

	// New connections are refused while the request is still running.
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", url[len("http://"):], 100*time.Millisecond)
		if err != nil {
			return true
		}
		conn.Close()
		return false
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(0), closer.calls.Load(), "closers run only after the drain")

	close(h.release)

	res := <-reply
	require.NoError(t, res.err)
	assert.Equal(t, "finished", res.body)

	assert.NoError(t, waitErr(t, done))
	assert.Equal(t, int32(1), closer.calls.Load())
	assert.Equal(t, StateStopped, srv.State())
}

func TestServe_SecondSignalForcesClose(t *testing.T) {
	h := newBlockingHandler()
	t.Cleanup(func() { close(h.release) })
	closer := &fakeCloser{}
	srv, url, signals, done := startServer(t, Config{}, h, closer)

	reply := get(url)
	<-h.started

	signals <- syscall.SIGTERM
	require.Eventually(t, func() bool { return srv.State() == StateDraining }, time.Second, 5*time.Millisecond)
	signals <- syscall.SIGINT

	assert.NoError(t, waitErr(t, done))
	assert.Error(t, (<-reply).err, "the in-flight request is cut off")
	assert.Equal(t, int32(1), closer.calls.Load())
	assert.Equal(t, StateStopped, srv.State())
}

func TestServe_ShutdownTimeoutForcesClose(t *testing.T) {
	h := newBlockingHandler()
	t.Cleanup(func() { close(h.release) })
	_, url, signals, done := startServer(t, Config{ShutdownTimeout: 50 * time.Millisecond}, h)

	reply := get(url)
	<-h.started

	signals <- syscall.SIGTERM

	assert.NoError(t, waitErr(t, done))
	assert.Error(t, (<-reply).err)
}

func TestServe_ContextCancel(t *testing.T) {
	closer := &fakeCloser{}
	srv := New(Config{Addr: "127.0.0.1:0"}, http.NotFoundHandler(), testLogger(), closer)

	ln, err := srv.Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln, nil) }()

	require.Eventually(t, func() bool { return srv.State() == StateServing }, time.Second, 5*time.Millisecond)
	cancel()

	assert.NoError(t, waitErr(t, done))
	assert.Equal(t, int32(1), closer.calls.Load())
}

func TestServe_CloserErrorIsReturned(t *testing.T) {
	closer := &fakeCloser{err: errors.New("pool busy")}
	_, _, signals, done := startServer(t, Config{}, http.NotFoundHandler(), closer)

	signals <- syscall.SIGINT

	err := waitErr(t, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool busy")
}

func TestServe_LogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	srv := New(Config{Addr: "127.0.0.1:0"}, http.NotFoundHandler(), slog.New(slog.NewJSONHandler(&buf, nil)))

	ln, err := srv.Listen()
	require.NoError(t, err)

	signals := make(chan os.Signal, 1)
	signals <- syscall.SIGTERM
	require.NoError(t, srv.Serve(context.Background(), ln, signals))

	assert.Contains(t, buf.String(), `"msg":"listening"`)
	assert.Contains(t, buf.String(), `"signal":"terminated"`)
	assert.Contains(t, buf.String(), `"msg":"server stopped"`)
}

func TestListen_AddressInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	srv := New(Config{Addr: taken.Addr().String()}, http.NotFoundHandler(), testLogger())
	_, err = srv.Listen()
	assert.Error(t, err)
	assert.Equal(t, StateStarting, srv.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "serving", StateServing.String())
	assert.Equal(t, "draining", StateDraining.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "state(9)", State(9).String())
}
