package router

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/reelgrab/internal/api/handlers"
	"github.com/denisAlshanov/reelgrab/internal/config"
)

func newTestRouter(port string) *Router {
	gin.SetMode(gin.TestMode)
	return NewRouter(&config.ServerConfig{Host: "127.0.0.1", Port: port}, handlers.NewHealthHandler(nil))
}

func TestRoutes(t *testing.T) {
	r := newTestRouter("0")

	testCases := []struct {
		method string
		path   string
		want   int
	}{
		{method: http.MethodGet, path: "/", want: http.StatusOK},
		{method: http.MethodHead, path: "/", want: http.StatusOK},
		{method: http.MethodGet, path: "/live", want: http.StatusOK},
		{method: http.MethodGet, path: "/health", want: http.StatusOK},
		{method: http.MethodGet, path: "/missing", want: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.Engine().ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestCorrelationHeaders(t *testing.T) {
	r := newTestRouter("0")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "abc")
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "abc" {
		t.Errorf("X-Correlation-ID = %q, want abc", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID should be set")
	}
}

func TestListenServeShutdown(t *testing.T) {
	r := newTestRouter("0")

	ln, err := r.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- r.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Errorf("GET / = %d %q", resp.StatusCode, body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Serve() error = %v", err)
	}
}

func TestListen_PortInUse(t *testing.T) {
	first := newTestRouter("0")
	ln, err := first.Listen()
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	_, port, _ := net.SplitHostPort(ln.Addr().String())
	second := newTestRouter(port)
	if _, err := second.Listen(); err == nil {
		t.Error("Listen() on a bound port should fail")
	}
}
