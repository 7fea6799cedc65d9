package fetch

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "sync/atomic"
    "testing"
    "time"
)

func TestGet_Success(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Header.Get("User-Agent") != "seoaudit-test" {
            t.Errorf("missing user agent, got %q", r.Header.Get("User-Agent"))
        }
        w.Header().Set("Content-Type", "text/html; charset=utf-8")
        _, _ = w.Write([]byte("<html><body>ok</body></html>"))
    }))
    defer srv.Close()

    c := &Client{UserAgent: "seoaudit-test"}
    page, err := c.Get(context.Background(), srv.URL)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if string(page.Body) != "<html><body>ok</body></html>" || page.StatusCode != 200 {
        t.Fatalf("unexpected page: %+v", page)
    }
}

func TestGet_MeasuresElapsed(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _, _ = w.Write([]byte("ok"))
    }))
    defer srv.Close()

    base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
    var calls int32
    c := &Client{now: func() time.Time {
        n := atomic.AddInt32(&calls, 1)
        return base.Add(time.Duration(n-1) * 1500 * time.Millisecond)
    }}
    page, err := c.Get(context.Background(), srv.URL)
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if page.Elapsed != 1500*time.Millisecond || page.LoadTimeSeconds() != 1.5 {
        t.Fatalf("elapsed=%v", page.Elapsed)
    }
}

func TestGet_NoRetryAndNon2xxIsNotAnError(t *testing.T) {
    var calls int32
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        atomic.AddInt32(&calls, 1)
        w.WriteHeader(http.StatusBadGateway)
        _, _ = w.Write([]byte("<h1>Bad gateway</h1>"))
    }))
    defer srv.Close()

    page, err := (&Client{}).Get(context.Background(), srv.URL)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if page.StatusCode != http.StatusBadGateway {
        t.Fatalf("status=%d", page.StatusCode)
    }
    if atomic.LoadInt32(&calls) != 1 {
        t.Fatalf("expected exactly one request, got %d", calls)
    }
}

func TestGet_Timeout(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        select {
        case <-r.Context().Done():
        case <-time.After(2 * time.Second):
        }
    }))
    defer srv.Close()

    c := &Client{Timeout: 50 * time.Millisecond}
    _, err := c.Get(context.Background(), srv.URL)
    if !errors.Is(err, ErrTimeout) {
        t.Fatalf("expected ErrTimeout, got %v", err)
    }
}

func TestGet_NetworkError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
    url := srv.URL
    srv.Close()

    _, err := (&Client{}).Get(context.Background(), url)
    if !errors.Is(err, ErrNetwork) {
        t.Fatalf("expected ErrNetwork, got %v", err)
    }
}

func TestGet_RejectsNonHTTP(t *testing.T) {
    _, err := (&Client{}).Get(context.Background(), "file:///etc/hosts")
    if !errors.Is(err, ErrNetwork) {
        t.Fatalf("expected ErrNetwork for non-http scheme, got %v", err)
    }
}

func TestGet_RedirectLimit(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path == "/" {
            http.Redirect(w, r, "/next", http.StatusFound)
            return
        }
        _, _ = w.Write([]byte("ok"))
    }))
    defer srv.Close()

    if _, err := (&Client{RedirectMaxHops: 2}).Get(context.Background(), srv.URL); err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    c := &Client{RedirectMaxHops: 1}
    srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Redirect(w, r, "/again"+r.URL.Path, http.StatusFound)
    }))
    defer srv2.Close()
    if _, err := c.Get(context.Background(), srv2.URL); err == nil {
        t.Fatalf("expected redirect limit error")
    }
}

func TestGet_DecodesDeclaredCharset(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
        _, _ = w.Write([]byte("<p>Gr\xf6\xdfe</p>"))
    }))
    defer srv.Close()

    page, err := (&Client{}).Get(context.Background(), srv.URL)
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if string(page.Body) != "<p>Größe</p>" {
        t.Fatalf("body not decoded: %q", page.Body)
    }
}
