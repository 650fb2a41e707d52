package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/crid/1", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("User-Agent = %q, want %q", got, "test-agent")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>CiNii</title></head><body class="result_list"></body></html>`)
	})
	mux.HandleFunc("/crid/1.ris", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "TY  - JOUR\nER  - \n")
	})
	mux.HandleFunc("/empty.ris", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "  \n")
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/crid/1", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDocument(t *testing.T) {
	srv := newTestServer(t)
	f := NewFetcher("test-agent", 5*time.Second)

	doc, err := f.FetchDocument(context.Background(), srv.URL+"/moved")
	if err != nil {
		t.Fatalf("FetchDocument() error = %v", err)
	}
	if got := doc.Find("title").Text(); got != "CiNii" {
		t.Errorf("title = %q, want %q", got, "CiNii")
	}
	if doc.Url == nil || doc.Url.Path != "/crid/1" {
		t.Errorf("doc.Url = %v, want final URL after redirect", doc.Url)
	}
}

func TestFetchText(t *testing.T) {
	srv := newTestServer(t)
	f := NewFetcher("test-agent", 5*time.Second)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "ris body", path: "/crid/1.ris", want: "TY  - JOUR\nER  - \n"},
		{name: "blank body", path: "/empty.ris", wantErr: ErrEmptyBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.FetchText(context.Background(), srv.URL+tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FetchText() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FetchText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchText_StatusError(t *testing.T) {
	srv := newTestServer(t)
	f := NewFetcher("", 5*time.Second)

	_, err := f.FetchText(context.Background(), srv.URL+"/missing.ris")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("FetchText() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusNotFound)
	}
}

func TestFetch_RejectsNonHTTPScheme(t *testing.T) {
	f := NewFetcher("", time.Second)
	if _, err := f.FetchText(context.Background(), "file:///etc/passwd"); err == nil {
		t.Error("FetchText() with file:// URL should return error")
	}
}
