package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dtnitsch/cinii-translator/models"
	"github.com/dtnitsch/cinii-translator/pkg/db"
	"github.com/dtnitsch/cinii-translator/pkg/fetcher"
	"github.com/dtnitsch/cinii-translator/pkg/results"
	"github.com/dtnitsch/cinii-translator/pkg/selector"
	"github.com/dtnitsch/cinii-translator/pkg/storage"
	"github.com/dtnitsch/cinii-translator/pkg/translator"
)

const (
	bookCRID    = "1130848328309201408"
	articleCRID = "1390001204062164736"
)

func recordPage(schemaType string) string {
	return `<html><head><script type="application/ld+json">{"@context":"https://schema.org","@graph":[{"@type":"` +
		schemaType + `"}]}</script></head><body class="crid"></body></html>`
}

const listingPage = `<html><body class="result_list"><div class="listContainer">
<dl><dt class="item_title"><a class="taggedlink" href="/crid/` + bookCRID + `">ハリー・ポッターと賢者の石</a></dt></dl>
<dl><dt class="item_title"><a class="taggedlink" href="/crid/` + articleCRID + `">FPGAを用いた</a></dt></dl>
</div></body></html>`

// citeServer imitates a CiNii host. Paths missing from routes return 404.
type citeServer struct {
	*httptest.Server
	mu       sync.Mutex
	routes   map[string]string
	requests []string
}

func newCiteServer(t *testing.T) *citeServer {
	t.Helper()
	s := &citeServer{routes: map[string]string{
		"/all":                          listingPage,
		"/crid/" + bookCRID:             recordPage("Book"),
		"/crid/" + bookCRID + ".ris":    readFixture(t, bookCRID),
		"/crid/" + articleCRID:          recordPage("ScholarlyArticle"),
		"/crid/" + articleCRID + ".ris": readFixture(t, articleCRID),
	}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.Path)
		body, ok := s.routes[r.URL.Path]
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".ris") {
			w.Header().Set("Content-Type", "application/x-research-info-systems")
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *citeServer) host(t *testing.T) string {
	u, err := url.Parse(s.URL)
	if err != nil {
		t.Fatal(err)
	}
	return u.Host
}

func (s *citeServer) risRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.requests {
		if strings.HasSuffix(p, ".ris") {
			n++
		}
	}
	return n
}

func readFixture(t *testing.T, crid string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "ris", "testdata", crid+".ris"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return string(data)
}

func testOptions(t *testing.T, srv *citeServer, pageURL string, sel translator.Selector, library *db.DB) Options {
	config := models.DefaultConfig()
	config.Host = srv.host(t)
	return Options{
		PageURL:  pageURL,
		Config:   config,
		Selector: sel,
		Fetcher:  fetcher.NewFetcher(config.UserAgent, 5*time.Second),
		Library:  library,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func openLibrary(t *testing.T) *db.DB {
	t.Helper()
	library, err := db.Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	t.Cleanup(func() { library.Close() })
	return library
}

type cancellingSelector struct{}

func (cancellingSelector) SelectItems(ctx context.Context, set *results.Set) ([]string, error) {
	return nil, translator.ErrSelectionCancelled
}

func TestRun_RecordPage(t *testing.T) {
	srv := newCiteServer(t)
	library := openLibrary(t)
	pageURL := srv.URL + "/crid/" + bookCRID

	outcome, err := Run(context.Background(), testOptions(t, srv, pageURL, selector.All{}, library))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(outcome.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(outcome.Items))
	}
	item := outcome.Items[0]
	if item.ItemType != "book" || item.Title != "ハリー・ポッターと賢者の石" {
		t.Errorf("item = %s %q", item.ItemType, item.Title)
	}
	if item.LibraryCatalog != "CiNii" {
		t.Errorf("LibraryCatalog = %q, want CiNii", item.LibraryCatalog)
	}

	m := outcome.Manifest
	if m.Status != "success" || m.PageType != "book" || m.ItemCount != 1 {
		t.Errorf("manifest = %+v", m)
	}
	if m.Items[0].ItemID == 0 {
		t.Error("manifest should carry the library item id")
	}

	saved, err := library.GetItem(context.Background(), m.Items[0].ItemID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if saved.ISBN != "9784863895201" {
		t.Errorf("saved ISBN = %q", saved.ISBN)
	}

	n, err := library.CountAccesses(context.Background(), pageURL+".ris")
	if err != nil {
		t.Fatalf("CountAccesses() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountAccesses() = %d, want 1", n)
	}
}

func TestRun_SearchPageStaticSelection(t *testing.T) {
	srv := newCiteServer(t)

	outcome, err := Run(context.Background(), testOptions(t, srv, srv.URL+"/all?q=test", selector.Static{Expr: "2"}, nil))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(outcome.Items) != 1 || outcome.Items[0].ItemType != "journalArticle" {
		t.Fatalf("items = %+v", outcome.Items)
	}
	if outcome.Manifest.PageType != "multiple" {
		t.Errorf("PageType = %q, want multiple", outcome.Manifest.PageType)
	}
	if got := srv.risRequests(); got != 1 {
		t.Errorf("RIS requests = %d, want 1", got)
	}
}

func TestRun_Cancelled(t *testing.T) {
	srv := newCiteServer(t)

	outcome, err := Run(context.Background(), testOptions(t, srv, srv.URL+"/all", cancellingSelector{}, nil))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(outcome.Items) != 0 {
		t.Errorf("got %d items after cancel", len(outcome.Items))
	}
	if outcome.Manifest.Status != "cancelled" {
		t.Errorf("Status = %q, want cancelled", outcome.Manifest.Status)
	}
	if got := srv.risRequests(); got != 0 {
		t.Errorf("RIS requests = %d, want 0", got)
	}
}

func TestRun_BatchStopsAtFirstFailure(t *testing.T) {
	srv := newCiteServer(t)
	delete(srv.routes, "/crid/"+articleCRID+".ris")
	library := openLibrary(t)

	outcome, err := Run(context.Background(), testOptions(t, srv, srv.URL+"/all", selector.All{}, library))
	if !errors.Is(err, translator.ErrFetch) {
		t.Fatalf("Run() error = %v, want ErrFetch", err)
	}
	if !strings.Contains(err.Error(), "item 2 of 2") {
		t.Errorf("error should name the failing item: %v", err)
	}

	if len(outcome.Items) != 1 || outcome.Items[0].ItemType != "book" {
		t.Errorf("items committed before failure = %+v", outcome.Items)
	}
	if outcome.Manifest.Status != "error" || outcome.Manifest.Error == "" {
		t.Errorf("manifest = %+v", outcome.Manifest)
	}

	items, err := library.ListItems(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 1 {
		t.Errorf("library has %d items, want 1", len(items))
	}
}

func TestRun_PageFetchFails(t *testing.T) {
	srv := newCiteServer(t)

	outcome, err := Run(context.Background(), testOptions(t, srv, srv.URL+"/crid/999", selector.All{}, nil))
	if !errors.Is(err, translator.ErrFetch) {
		t.Fatalf("Run() error = %v, want ErrFetch", err)
	}
	if outcome.Manifest.Status != "error" {
		t.Errorf("Status = %q, want error", outcome.Manifest.Status)
	}
}

func TestWriteItems(t *testing.T) {
	items := []*models.Item{{ItemType: "book", Title: "ハリー・ポッターと賢者の石"}}
	s := &storage.Storage{}

	var stdout bytes.Buffer
	if err := writeItems("", "json", items, s, &stdout); err != nil {
		t.Fatalf("writeItems() error = %v", err)
	}
	if !strings.Contains(stdout.String(), `"title": "ハリー・ポッターと賢者の石"`) {
		t.Errorf("JSON output = %s", stdout.String())
	}

	path := filepath.Join(t.TempDir(), "out", "items.yaml")
	if err := writeItems(path, "yaml", items, s, &stdout); err != nil {
		t.Fatalf("writeItems() error = %v", err)
	}
	data, err := s.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "itemType: book") {
		t.Errorf("YAML output = %s", data)
	}

	stdout.Reset()
	if err := writeItems("", "yaml", nil, s, &stdout); err != nil {
		t.Fatalf("writeItems() error = %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "[]" {
		t.Errorf("empty output = %q, want []", stdout.String())
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&fetcher.StatusError{URL: "u", StatusCode: 404}, errorTypeStatus},
		{fmt.Errorf("wrap: %w", fetcher.ErrEmptyBody), errorTypeEmpty},
		{errors.New("connection refused"), errorTypeFetch},
	}
	for _, tt := range tests {
		if got := classifyError(tt.err); got != tt.want {
			t.Errorf("classifyError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
