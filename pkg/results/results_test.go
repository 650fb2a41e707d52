package results

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const listingHTML = `<html><body class="result_list">
<div class="listContainer">
  <dl><dt class="item_title"><a class="taggedlink" href="/crid/1390001204062164736">観測用既存鉄骨造モデル構造物を用いたオンライン応答実験</a></dt></dl>
  <dl><dt class="item_title"><a class="taggedlink" href="">no href</a></dt></dl>
  <dl><dt class="item_title"><a class="taggedlink" href="/crid/1050845762839862272">
      5分で分かる!   ?
      有名論文</a></dt></dl>
  <dl><dt class="item_title"><a class="taggedlink" href="/crid/1000000000000000000">   </a></dt></dl>
  <dl><dt class="item_title"><a class="taggedlink">missing href</a></dt></dl>
  <dl><dt class="item_title"><a class="taggedlink" href="https://cir.nii.ac.jp/crid/1130848328309201408">ハリー・ポッターと賢者の石</a></dt></dl>
  <dl><dt class="item_author"><a class="taggedlink" href="/crid/999">not a title cell</a></dt></dl>
</div>
<div class="sidebar"><dt class="item_title"><a class="taggedlink" href="/crid/888">outside container</a></dt></div>
</body></html>`

const emptyListingHTML = `<html><body class="result_list">
<div class="listContainer">
  <dl><dt class="item_title"><a class="taggedlink" href="">  </a></dt></dl>
</div></body></html>`

func mustDoc(t *testing.T, html, base string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	if base != "" {
		doc.Url, err = url.Parse(base)
		if err != nil {
			t.Fatalf("failed to parse base URL: %v", err)
		}
	}
	return doc
}

func TestGetSearchResults(t *testing.T) {
	doc := mustDoc(t, listingHTML, "https://cir.nii.ac.jp/all?q=test")

	set, ok := GetSearchResults(doc, false)
	if !ok {
		t.Fatal("GetSearchResults() found nothing")
	}

	want := []Entry{
		{URL: "https://cir.nii.ac.jp/crid/1390001204062164736", Title: "観測用既存鉄骨造モデル構造物を用いたオンライン応答実験"},
		{URL: "https://cir.nii.ac.jp/crid/1050845762839862272", Title: "5分で分かる! ? 有名論文"},
		{URL: "https://cir.nii.ac.jp/crid/1130848328309201408", Title: "ハリー・ポッターと賢者の石"},
	}
	got := set.Entries()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGetSearchResults_NoRows(t *testing.T) {
	doc := mustDoc(t, emptyListingHTML, "https://cir.nii.ac.jp/all?q=none")

	set, ok := GetSearchResults(doc, false)
	if ok || set != nil {
		t.Errorf("GetSearchResults() = (%v, %v), want (nil, false)", set, ok)
	}
	if _, ok := GetSearchResults(doc, true); ok {
		t.Error("GetSearchResults(checkOnly) = true on page without rows")
	}
}

func TestGetSearchResults_CheckOnly(t *testing.T) {
	doc := mustDoc(t, listingHTML, "https://cir.nii.ac.jp/all?q=test")

	set, ok := GetSearchResults(doc, true)
	if !ok {
		t.Fatal("GetSearchResults(checkOnly) = false, want true")
	}
	if set != nil {
		t.Errorf("GetSearchResults(checkOnly) returned a set: %+v", set.Entries())
	}
	if !HasSearchResults(doc) {
		t.Error("HasSearchResults() = false, want true")
	}
}

func TestGetSearchResults_RelativeHrefWithoutBase(t *testing.T) {
	doc := mustDoc(t, listingHTML, "")

	set, ok := GetSearchResults(doc, false)
	if !ok {
		t.Fatal("GetSearchResults() found nothing")
	}
	if set.Len() != 1 {
		t.Fatalf("Len() = %d, want only the absolute href", set.Len())
	}
	if _, ok := set.Title("https://cir.nii.ac.jp/crid/1130848328309201408"); !ok {
		t.Error("absolute href missing from set")
	}
}

func TestSet_DuplicateKeepsPosition(t *testing.T) {
	s := NewSet()
	s.Add("https://a", "first")
	s.Add("https://b", "second")
	s.Add("https://a", "renamed")

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	urls := s.URLs()
	if urls[0] != "https://a" || urls[1] != "https://b" {
		t.Errorf("URLs() = %v, want [https://a https://b]", urls)
	}
	if title, _ := s.Title("https://a"); title != "renamed" {
		t.Errorf("Title() = %q, want %q", title, "renamed")
	}
}
