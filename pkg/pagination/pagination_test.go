package pagination

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(contextWithQuery(""))

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_Clamping(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"limit=5&offset=10", 5, 10},
		{"limit=500", MaxLimit, 0},
		{"limit=-3&offset=-1", DefaultLimit, 0},
		{"limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := FromContext(contextWithQuery(tt.query))
			if p.Limit != tt.limit || p.Offset != tt.offset {
				t.Errorf("expected %d/%d, got %d/%d", tt.limit, tt.offset, p.Limit, p.Offset)
			}
		})
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	resp := Page(items, Params{Limit: 2, Offset: 2})
	window := resp.Data.([]int)
	if len(window) != 2 || window[0] != 3 || window[1] != 4 {
		t.Errorf("unexpected window %v", window)
	}
	if resp.Total != 5 || !resp.HasMore {
		t.Errorf("expected total 5 with more, got %+v", resp)
	}

	last := Page(items, Params{Limit: 2, Offset: 4})
	if got := last.Data.([]int); len(got) != 1 || last.HasMore {
		t.Errorf("unexpected last page %+v", last)
	}
}

func TestPage_OffsetPastEnd(t *testing.T) {
	resp := Page([]string{"a"}, Params{Limit: 10, Offset: 50})
	window, ok := resp.Data.([]string)
	if !ok || window == nil || len(window) != 0 {
		t.Errorf("expected empty non-nil window, got %#v", resp.Data)
	}
}

func TestParams_Offsets(t *testing.T) {
	p := Params{Limit: 10, Offset: 5}
	if p.NextOffset() != 15 {
		t.Errorf("expected next offset 15, got %d", p.NextOffset())
	}
	if p.PreviousOffset() != 0 {
		t.Errorf("expected previous offset clamped to 0, got %d", p.PreviousOffset())
	}
	if !p.HasPrevious() || !p.HasNext(16) || p.HasNext(15) {
		t.Error("unexpected HasPrevious/HasNext")
	}
}

func TestParams_Links(t *testing.T) {
	p := Params{Limit: 10, Offset: 10}
	query := url.Values{"type": {"recipe"}, "limit": {"99"}}

	links := p.Links("/api/v1/content/nutrition", query, 35)
	if links.Self != "/api/v1/content/nutrition?limit=10&offset=10&type=recipe" {
		t.Errorf("unexpected self link %s", links.Self)
	}
	if links.Next != "/api/v1/content/nutrition?limit=10&offset=20&type=recipe" {
		t.Errorf("unexpected next link %s", links.Next)
	}
	if links.Previous != "/api/v1/content/nutrition?limit=10&offset=0&type=recipe" {
		t.Errorf("unexpected previous link %s", links.Previous)
	}

	first := Params{Limit: 10}.Links("/x", nil, 5)
	if first.Next != "" || first.Previous != "" {
		t.Errorf("expected only self on a single page, got %+v", first)
	}
}
