package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func listPageHTML(ids ...string) string {
	var rows strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&rows, `<tr>
			<td>%s</td><td>스튜디오 A</td><td>2026-09-03</td><td>10:00 ~ 11:00</td><td>김민수</td><td>승인</td>
		</tr>`, id)
	}
	return `<table class="tbl_list"><tbody>` + rows.String() + `</tbody></table>`
}

// scrapeFixture serves a fixed set of bookings split into list pages.
type scrapeFixture struct {
	pages    map[int]string
	requests []string
}

func (f *scrapeFixture) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(bookingListPath, func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.RawQuery)
		page, _ := strconv.Atoi(r.URL.Query().Get("pageIndex"))
		body, ok := f.pages[page]
		if !ok {
			body = listPageHTML()
		}
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc(bookingDetailPath, func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.RawQuery)
		if r.URL.Query().Get("rsvId") == "RSV-broken" {
			_, _ = w.Write([]byte(`<html><body>오류가 발생했습니다</body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<table class="tbl_view"><tr><th>문서번호</th><td>MC-1</td></tr></table>`))
	})
	return mux
}

func newScraperFixture(t *testing.T, fixture *scrapeFixture, loggedIn bool) *DefaultScraper {
	t.Helper()
	srv := httptest.NewServer(fixture.handler())
	t.Cleanup(srv.Close)

	store := NewDefaultSessionStore(nil, zap.NewNop())
	if loggedIn {
		store.Set(validSession(time.Hour))
	}
	return NewDefaultScraper(NewClient(srv.URL), store, 2, 5, zap.NewNop())
}

func TestFetchAllBookings_StopsOnShortPage(t *testing.T) {
	fixture := &scrapeFixture{pages: map[int]string{
		1: listPageHTML("RSV-1", "RSV-2"),
		2: listPageHTML("RSV-3"),
		3: listPageHTML("RSV-never-reached"),
	}}
	scraper := newScraperFixture(t, fixture, true)

	result, err := scraper.FetchAllBookings(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	require.Len(t, result.Bookings, 3)
	assert.Equal(t, "RSV-3", result.Bookings[2].ExternalID)
	assert.Len(t, fixture.requests, 2, "short page must end pagination")
}

func TestFetchAllBookings_HonorsPageBound(t *testing.T) {
	fixture := &scrapeFixture{pages: map[int]string{
		1: listPageHTML("RSV-1", "RSV-2"),
		2: listPageHTML("RSV-3", "RSV-4"),
		3: listPageHTML("RSV-5", "RSV-6"),
	}}
	scraper := newScraperFixture(t, fixture, true)

	result, err := scraper.FetchAllBookings(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalCount)
	assert.Len(t, fixture.requests, 2)
}

func TestFetchAllBookings_RequiresSession(t *testing.T) {
	fixture := &scrapeFixture{pages: map[int]string{}}
	scraper := newScraperFixture(t, fixture, false)

	_, err := scraper.FetchAllBookings(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, CodeAuthRequired, CodeOf(err))
	assert.Empty(t, fixture.requests, "must fail closed before touching the portal")
}

func TestFetchBookingDetail(t *testing.T) {
	fixture := &scrapeFixture{}
	scraper := newScraperFixture(t, fixture, true)

	detail, err := scraper.FetchBookingDetail(context.Background(), "RSV-1041")
	require.NoError(t, err)
	assert.Equal(t, "MC-1", detail.DocumentNo)
	require.Len(t, fixture.requests, 1)
	assert.Contains(t, fixture.requests[0], "rsvId=RSV-1041")
}

func TestFetchBookingDetail_MissingRegionIsParseError(t *testing.T) {
	scraper := newScraperFixture(t, &scrapeFixture{}, true)

	_, err := scraper.FetchBookingDetail(context.Background(), "RSV-broken")
	require.Error(t, err)
	assert.Equal(t, CodeParseError, CodeOf(err))
}

func TestFetchBookingDetail_RequiresSession(t *testing.T) {
	scraper := newScraperFixture(t, &scrapeFixture{}, false)

	_, err := scraper.FetchBookingDetail(context.Background(), "RSV-1041")
	require.Error(t, err)
	assert.Equal(t, CodeAuthRequired, CodeOf(err))
}
