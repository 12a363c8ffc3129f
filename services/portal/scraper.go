package portal

import (
	"context"
	"net/url"
	"strconv"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"go.uber.org/zap"
)

const (
	bookingListPath   = "/mypage/rent/list.do"
	bookingDetailPath = "/mypage/rent/view.do"
)

// ListResult is the outcome of scraping the paginated booking list.
type ListResult struct {
	TotalCount int
	Bookings   []models.BookingRecord
}

// Scraper fetches booking lists and per-booking detail pages using the
// active session. Callers must hold a valid session; the scraper fails
// closed with AUTH_REQUIRED otherwise.
type Scraper interface {
	FetchAllBookings(ctx context.Context, maxPages int) (*ListResult, error)
	FetchBookingDetail(ctx context.Context, externalID string) (*models.BookingDetail, error)
}

// DefaultScraper is the production implementation.
type DefaultScraper struct {
	client   *Client
	sessions SessionStore
	pageSize int
	maxPages int
	logger   *zap.Logger
}

func NewDefaultScraper(client *Client, sessions SessionStore, pageSize, maxPages int, logger *zap.Logger) *DefaultScraper {
	return &DefaultScraper{
		client:   client,
		sessions: sessions,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger,
	}
}

// FetchAllBookings walks the list pages sequentially, stopping early once a
// page comes back short (end of data) or the page bound is hit. The bound
// caps worst-case latency against the portal, not a business limit.
func (s *DefaultScraper) FetchAllBookings(ctx context.Context, maxPages int) (*ListResult, error) {
	if !s.sessions.IsValid() {
		return nil, NewError(CodeAuthRequired, "no valid portal session")
	}
	if maxPages <= 0 || maxPages > s.maxPages {
		maxPages = s.maxPages
	}

	session := s.sessions.Current()
	result := &ListResult{}

	for page := 1; page <= maxPages; page++ {
		query := url.Values{}
		query.Set("pageIndex", strconv.Itoa(page))
		query.Set("recordCount", strconv.Itoa(s.pageSize))

		html, err := s.client.Get(ctx, bookingListPath, query, session)
		if err != nil {
			return nil, err
		}
		records, err := parseBookingList(html)
		if err != nil {
			return nil, err
		}

		result.Bookings = append(result.Bookings, records...)
		if len(records) < s.pageSize {
			break
		}
	}

	result.TotalCount = len(result.Bookings)
	s.logger.Debug("scraped booking list",
		zap.Int("count", result.TotalCount),
		zap.Int("maxPages", maxPages))
	return result, nil
}

// FetchBookingDetail fetches and parses one detail page. A missing region is
// a soft parse failure surfaced as PARSE_ERROR, not an abort of the batch.
func (s *DefaultScraper) FetchBookingDetail(ctx context.Context, externalID string) (*models.BookingDetail, error) {
	if !s.sessions.IsValid() {
		return nil, NewError(CodeAuthRequired, "no valid portal session")
	}

	query := url.Values{}
	query.Set("rsvId", externalID)

	html, err := s.client.Get(ctx, bookingDetailPath, query, s.sessions.Current())
	if err != nil {
		return nil, err
	}
	return parseBookingDetail(html)
}
