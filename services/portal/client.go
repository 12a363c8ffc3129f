package portal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

// Client issues HTTP requests against the reservation portal. It injects the
// scraped session cookies per request and smooths the request rate so sync
// runs don't hammer the portal. The per-request timeout also bounds a stuck
// portal call so the sync-in-progress flag can't leak indefinitely.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a portal client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			// The portal redirects after login; cookies on intermediate
			// responses matter, so follow redirects but keep it bounded.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
	}
}

// Get fetches a portal page with the given session's cookies applied.
func (c *Client) Get(ctx context.Context, path string, query url.Values, session *models.PortalSession) (string, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", WrapError(CodeNetworkError, "failed to build portal request", err)
	}
	body, _, err := c.do(req, session)
	return body, err
}

// PostForm submits a form to the portal and returns the response body along
// with any cookies the portal set (the login flow collects these into a
// session).
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, session *models.PortalSession) (string, []*http.Cookie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", nil, WrapError(CodeNetworkError, "failed to build portal request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, session)
}

func (c *Client) do(req *http.Request, session *models.PortalSession) (string, []*http.Cookie, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return "", nil, WrapError(CodeNetworkError, "portal request cancelled", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	if session != nil {
		for _, ck := range session.Cookies {
			req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
		}
	}

	// The portal sets session cookies on the redirecting login response, not
	// the landing page it redirects to. A per-exchange jar collects cookies
	// from every response in the chain; the jar is not shared between calls
	// so one exchange can't leak state into the next.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", nil, WrapError(CodeNetworkError, "failed to build cookie jar", err)
	}
	httpClient := *c.http
	httpClient.Jar = jar

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", nil, WrapError(CodeNetworkError, "portal unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, NewError(CodeNetworkError, fmt.Sprintf("portal returned status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, WrapError(CodeNetworkError, "failed to read portal response", err)
	}
	raw = decodeCharset(raw, resp.Header.Get("Content-Type"))

	cookies := resp.Cookies()
	seen := make(map[string]bool, len(cookies))
	for _, ck := range cookies {
		seen[ck.Name] = true
	}
	for _, ck := range jar.Cookies(req.URL) {
		if !seen[ck.Name] {
			cookies = append(cookies, ck)
		}
	}
	return string(raw), cookies, nil
}

// decodeCharset converts EUC-KR response bodies to UTF-8. The portal serves
// some pages in its legacy charset.
func decodeCharset(raw []byte, contentType string) []byte {
	ct := strings.ToLower(contentType)
	if !strings.Contains(ct, "euc-kr") && !strings.Contains(ct, "ks_c_5601") {
		return raw
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), korean.EUCKR.NewDecoder()))
	if err != nil {
		return raw
	}
	return decoded
}
