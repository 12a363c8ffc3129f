package portal

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"go.uber.org/zap"
)

const (
	loginPath  = "/cmm/login/loginProc.do"
	verifyPath = "/cmm/login/authCodeProc.do"
)

// Markers on the portal's fixed login pages. The portal has no API, so the
// flow is driven off the rendered HTML.
const (
	challengeMarker    = `name="authCode"`       // verification-code form present
	authFailedMarker   = "아이디 또는 비밀번호"  // credential mismatch notice
	codeMismatchMarker = "인증코드가 일치"       // wrong or expired code notice
)

// Credentials are the portal account credentials.
type Credentials struct {
	UserID   string
	Password string
}

// LoginResult is the outcome of a login attempt. When the portal challenged
// for a verification code and none was supplied, NeedsVerification is set
// and the caller must resubmit with a code.
type LoginResult struct {
	NeedsVerification bool
	Session           *models.PortalSession
}

// CodeWaiter supplies emailed verification codes for the automatic login
// path.
type CodeWaiter interface {
	WaitForCode(ctx context.Context, timeout, interval time.Duration) (string, error)
}

// AuthService drives credential login against the portal, covering both the
// manual (caller-supplied code) and automatic (mailbox-retrieved code)
// two-factor paths.
type AuthService interface {
	Login(ctx context.Context, creds Credentials, code string) (*LoginResult, error)
	AutoLogin(ctx context.Context, creds Credentials) (*LoginResult, error)
}

// DefaultAuthService is the production implementation.
type DefaultAuthService struct {
	client   *Client
	sessions SessionStore
	codes    CodeWaiter

	sessionTTL       time.Duration
	codeWaitBudget   time.Duration
	codePollInterval time.Duration

	logger *zap.Logger
}

func NewDefaultAuthService(client *Client, sessions SessionStore, codes CodeWaiter, sessionTTL time.Duration, logger *zap.Logger) *DefaultAuthService {
	return &DefaultAuthService{
		client:           client,
		sessions:         sessions,
		codes:            codes,
		sessionTTL:       sessionTTL,
		codeWaitBudget:   60 * time.Second,
		codePollInterval: 3 * time.Second,
		logger:           logger,
	}
}

// Login submits credentials, optionally with a verification code. If the
// portal challenges and no code was supplied, the result reports
// needsVerification without consuming the credentials.
func (s *DefaultAuthService) Login(ctx context.Context, creds Credentials, code string) (*LoginResult, error) {
	body, cookies, err := s.submitCredentials(ctx, creds)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.Contains(body, authFailedMarker):
		return nil, NewError(CodeAuthFailed, "portal rejected credentials")
	case strings.Contains(body, challengeMarker):
		if code == "" {
			return &LoginResult{NeedsVerification: true}, nil
		}
		return s.submitCode(ctx, cookies, code)
	default:
		return s.complete(ctx, cookies)
	}
}

// AutoLogin submits credentials and, when challenged, polls the mailbox for
// the emailed code within a fixed budget before submitting it.
func (s *DefaultAuthService) AutoLogin(ctx context.Context, creds Credentials) (*LoginResult, error) {
	body, cookies, err := s.submitCredentials(ctx, creds)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.Contains(body, authFailedMarker):
		return nil, NewError(CodeAuthFailed, "portal rejected credentials")
	case strings.Contains(body, challengeMarker):
		s.logger.Info("portal challenged for verification code, polling mailbox",
			zap.Duration("budget", s.codeWaitBudget))
		code, err := s.codes.WaitForCode(ctx, s.codeWaitBudget, s.codePollInterval)
		if err != nil {
			return nil, WrapError(CodeVerificationTimeout, "no verification code arrived in budget", err)
		}
		return s.submitCode(ctx, cookies, code)
	default:
		return s.complete(ctx, cookies)
	}
}

func (s *DefaultAuthService) submitCredentials(ctx context.Context, creds Credentials) (string, []*http.Cookie, error) {
	form := url.Values{}
	form.Set("userId", creds.UserID)
	form.Set("userPw", creds.Password)
	return s.client.PostForm(ctx, loginPath, form, nil)
}

// submitCode completes the two-factor step. The challenge response's cookies
// carry the pending login, so they are replayed with the code.
func (s *DefaultAuthService) submitCode(ctx context.Context, pending []*http.Cookie, code string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("authCode", code)

	body, cookies, err := s.client.PostForm(ctx, verifyPath, form, sessionFromCookies(pending, time.Time{}))
	if err != nil {
		return nil, err
	}
	if strings.Contains(body, codeMismatchMarker) || strings.Contains(body, challengeMarker) {
		return nil, NewError(CodeInvalidCode, "portal rejected verification code")
	}
	return s.complete(ctx, mergeCookies(pending, cookies))
}

// complete builds the session from the accumulated cookies and stores it.
func (s *DefaultAuthService) complete(ctx context.Context, cookies []*http.Cookie) (*LoginResult, error) {
	if len(cookies) == 0 {
		return nil, NewError(CodeAuthFailed, "portal returned no session cookies")
	}

	session := sessionFromCookies(cookies, time.Now().Add(s.sessionTTL))
	s.sessions.Set(session)
	s.sessions.Persist(ctx)
	s.logger.Info("portal login succeeded", zap.Time("expiresAt", session.ExpiresAt))

	return &LoginResult{Session: session}, nil
}

func sessionFromCookies(cookies []*http.Cookie, expiresAt time.Time) *models.PortalSession {
	session := &models.PortalSession{ExpiresAt: expiresAt}
	for _, ck := range cookies {
		session.Cookies = append(session.Cookies, models.SessionCookie{
			Name:   ck.Name,
			Value:  ck.Value,
			Domain: ck.Domain,
			Path:   ck.Path,
		})
	}
	return session
}

// mergeCookies overlays later cookies over earlier ones by name, preserving
// first-seen order.
func mergeCookies(base, overlay []*http.Cookie) []*http.Cookie {
	merged := make([]*http.Cookie, 0, len(base)+len(overlay))
	index := make(map[string]int)
	for _, ck := range append(append([]*http.Cookie{}, base...), overlay...) {
		if i, seen := index[ck.Name]; seen {
			merged[i] = ck
			continue
		}
		index[ck.Name] = len(merged)
		merged = append(merged, ck)
	}
	return merged
}
