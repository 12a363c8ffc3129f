package portal

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

func TestClient_DecodesEUCKRResponses(t *testing.T) {
	encoded, err := io.ReadAll(transform.NewReader(
		strings.NewReader("승인대기 상태입니다"), korean.EUCKR.NewEncoder()))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		_, _ = w.Write(encoded)
	}))
	t.Cleanup(srv.Close)

	body, err := NewClient(srv.URL).Get(context.Background(), "/page", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, body, "승인대기")
}

func TestClient_PassesUTF8Through(t *testing.T) {
	utf8Body := "승인 완료"
	assert.Equal(t, []byte(utf8Body), decodeCharset([]byte(utf8Body), "text/html; charset=UTF-8"))
	assert.Equal(t, []byte(utf8Body), decodeCharset([]byte(utf8Body), ""))
}

func TestClient_SendsSessionCookies(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("JSESSIONID"); err == nil {
			gotCookie = ck.Value
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL).Get(context.Background(), "/page", nil, validSession(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "abc123", gotCookie)
}

func TestClient_NonSuccessStatusIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL).Get(context.Background(), "/page", nil, nil)
	require.Error(t, err)
	assert.Equal(t, CodeNetworkError, CodeOf(err))
}

func TestClient_PostFormReturnsSetCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "sto", r.PostFormValue("userId"))
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "fresh"})
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	form := url.Values{}
	form.Set("userId", "sto")
	_, cookies, err := NewClient(srv.URL).PostForm(context.Background(), "/login", form, nil)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "fresh", cookies[0].Value)
}

func TestDecodeCharset_InvalidBytesFallBackVerbatim(t *testing.T) {
	raw := bytes.Repeat([]byte{0xff}, 4)
	out := decodeCharset(raw, "text/html; charset=euc-kr")
	assert.NotNil(t, out)
}
