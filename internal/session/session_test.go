package session

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marqueeapp/marquee-server/internal/id"
	"github.com/marqueeapp/marquee-server/internal/logger"
)

func testKey() []byte {
	return bytes.Repeat([]byte{7}, keyLength)
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testKey(), time.Hour)
	require.NoError(t, err)
	return c
}

func TestLoadOrGenerateKey_CreatesThenReuses(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "meta")

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyLength)

	info, err := os.Stat(filepath.Join(dir, keyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadOrGenerateKey_RejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, keyFileName), []byte("short"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}

func TestNewCodec_KeyLength(t *testing.T) {
	_, err := NewCodec([]byte("too short"), time.Hour)
	assert.Error(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t)
	sid := id.MustGenerate(id.PrefixSession)

	token, exp := c.Issue(sid)
	assert.True(t, exp.After(time.Now()))

	got, err := c.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, sid, got)
}

func TestCodec_RejectsExpired(t *testing.T) {
	c := newTestCodec(t)
	token, _ := c.Issue(id.MustGenerate(id.PrefixSession))

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := c.Verify(token)
	assert.Error(t, err)
}

func TestCodec_RejectsForeignKeyAndGarbage(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec(bytes.Repeat([]byte{9}, keyLength), time.Hour)
	require.NoError(t, err)

	token, _ := other.Issue(id.MustGenerate(id.PrefixSession))
	_, err = c.Verify(token)
	assert.Error(t, err)

	_, err = c.Verify("not-a-token")
	assert.Error(t, err)
}

func TestCodec_RejectsNonSessionSubject(t *testing.T) {
	c := newTestCodec(t)
	token, _ := c.Issue("../../etc/passwd")

	_, err := c.Verify(token)
	assert.Error(t, err)
}

func echoSession(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, ok := IDFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(sid))
	})
}

func TestMiddleware_IssuesCookieForNewVisitor(t *testing.T) {
	c := newTestCodec(t)
	h := Middleware(c, true, logger.Discard())(echoSession(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Zero(t, cookie.MaxAge)
	assert.True(t, cookie.Expires.IsZero())

	sid, err := c.Verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, sid, rec.Body.String())
}

func TestMiddleware_ReusesValidCookie(t *testing.T) {
	c := newTestCodec(t)
	h := Middleware(c, false, logger.Discard())(echoSession(t))

	sid := id.MustGenerate(id.PrefixSession)
	token, _ := c.Issue(sid)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, sid, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestMiddleware_RefreshesAgingToken(t *testing.T) {
	c := newTestCodec(t)
	h := Middleware(c, false, logger.Discard())(echoSession(t))

	sid := id.MustGenerate(id.PrefixSession)
	c.now = func() time.Time { return time.Now().Add(-40 * time.Minute) }
	token, _ := c.Issue(sid)
	c.now = time.Now

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, sid, rec.Body.String(), "session id survives the refresh")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, token, cookies[0].Value)

	refreshed, exp, err := c.VerifyWithExpiry(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, sid, refreshed)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
}

func TestCodec_NeedsRefresh(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now()
	c.now = func() time.Time { return now }

	assert.False(t, c.NeedsRefresh(now.Add(time.Hour)))
	assert.False(t, c.NeedsRefresh(now.Add(31*time.Minute)))
	assert.True(t, c.NeedsRefresh(now.Add(29*time.Minute)))
}

func TestMiddleware_ReplacesTamperedCookie(t *testing.T) {
	c := newTestCodec(t)
	h := Middleware(c, false, logger.Discard())(echoSession(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "v4.local.garbage"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Len(t, rec.Result().Cookies(), 1)
	assert.True(t, id.HasPrefix(rec.Body.String(), id.PrefixSession))
}

func TestIDFromContext_Empty(t *testing.T) {
	_, ok := IDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
