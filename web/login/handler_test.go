package login

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/pledgedesk/db/kvdb/impls/memory"
	"github.com/zeptools/pledgedesk/render"
	"github.com/zeptools/pledgedesk/throttle"
	"github.com/zeptools/pledgedesk/web/session"
	"github.com/zeptools/pledgedesk/web/views"
)

func TestCredentials_Match(t *testing.T) {
	c := Credentials{}.WithDefaults()
	assert.True(t, c.Match("ghaith", "ghaith"))
	assert.True(t, c.Match("GHAITH", "ghaith"))
	assert.True(t, c.Match("Ghaith", "ghaith"))
	assert.False(t, c.Match("ghaith", "GHAITH"))
	assert.False(t, c.Match("ghaith ", "ghaith"))
	assert.False(t, c.Match("", ""))

	straße := Credentials{Username: "straße", Password: "x"}
	assert.True(t, straße.Match("STRASSE", "x"))
}

type fixture struct {
	h      *Handler
	logins []*session.Info
	ended  []string
}

func newFixture(t *testing.T, burst int) *fixture {
	t.Helper()
	kv := memory.New()
	require.NoError(t, kv.Init())
	mgr, err := session.NewManager("pledgedesk", session.Conf{}, kv)
	require.NoError(t, err)

	store, err := render.NewStore("")
	require.NoError(t, err)
	v, err := views.New(store)
	require.NoError(t, err)

	th := throttle.NewBucketStore[string](context.Background(), time.Minute, time.Hour)
	th.SetBucketGroup(ThrottleGroup, throttle.BucketConf{Burst: burst, Increment: 1, Period: time.Minute})

	f := &fixture{}
	mgr.OnEnd = func(id string) { f.ended = append(f.ended, id) }
	f.h = &Handler{
		Credentials: Credentials{}.WithDefaults(),
		Sessions:    mgr,
		Throttle:    th,
		Views:       v,
		OnLogin:     func(info *session.Info) { f.logins = append(f.logins, info) },
	}
	return f
}

func postLogin(h *Handler, user string, pass string) *httptest.ResponseRecorder {
	form := url.Values{"username": {user}, "password": {pass}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.RemoteAddr = "127.0.0.1:40000"
	w := httptest.NewRecorder()
	h.Login(w, r)
	return w
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t, 5)
	w := postLogin(f.h, "GHAITH", "ghaith")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.DefaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	require.Len(t, f.logins, 1)
	assert.Equal(t, "ghaith", f.logins[0].Username)

	// already logged in
	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	r.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	f.h.ServeForm(w, r)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	// logout ends the session
	r = httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	f.h.Logout(w, r)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, []string{f.logins[0].ID}, f.ended)

	r = httptest.NewRequest(http.MethodGet, "/login", nil)
	r.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	f.h.ServeForm(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_WrongCredentials(t *testing.T) {
	f := newFixture(t, 5)
	w := postLogin(f.h, "ghaith", "wrong")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), msgBadCredentials)
	assert.Contains(t, w.Body.String(), `value="ghaith"`)
	assert.Empty(t, w.Result().Cookies())
	assert.Empty(t, f.logins)
}

func TestLogin_Throttled(t *testing.T) {
	f := newFixture(t, 2)
	assert.Equal(t, http.StatusUnauthorized, postLogin(f.h, "x", "y").Code)
	assert.Equal(t, http.StatusUnauthorized, postLogin(f.h, "x", "y").Code)

	w := postLogin(f.h, "ghaith", "ghaith")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), msgThrottled)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Empty(t, f.logins)
}

func TestServeForm(t *testing.T) {
	f := newFixture(t, 5)
	w := httptest.NewRecorder()
	f.h.ServeForm(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), pageTitle)
}
