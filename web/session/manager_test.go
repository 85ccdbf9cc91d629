package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/pledgedesk/db/kvdb/impls/memory"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newManager(t *testing.T) (*Manager, *memory.Client, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)}
	kv := memory.New()
	kv.Now = clk.Now
	require.NoError(t, kv.Init())
	m, err := NewManager("pledgedesk", Conf{ExpireSliding: 60, ExpireHardcap: 300}, kv)
	require.NoError(t, err)
	m.Now = clk.Now
	return m, kv, clk
}

// requestWithCookies replays the cookies a response set
func requestWithCookies(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestManager_CreateLookup(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	w := httptest.NewRecorder()
	info, err := m.Create(ctx, w, "ghaith")
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	assert.NotContains(t, cookies[0].Value, info.ID, "cookie carries the sealed id only")

	got, err := m.Lookup(ctx, requestWithCookies(w))
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)
	assert.Equal(t, "ghaith", got.Username)
}

func TestManager_LookupRejects(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	_, err := m.Lookup(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "forged"})
	_, err = m.Lookup(ctx, r)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_SlidingAndHardcap(t *testing.T) {
	m, _, clk := newManager(t)
	ctx := context.Background()
	var ended []string
	m.OnEnd = func(id string) { ended = append(ended, id) }

	w := httptest.NewRecorder()
	info, err := m.Create(ctx, w, "ghaith")
	require.NoError(t, err)

	// every lookup inside the sliding window extends it
	for i := 0; i < 5; i++ {
		clk.now = clk.now.Add(50 * time.Second)
		_, err = m.Lookup(ctx, requestWithCookies(w))
		require.NoError(t, err, "lookup %d", i)
	}

	clk.now = clk.now.Add(50 * time.Second) // 300s since login, still inside the sliding window
	_, err = m.Lookup(ctx, requestWithCookies(w))
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, []string{info.ID}, ended)
}

func TestManager_IdleExpiry(t *testing.T) {
	m, _, clk := newManager(t)
	ctx := context.Background()

	w := httptest.NewRecorder()
	_, err := m.Create(ctx, w, "ghaith")
	require.NoError(t, err)

	clk.now = clk.now.Add(61 * time.Second)
	_, err = m.Lookup(ctx, requestWithCookies(w))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_Destroy(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()
	var ended []string
	m.OnEnd = func(id string) { ended = append(ended, id) }

	w := httptest.NewRecorder()
	info, err := m.Create(ctx, w, "ghaith")
	require.NoError(t, err)
	r := requestWithCookies(w)

	out := httptest.NewRecorder()
	require.NoError(t, m.Destroy(ctx, out, r))
	assert.Equal(t, []string{info.ID}, ended)
	alive, err := m.Alive(ctx, info.ID)
	require.NoError(t, err)
	assert.False(t, alive)

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRequireWrapper(t *testing.T) {
	m, _, _ := newManager(t)
	var seen *Info
	h := RequireWrapper{Manager: m}.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = InfoFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, DefaultLoginPath, w.Header().Get("Location"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fields", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	login := httptest.NewRecorder()
	info, err := m.Create(context.Background(), login, "ghaith")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, requestWithCookies(login))
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, info.ID, seen.ID)
}
