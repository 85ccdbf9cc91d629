package routing

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type tagWrapper string

func (t tagWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("X-Trace", string(t))
		inner.ServeHTTP(w, r)
	})
}

func TestRouteGroup_PatternsAndWrapperOrder(t *testing.T) {
	router := NewBaseRouter(HandlerWrapperFunc(RecoverWrapper))
	router.Group("/", func(root *RouteGroup) {
		root.HandleFunc("GET {$}", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("home")) })
		root.Group("export/", func(exp *RouteGroup) {
			exp.HandleFunc("POST confirm", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("confirm")) }, tagWrapper("route"))
		}, tagWrapper("sub"))
		root.HandleFunc("GET panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
	}, tagWrapper("group"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "home", w.Body.String())
	assert.Equal(t, []string{"group"}, w.Header().Values("X-Trace"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/export/confirm", nil))
	assert.Equal(t, "confirm", w.Body.String())
	assert.Equal(t, []string{"group", "sub", "route"}, w.Header().Values("X-Trace"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), msgInternal))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccessLogWrapper_PassesStatus(t *testing.T) {
	h := AccessLogWrapper(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
