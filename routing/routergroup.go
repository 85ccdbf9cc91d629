package routing

import (
	"log"
	"net/http"
	"strings"
)

// RouteGroup mounts routes under Prefix, each wrapped by the group's wrappers
// (outermost first) and then by its own.
type RouteGroup struct {
	Router          // [Embedded Interface]
	Prefix          string
	HandlerWrappers []HandlerWrapper // Group Handler Wrappers
}

// Ensure RouteGroup implements Router
var _ Router = (*RouteGroup)(nil)

// fullPattern joins "<method> <subpath>" or "<subpath>" onto the group prefix
func (g *RouteGroup) fullPattern(subpattern string) string {
	full := g.Prefix + subpattern
	if method, subpath, ok := strings.Cut(subpattern, " "); ok {
		full = method + " " + g.Prefix + subpath
	}
	if strings.Contains(full, "//") {
		log.Panicf("[ERROR] Can't Register Router Pattern %s", full)
	}
	return full
}

// Handle registers a route pattern.
//
//	group wrappers [g1 .. gN], route wrappers [r1 .. rM]
//	request -> g1 -> .. -> gN -> r1 -> .. -> rM -> handler
func (g *RouteGroup) Handle(subpattern string, handler http.Handler, handlerWrappers ...HandlerWrapper) {
	wrapped := wrapAll(handler, handlerWrappers)
	wrapped = wrapAll(wrapped, g.HandlerWrappers)
	g.Router.Handle(g.fullPattern(subpattern), wrapped)
}

func (g *RouteGroup) HandleFunc(subpattern string, handleFunc func(http.ResponseWriter, *http.Request), handlerWrappers ...HandlerWrapper) {
	g.Handle(subpattern, http.HandlerFunc(handleFunc), handlerWrappers...)
}

// Group on *RouteGroup makes a Subgroup
//
//	router.Group("/", func(root *RouteGroup) {
//	  root.HandleFunc("POST export", exportHandler)      // "POST /export"
//	  root.Group("export/", func(exp *RouteGroup) {
//	    exp.HandleFunc("POST confirm", confirmHandler)   // "POST /export/confirm"
//	  })
//	})
func (g *RouteGroup) Group(subPrefix string, batch func(*RouteGroup), handlerWrappers ...HandlerWrapper) *RouteGroup {
	subg := &RouteGroup{
		Router:          g.Router,
		Prefix:          g.Prefix + subPrefix,
		HandlerWrappers: append(append([]HandlerWrapper(nil), g.HandlerWrappers...), handlerWrappers...), // never share the parent's backing array
	}

	batch(subg)

	return subg // to do more with this routegroup if any
}

// wrapAll applies wrappers so that wrappers[0] runs first
func wrapAll(h http.Handler, wrappers []HandlerWrapper) http.Handler {
	for i := len(wrappers) - 1; i >= 0; i-- {
		h = wrappers[i].Wrap(h)
	}
	return h
}
