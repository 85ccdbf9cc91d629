package routing

import "net/http"

type BaseRouter struct {
	*http.ServeMux // Embedded
	wrappers       []HandlerWrapper
}

// Ensure BaseRouter implements Router
var _ Router = (*BaseRouter)(nil)

// NewBaseRouter wraps every request, matched or not, with the given wrappers
func NewBaseRouter(handlerWrappers ...HandlerWrapper) *BaseRouter {
	return &BaseRouter{ServeMux: http.NewServeMux(), wrappers: handlerWrappers}
}

func (r *BaseRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	wrapAll(r.ServeMux, r.wrappers).ServeHTTP(w, req)
}

// Handle registers a route pattern
func (r *BaseRouter) Handle(pattern string, handler http.Handler, handlerWrappers ...HandlerWrapper) {
	r.ServeMux.Handle(pattern, wrapAll(handler, handlerWrappers))
}

func (r *BaseRouter) HandleFunc(pattern string, handleFunc func(http.ResponseWriter, *http.Request), handlerWrappers ...HandlerWrapper) {
	r.Handle(pattern, http.HandlerFunc(handleFunc), handlerWrappers...)
}

// Group lets you register routes under a common Prefix + middleware.
func (r *BaseRouter) Group(prefix string, batch func(*RouteGroup), handlerWrappers ...HandlerWrapper) *RouteGroup {
	g := &RouteGroup{
		Router:          r,
		Prefix:          prefix,
		HandlerWrappers: handlerWrappers,
	}

	batch(g)

	return g // to do more with this routegroup if any
}
