package session

import (
	"errors"
	"log"
	"net/http"

	"github.com/zeptools/pledgedesk/responses"
)

// RequireWrapper rejects requests without a live session.
// Page loads are redirected to the login path, everything else gets 401.
type RequireWrapper struct {
	Manager *Manager
}

func (rw RequireWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := rw.Manager.Lookup(r.Context(), r)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				log.Printf("[ERROR][SESSION] %v", err)
			}
			if r.Method == http.MethodGet {
				http.Redirect(w, r, rw.Manager.Conf.LoginPath, http.StatusSeeOther)
				return
			}
			responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "انتهت الجلسة، يرجى تسجيل الدخول مجدداً")
			return
		}
		inner.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
	})
}
