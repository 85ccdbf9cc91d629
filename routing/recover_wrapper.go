package routing

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/zeptools/pledgedesk/responses"
)

const msgInternal = "خطأ غير معروف"

func RecoverWrapper(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Printf("[PANIC] recovered: %v\n%s", rec, debug.Stack())
				responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, msgInternal)
			}
		}()
		inner.ServeHTTP(w, r)
	})
}
