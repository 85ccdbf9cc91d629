// Package login is the gate in front of the workspace: form, credential check, logout
package login

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/zeptools/pledgedesk/requests"
	"github.com/zeptools/pledgedesk/responses"
	"github.com/zeptools/pledgedesk/throttle"
	"github.com/zeptools/pledgedesk/web/session"
	"github.com/zeptools/pledgedesk/web/views"
)

const ThrottleGroup = "login"

const (
	msgBadCredentials = "اسم المستخدم أو كلمة المرور غير صحيحة"
	msgThrottled      = "محاولات كثيرة، يرجى المحاولة لاحقاً"
	pageTitle         = "تسجيل الدخول"
)

type Handler struct {
	Credentials Credentials
	Sessions    *session.Manager
	Throttle    *throttle.BucketStore[string]
	Views       *views.Views
	TrustProxy  bool
	HomePath    string
	Now         func() time.Time

	// OnLogin runs once the session exists, e.g. to create its workspace
	OnLogin func(info *session.Info)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) home() string {
	if h.HomePath != "" {
		return h.HomePath
	}
	return "/"
}

// ServeForm GET /login
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Sessions.Lookup(r.Context(), r); err == nil {
		http.Redirect(w, r, h.home(), http.StatusSeeOther)
		return
	}
	h.writeForm(w, http.StatusOK, "", "")
}

// Login POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ip := requests.GetClientIP(r, h.TrustProxy)
	if ok, wait := h.Throttle.Take(ThrottleGroup, ip, h.now()); !ok {
		log.Printf("[WARN][LOGIN] throttled %s for %v", ip, wait)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		h.writeForm(w, http.StatusTooManyRequests, "", msgThrottled)
		return
	}
	if err := r.ParseForm(); err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "invalid form")
		return
	}
	username := r.PostFormValue("username")
	if !h.Credentials.Match(username, r.PostFormValue("password")) {
		log.Printf("[WARN][LOGIN] failed attempt from %s", ip)
		h.writeForm(w, http.StatusUnauthorized, username, msgBadCredentials)
		return
	}
	info, err := h.Sessions.Create(r.Context(), w, h.Credentials.Username)
	if err != nil {
		log.Printf("[ERROR][LOGIN] %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if h.OnLogin != nil {
		h.OnLogin(info)
	}
	log.Printf("[INFO][LOGIN] %s logged in from %s", info.Username, ip)
	http.Redirect(w, r, h.home(), http.StatusSeeOther)
}

// Logout POST /logout. The workspace goes with the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Destroy(r.Context(), w, r); err != nil {
		log.Printf("[ERROR][LOGIN] logout: %v", err)
	}
	http.Redirect(w, r, h.Sessions.Conf.LoginPath, http.StatusSeeOther)
}

func (h *Handler) writeForm(w http.ResponseWriter, status int, username string, errMsg string) {
	page, err := h.Views.Render(views.PageLogin, views.LoginView{
		Title:    pageTitle,
		Username: username,
		Error:    errMsg,
		Year:     h.now().Year(),
	})
	if err != nil {
		log.Printf("[ERROR][LOGIN] %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}
	responses.WriteHTMLBytes(w, status, page)
}
