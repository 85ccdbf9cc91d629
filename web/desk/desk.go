// Package desk serves the operator workspace: form updates, image slots,
// live previews and the confirmed export.
package desk

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/zeptools/pledgedesk/export"
	"github.com/zeptools/pledgedesk/gate"
	"github.com/zeptools/pledgedesk/record"
	"github.com/zeptools/pledgedesk/render"
	"github.com/zeptools/pledgedesk/responses"
	"github.com/zeptools/pledgedesk/routing"
	"github.com/zeptools/pledgedesk/web/session"
	"github.com/zeptools/pledgedesk/web/views"
	"github.com/zeptools/pledgedesk/workspace"
)

const DefaultMaxUploadMemory = 32 << 20

const (
	msgNotImage   = "الملف المختار ليس صورة"
	msgNotOpen    = "يرجى تأكيد التصدير أولاً"
	msgTicket     = "انتهت صلاحية التأكيد، يرجى المحاولة مجدداً"
	msgBadRequest = "طلب غير صالح"
	msgNoPage     = "الصفحة غير موجودة"
)

type Desk struct {
	Registry *workspace.Registry
	Renderer *render.Renderer
	Views    *views.Views
	Pipeline *export.Pipeline

	MaxUploadMemory int64 // multipart parse memory, the rest spills to temp files
	Now             func() time.Time
}

func (d *Desk) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Register mounts every workspace route behind auth
func (d *Desk) Register(router *routing.BaseRouter, auth routing.HandlerWrapper) {
	router.Group("/", func(g *routing.RouteGroup) {
		g.HandleFunc("GET {$}", d.Home)
		g.HandleFunc("POST fields", d.UpdateFields)
		g.HandleFunc("POST images/{slot}", d.UploadImage)
		g.HandleFunc("POST images/{slot}/remove", d.RemoveImage)
		g.HandleFunc("GET preview/{page}", d.Preview)
		g.HandleFunc("POST export", d.Export)
		g.Group("export/", func(exp *routing.RouteGroup) {
			exp.HandleFunc("POST confirm", d.OpenGate)
			exp.HandleFunc("POST cancel", d.CancelGate)
			exp.HandleFunc("GET status", d.Status)
		})
	}, auth)
}

// workspaceOf finds the session's workspace. A live session without one
// (sessions kept in redis across a restart) gets a fresh empty workspace.
func (d *Desk) workspaceOf(r *http.Request) (*workspace.Workspace, bool) {
	info, ok := session.InfoFromContext(r.Context())
	if !ok {
		return nil, false
	}
	if ws, ok := d.Registry.Get(info.ID); ok {
		return ws, true
	}
	return d.Registry.Create(info.ID, info.Username), true
}

func (d *Desk) withWorkspace(w http.ResponseWriter, r *http.Request, fn func(ws *workspace.Workspace)) {
	ws, ok := d.workspaceOf(r)
	if !ok {
		responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, msgBadRequest)
		return
	}
	fn(ws)
}

// Home GET /
func (d *Desk) Home(w http.ResponseWriter, r *http.Request) {
	d.withWorkspace(w, r, func(ws *workspace.Workspace) {
		snap := ws.Snapshot()
		state := ws.Gate.State()
		page, err := d.Views.Render(views.PageWorkspace, views.WorkspaceView{
			Title:    "منصة تعهدات المراقبين",
			Username: ws.Username,
			Sections: []views.FormSection{
				formSection("بيانات المرشح (الطرف الأول)", candidateFields, &snap),
				formSection("بيانات المراقب (الطرف الثاني)", observerFields, &snap),
			},
			Slots:      slotViews(&snap),
			Generating: state == gate.Generating,
			GateOpen:   state == gate.Open,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		responses.WriteHTMLBytes(w, http.StatusOK, page)
	})
}

// UpdateFields POST /fields. Unknown keys reject the whole update.
func (d *Desk) UpdateFields(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	d.withWorkspace(w, r, func(ws *workspace.Workspace) {
		err := ws.Do(func(rec *record.ObserverRecord) error {
			next := rec.Snapshot()
			for key, vals := range r.PostForm {
				if len(vals) == 0 {
					continue
				}
				if err := next.SetField(key, vals[len(vals)-1]); err != nil {
					return err
				}
			}
			*rec = next
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		responses.WriteOK(w)
	})
}

// UploadImage POST /images/{slot} with multipart field "file"
func (d *Desk) UploadImage(w http.ResponseWriter, r *http.Request) {
	slot, err := record.ParseSlot(r.PathValue("slot"))
	if err != nil {
		writeError(w, err)
		return
	}
	maxMem := d.MaxUploadMemory
	if maxMem <= 0 {
		maxMem = DefaultMaxUploadMemory
	}
	if err = r.ParseMultipartForm(maxMem); err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()
	file, _, err := r.FormFile("file")
	if err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	defer file.Close()

	// read and decode before touching the record
	img, err := record.LoadImage(r.Context(), file)
	if err != nil {
		writeError(w, err)
		return
	}
	d.withWorkspace(w, r, func(ws *workspace.Workspace) {
		err := ws.Do(func(rec *record.ObserverRecord) error {
			return rec.SetImage(slot, img)
		})
		if err != nil {
			writeError(w, err)
			return
		}
		responses.WriteOK(w)
	})
}

// RemoveImage POST /images/{slot}/remove
func (d *Desk) RemoveImage(w http.ResponseWriter, r *http.Request) {
	slot, err := record.ParseSlot(r.PathValue("slot"))
	if err != nil {
		writeError(w, err)
		return
	}
	d.withWorkspace(w, r, func(ws *workspace.Workspace) {
		_ = ws.Do(func(rec *record.ObserverRecord) error {
			return rec.SetImage(slot, nil)
		})
		responses.WriteOK(w)
	})
}

// Preview GET /preview/{page}. Same templates as the export.
func (d *Desk) Preview(w http.ResponseWriter, r *http.Request) {
	page := r.PathValue("page")
	d.withWorkspace(w, r, func(ws *workspace.Workspace) {
		snap := ws.Snapshot()
		out, err := d.Renderer.Render(page, &snap, d.now())
		if err != nil {
			writeError(w, err)
			return
		}
		responses.WriteHTMLBytes(w, http.StatusOK, out)
	})
}

type gateResponse struct {
	Type   string `json:"type"`
	Ticket string `json:"ticket,omitempty"`
	State  string `json:"state"`
}

// OpenGate POST /export/confirm runs the guard and hands out a confirmation ticket
func (d *Desk) OpenGate(w http.ResponseWriter, r *http.Request) {
	d.withWorkspace(w, r, func(ws *workspace.Workspace) {
		snap := ws.Snapshot()
		ticket, err := ws.Gate.Open(&snap)
		if err != nil {
			writeError(w, err)
			return
		}
		responses.EncodeWriteJSON(w, http.StatusOK, gateResponse{Type: responses.TypeOK, Ticket: ticket, State: gate.Open.String()})
	})
}

// CancelGate POST /export/cancel
func (d *Desk) CancelGate(w http.ResponseWriter, r *http.Request) {
	d.withWorkspace(w, r, func(ws *workspace.Workspace) {
		if err := ws.Gate.Cancel(); err != nil {
			writeError(w, err)
			return
		}
		responses.EncodeWriteJSON(w, http.StatusOK, gateResponse{Type: responses.TypeOK, State: gate.Closed.String()})
	})
}

// Export POST /export with form field "ticket". The PDF is the response body.
func (d *Desk) Export(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	ticket := r.PostFormValue("ticket")
	d.withWorkspace(w, r, func(ws *workspace.Workspace) {
		saver := export.SaverFunc(func(_ context.Context, filename string, pdf []byte) error {
			return responses.WritePDFAttachment(w, filename, pdf)
		})
		err := ws.Gate.Confirm(r.Context(), ticket, func(ctx context.Context) error {
			snap := ws.Snapshot()
			_, err := d.Pipeline.Run(ctx, ws.SessionID, &snap, d.now(), saver)
			return err
		})
		if err != nil {
			if errors.Is(err, export.ErrSave) {
				// headers may already be out, nothing more can be sent
				log.Printf("[ERROR][DESK] export delivery: %v", err)
				return
			}
			writeError(w, err)
		}
	})
}

type statusResponse struct {
	State      string `json:"state"`
	Generating bool   `json:"generating"`
}

// Status GET /export/status
func (d *Desk) Status(w http.ResponseWriter, r *http.Request) {
	d.withWorkspace(w, r, func(ws *workspace.Workspace) {
		state := ws.Gate.State()
		responses.EncodeWriteJSON(w, http.StatusOK, statusResponse{State: state.String(), Generating: state == gate.Generating})
	})
}

// Healthz GET /healthz, outside auth
func Healthz(w http.ResponseWriter, _ *http.Request) {
	responses.WriteOK(w)
}
