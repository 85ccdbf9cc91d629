package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeptools/pledgedesk/conf"
	"github.com/zeptools/pledgedesk/export"
	"github.com/zeptools/pledgedesk/gate"
	"github.com/zeptools/pledgedesk/rasterize/chromium"
	"github.com/zeptools/pledgedesk/render"
	"github.com/zeptools/pledgedesk/routing"
	"github.com/zeptools/pledgedesk/web/desk"
	"github.com/zeptools/pledgedesk/web/login"
	"github.com/zeptools/pledgedesk/web/session"
	"github.com/zeptools/pledgedesk/web/views"
	"github.com/zeptools/pledgedesk/workspace"
)

var serveRoot string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the operator workspace",
	Long: `Loads <root>/config/.core.json (and .kv-databases.json when present),
then serves the login page and the workspace until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(serveRoot)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveRoot, "root", ".", "app root holding the config directory")
}

func runServe(appRoot string) error {
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	core := &conf.Core{}
	if err := core.BaseInit(appRoot, rootCtx, rootCancel); err != nil {
		return err
	}
	defer core.ResourceCleanUp()

	if err := core.PrepareKVDatabase(); err != nil {
		return err
	}
	if err := core.PrepareWebSessions(); err != nil {
		return err
	}
	if err := core.PrepareHTMLTemplateStore(); err != nil {
		return err
	}
	renderer, err := render.New(core.HTMLTemplateStore)
	if err != nil {
		return err
	}
	if !renderer.Has(render.PageAttachments) {
		log.Printf("[WARN][CORE] attachments page template missing, exports will have one page")
	}
	pageViews, err := views.New(core.HTMLTemplateStore)
	if err != nil {
		return err
	}

	engine := chromium.New(core.Chromium)
	defer func() {
		if err := engine.Close(); err != nil {
			log.Printf("[ERROR][CORE] closing browser: %v", err)
		}
	}()
	pipeline := export.New(renderer, engine, export.Config{
		PaintDelay:  core.PaintDelay(),
		JPEGQuality: core.Export.JPEGQuality,
		Creator:     core.AppName,
	})

	ticketKey, err := core.TicketKey()
	if err != nil {
		return err
	}
	tickets := &gate.Tickets{Key: ticketKey, TTL: core.TicketTTL()}
	registry := workspace.NewRegistry(func(sessionID string) *gate.Gate {
		return gate.New(sessionID, tickets, func() bool { return pipeline.Generating(sessionID) })
	})
	sessions := core.WebSessionManager
	sessions.OnEnd = registry.Drop

	core.PrepareThrottleBucketStore(time.Minute, 30*time.Minute)
	core.PrepareJobScheduler()
	core.JobScheduler.AddCronJob(registry.SweepJob(sessions.Sliding()))

	loginHandler := &login.Handler{
		Credentials: core.Credentials,
		Sessions:    sessions,
		Throttle:    core.ThrottleBucketStore,
		Views:       pageViews,
		TrustProxy:  core.TrustProxy,
		OnLogin: func(info *session.Info) {
			registry.Create(info.ID, info.Username)
		},
	}
	d := &desk.Desk{
		Registry: registry,
		Renderer: renderer,
		Views:    pageViews,
		Pipeline: pipeline,
	}

	router := routing.NewBaseRouter(
		routing.HandlerWrapperFunc(routing.AccessLogWrapper),
		routing.HandlerWrapperFunc(routing.RecoverWrapper),
	)
	router.HandleFunc("GET /healthz", desk.Healthz)
	router.HandleFunc("GET "+sessions.Conf.LoginPath, loginHandler.ServeForm)
	router.HandleFunc("POST "+sessions.Conf.LoginPath, loginHandler.Login)
	router.HandleFunc("POST /logout", loginHandler.Logout)
	d.Register(router, session.RequireWrapper{Manager: sessions})

	core.PrepareWebService(router)
	core.StartTemplateWatcher()

	if err = core.StartServices(); err != nil {
		return err
	}
	log.Printf("[INFO][CORE] %s serving on %s", core.AppName, core.WebService.Addr())
	return core.WaitServicesDone()
}
