package conf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/zeptools/pledgedesk/db/kvdb"
	"github.com/zeptools/pledgedesk/db/kvdb/impls/memory"
	"github.com/zeptools/pledgedesk/db/kvdb/impls/redis"
	"github.com/zeptools/pledgedesk/rasterize/chromium"
	"github.com/zeptools/pledgedesk/render"
	"github.com/zeptools/pledgedesk/schedjobs"
	"github.com/zeptools/pledgedesk/sec"
	"github.com/zeptools/pledgedesk/svc"
	"github.com/zeptools/pledgedesk/throttle"
	"github.com/zeptools/pledgedesk/tpl"
	"github.com/zeptools/pledgedesk/web"
	"github.com/zeptools/pledgedesk/web/login"
	"github.com/zeptools/pledgedesk/web/session"
)

const (
	DefaultListen     = "127.0.0.1:8080"
	DefaultPaintDelay = 100 * time.Millisecond
)

type TemplateOpts struct {
	Dir       string `json:"dir"`        // relative to AppRoot. empty: embedded templates
	HotReload bool   `json:"hot_reload"` // watch Dir and reload on change
}

type ExportOpts struct {
	PaintDelayMS     *int   `json:"paint_delay_ms"` // nil: DefaultPaintDelay
	JPEGQuality      int    `json:"jpeg_quality"`
	TicketKey        string `json:"ticket_key"` // hex or base64url. empty: random per process
	TicketTTLSeconds int    `json:"ticket_ttl_seconds"`
}

// Core - common config
type Core struct {
	AppName       string              `json:"app_name"`
	Listen        string              `json:"listen"`      // HTTP Server Listen IP:PORT Address
	TrustProxy    bool                `json:"trust_proxy"` // take client IPs from X-Forwarded-For
	Credentials   login.Credentials   `json:"credentials"`
	WebSession    session.Conf        `json:"web_session"`
	LoginThrottle throttle.BucketConf `json:"login_throttle"`
	Chromium      chromium.Config     `json:"chromium"`
	Templates     TemplateOpts        `json:"templates"`
	Export        ExportOpts          `json:"export"`

	AppRoot             string                        `json:"-"` // Filled from compiled paths
	RootCtx             context.Context               `json:"-"` // Global Context with RootCancel
	RootCancel          context.CancelFunc            `json:"-"` // CancelFunc for RootCtx
	JobScheduler        *schedjobs.Scheduler          `json:"-"` // PrepareJobScheduler
	WebService          *web.Service                  `json:"-"` // PrepareWebService
	ThrottleBucketStore *throttle.BucketStore[string] `json:"-"` // PrepareThrottleBucketStore
	KVDBConf            kvdb.Conf                     `json:"-"` // loadKVDBConf
	BackendKVDBClient   kvdb.Client                   `json:"-"` // prepareKVDBClient
	WebSessionManager   *session.Manager              `json:"-"` // PrepareWebSessions
	HTMLTemplateStore   *tpl.HTMLTemplateStore        `json:"-"` // PrepareHTMLTemplateStore

	services []svc.Service // Services to Manage
	done     chan error
}

// BaseInit - 1st step for initialization
// 1. set AppRoot
// 2. load config/.core.json file
// 3. Start ShutdownSignalListener
func (c *Core) BaseInit(appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) error {
	if err := c.Load(appRoot); err != nil {
		return err
	}
	c.RootCtx = rootCtx
	c.RootCancel = rootCancel
	c.startShutdownSignalListener()
	return nil
}

// Load reads <appRoot>/config/.core.json and fills defaults
func (c *Core) Load(appRoot string) error {
	c.AppRoot = appRoot
	confBytes, err := os.ReadFile(filepath.Join(appRoot, "config", ".core.json"))
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, c); err != nil {
		return fmt.Errorf(".core.json: %w", err)
	}
	if c.AppName == "" {
		c.AppName = "pledgedesk"
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	c.Credentials = c.Credentials.WithDefaults()
	c.WebSession = c.WebSession.WithDefaults()
	c.LoginThrottle = c.LoginThrottle.Normalize()
	return nil
}

func (c *Core) PaintDelay() time.Duration {
	if c.Export.PaintDelayMS == nil {
		return DefaultPaintDelay
	}
	return time.Duration(*c.Export.PaintDelayMS) * time.Millisecond
}

func (c *Core) TicketTTL() time.Duration {
	return time.Duration(c.Export.TicketTTLSeconds) * time.Second
}

// TicketKey signs gate tickets. Without a configured key, open gates do not survive a restart.
func (c *Core) TicketKey() ([]byte, error) {
	if c.Export.TicketKey == "" {
		return sec.GenerateKey()
	}
	return sec.ParseKey(c.Export.TicketKey)
}

// TemplateDir is the absolute template directory, or "" for the embedded set
func (c *Core) TemplateDir() string {
	if c.Templates.Dir == "" {
		return ""
	}
	if filepath.IsAbs(c.Templates.Dir) {
		return c.Templates.Dir
	}
	return filepath.Join(c.AppRoot, c.Templates.Dir)
}

func (c *Core) AddService(s svc.Service) {
	log.Printf("[INFO] adding service: %s", s.Name())
	c.services = append(c.services, s)
	log.Printf("[INFO] total services: %d", len(c.services))
}

func (c *Core) StartServices() error {
	c.done = make(chan error, len(c.services))
	for _, s := range c.services {
		err := s.Start()
		if err != nil {
			return err
		}
		go func(s svc.Service) {
			err := <-s.Done()
			c.done <- err
		}(s)
	}
	return nil
}

func (c *Core) WaitServicesDone() error {
	var firstErr error
	for i := 0; i < len(c.services); i++ {
		if err := <-c.done; err != nil && firstErr == nil {
			firstErr = err
			// one service failing takes the rest down
			c.RootCancel()
		}
	}
	return firstErr
}

func (c *Core) StopServices() {
	for _, s := range c.services {
		s.Stop()
	}
}

var once sync.Once

func (c *Core) startShutdownSignalListener() {
	once.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			log.Printf("[INFO] got signal [%s]. shutting down app [%s] ...", sig, c.AppName)
			c.RootCancel() // broadcast to all child services via Context.Done()
		}()
	})
	log.Printf("[INFO][CORE] shutdown signal listener started")
}

func (c *Core) PrepareJobScheduler() {
	c.JobScheduler = schedjobs.NewScheduler(c.RootCtx)
	c.AddService(c.JobScheduler)
}

func (c *Core) PrepareWebService(router http.Handler) {
	c.WebService = web.NewService(c.RootCtx, c.Listen, router)
	c.AddService(c.WebService)
}

func (c *Core) PrepareThrottleBucketStore(cleanupCycle time.Duration, cleanupOlderThan time.Duration) {
	c.ThrottleBucketStore = throttle.NewBucketStore[string](c.RootCtx, cleanupCycle, cleanupOlderThan)
	c.ThrottleBucketStore.SetBucketGroup(login.ThrottleGroup, c.LoginThrottle)
	c.AddService(c.ThrottleBucketStore)
}

// PrepareKVDatabase builds the session backend.
// Without config/.kv-databases.json sessions live in process memory.
func (c *Core) PrepareKVDatabase() error {
	err := c.loadKVDBConf()
	if err != nil {
		return err
	}
	return c.prepareKVDBClient()
}

func (c *Core) loadKVDBConf() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".kv-databases.json")
	confBytes, err := os.ReadFile(confFilePath)
	if errors.Is(err, os.ErrNotExist) {
		c.KVDBConf = kvdb.Conf{Type: kvdb.TypeMemory}
		return nil
	}
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, &c.KVDBConf); err != nil {
		return fmt.Errorf(".kv-databases.json: %w", err)
	}
	return nil
}

func (c *Core) prepareKVDBClient() error {
	switch c.KVDBConf.Type {
	case kvdb.TypeRedis:
		c.BackendKVDBClient = redis.New(&c.KVDBConf)
	case kvdb.TypeMemory, "":
		c.BackendKVDBClient = memory.New()
	default:
		return fmt.Errorf("unsupported key-value database type %q", c.KVDBConf.Type)
	}
	return c.BackendKVDBClient.Init()
}

// PrepareWebSessions prepares WebSessionManager
// Prerequisite: BackendKVDBClient
func (c *Core) PrepareWebSessions() error {
	if c.BackendKVDBClient == nil {
		return errors.New("backend KVDB client not ready")
	}
	mgr, err := session.NewManager(c.AppName, c.WebSession, c.BackendKVDBClient)
	if err != nil {
		return err
	}
	c.WebSessionManager = mgr
	return nil
}

func (c *Core) PrepareHTMLTemplateStore() error {
	store, err := render.NewStore(c.TemplateDir())
	if err != nil {
		return err
	}
	c.HTMLTemplateStore = store
	return nil
}

// StartTemplateWatcher reloads templates on change until RootCtx ends.
// No-op for the embedded set or when hot reload is off.
func (c *Core) StartTemplateWatcher() {
	dir := c.TemplateDir()
	if dir == "" || !c.Templates.HotReload {
		return
	}
	go func() {
		if err := c.HTMLTemplateStore.Watch(c.RootCtx, dir); err != nil {
			log.Printf("[ERROR][TEMPLATE] watcher stopped: %v", err)
		}
	}()
}

func (c *Core) ResourceCleanUp() {
	log.Println("[INFO] App Resource Cleaning Up...")
	if c.BackendKVDBClient != nil {
		if err := c.BackendKVDBClient.Close(); err != nil {
			log.Println("[ERROR] Failed to close KV database client")
		}
	}
	log.Println("[INFO] App Resource Cleanup Complete")
}
