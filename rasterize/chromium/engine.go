// Package chromium is the headless browser rasterize.Engine, driven by go-rod
package chromium

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/zeptools/pledgedesk/rasterize"
)

const (
	pingTimeout  = 5 * time.Second
	closeTimeout = 10 * time.Second
)

type Config struct {
	Bin        string `json:"bin"`         // browser binary. empty: rod finds or downloads one
	Headful    bool   `json:"headful"`     // show the browser window, for template debugging
	ControlURL string `json:"control_url"` // remote DevTools endpoint. skips launching
}

// Engine launches the browser on first use and shares it between runs.
// Every Stage opens its own page.
type Engine struct {
	cfg Config

	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher
}

var _ rasterize.Engine = (*Engine)(nil)

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// ensureBrowser returns the shared browser, launching or reconnecting
// when there is none or the previous one stopped answering
func (e *Engine) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		_, err := proto.BrowserGetVersion{}.Call(e.browser.Context(pingCtx))
		cancel()
		if err == nil {
			return e.browser, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("[WARN][RASTER] browser lost, relaunching: %v", err)
		_ = e.resetLocked()
	}
	controlURL := e.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(!e.cfg.Headful)
		if e.cfg.Bin != "" {
			l = l.Bin(e.cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		e.launched = l
	}
	// browser lifetime is the engine's, not any single request's
	b := rod.New().ControlURL(controlURL).Context(context.Background())
	if err := b.Connect(); err != nil {
		if e.launched != nil {
			e.launched.Kill()
			e.launched = nil
		}
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	e.browser = b
	log.Printf("[INFO][RASTER] browser connected")
	return b, nil
}

func (e *Engine) Stage(ctx context.Context, html string) (rasterize.Node, error) {
	b, err := e.ensureBrowser(ctx)
	if err != nil {
		return nil, err
	}
	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		if ctx.Err() == nil {
			e.dropBrowser(b)
		}
		return nil, fmt.Errorf("open staging page: %w", err)
	}
	page = page.Context(context.Background())
	n := &node{page: page}
	if err = n.viewport(ctx, rasterize.DefaultOptions()); err != nil {
		_ = n.Detach()
		return nil, err
	}
	p := page.Context(ctx)
	if err = p.SetDocumentContent(html); err != nil {
		_ = n.Detach()
		return nil, fmt.Errorf("load staging document: %w", err)
	}
	if err = p.WaitLoad(); err != nil {
		_ = n.Detach()
		return nil, fmt.Errorf("wait staging document: %w", err)
	}
	return n, nil
}

// Close shuts the browser down. A later Stage launches a new one.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resetLocked()
}

// dropBrowser forgets b so the next Stage starts over, unless another
// run already replaced it
func (e *Engine) dropBrowser(b *rod.Browser) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != b {
		return
	}
	log.Printf("[WARN][RASTER] dropping browser after a failed page open")
	_ = e.resetLocked()
}

func (e *Engine) resetLocked() error {
	var err error
	if e.browser != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		err = e.browser.Context(ctx).Close()
		cancel()
		e.browser = nil
	}
	if e.launched != nil {
		e.launched.Kill()
		e.launched = nil
	}
	return err
}

type node struct {
	mu   sync.Mutex
	page *rod.Page
}

func (n *node) viewport(ctx context.Context, opts rasterize.Options) error {
	w, h := opts.Viewport()
	err := proto.EmulationSetDeviceMetricsOverride{
		Width:             w,
		Height:            h,
		DeviceScaleFactor: opts.DeviceScale(),
		Mobile:            false,
	}.Call(n.page.Context(ctx))
	if err != nil {
		return fmt.Errorf("set staging viewport: %w", err)
	}
	return nil
}

func (n *node) Capture(ctx context.Context, opts rasterize.Options) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.page == nil {
		return nil, errors.New("staging node already detached")
	}
	if err := n.viewport(ctx, opts); err != nil {
		return nil, err
	}
	p := n.page.Context(ctx)
	if err := p.WaitRepaint(); err != nil {
		return nil, fmt.Errorf("wait repaint: %w", err)
	}
	// viewport capture: the page holds only the document, never scrolled
	data, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:      proto.PageCaptureScreenshotFormatPng,
		FromSurface: true,
	})
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return data, nil
}

// Detach closes the page. Safe to call more than once.
func (n *node) Detach() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.page == nil {
		return nil
	}
	err := n.page.Close()
	n.page = nil
	return err
}
