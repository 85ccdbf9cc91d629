// Package export turns an observer record into the delivered PDF.
//
// A run is strictly sequential: guard, generating state, optional paint delay,
// then for each page render, stage, capture, flatten, detach and append,
// then inspect and save. The generating state is per key and always released.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeptools/pledgedesk/locks/keyonlylocks"
	"github.com/zeptools/pledgedesk/pdfs"
	"github.com/zeptools/pledgedesk/pdfs/fpdf"
	"github.com/zeptools/pledgedesk/rasterize"
	"github.com/zeptools/pledgedesk/record"
	"github.com/zeptools/pledgedesk/render"
	"github.com/zeptools/pledgedesk/tpl"
)

const DefaultJPEGQuality = 90

// Renderer is satisfied by *render.Renderer
type Renderer interface {
	Render(page string, rec *record.ObserverRecord, at time.Time) ([]byte, error)
}

type Config struct {
	PaintDelay  time.Duration     // pause after entering the generating state
	JPEGQuality int               // 0 means DefaultJPEGQuality
	Raster      rasterize.Options // zero fields take rasterize defaults
	Creator     string            // pdf metadata
}

type pageStep struct {
	page     string
	required bool // a missing required page aborts the run
}

var steps = []pageStep{
	{page: render.PagePledge, required: true},
	{page: render.PageAttachments, required: false},
}

type Result struct {
	RunID    string
	Filename string
	Pages    int
	Size     int
	Skipped  []string
}

type Pipeline struct {
	renderer Renderer
	engine   rasterize.Engine
	cfg      Config

	generating sync.Map // key -> struct{}. see keyonlylocks

	// NewWriter is replaceable in tests
	NewWriter func(title string, at time.Time) pdfs.Writer
}

func New(renderer Renderer, engine rasterize.Engine, cfg Config) *Pipeline {
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = DefaultJPEGQuality
	}
	p := &Pipeline{renderer: renderer, engine: engine, cfg: cfg}
	p.NewWriter = func(title string, at time.Time) pdfs.Writer {
		return fpdf.NewA4(fpdf.Options{Title: title, Creator: cfg.Creator, CreatedAt: at})
	}
	return p
}

// Generating reports whether a run holds key
func (p *Pipeline) Generating(key string) bool {
	return keyonlylocks.Held(&p.generating, key)
}

// Run exports rec as of at. key identifies the owner (a session, a record file);
// a second Run with the same key while one is active fails with ErrBusy.
// rec is only read.
func (p *Pipeline) Run(ctx context.Context, key string, rec *record.ObserverRecord, at time.Time, saver Saver) (res *Result, err error) {
	if err = Validate(rec); err != nil {
		return nil, err
	}
	keys, ok := keyonlylocks.TryAcquire(&p.generating, key)
	if !ok {
		return nil, ErrBusy
	}
	defer keyonlylocks.Release(&p.generating, keys)

	runID := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC][EXPORT] run=%s %v", runID, r)
			res = nil
			err = fmt.Errorf("export panicked: %v", r)
		}
		if err != nil {
			log.Printf("[ERROR][EXPORT] run=%s %v", runID, err)
		}
	}()
	log.Printf("[INFO][EXPORT] run=%s key=%s started", runID, key)

	if p.cfg.PaintDelay > 0 {
		select {
		case <-time.After(p.cfg.PaintDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	snap := rec.Snapshot()
	w := p.NewWriter("تعهد "+snap.ObserverName, at)
	res = &Result{RunID: runID}

	for _, step := range steps {
		jpeg, err := p.capturePage(ctx, step.page, &snap, at)
		if err != nil {
			if !step.required && errors.Is(err, errPageMissing) {
				log.Printf("[WARN][EXPORT] run=%s page %s not available, skipped", runID, step.page)
				res.Skipped = append(res.Skipped, step.page)
				continue
			}
			return nil, err
		}
		if err = w.AddImagePage(step.page, jpeg); err != nil {
			return nil, fmt.Errorf("%w: add page %s: %v", ErrAssembly, step.page, err)
		}
	}

	data, err := w.ProduceBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	n, err := pdfs.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	if n != w.PageCount() {
		return nil, fmt.Errorf("%w: document has %d pages, expected %d", ErrAssembly, n, w.PageCount())
	}

	res.Filename = Filename(snap.ObserverName)
	res.Pages = n
	res.Size = len(data)
	if err = saver.Save(ctx, res.Filename, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSave, err)
	}
	log.Printf("[INFO][EXPORT] run=%s saved %s (%d pages, %d bytes)", runID, res.Filename, res.Pages, res.Size)
	return res, nil
}

var errPageMissing = errors.New("page template missing")

// capturePage owns the staging node for its whole lifetime
func (p *Pipeline) capturePage(ctx context.Context, page string, rec *record.ObserverRecord, at time.Time) ([]byte, error) {
	html, err := p.renderer.Render(page, rec, at)
	if err != nil {
		if errors.Is(err, tpl.ErrTemplateNotFound) {
			return nil, fmt.Errorf("%w: %w: %s", ErrStaging, errPageMissing, page)
		}
		return nil, fmt.Errorf("%w: render %s: %v", ErrStaging, page, err)
	}
	node, err := p.engine.Stage(ctx, string(html))
	if err != nil {
		return nil, fmt.Errorf("%w: stage %s: %v", ErrStaging, page, err)
	}
	defer func() {
		if derr := node.Detach(); derr != nil {
			log.Printf("[WARN][EXPORT] detach %s: %v", page, derr)
		}
	}()
	png, err := node.Capture(ctx, p.cfg.Raster)
	if err != nil {
		return nil, fmt.Errorf("%w: capture %s: %v", ErrRaster, page, err)
	}
	jpeg, err := rasterize.Flatten(png, p.cfg.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRaster, page, err)
	}
	return jpeg, nil
}
