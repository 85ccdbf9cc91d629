// Package render projects an observer record onto the two fixed document pages.
// Output depends only on the record and the timestamp passed in.
package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/zeptools/pledgedesk/record"
	"github.com/zeptools/pledgedesk/templates"
	"github.com/zeptools/pledgedesk/tpl"
)

const (
	PagePledge      = "pledge"
	PageAttachments = "attachments"
)

// Pages in document order
var Pages = []string{PagePledge, PageAttachments}

const documentPartial = "partials/document"

// NewStore loads the embedded templates, or the ones under dir when given
func NewStore(dir string) (*tpl.HTMLTemplateStore, error) {
	store := tpl.NewHTMLTemplateStore(nil)
	var err error
	if dir == "" {
		err = store.LoadBaseTemplates(templates.FS, templates.Root)
	} else {
		err = store.LoadBaseTemplatesDir(dir)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

type Renderer struct {
	store *tpl.HTMLTemplateStore
}

// New registers the page compositions on store.
// A page whose file is absent is left unregistered and reported by Has;
// any other composition failure is returned.
func New(store *tpl.HTMLTemplateStore) (*Renderer, error) {
	for _, page := range Pages {
		if _, ok := store.Lookup("pages/" + page); !ok {
			// absence surfaces at render time as tpl.ErrTemplateNotFound
			continue
		}
		if err := store.Compose(page, "pages/"+page, documentPartial); err != nil {
			return nil, fmt.Errorf("page %s: %w", page, err)
		}
	}
	return &Renderer{store: store}, nil
}

func (r *Renderer) Has(page string) bool {
	_, ok := r.store.Lookup(page)
	return ok
}

// Render dispatches on the page name
func (r *Renderer) Render(page string, rec *record.ObserverRecord, at time.Time) ([]byte, error) {
	switch page {
	case PagePledge:
		return r.RenderPledge(rec, at)
	case PageAttachments:
		return r.RenderAttachments(rec, at)
	default:
		return nil, fmt.Errorf("%w: page %q", tpl.ErrTemplateNotFound, page)
	}
}

func (r *Renderer) RenderPledge(rec *record.ObserverRecord, at time.Time) ([]byte, error) {
	view := PledgeView{
		Title:              "تعهد مراقب كيان سياسي",
		CandidateName:      rec.CandidateName,
		CandidateDistrict:  rec.CandidateDistrict,
		Observer:           observerRows(rec),
		CandidateSignature: firstWord(rec.CandidateName),
		Date:               FormatDate(at),
	}
	return r.execute(PagePledge, view)
}

func (r *Renderer) RenderAttachments(rec *record.ObserverRecord, at time.Time) ([]byte, error) {
	view := AttachmentsView{
		Title:        "المستمسكات الثبوتية",
		ObserverName: rec.ObserverName,
		Sections:     attachmentSections(rec),
		Placeholder:  Placeholder,
		Date:         FormatDate(at),
		Time:         FormatTime(at),
	}
	return r.execute(PageAttachments, view)
}

func (r *Renderer) execute(page string, view any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.store.Execute(&buf, page, view); err != nil {
		return nil, fmt.Errorf("render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}
