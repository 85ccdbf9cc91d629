// Package views renders the operator pages (login, workspace) from the shared template store
package views

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/zeptools/pledgedesk/tpl"
)

const (
	PageLogin     = "login"
	PageWorkspace = "workspace"

	appPartial = "partials/app"
)

type Views struct {
	store *tpl.HTMLTemplateStore
}

func New(store *tpl.HTMLTemplateStore) (*Views, error) {
	for _, page := range []string{PageLogin, PageWorkspace} {
		if err := store.Compose(page, "app/"+page, appPartial); err != nil {
			return nil, err
		}
	}
	return &Views{store: store}, nil
}

func (v *Views) Render(page string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.store.Execute(&buf, page, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

type LoginView struct {
	Title    string
	Username string
	Error    string
	Year     int
}

type FormField struct {
	Key         string
	Label       string
	Value       string
	Placeholder string
	Type        string
	Required    bool
	Wide        bool
}

type FormSection struct {
	Title  string
	Fields []FormField
}

type SlotView struct {
	Key     string
	Label   string
	Present bool
	Src     template.URL
}

type WorkspaceView struct {
	Title      string
	Username   string
	Sections   []FormSection
	Slots      []SlotView
	Generating bool
	GateOpen   bool
}
