package tpl

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"
)

const FileSuffix = ".gohtml"

var ErrTemplateNotFound = errors.New("template not found")

type templateSet struct {
	Base     map[string]*template.Template // each file → one template
	Combined map[string]*template.Template // composed templates
	Sources  map[string]string             // raw file contents by key, for composing
}

// HTMLTemplateStore
// [Hot Reload] the whole set is swapped atomically, so readers never see a half-loaded store
type HTMLTemplateStore struct {
	Funcs template.FuncMap

	set atomic.Pointer[templateSet]

	mu           sync.Mutex          // serializes loads and compositions
	src          fs.FS               // where LoadBaseTemplates read from
	root         string              // root dir inside src
	compositions map[string][]string // combined key -> base keys. entry template first
}

func NewHTMLTemplateStore(funcs template.FuncMap) *HTMLTemplateStore {
	s := &HTMLTemplateStore{
		Funcs:        funcs,
		compositions: make(map[string][]string),
	}
	s.set.Store(&templateSet{
		Base:     make(map[string]*template.Template),
		Combined: make(map[string]*template.Template),
		Sources:  make(map[string]string),
	})
	return s
}

// LoadBaseTemplatesDir loads from a directory on disk
func (s *HTMLTemplateStore) LoadBaseTemplatesDir(dir string) error {
	return s.LoadBaseTemplates(os.DirFS(dir), ".")
}

// LoadBaseTemplates walks root in fsys and parses every *.gohtml file.
// Previously registered compositions are rebuilt against the new files.
func (s *HTMLTemplateStore) LoadBaseTemplates(fsys fs.FS, root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.loadSet(fsys, root)
	if err != nil {
		return err
	}
	for key, baseKeys := range s.compositions {
		if set.Combined[key], err = s.combine(set, key, baseKeys); err != nil {
			return err
		}
	}
	s.src = fsys
	s.root = root
	s.set.Store(set)
	// Summary log
	log.Printf("[INFO][TEMPLATE] Loaded %d templates from %s", len(set.Base), root)
	return nil
}

// Reload re-reads the source given to the last LoadBaseTemplates
func (s *HTMLTemplateStore) Reload() error {
	s.mu.Lock()
	fsys, root := s.src, s.root
	s.mu.Unlock()
	if fsys == nil {
		return errors.New("templates never loaded")
	}
	return s.LoadBaseTemplates(fsys, root)
}

func (s *HTMLTemplateStore) loadSet(fsys fs.FS, root string) (*templateSet, error) {
	root = path.Clean(root)
	set := &templateSet{
		Base:     make(map[string]*template.Template),
		Combined: make(map[string]*template.Template),
		Sources:  make(map[string]string),
	}
	err := fs.WalkDir( // Pre-order Depth-first Traversal
		fsys,
		root,
		func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			// Skip Hidden Files & Hidden Directories
			if strings.HasPrefix(name, ".") && p != root {
				if d.IsDir() {
					return fs.SkipDir // skip the whole directory: Do NOT walk into this directory
				}
				return nil // skip the file
			}
			if d.IsDir() || !strings.HasSuffix(p, FileSuffix) {
				return nil
			}
			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return err
			}
			if !utf8.Valid(data) {
				return fmt.Errorf("file %s is not valid UTF-8", p)
			}
			// template key: relative path to the template root without extension
			rel := strings.TrimPrefix(p, root+"/")
			if root == "." {
				rel = p
			}
			key := strings.TrimSuffix(rel, FileSuffix)
			if _, exists := set.Base[key]; exists {
				return fmt.Errorf("duplicate template key detected: %s (file=%s)", key, p)
			}
			t, err := template.New(key).Funcs(s.Funcs).Parse(string(data))
			if err != nil {
				return fmt.Errorf("parse error in %s: %w", p, err)
			}
			set.Base[key] = t
			set.Sources[key] = string(data)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Compose registers a combined template made of several base files.
// The first base key is the entry point used by Execute.
func (s *HTMLTemplateStore) Compose(key string, baseKeys ...string) error {
	if len(baseKeys) == 0 {
		return errors.New("compose needs at least one base template")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.set.Load()
	t, err := s.combine(cur, key, baseKeys)
	if err != nil {
		return err
	}
	next := &templateSet{
		Base:     cur.Base,
		Combined: make(map[string]*template.Template, len(cur.Combined)+1),
		Sources:  cur.Sources,
	}
	for k, v := range cur.Combined {
		next.Combined[k] = v
	}
	next.Combined[key] = t
	s.compositions[key] = baseKeys
	s.set.Store(next)
	return nil
}

func (s *HTMLTemplateStore) combine(set *templateSet, key string, baseKeys []string) (*template.Template, error) {
	root := template.New(key).Funcs(s.Funcs)
	for _, baseKey := range baseKeys {
		src, ok := set.Sources[baseKey]
		if !ok {
			return nil, fmt.Errorf("%w: %s (composing %s)", ErrTemplateNotFound, baseKey, key)
		}
		if _, err := root.New(baseKey).Parse(src); err != nil {
			return nil, fmt.Errorf("compose %s: parse %s: %w", key, baseKey, err)
		}
	}
	return root.Lookup(baseKeys[0]), nil
}

// Lookup prefers a combined template over a base one with the same key
func (s *HTMLTemplateStore) Lookup(key string) (*template.Template, bool) {
	set := s.set.Load()
	if t, ok := set.Combined[key]; ok {
		return t, true
	}
	t, ok := set.Base[key]
	return t, ok
}

func (s *HTMLTemplateStore) Execute(w io.Writer, key string, data any) error {
	t, ok := s.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, key)
	}
	return t.Execute(w, data)
}
