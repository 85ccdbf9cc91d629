package tpl

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the burst of events an editor produces on save
const reloadDebounce = 200 * time.Millisecond

// Watch reloads the store whenever a template file under dir changes.
// Blocks until ctx is done. The store must have been loaded from dir.
func (s *HTMLTemplateStore) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			log.Printf("[ERROR][TEMPLATE] closing watcher: %v", closeErr)
		}
	}()
	// fsnotify is not recursive. add every directory
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("[INFO][TEMPLATE] watching %s for changes", dir)

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					_ = watcher.Add(ev.Name)
				}
			}
			if !strings.HasSuffix(ev.Name, FileSuffix) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			reload = timer.C
		case <-reload:
			reload = nil
			if err := s.Reload(); err != nil {
				// keep serving the previous set
				log.Printf("[ERROR][TEMPLATE] reload failed: %v", err)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[ERROR][TEMPLATE] watcher: %v", werr)
		}
	}
}
