package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Saver delivers a finished document. Nothing is delivered when the pipeline fails earlier.
type Saver interface {
	Save(ctx context.Context, filename string, pdf []byte) error
}

// SaverFunc adapts a function, e.g. one writing an HTTP attachment
type SaverFunc func(ctx context.Context, filename string, pdf []byte) error

func (f SaverFunc) Save(ctx context.Context, filename string, pdf []byte) error {
	return f(ctx, filename, pdf)
}

// DirSaver writes into a directory through a temp file and a rename,
// so a failed save never leaves a partial document behind
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(ctx context.Context, filename string, pdf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if filepath.Base(filename) != filename {
		return fmt.Errorf("invalid file name %q", filename)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, ".export-*.pdf")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename
	if _, err = tmp.Write(pdf); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.Dir, filename))
}
