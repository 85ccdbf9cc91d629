package pdfs

import "io"

// Writer is a minimal append-only PDF writer. No page navigation.
// Every page is a single full-bleed raster image.
type Writer interface {
	PaperSize() PaperSize
	Orientation() string

	// AddImagePage appends a page showing the JPEG at (0,0) covering the whole paper
	AddImagePage(name string, jpeg []byte) error
	PageCount() int

	WriteTo(w io.Writer) (int64, error)
	ProduceBytes() ([]byte, error)
}
