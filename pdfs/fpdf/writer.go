package fpdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/zeptools/pledgedesk/pdfs"
)

var ErrClosed = errors.New("pdf already written")

// Options are document metadata. A zero CreatedAt keeps gofpdf's own clock.
type Options struct {
	Title     string
	Creator   string
	CreatedAt time.Time
}

// Writer implements pdfs.Writer on top of gofpdf.
// Portrait, millimetres, zero margins, no automatic page breaks.
// The document can be written out once.
type Writer struct {
	pdf    *gofpdf.Fpdf
	size   pdfs.PaperSize
	pages  int
	closed bool
}

var _ pdfs.Writer = (*Writer)(nil)

func NewA4(opts Options) *Writer {
	size := pdfs.A4Size
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: pdfs.Portrait,
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: size.WidthMM, Ht: size.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Creator != "" {
		pdf.SetCreator(opts.Creator, true)
	}
	if !opts.CreatedAt.IsZero() {
		pdf.SetCreationDate(opts.CreatedAt)
	}
	return &Writer{pdf: pdf, size: size}
}

func (w *Writer) PaperSize() pdfs.PaperSize {
	return w.size
}

func (w *Writer) Orientation() string {
	return pdfs.Portrait
}

func (w *Writer) PageCount() int {
	return w.pages
}

// AddImagePage names must be unique within one document
func (w *Writer) AddImagePage(name string, jpeg []byte) error {
	if w.closed {
		return ErrClosed
	}
	if len(jpeg) == 0 {
		return fmt.Errorf("image %s is empty", name)
	}
	opt := gofpdf.ImageOptions{ImageType: "JPG"}
	w.pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(jpeg))
	if err := w.pdf.Error(); err != nil {
		return fmt.Errorf("register image %s: %w", name, err)
	}
	w.pdf.AddPage()
	w.pdf.ImageOptions(name, 0, 0, w.size.WidthMM, w.size.HeightMM, false, opt, 0, "")
	if err := w.pdf.Error(); err != nil {
		return fmt.Errorf("place image %s: %w", name, err)
	}
	w.pages++
	return nil
}

func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	if w.closed {
		return 0, ErrClosed
	}
	w.closed = true
	// gofpdf reports no byte count, so the document is produced in full first
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return 0, err
	}
	return buf.WriteTo(out)
}

func (w *Writer) ProduceBytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
