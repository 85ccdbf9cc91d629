package responses

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// WritePDFAttachment sends the document as a download
func WritePDFAttachment(w http.ResponseWriter, filename string, PDFBytes []byte) error {
	WritePDFResponseHeaders(w, "attachment", filename, len(PDFBytes))
	if _, err := w.Write(PDFBytes); err != nil {
		return fmt.Errorf("writing PDF to response: %w", err)
	}
	return nil
}

// WritePDFResponseHeaders write HTTP response headers for PDF response. i.e. headers are frozen
func WritePDFResponseHeaders(w http.ResponseWriter, disposition string, filename string, size int) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", ContentDisposition(disposition, filename))
	w.Header().Set("Content-Length", strconv.Itoa(size))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK) // Response Header Sent & Frozen
}

// ContentDisposition carries a non-ASCII name in filename* (RFC 5987)
// with an ASCII-only filename fallback for old clients
func ContentDisposition(disposition string, filename string) string {
	return fmt.Sprintf(`%s; filename="%s"; filename*=UTF-8''%s`,
		disposition, asciiFallback(filename), url.PathEscape(filename))
}

func asciiFallback(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('_')
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
