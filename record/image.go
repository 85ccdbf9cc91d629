package record

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrNotImage = errors.New("file is not a supported image")

// Image is a self-contained scan payload. Treat it as immutable once created.
type Image struct {
	MIME string
	Data []byte
}

// DataURL embeds the payload so the rendered page never references the filesystem
func (img *Image) DataURL() string {
	return "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// formats a headless browser cannot display. Re-encoded to PNG at ingestion
var reencodeFormats = map[string]bool{
	"bmp":  true,
	"tiff": true,
}

// LoadImage reads an uploaded file into an Image.
// The record must only be updated after this returns without error.
// No size or dimension limit is applied here.
func LoadImage(ctx context.Context, r io.Reader) (*Image, error) {
	data, err := io.ReadAll(&ctxReader{ctx: ctx, r: r})
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if !reencodeFormats[format] {
		return &Image{MIME: "image/" + format, Data: data}, nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	var buf bytes.Buffer
	if err = png.Encode(&buf, decoded); err != nil {
		return nil, fmt.Errorf("re-encode %s as png: %w", format, err)
	}
	return &Image{MIME: "image/png", Data: buf.Bytes()}, nil
}

// ctxReader stops a long upload read once the request is gone
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
