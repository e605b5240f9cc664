// Package pdf renders lease PDFs into page images for the inference gateway.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"

	"github.com/jonathanvkeller/lease-analysis/internal/domain"
)

// Converter loads documents into gateway payloads using go-fitz. PDFs are
// rendered to one in-memory PNG per page; anything else is passed through as
// a raw PDF payload and left for the gateway to reject.
type Converter struct{}

// NewConverter creates a new PDF converter instance.
func NewConverter() *Converter {
	return &Converter{}
}

// Load renders a document into a payload for one gateway call.
func (c *Converter) Load(ctx context.Context, doc domain.Document) (domain.Payload, error) {
	if !IsPDF(doc.Path) {
		data, err := os.ReadFile(doc.Path)
		if err != nil {
			return domain.Payload{}, domain.IOError("read document file", err)
		}
		return domain.Payload{MediaType: "application/pdf", Parts: [][]byte{data}}, nil
	}

	parts, err := c.renderPages(ctx, doc.Path)
	if err != nil {
		return domain.Payload{}, err
	}

	return domain.Payload{MediaType: "image/png", Parts: parts}, nil
}

// renderPages converts every page of a PDF into PNG bytes.
func (c *Converter) renderPages(ctx context.Context, path string) ([][]byte, error) {
	fdoc, err := fitz.New(path)
	if err != nil {
		return nil, domain.ConversionError("open PDF", err)
	}
	defer fdoc.Close()

	pageCount := fdoc.NumPage()
	if pageCount == 0 {
		return nil, domain.ValidationError("PDF has no pages", nil)
	}

	parts := make([][]byte, 0, pageCount)

	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := fdoc.Image(pageNum)
		if err != nil {
			return nil, domain.ConversionError(fmt.Sprintf("render page %d", pageNum+1), err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, domain.ConversionError(fmt.Sprintf("encode page %d as PNG", pageNum+1), err)
		}

		parts = append(parts, buf.Bytes())
	}

	return parts, nil
}
