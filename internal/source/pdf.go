package source

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// PDFLoader treats each page of a PDF as one frame
type PDFLoader struct {
	doc  *fitz.Document
	path string
	dpi  float64
}

func NewPDFLoader(path string, dpi int) (*PDFLoader, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 72
	}
	return &PDFLoader{doc: doc, path: path, dpi: float64(dpi)}, nil
}

// PageCount is the number of frames the document can supply
func (l *PDFLoader) PageCount() int {
	return l.doc.NumPage()
}

func (l *PDFLoader) Load(ctx context.Context, index int) (image.Image, error) {
	if index < 0 || index >= l.doc.NumPage() {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Loads run in parallel; each one opens its own document handle
	workerDoc, err := fitz.New(l.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()

	img, err := workerDoc.ImageDPI(index, l.dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index, err)
	}
	return img, nil
}

func (l *PDFLoader) Close() error {
	return l.doc.Close()
}
