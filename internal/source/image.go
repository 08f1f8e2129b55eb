package source

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DirLoader decodes frames from a file tree
type DirLoader struct {
	fsys fs.FS
	seq  Sequence
}

// NewDirLoader serves seq out of fsys. Paths from the sequence are made
// relative, so "/images/x.jpg" resolves to "images/x.jpg" inside fsys.
func NewDirLoader(fsys fs.FS, seq Sequence) *DirLoader {
	return &DirLoader{fsys: fsys, seq: seq}
}

// NewOSDirLoader serves seq from the local filesystem rooted at root
func NewOSDirLoader(root string, seq Sequence) *DirLoader {
	return NewDirLoader(os.DirFS(root), seq)
}

func (l *DirLoader) Load(ctx context.Context, index int) (image.Image, error) {
	if index < 0 || index >= l.seq.Count {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimPrefix(l.seq.FramePath(index), "/")
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

// Dimensions reads the size of a frame without decoding pixels
func (l *DirLoader) Dimensions(index int) (int, int, error) {
	name := strings.TrimPrefix(l.seq.FramePath(index), "/")
	f, err := l.fsys.Open(name)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func (l *DirLoader) Close() error {
	return nil
}
