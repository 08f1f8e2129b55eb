package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path"
)

// ErrOutOfRange is returned for frame indices outside the sequence
var ErrOutOfRange = errors.New("frame index out of range")

// Loader fetches one frame of the sequence. Implementations must be safe for
// concurrent use: the frame set issues every load at once.
type Loader interface {
	Load(ctx context.Context, index int) (image.Image, error)
	Close() error
}

// Sequence describes the on-disk naming of a frame sequence:
// {Folder}/{Prefix}-{index+1 padded to 3 digits}.{Ext}
type Sequence struct {
	Count  int
	Folder string
	Prefix string
	Ext    string
}

// DefaultSequence matches the exported hero sequence
func DefaultSequence() Sequence {
	return Sequence{
		Count:  192,
		Folder: "/images",
		Prefix: "ezgif-frame",
		Ext:    "jpg",
	}
}

// FramePath returns the path of frame index (0-based). Numbering on disk is
// 1-based and zero-padded to three digits.
func (s Sequence) FramePath(index int) string {
	name := fmt.Sprintf("%s-%03d.%s", s.Prefix, index+1, s.Ext)
	return path.Join(s.Folder, name)
}
