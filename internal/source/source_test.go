package source

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
)

func TestFramePath(t *testing.T) {
	seq := DefaultSequence()

	tests := []struct {
		index int
		want  string
	}{
		{0, "/images/ezgif-frame-001.jpg"},
		{9, "/images/ezgif-frame-010.jpg"},
		{191, "/images/ezgif-frame-192.jpg"},
	}

	for _, tt := range tests {
		if got := seq.FramePath(tt.index); got != tt.want {
			t.Errorf("FramePath(%d): expected %s, got %s", tt.index, tt.want, got)
		}
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestDirLoader(t *testing.T) {
	seq := Sequence{Count: 3, Folder: "/frames", Prefix: "frame", Ext: "png"}
	fsys := fstest.MapFS{
		"frames/frame-001.png": {Data: encodePNG(t, 16, 9)},
		"frames/frame-002.png": {Data: []byte("not an image")},
	}
	l := NewDirLoader(fsys, seq)
	ctx := context.Background()

	img, err := l.Load(ctx, 0)
	if err != nil {
		t.Fatalf("Load(0) failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 9 {
		t.Errorf("Expected 16x9, got %v", b)
	}

	if _, err := l.Load(ctx, 1); err == nil {
		t.Error("Expected decode error for corrupt frame")
	}
	if _, err := l.Load(ctx, 2); err == nil {
		t.Error("Expected error for missing frame")
	}
	if _, err := l.Load(ctx, 3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}

	w, h, err := l.Dimensions(0)
	if err != nil || w != 16 || h != 9 {
		t.Errorf("Dimensions: expected 16x9, got %dx%d (%v)", w, h, err)
	}
}

func TestDirLoaderCanceled(t *testing.T) {
	seq := Sequence{Count: 1, Folder: "f", Prefix: "frame", Ext: "png"}
	l := NewDirLoader(fstest.MapFS{"f/frame-001.png": {Data: encodePNG(t, 2, 2)}}, seq)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Load(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
