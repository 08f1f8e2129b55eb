package video

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"slices"
	"testing"
)

func TestBuildFFmpegArgs(t *testing.T) {
	args := buildFFmpegArgs(Params{Width: 1280, Height: 720, FPS: 30, Encoder: "libx264", Quality: 23, Output: "out.mp4"})

	want := [][]string{
		{"-video_size", "1280x720"},
		{"-framerate", "30"},
		{"-c:v", "libx264"},
		{"-crf", "23"},
	}
	for _, pair := range want {
		i := slices.Index(args, pair[0])
		if i < 0 || i+1 >= len(args) || args[i+1] != pair[1] {
			t.Errorf("Expected %s %s in %v", pair[0], pair[1], args)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("Expected output last, got %v", args)
	}
}

func TestQualityArgs(t *testing.T) {
	tests := []struct {
		encoder string
		quality int
		want    []string
	}{
		{"h264_videotoolbox", 75, []string{"-b:v", "7500k"}},
		{"h264_nvenc", 28, []string{"-cq", "28"}},
		{"libx264", 23, []string{"-crf", "23", "-preset", "medium"}},
	}
	for _, tt := range tests {
		if got := qualityArgs(tt.encoder, tt.quality); !slices.Equal(got, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.encoder, tt.want, got)
		}
	}
}

func TestWriteRawRGBAOffsetImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 12, 11))
	src.Set(10, 10, color.NRGBA{R: 255, A: 255})
	src.Set(11, 10, color.NRGBA{G: 255, A: 255})

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, src); err != nil {
		t.Fatal(err)
	}
	want := []byte{255, 0, 0, 255, 0, 255, 0, 255}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("Expected %v, got %v", want, buf.Bytes())
	}
}

func TestPNGSequence(t *testing.T) {
	dir := t.TempDir()
	seq, err := NewPNGSequence(context.Background(), dir, 2)
	if err != nil {
		t.Fatal(err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Pix[3] = 255
	for i := 0; i < 3; i++ {
		img.Pix[0] = uint8(i * 50)
		if err := seq.WriteFrame(img); err != nil {
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}
	if err := seq.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		f, err := os.Open(seq.FramePath(i))
		if err != nil {
			t.Fatalf("Missing frame %d: %v", i, err)
		}
		decoded, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		r, _, _, _ := decoded.At(0, 0).RGBA()
		if uint8(r>>8) != uint8(i*50) {
			t.Errorf("Frame %d: expected red %d, got %d", i, i*50, r>>8)
		}
	}
}

func TestPNGSequenceWriteFailure(t *testing.T) {
	dir := t.TempDir()
	seq, err := NewPNGSequence(context.Background(), dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	// A directory in place of the first frame makes its write fail
	if err := os.Mkdir(seq.FramePath(0), 0755); err != nil {
		t.Fatal(err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var writeErr error
	for i := 0; i < 5 && writeErr == nil; i++ {
		writeErr = seq.WriteFrame(img)
	}
	closeErr := seq.Close()

	if writeErr == nil {
		t.Fatal("Expected WriteFrame to fail after the worker error")
	}
	if errors.Is(writeErr, context.Canceled) {
		t.Errorf("WriteFrame should report the write failure, got %v", writeErr)
	}
	if closeErr == nil || errors.Is(closeErr, context.Canceled) {
		t.Errorf("Close should report the write failure, got %v", closeErr)
	}
}

func TestPNGSequenceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	seq, err := NewPNGSequence(ctx, t.TempDir(), 1)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := seq.WriteFrame(image.NewRGBA(image.Rect(0, 0, 2, 2))); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if err := seq.Close(); err != nil {
		t.Errorf("Close after cancel: %v", err)
	}
}

type failSink struct{ closed bool }

func (f *failSink) WriteFrame(image.Image) error { return errors.New("full") }
func (f *failSink) Close() error { f.closed = true; return nil }

func TestMultiStopsOnError(t *testing.T) {
	bad := &failSink{}
	m := Multi{bad}
	if err := m.WriteFrame(image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("Expected error from failing sink")
	}
	if err := m.Close(); err != nil || !bad.closed {
		t.Errorf("Expected every sink closed, err=%v", err)
	}
}
