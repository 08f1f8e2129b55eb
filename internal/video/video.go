package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
)

// Sink consumes composed preview frames in order
type Sink interface {
	WriteFrame(img image.Image) error
	Close() error
}

type Params struct {
	Width, Height int
	FPS           int
	Encoder       string
	Quality       int
	Output        string
}

// FFmpegEncoder pipes raw RGBA frames into one ffmpeg process
type FFmpegEncoder struct {
	params Params
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    bytes.Buffer
	frames int
}

func NewFFmpegEncoder(ctx context.Context, params Params) (*FFmpegEncoder, error) {
	if params.Width <= 0 || params.Height <= 0 || params.FPS <= 0 {
		return nil, fmt.Errorf("bad encoder params %dx%d@%d", params.Width, params.Height, params.FPS)
	}
	if params.Encoder == "" {
		params.Encoder = "libx264"
	}

	e := &FFmpegEncoder{params: params}
	e.cmd = exec.CommandContext(ctx, "ffmpeg", buildFFmpegArgs(params)...)
	e.cmd.Stdout = &e.out
	e.cmd.Stderr = &e.out

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return e, nil
}

func buildFFmpegArgs(p Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
		// yuv420p needs even dimensions
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-c:v", p.Encoder,
	}
	args = append(args, qualityArgs(p.Encoder, p.Quality)...)
	args = append(args, p.Output)
	return args
}

func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox has no CRF, quality maps to kbit/s
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// WriteFrame streams one frame. Frames of another size are rejected.
func (e *FFmpegEncoder) WriteFrame(img image.Image) error {
	if b := img.Bounds(); b.Dx() != e.params.Width || b.Dy() != e.params.Height {
		return fmt.Errorf("frame %d is %dx%d, encoder expects %dx%d", e.frames, b.Dx(), b.Dy(), e.params.Width, e.params.Height)
	}
	if err := writeRawRGBA(e.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	e.frames++
	return nil
}

func (e *FFmpegEncoder) Close() error {
	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, e.out.String())
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
