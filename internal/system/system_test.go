package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestImagePoolClearsRecycledBuffers(t *testing.T) {
	p := NewImagePool()
	img := p.Get(4, 2)
	if img.Rect.Dx() != 4 || img.Rect.Dy() != 2 {
		t.Fatalf("Expected 4x2, got %v", img.Rect)
	}
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	p.Put(img)

	again := p.Get(4, 2)
	for i, v := range again.Pix {
		if v != 0 {
			t.Fatalf("Expected cleared buffer, byte %d = %d", i, v)
		}
	}
}

func TestFindLatestFile(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.yaml", "b.yaml", "c.txt"}
	for i, n := range names {
		path := filepath.Join(dir, n)
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(path, mod, mod)
	}

	latest, err := FindLatestFile(dir, ".yaml")
	if err != nil {
		t.Fatalf("FindLatestFile failed: %v", err)
	}
	if filepath.Base(latest) != "b.yaml" {
		t.Errorf("Expected b.yaml, got %s", latest)
	}

	if _, err := FindLatestFile(dir, ".mp4"); err == nil {
		t.Error("Expected error when nothing matches")
	}
}

func TestReport(t *testing.T) {
	r := &Report{Build: "dev", Frames: 10, Steps: 50, Sweep: 2 * time.Second}
	r.Collect()
	if r.Cores <= 0 {
		t.Errorf("Expected core count, got %d", r.Cores)
	}
	if r.StepsPerSecond() != 25 {
		t.Errorf("Expected 25 steps/s, got %f", r.StepsPerSecond())
	}
	if !strings.Contains(r.String(), "PERFORMANCE REPORT") {
		t.Error("Report header missing")
	}
	t.Log(r.String())
}

func TestDefaultQuality(t *testing.T) {
	if DefaultQuality("libx264") != 23 || DefaultQuality("h264_nvenc") != 28 {
		t.Error("Unexpected default quality")
	}
}
