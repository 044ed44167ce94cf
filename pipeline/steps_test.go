package pipeline_test

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/iconforge/iconforge/core"
	"github.com/iconforge/iconforge/pipeline"
)

func solidRaster(w, h int, c color.NRGBA) *core.Raster {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return core.FromImage(img, core.FormatPNG)
}

func TestCloneStep_Independence(t *testing.T) {
	src := solidRaster(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	out, err := (&pipeline.CloneStep{}).Execute(context.Background(), src)
	if err != nil {
		t.Fatalf("clone: %v", err)
	}

	// Mutating the clone must leave the source untouched.
	clone := out.Image.(*image.NRGBA)
	clone.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	orig := src.Image.(*image.NRGBA).NRGBAAt(0, 0)
	if orig.R != 10 {
		t.Errorf("source mutated through clone: %+v", orig)
	}
}

func TestSquareStep(t *testing.T) {
	src := solidRaster(100, 40, color.NRGBA{R: 100, A: 255})

	out, err := (&pipeline.SquareStep{Size: 32}).Execute(context.Background(), src)
	if err != nil {
		t.Fatalf("square: %v", err)
	}
	if out.Width() != 32 || out.Height() != 32 {
		t.Errorf("dimensions: got %dx%d, want 32x32", out.Width(), out.Height())
	}
}

func TestSquareStep_RejectsInvalidSize(t *testing.T) {
	src := solidRaster(10, 10, color.NRGBA{A: 255})
	if _, err := (&pipeline.SquareStep{Size: 0}).Execute(context.Background(), src); err == nil {
		t.Error("size 0 accepted")
	}
}

func TestFitStep(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		step         pipeline.FitStep
		wantW, wantH int
	}{
		{"landscape keeps width", 200, 100, pipeline.FitStep{Width: 100, Height: 100, KeepAspect: true}, 100, 50},
		{"portrait keeps height", 100, 200, pipeline.FitStep{Width: 100, Height: 100, KeepAspect: true}, 50, 100},
		{"unlocked is verbatim", 200, 100, pipeline.FitStep{Width: 70, Height: 90}, 70, 90},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := solidRaster(tc.srcW, tc.srcH, color.NRGBA{G: 200, A: 255})
			out, err := tc.step.Execute(context.Background(), src)
			if err != nil {
				t.Fatalf("fit: %v", err)
			}
			if out.Width() != tc.wantW || out.Height() != tc.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d",
					out.Width(), out.Height(), tc.wantW, tc.wantH)
			}
		})
	}
}

func TestFitStep_NoopKeepsRaster(t *testing.T) {
	src := solidRaster(50, 50, color.NRGBA{B: 200, A: 255})
	out, err := (&pipeline.FitStep{Width: 50, Height: 50}).Execute(context.Background(), src)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if out != src {
		t.Error("no-op resize allocated a new raster")
	}
}

func TestDropAlphaStep(t *testing.T) {
	src := solidRaster(4, 4, color.NRGBA{R: 40, G: 50, B: 60, A: 128})

	out, err := (&pipeline.DropAlphaStep{}).Execute(context.Background(), src)
	if err != nil {
		t.Fatalf("drop alpha: %v", err)
	}

	flat := out.Image.(*image.NRGBA)
	got := flat.NRGBAAt(2, 2)
	if got.A != 255 {
		t.Errorf("alpha: got %d, want 255", got.A)
	}
	if got.R != 40 || got.G != 50 || got.B != 60 {
		t.Errorf("color channels changed: %+v", got)
	}
	// Source keeps its translucency.
	if a := src.Image.(*image.NRGBA).NRGBAAt(2, 2).A; a != 128 {
		t.Errorf("source alpha mutated: %d", a)
	}
}

func TestPadAndCropRoundtrip(t *testing.T) {
	src := solidRaster(100, 45, color.NRGBA{R: 7, G: 7, B: 7, A: 255})

	padded, err := (&pipeline.PadStep{Multiple: 8}).Execute(context.Background(), src)
	if err != nil {
		t.Fatalf("pad: %v", err)
	}
	if padded.Width() != 104 || padded.Height() != 48 {
		t.Fatalf("padded dimensions: got %dx%d, want 104x48", padded.Width(), padded.Height())
	}
	// Padding is magenta, content is intact.
	img := padded.Image.(*image.NRGBA)
	if got := img.NRGBAAt(102, 47); got.R != 255 || got.G != 0 || got.B != 255 {
		t.Errorf("padding pixel: got %+v, want magenta", got)
	}
	if got := img.NRGBAAt(50, 20); got.R != 7 {
		t.Errorf("content pixel: got %+v", got)
	}

	cropped, err := (&pipeline.CropToStep{Width: 100, Height: 45}).Execute(context.Background(), padded)
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	if cropped.Width() != 100 || cropped.Height() != 45 {
		t.Errorf("cropped dimensions: got %dx%d, want 100x45", cropped.Width(), cropped.Height())
	}
}

func TestPadStep_AlignedIsNoop(t *testing.T) {
	src := solidRaster(64, 32, color.NRGBA{A: 255})
	out, err := (&pipeline.PadStep{Multiple: 8}).Execute(context.Background(), src)
	if err != nil {
		t.Fatalf("pad: %v", err)
	}
	if out != src {
		t.Error("aligned raster was padded")
	}
}

func TestCropToStep_RejectsOversizedCrop(t *testing.T) {
	src := solidRaster(10, 10, color.NRGBA{A: 255})
	if _, err := (&pipeline.CropToStep{Width: 20, Height: 10}).Execute(context.Background(), src); err == nil {
		t.Error("oversized crop accepted")
	}
}

func TestPipeline_HooksObserveSteps(t *testing.T) {
	src := solidRaster(20, 20, color.NRGBA{A: 255})
	hook := &recordingHook{}

	pl := pipeline.New().
		Use(&pipeline.CloneStep{}, &pipeline.SquareStep{Size: 10}).
		AddHook(hook)

	out, timings, err := pl.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Width() != 10 {
		t.Errorf("width: got %d, want 10", out.Width())
	}
	if len(timings) != 2 {
		t.Errorf("timings: got %d entries, want 2", len(timings))
	}
	want := []string{"clone", "square"}
	if len(hook.before) != 2 || hook.before[0] != want[0] || hook.before[1] != want[1] {
		t.Errorf("before hooks: got %v, want %v", hook.before, want)
	}
	if len(hook.after) != 2 {
		t.Errorf("after hooks: got %v", hook.after)
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := solidRaster(20, 20, color.NRGBA{A: 255})
	_, _, err := pipeline.New().Use(&pipeline.CloneStep{}).Run(ctx, src)
	if err == nil {
		t.Error("expected context cancellation error")
	}
}

type recordingHook struct {
	before []string
	after  []string
}

func (h *recordingHook) BeforeStep(_ context.Context, name string, _ *core.Raster) {
	h.before = append(h.before, name)
}

func (h *recordingHook) AfterStep(_ context.Context, name string, _ *core.Raster, _ time.Duration, _ error) {
	h.after = append(h.after, name)
}
