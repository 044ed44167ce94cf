package utils_test

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/iconforge/iconforge/utils"
)

func TestDetectFormat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}

	var jpegBuf, pngBuf bytes.Buffer
	if err := jpeg.Encode(&jpegBuf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", jpegBuf.Bytes(), "jpeg"},
		{"png", pngBuf.Bytes(), "png"},
		{"gif header", []byte("GIF89a...."), "gif"},
		{"bmp header", []byte("BM\x00\x00\x00\x00"), "bmp"},
		{"ico header", []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00}, "ico"},
		{"webp header", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "webp"},
		{"avif header", append([]byte{0, 0, 0, 0x1c}, []byte("ftypavif")...), "avif"},
		{"garbage", []byte("not an image at all"), "unknown"},
		{"too short", []byte{0xFF}, "unknown"},
	}
	for _, tc := range tests {
		if got := utils.DetectFormat(tc.data); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		srcW, srcH, targetW, targetH int
		keepAspect                   bool
		wantW, wantH                 int
	}{
		// aspect locked, landscape: width wins, height derived
		{200, 100, 100, 100, true, 100, 50},
		{800, 600, 400, 400, true, 400, 300},
		// aspect locked, portrait: height wins, width derived
		{100, 200, 100, 100, true, 50, 100},
		{600, 800, 400, 400, true, 300, 400},
		// square counts as portrait
		{100, 100, 60, 40, true, 40, 40},
		// aspect free: verbatim
		{200, 100, 77, 33, false, 77, 33},
		// rounding, not truncation: 100 / (300/170) = 56.67 → 57
		{300, 170, 100, 100, true, 100, 57},
	}
	for _, tc := range tests {
		gotW, gotH := utils.FitDimensions(tc.srcW, tc.srcH, tc.targetW, tc.targetH, tc.keepAspect)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Errorf("FitDimensions(%d,%d,%d,%d,%v) = %d,%d; want %d,%d",
				tc.srcW, tc.srcH, tc.targetW, tc.targetH, tc.keepAspect,
				gotW, gotH, tc.wantW, tc.wantH)
		}
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, m, want int
	}{
		{100, 8, 104},
		{104, 8, 104},
		{1, 8, 8},
		{0, 8, 0},
		{13, 1, 13},
		{13, 0, 13},
	}
	for _, tc := range tests {
		if got := utils.AlignUp(tc.n, tc.m); got != tc.want {
			t.Errorf("AlignUp(%d, %d) = %d; want %d", tc.n, tc.m, got, tc.want)
		}
	}
}

func TestPNGLevel(t *testing.T) {
	tests := []struct {
		quality, want int
	}{
		{100, 0},
		{1, 9},
		{50, 5},
		{56, 4},
		{0, 9},
		{200, 0},
	}
	for _, tc := range tests {
		if got := utils.PNGLevel(tc.quality); got != tc.want {
			t.Errorf("PNGLevel(%d) = %d; want %d", tc.quality, got, tc.want)
		}
	}
}

func TestCloneBytes(t *testing.T) {
	src := []byte{1, 2, 3}
	dst := utils.CloneBytes(src)
	src[0] = 9
	if dst[0] != 1 {
		t.Error("clone shares backing array with source")
	}
}
