package utils

import (
	"bytes"
	"math"
	"net/http"
	"sync"
)

const (
	formatJPEG    = "jpeg"
	formatPNG     = "png"
	formatGIF     = "gif"
	formatBMP     = "bmp"
	formatTIFF    = "tiff"
	formatWebP    = "webp"
	formatAVIF    = "avif"
	formatICO     = "ico"
	formatUnknown = "unknown"
)

// DetectFormat sniffs the leading bytes of data and returns the image format.
func DetectFormat(data []byte) string {
	if len(data) < 4 {
		return formatUnknown
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return formatJPEG
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return formatPNG
	}
	// GIF: GIF8
	if data[0] == 'G' && data[1] == 'I' && data[2] == 'F' && data[3] == '8' {
		return formatGIF
	}
	// BMP: BM
	if data[0] == 'B' && data[1] == 'M' {
		return formatBMP
	}
	// TIFF: II*\0 or MM\0*
	if (data[0] == 'I' && data[1] == 'I' && data[2] == 0x2A && data[3] == 0x00) ||
		(data[0] == 'M' && data[1] == 'M' && data[2] == 0x00 && data[3] == 0x2A) {
		return formatTIFF
	}
	// ICO: 00 00 01 00
	if data[0] == 0x00 && data[1] == 0x00 && data[2] == 0x01 && data[3] == 0x00 {
		return formatICO
	}
	// WebP: RIFF....WEBP
	if len(data) >= 12 &&
		data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P' {
		return formatWebP
	}
	// AVIF: ISO BMFF "ftyp" box with an avif/avis brand.
	if len(data) >= 12 &&
		data[4] == 'f' && data[5] == 't' && data[6] == 'y' && data[7] == 'p' &&
		data[8] == 'a' && data[9] == 'v' && data[10] == 'i' &&
		(data[11] == 'f' || data[11] == 's') {
		return formatAVIF
	}
	// Fallback to net/http sniffing.
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return formatJPEG
	case "image/png":
		return formatPNG
	case "image/gif":
		return formatGIF
	case "image/bmp":
		return formatBMP
	case "image/webp":
		return formatWebP
	case "image/avif":
		return formatAVIF
	}
	return formatUnknown
}

// FitDimensions computes output (w, h) for a resize request.  With keepAspect
// set, orientation picks the fixed axis: landscape sources keep targetW and
// derive height, everything else keeps targetH and derives width.  Without it
// the target dimensions are used verbatim.
func FitDimensions(srcW, srcH, targetW, targetH int, keepAspect bool) (int, int) {
	if !keepAspect {
		return targetW, targetH
	}
	aspect := float64(srcW) / float64(srcH)
	if srcW > srcH {
		return targetW, int(math.Round(float64(targetW) / aspect))
	}
	return int(math.Round(float64(targetH) * aspect)), targetH
}

// AlignUp rounds n up to the nearest multiple of m.
func AlignUp(n, m int) int {
	if m <= 1 {
		return n
	}
	return (n + m - 1) / m * m
}

// PNGLevel maps a 1-100 quality value onto the 0-9 zlib effort scale.  Higher
// quality means lower compression effort (larger, faster-to-write files).
func PNGLevel(quality int) int {
	level := 9 - int(float64(quality)/11.1)
	if level < 0 {
		return 0
	}
	if level > 9 {
		return 9
	}
	return level
}

// CloneBytes returns a copy of b (safe for use after the source buffer is released).
func CloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ── Pooled buffers ────────────────────────────────────────────────────────────

// bufPool reuses byte buffers across encode calls to reduce GC pressure.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// AcquireBuffer returns a reset buffer from the pool.
func AcquireBuffer() *bytes.Buffer {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// ReleaseBuffer returns b to the pool.  Callers must not use b after this call.
func ReleaseBuffer(b *bytes.Buffer) {
	// Cap large buffers to avoid pinning excessive memory.
	if b.Cap() > 8*1024*1024 {
		return
	}
	bufPool.Put(b)
}
