package bmp

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/imgfilter/pkg/errors"
	"github.com/matzehuels/imgfilter/pkg/grid"
)

func testGrid(w, h int) *grid.Grid {
	g := grid.New(w, h)
	for i := range h {
		for j := range w {
			g.Set(i, j, grid.Pixel{R: uint8(10 * i), G: uint8(10 * j), B: uint8(i + j)})
		}
	}
	return g
}

func TestRoundTrip(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 2}, {4, 4}, {5, 7}} {
		g := testGrid(size[0], size[1])
		data, err := EncodeBytes(g)
		if err != nil {
			t.Fatalf("EncodeBytes: %v", err)
		}
		if want := headerSize + RowSize(size[0])*size[1]; len(data) != want {
			t.Errorf("%dx%d: encoded %d bytes, want %d", size[0], size[1], len(data), want)
		}
		got, err := DecodeBytes(data)
		if err != nil {
			t.Fatalf("DecodeBytes: %v", err)
		}
		if !got.Equal(g) {
			t.Errorf("%dx%d: round trip changed pixels", size[0], size[1])
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	g := grid.New(1, 2)
	g.Set(0, 0, grid.Pixel{R: 1, G: 2, B: 3})
	g.Set(1, 0, grid.Pixel{R: 4, G: 5, B: 6})

	data, err := EncodeBytes(g)
	if err != nil {
		t.Fatal(err)
	}
	h, err := ReadHeader(data)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Width != 1 || h.Height != 2 || h.PixelOffset != headerSize {
		t.Errorf("header = %+v", h)
	}
	// Bottom-up rows, BGR order, padded to 4 bytes.
	want := []byte{6, 5, 4, 0, 3, 2, 1, 0}
	if got := data[headerSize:]; !bytes.Equal(got, want) {
		t.Errorf("pixel data = %v, want %v", got, want)
	}
}

func TestEncodeAfterCrop(t *testing.T) {
	g := testGrid(4, 4)
	g.Crop(2, 2)

	data, err := EncodeBytes(g)
	if err != nil {
		t.Fatal(err)
	}
	h, err := ReadHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	if h.Width != 2 || h.Height != 2 {
		t.Errorf("size = %dx%d, want 2x2", h.Width, h.Height)
	}
	if len(data) != headerSize+2*RowSize(2) {
		t.Errorf("encoded %d bytes, want %d", len(data), headerSize+2*RowSize(2))
	}

	got, err := DecodeBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(g) {
		t.Error("cropped image changed after round trip")
	}
	if got.At(1, 1) != (grid.Pixel{R: 10, G: 10, B: 2}) {
		t.Errorf("pixel (1,1) = %v", got.At(1, 1))
	}
}

func TestReadHeaderRejects(t *testing.T) {
	valid, err := EncodeBytes(testGrid(2, 2))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"short", func(b []byte) []byte { return b[:20] }},
		{"magic", func(b []byte) []byte { b[0] = 'P'; return b }},
		{"32 bpp", func(b []byte) []byte { binary.LittleEndian.PutUint16(b[28:], 32); return b }},
		{"8 bpp", func(b []byte) []byte { binary.LittleEndian.PutUint16(b[28:], 8); return b }},
		{"v5 header", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[14:], 124); return b }},
		{"compressed", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[30:], 1); return b }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(bytes.Clone(valid))
			_, err := DecodeBytes(data)
			if !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
				t.Errorf("DecodeBytes() error = %v, want unsupported format", err)
			}
		})
	}
}

func TestDecodeChecksExtent(t *testing.T) {
	valid, err := EncodeBytes(testGrid(3, 2))
	if err != nil {
		t.Fatal(err)
	}
	setSize := func(b []byte, w, h int32) []byte {
		binary.LittleEndian.PutUint32(b[18:], uint32(w))
		binary.LittleEndian.PutUint32(b[22:], uint32(h))
		return b
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"header claims 12000x12000", func(b []byte) []byte { return setSize(b[:headerSize], 12000, 12000) }},
		{"top-down claims 12000 rows", func(b []byte) []byte { return setSize(b, 3, -12000) }},
		{"over the pixel limit", func(b []byte) []byte { return setSize(b, 1<<16, 1<<16) }},
		{"last byte missing", func(b []byte) []byte { return b[:len(b)-1] }},
		{"pixel offset inside header", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[10:], 20); return b }},
		{"pixel offset past end", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[10:], 1<<30); return b }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes(tt.mutate(bytes.Clone(valid)))
			if !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
				t.Errorf("DecodeBytes() error = %v, want unsupported format", err)
			}
		})
	}

	// A header with trailing bytes beyond the pixel array still decodes.
	padded := append(bytes.Clone(valid), 0, 0, 0, 0)
	if _, err := DecodeBytes(padded); err != nil {
		t.Errorf("DecodeBytes(padded) error = %v", err)
	}
}

func TestPixelBytes(t *testing.T) {
	tests := []struct {
		w, h int32
		want int64
	}{
		{1, 1, 4},
		{3, 2, 24},
		{4, -3, 36},
		{0, 5, 0},
	}
	for _, tt := range tests {
		if got := (Header{Width: tt.w, Height: tt.h}).PixelBytes(); got != tt.want {
			t.Errorf("PixelBytes(%dx%d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.bmp")
	g := testGrid(3, 3)
	data, err := EncodeBytes(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Equal(g) {
		t.Error("loaded grid differs")
	}

	if _, err := Load(filepath.Join(dir, "missing.bmp")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}
