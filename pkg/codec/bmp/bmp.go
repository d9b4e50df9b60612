// Package bmp reads and writes uncompressed 24-bit Windows bitmaps.
//
// Only the classic layout is accepted: a "BM" file header followed by a
// 40-byte BITMAPINFOHEADER and 24 bits per pixel. Anything else fails with
// [errors.ErrCodeUnsupportedFormat] before any pixel data is read.
package bmp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	xbmp "golang.org/x/image/bmp"

	"github.com/matzehuels/imgfilter/pkg/errors"
	"github.com/matzehuels/imgfilter/pkg/grid"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	headerSize     = fileHeaderSize + infoHeaderSize
	bitsPerPixel   = 24
)

// MaxPixels bounds width*height of a decodable bitmap.
const MaxPixels = 1 << 27

// Header holds the fields of the bitmap header that decoding depends on.
type Header struct {
	FileSize     uint32
	PixelOffset  uint32
	DIBSize      uint32
	Width        int32
	Height       int32 // negative for top-down bitmaps
	BitsPerPixel uint16
	Compression  uint32
}

// ReadHeader parses and checks the first 54 bytes of a bitmap.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, errors.New(errors.ErrCodeUnsupportedFormat, "file too short for a BMP header (%d bytes)", len(data))
	}
	if data[0] != 'B' || data[1] != 'M' {
		return Header{}, errors.New(errors.ErrCodeUnsupportedFormat, "not a BMP file")
	}

	le := binary.LittleEndian
	h := Header{
		FileSize:     le.Uint32(data[2:6]),
		PixelOffset:  le.Uint32(data[10:14]),
		DIBSize:      le.Uint32(data[14:18]),
		Width:        int32(le.Uint32(data[18:22])),
		Height:       int32(le.Uint32(data[22:26])),
		BitsPerPixel: le.Uint16(data[28:30]),
		Compression:  le.Uint32(data[30:34]),
	}
	if h.BitsPerPixel != bitsPerPixel {
		return h, errors.New(errors.ErrCodeUnsupportedFormat, "only 24-bit BMP is supported, got %d bits per pixel", h.BitsPerPixel)
	}
	if h.DIBSize != infoHeaderSize {
		return h, errors.New(errors.ErrCodeUnsupportedFormat, "only %d-byte DIB headers are supported, got %d", infoHeaderSize, h.DIBSize)
	}
	if h.Compression != 0 {
		return h, errors.New(errors.ErrCodeUnsupportedFormat, "compressed BMP is not supported")
	}
	if h.Width < 0 {
		return h, errors.New(errors.ErrCodeUnsupportedFormat, "negative BMP width %d", h.Width)
	}
	return h, nil
}

// PixelBytes returns the size of the pixel array the header describes.
func (h Header) PixelBytes() int64 {
	height := int64(h.Height)
	if height < 0 {
		height = -height
	}
	return int64(RowSize(int(h.Width))) * height
}

// checkExtent rejects headers whose pixel array is larger than MaxPixels or
// than the n bytes actually available. The check runs before any pixel
// buffer is allocated.
func checkExtent(h Header, n int) error {
	height := int64(h.Height)
	if height < 0 {
		height = -height
	}
	if int64(h.Width)*height > MaxPixels {
		return errors.New(errors.ErrCodeUnsupportedFormat,
			"BMP of %dx%d exceeds the %d pixel limit", h.Width, height, MaxPixels)
	}
	if need := int64(h.PixelOffset) + h.PixelBytes(); int64(h.PixelOffset) < headerSize || need > int64(n) {
		return errors.New(errors.ErrCodeUnsupportedFormat,
			"truncated BMP: %dx%d pixels at offset %d need %d bytes, file has %d", h.Width, height, h.PixelOffset, need, n)
	}
	return nil
}

// Decode reads a 24-bit bitmap into a new grid. The whole of r is read
// so the header can be checked against the data before decoding.
func Decode(r io.Reader) (*grid.Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read BMP")
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an in-memory bitmap.
func DecodeBytes(data []byte) (*grid.Grid, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	if err := checkExtent(h, len(data)); err != nil {
		return nil, err
	}

	img, err := xbmp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupportedFormat, err, "decode BMP")
	}
	return grid.FromImage(img), nil
}

// Encode writes g as a bottom-up 24-bit bitmap. Exactly g.Width pixels are
// written per row, followed by padding to a multiple of four bytes.
func Encode(w io.Writer, g *grid.Grid) error {
	if err := xbmp.Encode(w, g.Image()); err != nil {
		return fmt.Errorf("encode BMP: %w", err)
	}
	return nil
}

// EncodeBytes encodes g into memory.
func EncodeBytes(g *grid.Grid) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerSize + RowSize(g.Width)*g.Height)
	if err := Encode(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RowSize returns the padded size in bytes of one row of width pixels.
func RowSize(width int) int {
	return (3*width + 3) &^ 3
}

// Load decodes the bitmap at path.
func Load(path string) (*grid.Grid, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "input file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	g, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
