// Package texture decodes texture entries into canonical RGBA images
// and writes them out as PNG.
package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

var (
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
	ErrShapeMismatch          = errors.New("texture shape mismatch")
	ErrTruncated              = errors.New("truncated texture record")
)

// PixelFormat is the surface format tag stored with every texture.
// The values follow the client's rendering API.
type PixelFormat uint32

const (
	R8G8B8   PixelFormat = 20
	A8R8G8B8 PixelFormat = 21
	Index16  PixelFormat = 101
	P8       PixelFormat = 41
)

func (f PixelFormat) String() string {
	switch f {
	case R8G8B8:
		return "PFID_R8G8B8"
	case A8R8G8B8:
		return "PFID_A8R8G8B8"
	case Index16:
		return "PFID_INDEX16"
	case P8:
		return "PFID_P8"
	default:
		return fmt.Sprintf("PFID(%d)", uint32(f))
	}
}

// palettized formats carry a trailing default palette id.
func (f PixelFormat) palettized() bool { return f == Index16 || f == P8 }

// A Texture is the decoded form of a texture entry's payload, the
// bytes immediately after the framing identifier.
type Texture struct {
	Unknown int32 // sometimes 6; meaning unestablished
	Width   int32
	Height  int32
	Format  PixelFormat
	Data    []byte

	defaultPalette    uint32
	hasDefaultPalette bool
}

// DefaultPalette returns the trailing palette id, present only for
// palettized formats.
func (t *Texture) DefaultPalette() (uint32, bool) { return t.defaultPalette, t.hasDefaultPalette }

// Decode reads the texture record from buf.
func Decode(buf []byte) (*Texture, error) {
	if len(buf) < 20 {
		return nil, fmt.Errorf("%w: %d byte header", ErrTruncated, len(buf))
	}
	le := binary.LittleEndian
	t := Texture{
		Unknown: int32(le.Uint32(buf[0:])),
		Width:   int32(le.Uint32(buf[4:])),
		Height:  int32(le.Uint32(buf[8:])),
		Format:  PixelFormat(le.Uint32(buf[12:])),
	}
	length := int32(le.Uint32(buf[16:]))
	if length < 0 || int64(len(buf)-20) < int64(length) {
		return nil, fmt.Errorf("%w: %d data bytes declared, %d available", ErrTruncated, length, len(buf)-20)
	}
	t.Data = buf[20 : 20+length]

	if t.Format.palettized() {
		rest := buf[20+length:]
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: default palette id missing", ErrTruncated)
		}
		t.defaultPalette = le.Uint32(rest)
		t.hasDefaultPalette = true
	}
	return &t, nil
}

// RGBA converts the pixel data to canonical non-premultiplied RGBA
// bytes, 4 per pixel in row-major order.
func (t *Texture) RGBA() ([]byte, error) {
	var bpp int
	switch t.Format {
	case R8G8B8:
		bpp = 3
	case A8R8G8B8:
		bpp = 4
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPixelFormat, t.Format)
	}
	pixels := len(t.Data) / bpp
	if len(t.Data)%bpp != 0 || int64(pixels) != int64(t.Width)*int64(t.Height) {
		return nil, fmt.Errorf("%w: %dx%d but %d %v pixels", ErrShapeMismatch, t.Width, t.Height, pixels, t.Format)
	}

	out := make([]byte, 0, pixels*4)
	switch t.Format {
	case R8G8B8:
		for i := 0; i < len(t.Data); i += 3 {
			out = append(out, t.Data[i+2], t.Data[i+1], t.Data[i], 0xFF)
		}
	case A8R8G8B8:
		for i := 0; i < len(t.Data); i += 4 {
			out = append(out, t.Data[i+2], t.Data[i+1], t.Data[i], t.Data[i+3])
		}
	}
	return out, nil
}

// Image materialises the texture as a straight-alpha image.
func (t *Texture) Image() (*image.NRGBA, error) {
	rgba, err := t.RGBA()
	if err != nil {
		return nil, err
	}
	return &image.NRGBA{
		Pix:    rgba,
		Stride: int(t.Width) * 4,
		Rect:   image.Rect(0, 0, int(t.Width), int(t.Height)),
	}, nil
}

// WritePNG encodes the texture to w, upscaled by the integer factor
// scale (1 leaves it untouched).
func (t *Texture) WritePNG(w io.Writer, scale int) error {
	img, err := t.Image()
	if err != nil {
		return err
	}
	return png.Encode(w, Scale(img, scale))
}

// Scale resamples img by an integer factor with Catmull-Rom
// interpolation. Factors below 2 return img unchanged.
func Scale(img image.Image, scale int) image.Image {
	if scale < 2 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, b, xdraw.Over, nil)
	return dst
}
