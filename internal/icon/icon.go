// Package icon composes game icons from their texture layers. An
// icon on screen is a stack of equally-sized textures alpha-blended
// in painter's order.
package icon

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/amoeba/libac-go/internal/texture"
)

var ErrLayerShape = errors.New("icon layer dimensions differ")

// An Icon is a layer stack. Base is mandatory; the rest may be nil.
// Scale is an integer upscale factor applied on export.
type Icon struct {
	Scale    int
	Base     *texture.Texture
	Underlay *texture.Texture
	Overlay  *texture.Texture
	Overlay2 *texture.Texture
	Effect   *texture.Texture
}

// layers in blend order, bottom first.
func (ic *Icon) layers() []*texture.Texture {
	stack := make([]*texture.Texture, 0, 5)
	for _, t := range []*texture.Texture{ic.Underlay, ic.Base, ic.Overlay, ic.Overlay2, ic.Effect} {
		if t != nil {
			stack = append(stack, t)
		}
	}
	return stack
}

// Blend flattens the stack into one straight-alpha image.
func (ic *Icon) Blend() (*image.NRGBA, error) {
	stack := ic.layers()
	if len(stack) == 0 {
		return nil, errors.New("icon has no layers")
	}

	bottom, err := stack[0].Image()
	if err != nil {
		return nil, err
	}
	out := image.NewNRGBA(bottom.Rect)
	draw.Draw(out, out.Rect, bottom, image.Point{}, draw.Src)

	for _, t := range stack[1:] {
		layer, err := t.Image()
		if err != nil {
			return nil, err
		}
		if layer.Rect != out.Rect {
			return nil, fmt.Errorf("%w: %v vs %v", ErrLayerShape, layer.Rect.Size(), out.Rect.Size())
		}
		draw.Draw(out, out.Rect, layer, image.Point{}, draw.Over)
	}
	return out, nil
}

// WritePNG blends the stack, applies the upscale and encodes to w.
func (ic *Icon) WritePNG(w io.Writer) error {
	img, err := ic.Blend()
	if err != nil {
		return err
	}
	return png.Encode(w, texture.Scale(img, ic.Scale))
}
