// Package source loads the still images drawn behind the wireframe.
package source

import (
	"image"

	"golang.org/x/image/draw"
)

type Source interface {
	Count() int
	Dimensions(index int) (width, height int, err error)
	Load(index int) (image.Image, error)
	Close() error
}

// Fit scales img to cover a w x h frame, cropping the overflow around the
// center.
func Fit(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	b := img.Bounds()
	if b.Empty() || w <= 0 || h <= 0 {
		return dst
	}

	sw, sh := b.Dx(), b.Dy()
	// crop the source to the frame aspect
	crop := b
	if sw*h > sh*w {
		cw := sh * w / h
		crop.Min.X += (sw - cw) / 2
		crop.Max.X = crop.Min.X + cw
	} else {
		ch := sw * h / w
		crop.Min.Y += (sh - ch) / 2
		crop.Max.Y = crop.Min.Y + ch
	}
	draw.CatmullRom.Scale(dst, dst.Rect, img, crop, draw.Src, nil)
	return dst
}

// Backdrop loads the image at index from src scaled to cover w x h.
func Backdrop(src Source, index, w, h int) (*image.RGBA, error) {
	img, err := src.Load(index)
	if err != nil {
		return nil, err
	}
	return Fit(img, w, h), nil
}
