package pie

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// TextureDataFromImage converts img to tightly packed RGBA8 bytes
// suitable for a FormatR8G8B8A8UNorm texture upload. The fast path
// reuses the pixel storage of a tightly packed *image.RGBA; anything
// else is redrawn.
func TextureDataFromImage(img image.Image) ([]byte, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == w*4 && b.Min == (image.Point{}) {
		return rgba.Pix, w, h
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst.Pix, w, h
}

// NewTextureFromImage creates a single-layer RGBA8 2D texture holding
// img. With mipmap true the full mip chain is computed on the CPU with
// a Catmull-Rom downscale and uploaded level by level, so the texture
// does not need TextureUsageGenerateMips or backend blit support.
func NewTextureFromImage(d Device, img image.Image, mipmap bool) (Texture, error) {
	pix, w, h := TextureDataFromImage(img)
	desc := NewTexture2D(w, h, FormatR8G8B8A8UNorm, 1, false)
	if !mipmap {
		return d.CreateTexture(desc, pix)
	}

	desc.MipLevels = 0
	desc.Dynamic = true
	tex, err := d.CreateTexture(desc, pix)
	if err != nil {
		return nil, err
	}
	level := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(level, level.Bounds(), img, img.Bounds().Min, draw.Src)
	levels := desc.ResolvedMipLevels()
	for mip := 1; mip < levels; mip++ {
		w, h = max(w/2, 1), max(h/2, 1)
		next := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(next, next.Bounds(), level, level.Bounds(), draw.Src, nil)
		if err := d.UpdateTexture(tex, uint32(mip), 0, 0, 0, 0, w, h, 1, next.Pix); err != nil {
			tex.Dispose()
			return nil, fmt.Errorf("pie: failed to upload mip level %d: %w", mip, err)
		}
		level = next
	}
	return tex, nil
}
