package export

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

func pngEncode(w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return png.Encode(w, img)
}
