package raster

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"puppetmask/internal/services"
)

// EncodePNG encodes img as a lossless PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, services.Wrap(services.ErrTransient, "raster", "encode png", "", err)
	}
	return buf.Bytes(), nil
}
