package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

// Enhance applies a processing chain that improves OCR accuracy on scanned
// pages: grayscale for contrast, then contrast, sharpen, brightness and gamma
// adjustments.
func Enhance(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 30)
	out = imaging.Sharpen(out, 1.5)
	out = imaging.AdjustBrightness(out, 10)
	out = imaging.AdjustGamma(out, 1.2)
	return out
}
