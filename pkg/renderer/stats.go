package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int     // Total number of pixels rendered
	TotalSamples   int     // Total number of samples taken
	SamplesPerPass int     // Samples per pixel added by the last pass
	AverageSamples float64 // Average samples per pixel
	MaxSamples     int     // Maximum samples allowed per pixel
}

// BufferToImage unpacks a packed 0x00RRGGBB buffer into an opaque image.
// Buffer row 0 becomes image row 0.
func BufferToImage(buffer []uint32, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := buffer[y*width+x]
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(p >> 16),
				G: uint8(p >> 8),
				B: uint8(p),
				A: 255,
			})
		}
	}
	return img
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of the image in [0, 1]
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}

	sum := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			sum += luminance(core.NewVec3(float64(c.R), float64(c.G), float64(c.B)).Divide(255))
		}
	}
	return sum / float64(total)
}

func luminance(c core.Vec3) float64 {
	return 0.2126*c.X + 0.7152*c.Y + 0.0722*c.Z
}
