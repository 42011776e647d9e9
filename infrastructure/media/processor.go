// Package media recompresses downloaded images before they are inlined
// into documents or served through the proxy.
package media

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"octavo/infrastructure/config"
)

const jpegQuality = 85

// Processor shrinks raster images for e-paper delivery: JPEG re-encodes at
// quality 85, large PNGs convert to JPEG, WebP converts to JPEG, and the
// longest dimension is constrained without enlargement. The original bytes
// win whenever recompression fails or does not shrink them. Vector and
// animated types pass through untouched.
type Processor struct {
	maxDimension    int
	pngConvertBytes int64
	logger          *zap.Logger
}

// NewProcessor creates an image processor from the media configuration
func NewProcessor(cfg config.MediaConfig, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		maxDimension:    cfg.MaxImageDimension,
		pngConvertBytes: cfg.PNGConvertBytes,
		logger:          logger,
	}
}

// Process recompresses image data according to its media type and returns
// the final bytes with their final type.
func (p *Processor) Process(data []byte, mediaType string) ([]byte, string) {
	switch mediaType {
	case "image/jpeg":
		return p.recompress(data, mediaType, "image/jpeg")
	case "image/png":
		if int64(len(data)) > p.pngConvertBytes {
			return p.recompress(data, mediaType, "image/jpeg")
		}
		return p.recompress(data, mediaType, "image/png")
	case "image/webp":
		return p.recompress(data, mediaType, "image/jpeg")
	}
	return data, mediaType
}

func (p *Processor) recompress(data []byte, fromType, toType string) ([]byte, string) {
	img, err := p.decode(data, fromType)
	if err != nil {
		p.logger.Debug("Image decode failed, keeping original",
			zap.String("media_type", fromType),
			zap.Error(err))
		return data, fromType
	}
	img = p.scaleDown(img)

	var buf bytes.Buffer
	switch toType {
	case "image/png":
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		err = encoder.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		p.logger.Debug("Image encode failed, keeping original",
			zap.String("media_type", toType),
			zap.Error(err))
		return data, fromType
	}
	if buf.Len() >= len(data) {
		return data, fromType
	}
	return buf.Bytes(), toType
}

func (p *Processor) decode(data []byte, mediaType string) (image.Image, error) {
	if mediaType == "image/webp" {
		return webp.Decode(bytes.NewReader(data))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// scaleDown constrains the longest dimension to the configured maximum,
// never enlarging.
func (p *Processor) scaleDown(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if p.maxDimension <= 0 || longest <= p.maxDimension {
		return img
	}

	scale := float64(p.maxDimension) / float64(longest)
	dw := int(float64(w)*scale + 0.5)
	dh := int(float64(h)*scale + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
