package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"strings"

	"github.com/EasterCompany/dex-runway-service/types"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DefaultInspirationMIMEType is assumed when the upload carries no data-URL header.
const DefaultInspirationMIMEType = "image/jpeg"

// MaxInspirationPixels bounds the images NormalizeInspirationImage will decode. The
// header alone can claim any size, so larger images are never decoded.
const MaxInspirationPixels = 40_000_000

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeInspirationImage decodes a client upload that is either bare base64 or a
// data URL ("data:image/png;base64,...").
func DecodeInspirationImage(encoded string) (types.InspirationImage, error) {
	payload := strings.TrimSpace(encoded)
	mimeType := DefaultInspirationMIMEType

	if header, data, ok := strings.Cut(payload, ","); ok {
		if meta, isDataURL := strings.CutPrefix(header, "data:"); isDataURL {
			if mt, _, _ := strings.Cut(meta, ";"); mt != "" {
				mimeType = strings.ToLower(mt)
			}
		}
		payload = data
	}

	if payload == "" {
		return types.InspirationImage{}, fmt.Errorf("%w: empty image payload", types.ErrInvalidInput)
	}

	var lastErr error
	for _, enc := range base64Encodings {
		data, err := enc.DecodeString(payload)
		if err == nil {
			return types.InspirationImage{Data: data, MIMEType: mimeType}, nil
		}
		if lastErr == nil {
			lastErr = err
		}
	}
	return types.InspirationImage{}, fmt.Errorf("%w: invalid image base64: %v", types.ErrInvalidInput, lastErr)
}

// NormalizeInspirationImage downscales images whose longest side exceeds maxDim and
// re-encodes them as JPEG on a white background. Payloads that are not decodable
// images, already small enough, or above MaxInspirationPixels are returned untouched.
// The bool reports whether the image was rewritten.
func NormalizeInspirationImage(img types.InspirationImage, maxDim int) (types.InspirationImage, bool) {
	if maxDim <= 0 {
		return img, false
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil || (cfg.Width <= maxDim && cfg.Height <= maxDim) {
		return img, false
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxInspirationPixels {
		return img, false
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return img, false
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	var newW, newH int
	if width > height {
		newW = maxDim
		newH = (height * maxDim) / width
	} else {
		newH = maxDim
		newW = (width * maxDim) / height
	}
	if newW == 0 {
		newW = 1
	}
	if newH == 0 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	// JPEG has no alpha; transparent areas become white, not black.
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return img, false
	}
	return types.InspirationImage{Data: buf.Bytes(), MIMEType: "image/jpeg"}, true
}

// EncodeDataURL renders image bytes as a data URL. An empty MIME type falls back to PNG.
func EncodeDataURL(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
