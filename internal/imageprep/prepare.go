// Package imageprep turns a user-supplied photo into a bounded JPEG data URI
// suitable for a JSON request body.
package imageprep

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxDimension caps the longer side of the prepared image.
	MaxDimension = 1024
	// JPEGQuality is the re-encode quality (0.7 on a 0-1 scale).
	JPEGQuality = 70
	// OutputMIME is the format of every prepared image.
	OutputMIME = "image/jpeg"
	// MaxSourcePixels bounds the declared size of an input before it is
	// decoded (50 megapixels).
	MaxSourcePixels = 50_000_000
)

var (
	// ErrImageDecode matches every decode failure.
	ErrImageDecode = errors.New("image decode failed")
	// ErrNotImage is returned when the input is not image-typed.
	ErrNotImage = errors.New("input is not an image")
)

// DecodeError wraps the decoder's failure for a corrupt or unsupported image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrImageDecode, e.Err)
}

func (e *DecodeError) Is(target error) bool { return target == ErrImageDecode }

func (e *DecodeError) Unwrap() error { return e.Err }

// Image is a prepared photo. The original bytes are not kept.
type Image struct {
	DataURI      string
	Width        int
	Height       int
	SourceWidth  int
	SourceHeight int
	SourceFormat string
	// EncodedSize is the JPEG size in bytes before base64.
	EncodedSize int
}

// Scaled reports whether the image was downsized.
func (img *Image) Scaled() bool {
	return img.Width != img.SourceWidth || img.Height != img.SourceHeight
}

// IsImage sniffs data and reports whether it looks like an image.
func IsImage(data []byte) bool {
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

// ScaledSize returns the output dimensions for a w×h source: unchanged when
// both sides fit within limit, otherwise the longer side becomes limit and
// the shorter side keeps the aspect ratio, rounded and at least 1.
func ScaledSize(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, atLeastOne(math.Round(float64(h) * float64(limit) / float64(w)))
	}
	return atLeastOne(math.Round(float64(w) * float64(limit) / float64(h))), limit
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

// Prepare decodes data, bounds it to MaxDimension and re-encodes it as JPEG.
func Prepare(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty input")}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, &DecodeError{Err: fmt.Errorf("image is %dx%d, larger than %d pixels", cfg.Width, cfg.Height, MaxSourcePixels)}
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, &DecodeError{Err: fmt.Errorf("image has zero size %dx%d", srcW, srcH)}
	}
	dstW, dstH := ScaledSize(srcW, srcH, MaxDimension)

	// JPEG has no alpha; draw onto white so transparent PNGs don't turn black.
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if dstW == srcW && dstH == srcH {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	img := &Image{
		DataURI:      "data:" + OutputMIME + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:        dstW,
		Height:       dstH,
		SourceWidth:  srcW,
		SourceHeight: srcH,
		SourceFormat: format,
		EncodedSize:  buf.Len(),
	}

	log.Debug().
		Str("format", format).
		Int("sourceWidth", srcW).
		Int("sourceHeight", srcH).
		Int("width", dstW).
		Int("height", dstH).
		Int("inputBytes", len(data)).
		Int("outputBytes", img.EncodedSize).
		Msg("prepared image")

	return img, nil
}

// DecodeDataURI splits a data URI into its bytes and MIME type. Raw base64
// without a data: prefix is accepted and assumed to be JPEG.
func DecodeDataURI(uri string) ([]byte, string, error) {
	mime := OutputMIME
	payload := uri
	if strings.HasPrefix(uri, "data:") {
		header, rest, ok := strings.Cut(uri, ",")
		if !ok {
			return nil, "", fmt.Errorf("data URI has no payload")
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", fmt.Errorf("data URI is not base64 encoded")
		}
		if m := strings.TrimSuffix(meta, ";base64"); m != "" {
			mime = m
		}
		payload = rest
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return data, mime, nil
}
