package imageprep

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultFetchTimeout bounds a photo fetched from a URL.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultMaxImageSize caps the raw photo, from disk or network, at 20MB.
	DefaultMaxImageSize = 20 * 1024 * 1024
)

// Source loads raw photo bytes from a file or URL and rejects anything that
// is not an image before it reaches Prepare.
type Source struct {
	client  *http.Client
	timeout time.Duration
	maxSize int64
}

// NewSource returns a Source using DefaultFetchTimeout and
// DefaultMaxImageSize.
func NewSource() *Source {
	return &Source{
		client: &http.Client{
			Timeout: DefaultFetchTimeout,
		},
		timeout: DefaultFetchTimeout,
		maxSize: DefaultMaxImageSize,
	}
}

// WithTimeout changes how long a URL fetch may take. Files are unaffected.
func (s *Source) WithTimeout(timeout time.Duration) *Source {
	s.timeout = timeout
	s.client.Timeout = timeout
	return s
}

// WithMaxSize changes the largest photo accepted from either a file or a
// URL, in bytes.
func (s *Source) WithMaxSize(maxSize int64) *Source {
	s.maxSize = maxSize
	return s
}

// Load reads from a URL when ref starts with http:// or https://, otherwise
// from the filesystem.
func (s *Source) Load(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return s.LoadURL(ctx, ref)
	}
	return s.LoadFile(ref)
}

// LoadFile reads a photo from disk, applying the size cap and image gate.
func (s *Source) LoadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	data, err := s.readLimited(f)
	if err != nil {
		return nil, err
	}
	return s.gate(data)
}

// LoadURL fetches a photo over HTTP. A declared non-image content type or a
// declared length above the cap is refused before the body is read.
func (s *Source) LoadURL(ctx context.Context, imageURL string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Info().Str("url", imageURL).Msg("fetching photo")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo fetch failed: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type %s", ErrNotImage, contentType)
	}

	if resp.ContentLength > s.maxSize {
		return nil, fmt.Errorf("image too large: %d bytes exceeds limit of %d bytes", resp.ContentLength, s.maxSize)
	}

	data, err := s.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}
	return s.gate(data)
}

// readLimited reads at most one byte past the cap so an oversized input is
// detected without buffering all of it.
func (s *Source) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("image too large: exceeds limit of %d bytes", s.maxSize)
	}
	return data, nil
}

// gate checks the content type sniffed from the bytes.
func (s *Source) gate(data []byte) ([]byte, error) {
	if !IsImage(data) {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, http.DetectContentType(data))
	}
	return data, nil
}
