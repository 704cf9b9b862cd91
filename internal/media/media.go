// Package media stores uploaded listing images on the local filesystem and
// hands back the public URL they are served from.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnsupportedType is returned for uploads that are not images.
	ErrUnsupportedType = errors.New("media: unsupported content type")
	// ErrTooLarge is returned for uploads over the size limit.
	ErrTooLarge = errors.New("media: file too large")
)

var allowedTypes = map[string]string{ //nolint:gochecknoglobals // lookup table
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Disk writes files under root and builds URLs under baseURL.
type Disk struct {
	root    string
	baseURL string
	maxSize int64
	now     func() time.Time
}

func NewDisk(root, baseURL string, maxSize int64) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media.NewDisk: %w", err)
	}
	return &Disk{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
		now:     time.Now,
	}, nil
}

// Root is the directory files are written to.
func (d *Disk) Root() string { return d.root }

// Save stores r as <unix-ms>-<name> and returns its public URL. Content over
// the size limit is rejected and nothing is kept.
func (d *Disk) Save(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("media.Disk.Save: %q: %w", contentType, ErrUnsupportedType)
	}

	fileName := strconv.FormatInt(d.now().UnixMilli(), 10) + "-" + safeName(name, ext)
	full := filepath.Join(d.root, fileName)

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("media.Disk.Save: create: %w", err)
	}

	src := r
	if d.maxSize > 0 {
		src = io.LimitReader(r, d.maxSize+1)
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && d.maxSize > 0 && n > d.maxSize {
		err = fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, d.maxSize)
	}
	if err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("media.Disk.Save: write: %w", err)
	}

	return d.baseURL + "/" + path.Base(fileName), nil
}

func safeName(name, ext string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._-")
	if base == "" {
		base = "image"
	}
	return base + ext
}
