// Package blob uploads file bytes to a remote object store and reports the
// durable URL, size and format the provider recorded.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// sniffLen is the number of bytes http.DetectContentType looks at.
const sniffLen = 512

// UploadOptions describes one upload. An empty ContentType asks the store to
// detect it from the content; Size <= 0 asks the store to measure the body.
type UploadOptions struct {
	Namespace   string
	Filename    string
	Size        int64
	ContentType string
}

// UploadResult is what the provider reported after storing the object.
type UploadResult struct {
	SecureURL   string
	Bytes       int64
	Format      string
	ContentType string
	Key         string
}

// Store uploads a single object. Implementations must leave no partial
// object visible under the returned URL on error.
type Store interface {
	Upload(ctx context.Context, body io.ReadSeeker, opts UploadOptions) (*UploadResult, error)
}

var errNilBody = errors.New("blob: nil body")

// ObjectKey builds a unique key of the form
// {namespace}/{yyyy}/{mm}/{dd}/{uuid}{.ext}.
func ObjectKey(namespace, filename string, now time.Time) string {
	key := fmt.Sprintf("%04d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), uuid.New(), keyExt(filename))
	namespace = strings.Trim(namespace, "/")
	if namespace == "" {
		return key
	}
	return namespace + "/" + key
}

// FormatOf derives the format label of an object: the filename extension
// when it has a usable one, else one derived from the content type.
func FormatOf(filename, contentType string) string {
	if ext := keyExt(filename); ext != "" {
		return ext[1:]
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "bin"
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	if _, sub, ok := strings.Cut(mediaType, "/"); ok && sub != "" {
		return sub
	}
	return "bin"
}

// keyExt returns the lowercased extension of filename including the dot,
// or "" when it is missing or contains anything but ASCII letters and digits.
func keyExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 16 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// prepare fills in the content type and size of opts from body when they
// are missing, leaving body positioned at its start.
func prepare(body io.ReadSeeker, opts UploadOptions) (UploadOptions, error) {
	if body == nil {
		return opts, errNilBody
	}

	if opts.ContentType == "" {
		buf := make([]byte, sniffLen)
		n, err := io.ReadFull(body, buf)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return opts, fmt.Errorf("sniff content: %w", err)
		}
		opts.ContentType = http.DetectContentType(buf[:n])
	}

	if opts.Size <= 0 {
		end, err := body.Seek(0, io.SeekEnd)
		if err != nil {
			return opts, fmt.Errorf("measure body: %w", err)
		}
		opts.Size = end
	}

	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return opts, fmt.Errorf("rewind body: %w", err)
	}
	return opts, nil
}

func joinURL(base string, parts ...string) string {
	u := strings.TrimRight(base, "/")
	for _, p := range parts {
		u += "/" + strings.Trim(p, "/")
	}
	return u
}
