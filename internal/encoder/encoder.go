// Package encoder turns uploaded invoice documents into data-URI payloads.
package encoder

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"invoicedesk/internal/domain"
)

// Encoder validates and encodes documents. The zero value has no size limit.
type Encoder struct {
	maxBytes int64
}

// New returns an Encoder rejecting documents larger than maxBytes (0 disables the limit).
func New(maxBytes int64) *Encoder {
	return &Encoder{maxBytes: maxBytes}
}

// Encode reads the document from r and returns it as a base64 data URI. The
// extension of name must be pdf, jpg, jpeg or png and the content must sniff as
// one of those types.
func (e *Encoder) Encode(name string, r io.Reader) (*domain.EncodedPayload, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: extension %q", domain.ErrUnsupportedFormat, ext)
	}

	src := r
	if e.maxBytes > 0 {
		src = io.LimitReader(r, e.maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("encoder.Encode: reading %s: %w", name, err)
	}
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic bytes decide the type, the extension only gates what we accept.
	detected := http.DetectContentType(data)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	fileType, ok := domain.AllowedContentTypes[detected]
	if !ok {
		return nil, fmt.Errorf("%w: detected %s", domain.ErrUnsupportedFormat, detected)
	}
	mediaType := domain.AllowedFileTypes[fileType]

	var uri bytes.Buffer
	uri.Grow(len("data:;base64,") + len(mediaType) + base64.StdEncoding.EncodedLen(len(data)))
	uri.WriteString("data:")
	uri.WriteString(mediaType)
	uri.WriteString(";base64,")
	uri.WriteString(base64.StdEncoding.EncodeToString(data))

	return &domain.EncodedPayload{
		Name:      filepath.Base(name),
		FileType:  fileType,
		Kind:      fileType.Kind(),
		MediaType: mediaType,
		Data:      data,
		DataURI:   uri.String(),
	}, nil
}
