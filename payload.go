package imagehost

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// supportedPayloadPrefixes maps the declared data URI prefix to its mime type
var supportedPayloadPrefixes = map[string]string{
	JPEGPayloadPrefix: "image/jpeg",
	PNGPayloadPrefix:  "image/png",
}

// ImagePayload is a decoded data URI image
type ImagePayload struct {
	MimeType string
	Data     []byte
}

// ParseImagePayload validates the declared prefix of a data URI and decodes its base64 body.
// Only the declared prefix is checked. The decoded bytes are not inspected, so a disguised
// payload passes as long as its prefix is one of the supported ones.
func ParseImagePayload(image string) (ImagePayload, error) {
	if image == "" {
		return ImagePayload{}, ErrMissingImage
	}

	for prefix, mimeType := range supportedPayloadPrefixes {
		if !strings.HasPrefix(image, prefix) {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(image, prefix))
		if err != nil || len(data) == 0 {
			return ImagePayload{}, ErrInvalidPayload
		}

		return ImagePayload{
			MimeType: mimeType,
			Data:     data,
		}, nil
	}

	return ImagePayload{}, ErrUnsupportedFormat
}

// FileName returns a file name with the extension registered for the payload mime type
func (p ImagePayload) FileName(name string) string {
	if m := mimetype.Lookup(p.MimeType); m != nil {
		return name + m.Extension()
	}
	return name
}
