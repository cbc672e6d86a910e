// Package imageutil handles the reference images attached to edit requests:
// format sniffing, validation, and the inline data-URL encoding used for
// provider responses that return base64 payloads.
package imageutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

// ReferenceImage is an image uploaded as the base for an edit request.
type ReferenceImage struct {
	Name string
	MIME string
	Data []byte
}

var mimeByFormat = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
}

// Load validates raw image bytes and returns a ReferenceImage carrying the
// sniffed MIME type. Only png, jpeg and webp are accepted; the provider
// rejects everything else server-side with a much less helpful message.
func Load(name string, data []byte) (*ReferenceImage, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unrecognized image data in %s: %w", name, err)
	}
	mime, ok := mimeByFormat[format]
	if !ok {
		return nil, fmt.Errorf("unsupported image format %q in %s (png, jpeg or webp required)", format, name)
	}

	log.Debug().
		Str("name", name).
		Str("format", format).
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Msg("Reference image loaded")

	return &ReferenceImage{Name: name, MIME: mime, Data: data}, nil
}

// DataURL encodes PNG bytes already base64-encoded by the provider into an
// inline data URL.
func DataURL(b64 string) string {
	return "data:image/png;base64," + b64
}

// EncodeDataURL encodes raw image bytes into an inline data URL.
func EncodeDataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
