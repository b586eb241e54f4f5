package advisor

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// NoImage is the sentinel clients send when no photo is attached.
const NoImage = "NO_IMAGE"

// Image is a decoded field photo.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURL returns the image as a base64 data URL.
func (img *Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ParseImage decodes a base64 payload or data URL. Empty input and NoImage
// return nil with no error. Payloads that do not decode to a recognizable
// image return ErrInvalidImage.
func ParseImage(payload string) (*Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" || payload == NoImage {
		return nil, nil
	}

	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: data URL is not base64 encoded", ErrInvalidImage)
		}
		payload = body
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %s", ErrInvalidImage, mime)
	}
	return &Image{Data: data, MIMEType: mime}, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)

	var firstErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
