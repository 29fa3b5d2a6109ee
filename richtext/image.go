package richtext

import (
	"encoding/base64"
	"strings"
)

// ImageData is a decoded inline image.
type ImageData struct {
	MimeType string
	Data     []byte
}

// DecodeImage decodes "data:image/<type>;base64,<payload>" URIs. Other
// schemes, headers without ;base64 and broken payloads yield false.
// Whitespace inside payload is ignored, missing padding is tolerated.
func DecodeImage(src string) (ImageData, bool) {
	src = strings.TrimSpace(src)
	if !strings.HasPrefix(src, "data:image") {
		return ImageData{}, false
	}
	header, payload, found := strings.Cut(src, ",")
	if !found {
		return ImageData{}, false
	}
	params := strings.Split(strings.TrimPrefix(header, "data:"), ";")
	base64ed := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			base64ed = true
		}
	}
	if !base64ed {
		return ImageData{}, false
	}

	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return ImageData{}, false
		}
	}
	if len(data) == 0 {
		return ImageData{}, false
	}
	return ImageData{MimeType: strings.ToLower(strings.TrimSpace(params[0])), Data: data}, true
}
