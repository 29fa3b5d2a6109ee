package richtext

import "testing"

func TestDecodeImage(t *testing.T) {
	tests := []struct {
		name string
		src  string
		mime string
		data string
		ok   bool
	}{
		{name: "png", src: "data:image/png;base64,ZmFrZXBuZw==", mime: "image/png", data: "fakepng", ok: true},
		{name: "whitespace", src: " data:image/jpeg;base64,ZmFr ZXBu\nZw== ", mime: "image/jpeg", data: "fakepng", ok: true},
		{name: "no padding", src: "data:image/gif;base64,ZmFrZXBuZw", mime: "image/gif", data: "fakepng", ok: true},
		{name: "svg", src: "data:image/svg+xml;charset=utf-8;base64,PHN2Zy8+", mime: "image/svg+xml", data: "<svg/>", ok: true},
		{name: "not base64 header", src: "data:image/png,ZmFrZQ=="},
		{name: "broken payload", src: "data:image/png;base64,!!!"},
		{name: "empty payload", src: "data:image/png;base64,"},
		{name: "no comma", src: "data:image/png;base64"},
		{name: "remote", src: "https://example.com/a.png"},
		{name: "not image", src: "data:text/plain;base64,aGk="},
		{name: "plain text", src: "not-a-data-uri"},
		{name: "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeImage(tt.src)
			if ok != tt.ok {
				t.Fatalf("DecodeImage() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if got.MimeType != tt.mime || string(got.Data) != tt.data {
				t.Errorf("DecodeImage() = %q %q, want %q %q", got.MimeType, got.Data, tt.mime, tt.data)
			}
		})
	}
}
