package convert

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"cradoc/common"
)

func encode(t *testing.T, data string, enc srcEncoding) []byte {
	t.Helper()
	var tr transform.Transformer
	switch enc {
	case encUnknown:
		return []byte(data)
	case encUTF8:
		return append([]byte{0xEF, 0xBB, 0xBF}, data...)
	case encUTF16BigEndian:
		tr = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	case encUTF16LittleEndian:
		tr = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	case encUTF32BigEndian:
		tr = utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder()
	case encUTF32LittleEndian:
		tr = utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder()
	}
	out, _, err := transform.Bytes(tr, []byte(data))
	if err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	return out
}

func TestIsArchiveFile(t *testing.T) {
	dir := t.TempDir()

	realZip := filepath.Join(dir, "real.zip")
	writeZip(t, realZip, map[string]string{"a.yaml": "cover: {title: x}"})

	fakeZip := filepath.Join(dir, "fake.zip")
	writeFile(t, fakeZip, "not a real zip file")

	zipContent, err := os.ReadFile(realZip)
	if err != nil {
		t.Fatal(err)
	}
	wrongExt := filepath.Join(dir, "archive.bin")
	writeFile(t, wrongExt, string(zipContent))

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "zip", path: realZip, want: true},
		{name: "zip extension, other content", path: fakeZip, want: false},
		{name: "zip content, other extension", path: wrongExt, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := isArchiveFile(tt.path)
			if err != nil {
				t.Fatalf("isArchiveFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("isArchiveFile() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := isArchiveFile(filepath.Join(dir, "absent.zip")); err == nil {
		t.Error("isArchiveFile() expected error for non-existent file")
	}
}

func TestDetectUTF(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want srcEncoding
	}{
		{name: "utf-8", buf: []byte{0xEF, 0xBB, 0xBF, 'a'}, want: encUTF8},
		{name: "utf-16be", buf: []byte{0xFE, 0xFF, 0x00, 'a'}, want: encUTF16BigEndian},
		{name: "utf-16le", buf: []byte{0xFF, 0xFE, 'a', 0x00}, want: encUTF16LittleEndian},
		{name: "utf-32be", buf: []byte{0x00, 0x00, 0xFE, 0xFF}, want: encUTF32BigEndian},
		{name: "utf-32le", buf: []byte{0xFF, 0xFE, 0x00, 0x00}, want: encUTF32LittleEndian},
		{name: "no mark", buf: []byte("cover"), want: encUnknown},
		{name: "short", buf: []byte{0xEF}, want: encUnknown},
		{name: "empty", buf: nil, want: encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectUTF(tt.buf); got != tt.want {
				t.Errorf("detectUTF() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectReader(t *testing.T) {
	const text = "title: Schloß ✓"
	for _, enc := range []srcEncoding{encUnknown, encUTF8, encUTF16BigEndian, encUTF16LittleEndian, encUTF32BigEndian, encUTF32LittleEndian} {
		t.Run(enc.String(), func(t *testing.T) {
			got, err := io.ReadAll(selectReader(bytes.NewReader(encode(t, text, enc)), enc))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != text {
				t.Errorf("selectReader() produced %q, want %q", got, text)
			}

			// detection and decoding in one go
			got, err = readPayloadSource(bytes.NewReader(encode(t, text, enc)))
			if err != nil {
				t.Fatalf("readPayloadSource() error = %v", err)
			}
			if string(got) != text {
				t.Errorf("readPayloadSource() = %q, want %q", got, text)
			}
		})
	}
}

func TestReadPayloadSource_Short(t *testing.T) {
	for _, in := range []string{"", "a", "ab"} {
		got, err := readPayloadSource(bytes.NewReader([]byte(in)))
		if err != nil {
			t.Fatalf("readPayloadSource(%q) error = %v", in, err)
		}
		if string(got) != in {
			t.Errorf("readPayloadSource(%q) = %q", in, got)
		}
	}
}

func TestIsPayloadFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name        string
		file        string
		content     []byte
		wantPayload bool
		wantEnc     srcEncoding
	}{
		{name: "yaml", file: "a.yaml", content: []byte("cover:"), wantPayload: true, wantEnc: encUnknown},
		{name: "yml with bom", file: "b.YML", content: encode(t, "cover:", encUTF8), wantPayload: true, wantEnc: encUTF8},
		{name: "json utf-16", file: "c.json", content: encode(t, "{}", encUTF16LittleEndian), wantPayload: true, wantEnc: encUTF16LittleEndian},
		{name: "html", file: "d.html", content: []byte("<p>x</p>"), wantPayload: false},
		{name: "empty yaml", file: "e.yaml", content: nil, wantPayload: true, wantEnc: encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, string(tt.content))
			payload, enc, err := isPayloadFile(path)
			if err != nil {
				t.Fatalf("isPayloadFile() error = %v", err)
			}
			if payload != tt.wantPayload || enc != tt.wantEnc {
				t.Errorf("isPayloadFile() = %v, %v, want %v, %v", payload, enc, tt.wantPayload, tt.wantEnc)
			}
		})
	}

	if _, _, err := isPayloadFile(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("isPayloadFile() expected error for non-existent file")
	}
}

func TestIsPayloadInArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payloads.zip")
	writeZip(t, path, map[string]string{
		"a.yaml":     "cover:",
		"b.json":     string(encode(t, "{}", encUTF32BigEndian)),
		"readme.txt": "text",
	})

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	want := map[string]struct {
		payload bool
		enc     srcEncoding
	}{
		"a.yaml":     {true, encUnknown},
		"b.json":     {true, encUTF32BigEndian},
		"readme.txt": {false, encUnknown},
	}
	for _, f := range r.File {
		payload, enc, err := isPayloadInArchive(f)
		if err != nil {
			t.Fatalf("isPayloadInArchive(%s) error = %v", f.Name, err)
		}
		if w := want[f.Name]; payload != w.payload || enc != w.enc {
			t.Errorf("isPayloadInArchive(%s) = %v, %v, want %v, %v", f.Name, payload, enc, w.payload, w.enc)
		}
	}
}

func TestFragmentFormat(t *testing.T) {
	tests := []struct {
		name string
		want common.PayloadFormat
	}{
		{"notes.md", common.PayloadFormatMarkdown},
		{"notes.Markdown", common.PayloadFormatMarkdown},
		{"notes.html", common.PayloadFormatHtml},
		{"notes.txt", common.PayloadFormatHtml},
		{"-", common.PayloadFormatHtml},
	}
	for _, tt := range tests {
		if got := fragmentFormat(tt.name); got != tt.want {
			t.Errorf("fragmentFormat(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSrcEncoding_String(t *testing.T) {
	if encUTF16LittleEndian.String() != "utf-16le" || srcEncoding(42).String() != "unknown" {
		t.Errorf("unexpected encoding names")
	}
}
