package convert

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"cradoc/common"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUTF8:
		return "utf-8"
	case encUTF16BigEndian:
		return "utf-16be"
	case encUTF16LittleEndian:
		return "utf-16le"
	case encUTF32BigEndian:
		return "utf-32be"
	case encUTF32LittleEndian:
		return "utf-32le"
	}
	return "unknown"
}

var (
	payloadExts  = []string{".yaml", ".yml", ".json"}
	markdownExts = []string{".md", ".markdown"}
	fragmentExts = append([]string{".html", ".htm", ".xhtml"}, markdownExts...)
)

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// fragmentFormat guesses markup dialect of standalone fragment from its name.
func fragmentFormat(name string) common.PayloadFormat {
	if hasExt(name, markdownExts) {
		return common.PayloadFormatMarkdown
	}
	return common.PayloadFormatHtml
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks for byte order mark. UTF-32 LE mark starts with UTF-16 LE
// one so longer marks are checked first.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader returns reader producing UTF-8 without byte order mark.
// Unmarked input is passed through as is.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	var e encoding.Encoding
	switch enc {
	case encUTF8:
		e = unicode.UTF8BOM
	case encUTF16BigEndian:
		e = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case encUTF16LittleEndian:
		e = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case encUTF32BigEndian:
		e = utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	case encUTF32LittleEndian:
		e = utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	default:
		return r
	}
	return transform.NewReader(r, e.NewDecoder())
}

func sniff(r io.Reader, size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

// isArchiveFile checks both extension and content signature.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head, err := sniff(f, 262)
	if err != nil {
		return false, fmt.Errorf("unable to read file header: %w", err)
	}
	return filetype.Is(head, "zip"), nil
}

// isPayloadFile reports whether path names report payload and which byte
// order mark it starts with.
func isPayloadFile(path string) (bool, srcEncoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()

	if !hasExt(path, payloadExts) {
		return false, encUnknown, nil
	}
	head, err := sniff(f, 4)
	if err != nil {
		return false, encUnknown, err
	}
	return true, detectUTF(head), nil
}

// isPayloadInArchive does the same for archive entry.
func isPayloadInArchive(f *zip.File) (bool, srcEncoding, error) {
	if !hasExt(f.Name, payloadExts) {
		return false, encUnknown, nil
	}
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	head, err := sniff(r, 4)
	if err != nil {
		return false, encUnknown, err
	}
	return true, detectUTF(head), nil
}

// readPayloadSource reads whole source converting it to UTF-8.
func readPayloadSource(r io.Reader) ([]byte, error) {
	br := new(bytes.Buffer)
	head, err := sniff(r, 4)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(br, selectReader(io.MultiReader(bytes.NewReader(head), r), detectUTF(head))); err != nil {
		return nil, fmt.Errorf("unable to decode source: %w", err)
	}
	return br.Bytes(), nil
}
