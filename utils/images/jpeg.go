package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
)

// JFIF density units.
const (
	unitsNone    = 0
	unitsPerInch = 1
)

var (
	markerSOI  = []byte{0xFF, 0xD8}
	markerAPP0 = []byte{0xFF, 0xE0}
	jfifID     = []byte("JFIF\x00")
)

// SetDensity makes sure JPEG declares its resolution. Word processors take
// physical size from JFIF APP0 segment, without it (or with unit-less
// density) some of them assume 72 dpi and render image larger than its
// extent. Missing segment is inserted, unit-less one is patched in place,
// declared resolution is never changed. Returns true when data was modified.
func SetDensity(data []byte, dpi uint16) ([]byte, bool, error) {
	if len(data) < 4 {
		return nil, false, errors.New("jpeg too small")
	}
	if !bytes.Equal(data[:2], markerSOI) {
		return nil, false, errors.New("not a jpeg")
	}

	if bytes.Equal(data[2:4], markerAPP0) {
		// SOI(2) marker(2) length(2) "JFIF\0"(5) version(2) units(1) x(2) y(2)
		const unitsAt = 2 + 2 + 2 + 5 + 2
		if len(data) < unitsAt+5 || !bytes.Equal(data[6:11], jfifID) || data[unitsAt] != unitsNone {
			return data, false, nil
		}
		out := bytes.Clone(data)
		out[unitsAt] = unitsPerInch
		binary.BigEndian.PutUint16(out[unitsAt+1:], dpi)
		binary.BigEndian.PutUint16(out[unitsAt+3:], dpi)
		return out, true, nil
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(data)+18))
	buf.Write(markerSOI)
	buf.Write(markerAPP0)
	_ = binary.Write(buf, binary.BigEndian, uint16(16))
	buf.Write(jfifID)
	buf.Write([]byte{1, 2, unitsPerInch})
	_ = binary.Write(buf, binary.BigEndian, [2]uint16{dpi, dpi})
	buf.Write([]byte{0, 0}) // no thumbnail
	buf.Write(data[2:])
	return buf.Bytes(), true, nil
}

// EncodeJPEG encodes img with given quality declaring dpi resolution.
func EncodeJPEG(img image.Image, quality int, dpi uint16) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	out, _, err := SetDensity(buf.Bytes(), dpi)
	return out, err
}
