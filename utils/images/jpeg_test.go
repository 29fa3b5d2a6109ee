package images

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// density returns units and x/y density of leading JFIF segment.
func density(t *testing.T, data []byte) (byte, uint16, uint16) {
	t.Helper()
	if len(data) < 18 || !bytes.Equal(data[2:4], markerAPP0) || !bytes.Equal(data[6:11], jfifID) {
		t.Fatalf("no leading JFIF segment: % x", data[:min(len(data), 20)])
	}
	return data[13], binary.BigEndian.Uint16(data[14:]), binary.BigEndian.Uint16(data[16:])
}

func TestSetDensity(t *testing.T) {
	withJFIF := func(units byte, x, y uint16) []byte {
		seg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, units}
		seg = binary.BigEndian.AppendUint16(seg, x)
		seg = binary.BigEndian.AppendUint16(seg, y)
		return append(seg, 0x00, 0x00, 0xFF, 0xDB)
	}

	tests := []struct {
		name      string
		in        []byte
		wantAdded bool
		wantUnits byte
		wantX     uint16
	}{
		{name: "missing segment", in: []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04}, wantAdded: true, wantUnits: unitsPerInch, wantX: 96},
		{name: "aspect ratio only", in: withJFIF(unitsNone, 1, 1), wantAdded: true, wantUnits: unitsPerInch, wantX: 96},
		{name: "declared resolution", in: withJFIF(unitsPerInch, 300, 300), wantUnits: unitsPerInch, wantX: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := bytes.Clone(tt.in)
			out, added, err := SetDensity(tt.in, 96)
			if err != nil {
				t.Fatalf("SetDensity() error = %v", err)
			}
			if added != tt.wantAdded {
				t.Errorf("modified = %v, want %v", added, tt.wantAdded)
			}
			if !bytes.Equal(tt.in, orig) {
				t.Error("input was modified in place")
			}
			units, x, y := density(t, out)
			if units != tt.wantUnits || x != tt.wantX || y != tt.wantX {
				t.Errorf("density = %d %dx%d, want %d %dx%d", units, x, y, tt.wantUnits, tt.wantX, tt.wantX)
			}
			if !bytes.HasSuffix(out, tt.in[len(tt.in)-2:]) {
				t.Error("image data not preserved")
			}
		})
	}
}

func TestSetDensity_Errors(t *testing.T) {
	for _, in := range [][]byte{nil, {0xFF, 0xD8}, {0x89, 'P', 'N', 'G', 0x0D}} {
		if _, _, err := SetDensity(in, 96); err == nil {
			t.Errorf("SetDensity(% x) expected error", in)
		}
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := range 8 {
		img.Set(x, 1, color.RGBA{R: 200, A: 255})
	}

	data, err := EncodeJPEG(img, 80, 96)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if units, x, _ := density(t, data); units != unitsPerInch || x != 96 {
		t.Errorf("density = %d %d, want 96 dpi", units, x)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("result does not decode: %v", err)
	}
	if cfg.Width != 8 || cfg.Height != 4 {
		t.Errorf("size = %dx%d, want 8x4", cfg.Width, cfg.Height)
	}
}
