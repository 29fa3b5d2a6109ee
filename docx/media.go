package docx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"cradoc/richtext"
	imgutil "cradoc/utils/images"
)

// Resolution written into re-encoded JPEG images, matches CSS pixel so
// intrinsic size in word processors agrees with px conversion.
const imageDPI = 96

// mediaPart is an image stored under word/media.
type mediaPart struct {
	name   string // file name inside word/media
	relID  string
	ext    string
	data   []byte
	width  int // pixels
	height int
}

var errNotImage = errors.New("not an image")

// contentType returns media type for extensions we embed.
func contentType(ext string) string {
	switch ext {
	case "png":
		return "image/png"
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	default:
		// this should never happen
		panic("unsupported media extension " + ext)
	}
}

// isImageEmbeddable returns true if format could be stored as is.
func isImageEmbeddable(format string) bool {
	switch format {
	case "png", "jpeg", "gif", "bmp":
		return true
	}
	return false
}

func isSVG(img richtext.ImageData) bool {
	if strings.Contains(strings.ToLower(img.MimeType), "svg") {
		return true
	}
	head := img.Data[:min(len(img.Data), 512)]
	return bytes.Contains(head, []byte("<svg"))
}

// addMedia prepares image and registers it as package part.
func (d *Document) addMedia(img richtext.ImageData) (*mediaPart, error) {
	part, err := d.prepareImage(img)
	if err != nil {
		return nil, err
	}
	num := len(d.media) + 1
	part.name = "image" + strconv.Itoa(num) + "." + part.ext
	part.relID = "rIdImg" + strconv.Itoa(num)
	d.media = append(d.media, part)
	return part, nil
}

// prepareImage performs required image modifications leaving original data
// intact if no changes where requested.
func (d *Document) prepareImage(src richtext.ImageData) (*mediaPart, error) {
	if len(src.Data) == 0 {
		return nil, errNotImage
	}
	cfg := &d.cfg.Images

	if isSVG(src) {
		img, err := imgutil.RasterizeSVGToImage(src.Data, cfg.SVGWidth, 0)
		if err != nil {
			return nil, fmt.Errorf("unable to rasterize svg: %w", err)
		}
		d.log.Debug("Rasterized SVG image", zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
		return d.encodeImage(img, "png")
	}

	kind, err := filetype.Match(src.Data)
	if err != nil || !filetype.IsImage(src.Data) {
		return nil, fmt.Errorf("%w: detected %q, declared %q", errNotImage, kind.MIME.Value, src.MimeType)
	}

	img, format, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s image: %w", kind.Extension, err)
	}

	part := &mediaPart{
		ext:    format,
		data:   src.Data,
		width:  img.Bounds().Dx(),
		height: img.Bounds().Dy(),
	}
	imageChanged := false

	if !isImageEmbeddable(format) {
		d.log.Debug("Image type is not supported by word processors, converting to png", zap.String("type", format))
		part.ext = "png"
		imageChanged = true
	}

	// PNG transparency
	if cfg.RemovePNGTransparency && part.ext == "png" {
		opaque := func(im image.Image) bool {
			if oimg, ok := im.(interface{ Opaque() bool }); ok {
				return oimg.Opaque()
			}
			return true
		}(img)

		if !opaque {
			d.log.Debug("Removing PNG transparency")
			opaqueImg := image.NewRGBA(img.Bounds())
			draw.Draw(opaqueImg, img.Bounds(), &image.Uniform{color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)
			draw.Draw(opaqueImg, img.Bounds(), img, img.Bounds().Min, draw.Over)
			img = opaqueImg
			imageChanged = true
		}
	}

	// Compression & image quality
	if cfg.Optimize {
		switch part.ext {
		case "jpeg", "png":
			if imgutil.IsGrayscale(img) {
				d.log.Debug("Image is grayscale, dropping color", zap.String("type", part.ext))
				img = imgutil.ToGray(img)
			}
			imageChanged = true
		}
	}

	if !imageChanged {
		if part.ext == "jpeg" {
			if data, added, err := imgutil.SetDensity(part.data, imageDPI); err == nil && added {
				d.log.Debug("Declaring jpeg resolution", zap.Int("dpi", imageDPI))
				part.data = data
			}
		}
		return part, nil
	}

	encoded, err := d.encodeImage(img, part.ext)
	if err != nil {
		return nil, err
	}
	return encoded, nil
}

func (d *Document) encodeImage(img image.Image, ext string) (*mediaPart, error) {
	part := &mediaPart{
		ext:    ext,
		width:  img.Bounds().Dx(),
		height: img.Bounds().Dy(),
	}

	var buf = new(bytes.Buffer)
	switch ext {
	case "png":
		if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, fmt.Errorf("unable to encode processed PNG: %w", err)
		}
		part.data = buf.Bytes()
	case "jpeg":
		data, err := imgutil.EncodeJPEG(img, d.cfg.Images.JPEGQuality, imageDPI)
		if err != nil {
			return nil, fmt.Errorf("unable to encode processed JPEG: %w", err)
		}
		part.data = data
	default:
		// this should never happen
		return nil, fmt.Errorf("unable to encode image as %s", ext)
	}
	return part, nil
}

// extent returns drawing size in millimeters. Single requested dimension
// keeps intrinsic aspect ratio, none means intrinsic size at CSS resolution.
// With fit_to_page pictures larger than printable area are scaled down.
func (d *Document) extent(part *mediaPart, widthMM, heightMM float64) (float64, float64) {
	pw, ph := float64(max(part.width, 1)), float64(max(part.height, 1))

	w, h := widthMM, heightMM
	switch {
	case w > 0 && h > 0:
	case w > 0:
		h = w * ph / pw
	case h > 0:
		w = h * pw / ph
	default:
		w, h = richtext.PxToMM(pw), richtext.PxToMM(ph)
	}

	if d.cfg.Images.FitToPage {
		if maxW := d.cfg.Page.PrintableWidth(); w > maxW {
			h, w = h*maxW/w, maxW
		}
		if maxH := d.cfg.Page.PrintableHeight(); h > maxH {
			w, h = w*maxH/h, maxH
		}
	}
	return w, h
}
