package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"
)

// Write serializes complete package. Body blocks are moved into the package
// tree, so Write is expected to be called once.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	parts := []struct {
		name string
		doc  *etree.Document
	}{
		{"[Content_Types].xml", d.contentTypesPart()},
		{"_rels/.rels", packageRelsPart()},
		{"docProps/core.xml", d.corePart()},
		{"docProps/app.xml", d.appPart()},
		{"word/document.xml", d.documentPart()},
		{"word/styles.xml", d.stylesPart()},
		{"word/settings.xml", d.settingsPart()},
		{"word/_rels/document.xml.rels", d.documentRelsPart()},
	}
	for _, p := range parts {
		if err := d.writeXMLToZip(zw, p.name, p.doc); err != nil {
			return fmt.Errorf("unable to write %s: %w", p.name, err)
		}
	}
	for _, m := range d.media {
		// already compressed formats are stored
		if err := d.writeDataToZip(zw, "word/media/"+m.name, m.data, m.ext == "bmp"); err != nil {
			return fmt.Errorf("unable to write image %s: %w", m.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to finalize package: %w", err)
	}
	return nil
}

// Save writes document to path creating directories as necessary. With
// fix_zip the package is rewritten without data descriptors.
func (d *Document) Save(path string) error {
	d.log.Debug("Writing DOCX", zap.String("output", path), zap.Int("blocks", len(d.body)), zap.Int("images", len(d.media)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	tmpName := f.Name()
	defer func() {
		// temporary file is gone after successful rename
		_ = os.Remove(tmpName)
	}()

	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close output file: %w", err)
	}

	if d.cfg.FixZip {
		return copyZipWithoutDataDescriptors(tmpName, path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("unable to move output file into place: %w", err)
	}
	return nil
}

func (d *Document) writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return d.writeDataToZip(zw, name, buf.Bytes(), true)
}

func (d *Document) writeDataToZip(zw *zip.Writer, name string, data []byte, compress bool) error {
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: d.props.Created,
	}
	if compress {
		hdr.Method = zip.Deflate
	}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// copyZipWithoutDataDescriptors rewrites archive with sizes in local headers.
// Incomplete target is removed.
func copyZipWithoutDataDescriptors(from, to string) (err error) {
	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(to)
		}
	}()

	w := fixzip.NewWriter(out)
	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		if err := w.CopyFile(file); err != nil {
			_ = out.Close()
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	if err := w.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("unable to finalize target file (%s): %w", to, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("unable to close target file (%s): %w", to, err)
	}
	return nil
}
