package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/klauspost/compress/flate"
	"go.uber.org/multierr"

	"cradoc/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

// entry is either a file read when report is finalized or data captured
// at the time of a call.
type entry struct {
	path  string
	data  []byte
	stamp time.Time
}

// Report accumulates everything needed to troubleshoot a run: configuration,
// logs, payload sources and produced documents. Safe for concurrent use,
// batch builds store their sources from workers.
type Report struct {
	mu      sync.Mutex
	entries map[string]entry
	file    *os.File
}

// Close writes the report archive. Nil report (no report requested) is
// ignored to avoid checking in many places.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return multierr.Combine(r.finalize(), r.file.Close())
}

// Name returns absolute name of the report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers file to be put into the report under name. The file is
// read when report is closed so logs are complete.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if p, err := filepath.Abs(path); err == nil {
		path = p
	}
	r.add(name, entry{path: path})
}

// StoreData puts a snapshot of data into the report under name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	r.add(name, entry{data: bytes.Clone(data), stamp: time.Now()})
}

func (r *Report) add(name string, e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.entries[name]; exists {
		if len(e.path) > 0 && old.path == e.path {
			return
		}
		// same name stored twice (watch rebuilds), keep both
		name = fmt.Sprintf("%s-%d", name, time.Now().UnixNano())
	}
	r.entries[name] = e
}

// finalize creates the archive with manifest followed by all stored entries
// in manifest order. Files which disappeared are listed but skipped.
func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)
	arc.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	names := slices.Sorted(maps.Keys(r.entries))

	err := saveFile(arc, "MANIFEST", time.Now(), manifest(names, r.entries))
	for _, name := range names {
		if err != nil {
			break
		}
		e := r.entries[name]
		if len(e.path) == 0 {
			err = saveFile(arc, name, e.stamp, bytes.NewReader(e.data))
			continue
		}
		err = saveStoredFile(arc, name, e.path)
	}
	return multierr.Append(err, arc.Close())
}

func manifest(names []string, entries map[string]entry) io.Reader {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "%s %s (%s) %s/%s git:%s\n\n", misc.GetAppName(), misc.GetVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH, misc.GetGitHash())
	for _, name := range names {
		e := entries[name]
		if len(e.path) == 0 {
			fmt.Fprintf(buf, "%s\t%s\t%d bytes\n", e.stamp.UTC().Format(time.RFC3339), name, len(e.data))
			continue
		}
		fmt.Fprintf(buf, "file\t%s\t%s\n", name, e.path)
	}
	return buf
}

func saveStoredFile(dst *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		// absent files are only listed in manifest
		return nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	return saveFile(dst, name, info.ModTime(), f)
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return fmt.Errorf("unable to add %s to report: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("unable to add %s to report: %w", name, err)
	}
	return nil
}
