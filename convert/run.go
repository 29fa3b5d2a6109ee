// Package convert drives report generation from command line: it finds
// payloads in files, directories and archives and turns them into DOCX
// documents.
package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"cradoc/archive"
	"cradoc/report"
	"cradoc/state"
)

// job is a single payload to build. "src" is the path relative to the
// original source used to name output, "dir" resolves relative cover images.
// Archive entries are read in memory since archive is closed after the walk.
type job struct {
	src  string
	dir  string
	path string
	data []byte
}

func (j *job) read() ([]byte, error) {
	if len(j.path) == 0 {
		return readPayloadSource(bytes.NewReader(j.data))
	}
	f, err := os.Open(j.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readPayloadSource(f)
}

// Run is the build command action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	src, dst, err := sourceAndDestination(cmd, log)
	if err != nil {
		return err
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")
	env.Jobs = int(cmd.Int("jobs"))
	if env.Jobs <= 0 {
		env.Jobs = runtime.GOMAXPROCS(0)
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Int("jobs", env.Jobs))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if cmd.Bool("watch") {
		return watch(ctx, src, dst, log)
	}
	return process(ctx, src, dst, log)
}

func sourceAndDestination(cmd *cli.Command, log *zap.Logger) (src, dst string, err error) {
	src = cmd.Args().Get(0)
	if len(src) == 0 {
		return "", "", errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return "", "", err
	}

	dst = cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", "", err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	return src, dst, nil
}

// process determines the input type (directory, archive, or single file),
// collects payloads and builds them.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	jobs, err := collect(ctx, src, log)
	if err != nil {
		return err
	}
	return runJobs(ctx, jobs, dst, log)
}

func collect(ctx context.Context, src string, log *zap.Logger) ([]job, error) {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return nil, fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			jobs, err := collectDir(ctx, head, log)
			if err != nil {
				return nil, fmt.Errorf("unable to process directory: %w", err)
			}
			return jobs, nil
		}

		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return nil, fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			jobs, err := collectArchive(ctx, head, tail, "", log)
			if err != nil {
				return nil, fmt.Errorf("unable to process archive: %w", err)
			}
			if len(jobs) == 0 && len(tail) != 0 {
				return nil, fmt.Errorf("input source was not found in archive (%s) => (%s)", head, tail)
			}
			return jobs, nil
		}

		payload, enc, err := isPayloadFile(head)
		if err != nil {
			return nil, fmt.Errorf("unable to check file type: %w", err)
		}
		if payload && len(tail) == 0 {
			log.Debug("Payload found", zap.String("file", head), zap.Stringer("encoding", enc))
			return []job{{src: filepath.Base(head), dir: filepath.Dir(head), path: head}}, nil
		}
		return nil, fmt.Errorf("input was not recognized as report payload (%s)", head)
	}
	return nil, fmt.Errorf("input source was not found (%s)", src)
}

// collectDir walks directory tree finding payloads and archives. Files are
// visited in natural name order.
func collectDir(ctx context.Context, dir string, log *zap.Logger) ([]job, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(files, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})

	var jobs []job
	for _, path := range files {
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if isArchive {
			more, err := collectArchive(ctx, path, "", filepath.Dir(rel), log)
			if err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
				continue
			}
			jobs = append(jobs, more...)
			continue
		}

		payload, _, err := isPayloadFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if !payload {
			log.Debug("Skipping file, not recognized as payload or archive", zap.String("file", path))
			continue
		}
		jobs = append(jobs, job{src: rel, dir: filepath.Dir(path), path: path})
	}
	if len(jobs) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return jobs, nil
}

// collectArchive reads payloads under "pathIn" from archive. "pathOut" is
// archive location relative to the processed directory.
func collectArchive(ctx context.Context, path, pathIn, pathOut string, log *zap.Logger) ([]job, error) {
	cp := state.EnvFromContext(ctx).CodePage

	var jobs []job
	err := archive.Walk(path, pathIn, func(archive string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		payload, _, err := isPayloadInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", archive), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if !payload {
			log.Debug("Skipping file, not recognized as payload", zap.String("archive", archive), zap.String("file", f.FileHeader.Name))
			return nil
		}

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to read file in archive",
				zap.String("archive", archive), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		data, err := io.ReadAll(r)
		if err != nil {
			log.Error("Unable to read file in archive",
				zap.String("archive", archive), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}

		pathInArchive := f.FileHeader.Name
		if cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		jobs = append(jobs, job{
			src:  filepath.Join(pathOut, filepath.FromSlash(pathInArchive)),
			dir:  filepath.Dir(path),
			data: data,
		})
		return nil
	})
	if err == nil && len(jobs) == 0 {
		log.Debug("Nothing to process", zap.String("archive", path))
	}
	return jobs, err
}

// runJobs builds payloads on a bounded pool of workers. Failures of single
// payloads do not stop the rest and are combined into returned error.
func runJobs(ctx context.Context, jobs []job, dst string, log *zap.Logger) error {
	if len(jobs) == 0 {
		return nil
	}

	env := state.EnvFromContext(ctx)
	builder := report.NewBuilder(&env.Cfg.Document, env.Log, env.DefaultCover)

	workers := min(max(env.Jobs, 1), len(jobs))
	queue := make(chan int)
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for i := range queue {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				if _, err := processPayload(ctx, builder, &jobs[i], dst, log); err != nil {
					log.Error("Unable to process payload", zap.String("source", jobs[i].src), zap.Error(err))
					errs[i] = fmt.Errorf("%s: %w", jobs[i].src, err)
				}
			}
		})
	}

feed:
	for i := range jobs {
		select {
		case queue <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := multierr.Combine(errs...); err != nil {
		return fmt.Errorf("%d of %d payloads failed: %w", len(multierr.Errors(err)), len(jobs), err)
	}
	return nil
}

// processPayload builds single payload and returns name of the written
// document.
func processPayload(ctx context.Context, builder *report.Builder, j *job, dst string, log *zap.Logger) (outputName string, rerr error) {
	env := state.EnvFromContext(ctx)

	log.Info("Conversion starting", zap.String("from", j.src))
	defer func(start time.Time) {
		// NOTE: some of golang graphic processing libraries are not mature
		// enough, if multiple payloads are being processed we do not want to
		// stop.
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	data, err := j.read()
	if err != nil {
		return "", fmt.Errorf("unable to read payload: %w", err)
	}
	p, err := report.DecodePayload(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unable to decode payload (%s): %w", j.src, err)
	}

	outputName = buildOutputPath(p, j.src, dst, env)
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return outputName, err
	}

	doc, err := builder.Build(p, report.Options{Dir: j.dir, Title: documentTitle(p, j.src, env)})
	if err != nil {
		return outputName, fmt.Errorf("unable to build document: %w", err)
	}
	if err := doc.Save(outputName); err != nil {
		return outputName, fmt.Errorf("unable to save document: %w", err)
	}

	// Store payload and result for debugging
	if env.Rpt != nil {
		env.Rpt.StoreData(fmt.Sprintf("source-%s%s", doc.ID(), filepath.Ext(j.src)), data)
		env.Rpt.Store(fmt.Sprintf("result-%s%s", doc.ID(), filepath.Ext(outputName)), outputName)
	}
	return outputName, nil
}

// prepareOutput checks whether output file already exists and makes sure its
// directory does.
func prepareOutput(outputName string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(outputName); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		return os.Remove(outputName)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
