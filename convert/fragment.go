package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cradoc/common"
	"cradoc/report"
	"cradoc/state"
)

// RunFragment is the convert command action: single HTML or markdown
// fragment becomes a document. Source "-" reads standard input.
func RunFragment(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	env.Overwrite = cmd.Bool("overwrite")

	format := fragmentFormat(src)
	if cmd.Bool("markdown") {
		format = common.PayloadFormatMarkdown
	}

	data, err := readFragment(src)
	if err != nil {
		return err
	}

	outputName, err := fragmentOutput(src, cmd.Args().Get(1))
	if err != nil {
		return err
	}

	log.Info("Conversion starting", zap.String("from", src), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
	}(time.Now())

	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return err
	}

	title := strings.TrimSpace(cmd.String("title"))
	builder := report.NewBuilder(&env.Cfg.Document, env.Log, env.DefaultCover)
	doc := builder.BuildFragment(string(data), format, title)
	if err := doc.Save(outputName); err != nil {
		return fmt.Errorf("unable to save document: %w", err)
	}

	if env.Rpt != nil {
		env.Rpt.StoreData(fmt.Sprintf("source-%s%s", doc.ID(), filepath.Ext(src)), data)
		env.Rpt.Store(fmt.Sprintf("result-%s%s", doc.ID(), outputExt), outputName)
	}
	return nil
}

func readFragment(src string) ([]byte, error) {
	var r io.Reader = os.Stdin
	if src != "-" {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("unable to open source: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := readPayloadSource(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read source: %w", err)
	}
	return data, nil
}

// fragmentOutput names the document: destination with ".docx" extension is
// used as is, otherwise it is a directory (current one when empty) receiving
// source base name.
func fragmentOutput(src, dst string) (string, error) {
	if strings.EqualFold(filepath.Ext(dst), outputExt) {
		return filepath.Abs(dst)
	}
	if len(dst) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		dst = wd
	}
	name := "fragment"
	if src != "-" {
		name = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	return filepath.Abs(filepath.Join(dst, name+outputExt))
}
