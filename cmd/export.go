package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/programmfabrik/golib"

	"github.com/programmfabrik/easydb-migration-tools/offlinecirc/koc"
)

const exportBatchSize = 1000

type Export struct {
	File             string `help:"Combined circulation log, tab separated with the branch code as last field." required:""`
	OutputDir        string `name:"output_dir" help:"Directory to write the <branchcode>.koc files to." default:"." env:"KOC_OUTPUT_DIR"`
	Generator        string `help:"Generator written into the KOC header." default:"koc"`
	GeneratorVersion string `name:"generator_version" help:"Generator version written into the KOC header." default:"1.0"`
	Verbose          bool   `help:"Print progress."`
}

func (e *Export) Run(kctx *kong.Context) (err error) {
	start := time.Now()
	f, err := os.Open(e.File)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", koc.ErrFileNotFound, e.File)
		}
		return fmt.Errorf("Error opening file: %w", err)
	}
	defer f.Close()

	err = os.MkdirAll(e.OutputDir, 0755)
	if err != nil {
		return err
	}

	exp := koc.NewExporter(e.OutputDir)
	exp.Generator = e.Generator
	exp.GeneratorVersion = e.GeneratorVersion

	lineCount := 0
	flush := func(lines []string) error {
		b := koc.GroupByBranch(lines)
		for _, skipped := range b.Skipped {
			e.logf("skipping line without branch code: %q", skipped)
		}
		lineCount += b.Len()
		return exp.Append(b)
	}

	scanner := koc.NewScanner(f)
	batch := make([]string, 0, exportBatchSize)
	for scanner.Scan() {
		batch = append(batch, scanner.Text())
		if len(batch) < exportBatchSize {
			continue
		}
		err = flush(batch)
		if err != nil {
			return err
		}
		e.logf("%d lines", lineCount)
		batch = batch[:0]
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("Error reading file: %w", err)
	}
	err = flush(batch)
	if err != nil {
		return err
	}

	err = exp.Finalize()
	if err != nil {
		return err
	}
	for _, branch := range exp.Touched() {
		e.logf("wrote %q", exp.Path(branch))
	}
	golib.Pln("exported %d lines from %q into %d files in %s", lineCount, e.File, len(exp.Touched()), time.Since(start))
	return nil
}

func (e *Export) logf(format string, args ...any) {
	if e.Verbose {
		golib.Pln(format, args...)
	}
}
