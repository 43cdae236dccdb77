package circ

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/programmfabrik/easydb-migration-tools/offlinecirc/koc"
)

// Importer records the KOC files found in <root>/<branchcode>/* as pending
// operations.
type Importer struct {
	Branches BranchRegistry
	Store    PendingStore
	// DryRun decodes and reports but neither looks up branches nor records
	// operations.
	DryRun  bool
	Verbose int
	Version string
	UserID  int64
	BatchID string
}

func NewImporter(branches BranchRegistry, store PendingStore) (*Importer, error) {
	batchID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to create batch id: %w", err)
	}
	return &Importer{
		Branches: branches,
		Store:    store,
		Version:  koc.Version,
		UserID:   PlaceholderUserID,
		BatchID:  batchID.String(),
	}, nil
}

type ImportResult struct {
	Branches        int
	SkippedBranches []string
	Files           int
	SkippedFiles    []string
	Records         int
	// Errors collects the reasons for every skipped branch and file.
	Errors []error
}

// ImportDir walks root. Unknown branch directories and undecodable files are
// skipped and noted in the result. Only a missing root or a failing store
// ends the run with an error.
func (im *Importer) ImportDir(ctx context.Context, root string) (res ImportResult, err error) {
	start := time.Now()
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("%w: %q", koc.ErrFileNotFound, root)
		}
		return res, err
	}
	logf(im.Verbose, Progress, "importing %q, batch %s", root, im.BatchID)
	for _, entry := range entries {
		if !entry.IsDir() {
			logf(im.Verbose, Progress, "ignoring %q, not a branch directory", entry.Name())
			continue
		}
		err = im.importBranch(ctx, filepath.Join(root, entry.Name()), entry.Name(), &res)
		if err != nil {
			return res, err
		}
	}
	logf(im.Verbose, Quiet, "imported %d records from %d files in %s", res.Records, res.Files, time.Since(start))
	return res, nil
}

func (im *Importer) importBranch(ctx context.Context, dir, branchcode string, res *ImportResult) error {
	if !im.DryRun {
		ok, err := im.Branches.Lookup(ctx, branchcode)
		if err != nil {
			return err
		}
		if !ok {
			logf(im.Verbose, Progress, "skipping %q: %s", dir, koc.ErrInvalidBranchCode)
			res.SkippedBranches = append(res.SkippedBranches, branchcode)
			res.Errors = append(res.Errors, fmt.Errorf("%w: %q", koc.ErrInvalidBranchCode, branchcode))
			return nil
		}
	}
	res.Branches++
	logf(im.Verbose, Progress, "branch %s", branchcode)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		fp := filepath.Join(dir, entry.Name())
		kf, err := koc.ReadFile(fp, im.Version)
		if err != nil {
			logf(im.Verbose, Progress, "skipping %q: %s", fp, err.Error())
			res.SkippedFiles = append(res.SkippedFiles, fp)
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Files++
		logf(im.Verbose, Progress, "file %q: %d records", fp, len(kf.Records))
		for idx, rec := range kf.Records {
			logf(im.Verbose, RawLines, "%s", kf.Raw[idx])
			dumpRecord(im.Verbose, rec)
			if im.DryRun {
				res.Records++
				continue
			}
			op := NewPendingOperation(rec, branchcode, im.UserID)
			op.BatchID = im.BatchID
			err = im.Store.Record(ctx, op)
			if err != nil {
				return err
			}
			res.Records++
		}
	}
	return nil
}
