package cmd

import (
	"context"
	"errors"

	"github.com/alecthomas/kong"
	"github.com/programmfabrik/golib"

	"github.com/programmfabrik/easydb-migration-tools/offlinecirc/circ"
)

var errUsage = errors.New("one of --dir, --confirm, --process or --import is required")

type Import struct {
	Confirm     bool   `help:"Dry run. Decode the files and list pending operations without writing to the database."`
	ImportFiles bool   `name:"import" help:"Record the KOC files found in --dir as pending operations."`
	Process     bool   `help:"Apply all pending operations as checkouts, checkins and payments."`
	Dir         string `help:"Directory containing one sub directory per branch code with KOC files."`
	Verbose     int    `short:"v" type:"counter" help:"Increase verbosity: 1 progress, 2 raw lines, 3 decoded records."`
	DSN         string `help:"DSN to connect to database. Use sqlite3:<file.sqlite> or postgres:host=localhost port=5432 dbname=koha sslmode=disable to connect." default:"sqlite3:koc.sqlite" env:"KOC_DSN"`
}

func (i *Import) Run(kctx *kong.Context) (err error) {
	if i.Dir == "" && !i.Confirm && !i.Process && !i.ImportFiles {
		kctx.PrintUsage(false)
		return errUsage
	}
	if i.ImportFiles && i.Dir == "" {
		return errors.New("--import needs --dir")
	}
	if i.Dir == "" && !i.Process {
		golib.Pln("nothing to do, --confirm needs --dir or --process")
		return nil
	}

	ctx := context.Background()
	var (
		branches circ.BranchRegistry
		store    circ.PendingStore
		applier  circ.Applier
	)
	if (i.Dir != "" && !i.Confirm) || i.Process {
		db, err := circ.Open(ctx, i.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		branches, store, applier = db, db, db
	}

	if i.Dir != "" {
		err = i.importDir(ctx, branches, store)
		if err != nil {
			return err
		}
	}
	if i.Process {
		err = i.process(ctx, store, applier)
		if err != nil {
			return err
		}
	}
	return nil
}

func (i *Import) importDir(ctx context.Context, branches circ.BranchRegistry, store circ.PendingStore) error {
	im, err := circ.NewImporter(branches, store)
	if err != nil {
		return err
	}
	im.DryRun = i.Confirm
	im.Verbose = i.Verbose
	res, err := im.ImportDir(ctx, i.Dir)
	if err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		golib.Pln("skipped %d branches and %d files", len(res.SkippedBranches), len(res.SkippedFiles))
	}
	return nil
}

func (i *Import) process(ctx context.Context, store circ.PendingStore, applier circ.Applier) error {
	p := circ.Processor{
		Store:   store,
		Applier: applier,
		DryRun:  i.Confirm,
		Verbose: i.Verbose,
	}
	reports, err := p.ProcessPending(ctx)
	if err != nil {
		return err
	}
	for _, rep := range reports {
		if rep.OK() {
			continue
		}
		op := rep.Operation
		golib.Pln("%d %s %s barcode=%q cardnumber=%q: %s", op.ID, op.Timestamp, op.Action, op.Barcode, op.Cardnumber, rep.Status)
	}
	return nil
}
