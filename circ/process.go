package circ

import (
	"context"
	"time"
)

// Processor applies every pending operation and removes it afterwards.
type Processor struct {
	Store   PendingStore
	Applier Applier
	// DryRun only lists the pending operations.
	DryRun  bool
	Verbose int
}

// ProcessPending applies the pending operations in storage order, each under
// the branch and operator it was recorded with. An operation is deleted once
// applied, also when its report is not a success.
func (p *Processor) ProcessPending(ctx context.Context) (reports []Report, err error) {
	start := time.Now()
	ops, err := p.Store.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	logf(p.Verbose, Progress, "%d pending operations", len(ops))
	for _, op := range ops {
		if p.DryRun {
			logf(p.Verbose, Quiet, "%d %s %s %s barcode=%q cardnumber=%q amount=%q",
				op.ID, op.Timestamp, op.Branchcode, op.Action, op.Barcode, op.Cardnumber, op.Amount)
			continue
		}
		rep, err := p.Applier.Apply(ctx, Session{Branchcode: op.Branchcode, UserID: op.UserID}, op)
		if err != nil {
			return reports, err
		}
		err = p.Store.Delete(ctx, op.ID)
		if err != nil {
			return reports, err
		}
		logf(p.Verbose, Progress, "%d %s %s: %s", op.ID, op.Action, op.Branchcode, rep.Status)
		reports = append(reports, rep)
	}
	logf(p.Verbose, Quiet, "processed %d operations in %s", len(reports), time.Since(start))
	return reports, nil
}
