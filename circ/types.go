// Package circ records KOC command records as pending offline operations and
// applies them as checkouts, checkins and payments.
package circ

import (
	"context"

	"github.com/programmfabrik/easydb-migration-tools/offlinecirc/koc"
)

// PlaceholderUserID is recorded as operator for every imported operation.
// KOC files carry no operator.
const PlaceholderUserID int64 = 0

type PendingOperation struct {
	ID         int64  `db:"id" json:"id"`
	UserID     int64  `db:"userid" json:"userid"`
	Branchcode string `db:"branchcode" json:"branchcode"`
	Timestamp  string `db:"timestamp" json:"timestamp"`
	Action     string `db:"action" json:"action"`
	Barcode    string `db:"barcode" json:"barcode"`
	Cardnumber string `db:"cardnumber" json:"cardnumber"`
	Amount     string `db:"amount" json:"amount"`
	BatchID    string `db:"batch_id" json:"batch_id"`
}

// NewPendingOperation maps a decoded record onto a pending operation.
func NewPendingOperation(rec koc.Record, branchcode string, userID int64) PendingOperation {
	args := rec.Args()
	return PendingOperation{
		UserID:     userID,
		Branchcode: branchcode,
		Timestamp:  rec.Timestamp.DateTime(),
		Action:     string(rec.Kind()),
		Barcode:    args[koc.ArgBarcode],
		Cardnumber: args[koc.ArgCardnumber],
		Amount:     args[koc.ArgAmount],
	}
}

// Session is the branch and operator an operation is applied under.
type Session struct {
	Branchcode string
	UserID     int64
}

const (
	StatusSuccess          = "Success."
	StatusBorrowerNotFound = "Borrower not found."
	StatusItemNotFound     = "Item not found."
	StatusItemNotIssued    = "Item not issued."
	StatusInvalidAmount    = "Invalid amount."
	StatusUnknownAction    = "Unknown action."
)

type Report struct {
	Operation PendingOperation
	Status    string
}

func (r Report) OK() bool {
	return r.Status == StatusSuccess
}

type BranchRegistry interface {
	Lookup(ctx context.Context, branchcode string) (bool, error)
}

type PendingStore interface {
	Record(ctx context.Context, op PendingOperation) error
	ListPending(ctx context.Context) ([]PendingOperation, error)
	Delete(ctx context.Context, id int64) error
}

// Applier performs the real side effect of a pending operation. A returned
// error means the store is unusable, soft failures end up in Report.Status.
type Applier interface {
	Apply(ctx context.Context, sess Session, op PendingOperation) (Report, error)
}
