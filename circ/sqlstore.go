package circ

import (
	"context"
	"fmt"

	"github.com/programmfabrik/sqlpro"
)

// SQLStore keeps branches, patrons, items and pending operations in one
// sqlpro database. It implements BranchRegistry, PendingStore and Applier.
type SQLStore struct {
	db *sqlpro.DB
}

func (s *SQLStore) DB() *sqlpro.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

type pendingRow struct {
	UserID     int64  `db:"userid"`
	Branchcode string `db:"branchcode"`
	Timestamp  string `db:"timestamp"`
	Action     string `db:"action"`
	Barcode    string `db:"barcode"`
	Cardnumber string `db:"cardnumber"`
	Amount     string `db:"amount"`
	BatchID    string `db:"batch_id"`
}

func (s *SQLStore) Lookup(ctx context.Context, branchcode string) (bool, error) {
	codes := []string{}
	err := s.db.QueryContext(ctx, &codes, `SELECT "branchcode" FROM "branches" WHERE "branchcode" = ?`, branchcode)
	if err != nil {
		return false, fmt.Errorf("unable to lookup branch %q: %w", branchcode, err)
	}
	return len(codes) > 0, nil
}

func (s *SQLStore) Record(ctx context.Context, op PendingOperation) error {
	err := s.db.InsertContext(ctx, "pending_offline_operations", &pendingRow{
		UserID:     op.UserID,
		Branchcode: op.Branchcode,
		Timestamp:  op.Timestamp,
		Action:     op.Action,
		Barcode:    op.Barcode,
		Cardnumber: op.Cardnumber,
		Amount:     op.Amount,
		BatchID:    op.BatchID,
	})
	if err != nil {
		return fmt.Errorf("unable to insert pending_offline_operations: %w", err)
	}
	return nil
}

// ListPending returns all pending operations in insertion order.
func (s *SQLStore) ListPending(ctx context.Context) ([]PendingOperation, error) {
	ops := []PendingOperation{}
	err := s.db.QueryContext(ctx, &ops, `SELECT "id", "userid", "branchcode", "timestamp", "action",
		"barcode", "cardnumber", "amount", "batch_id"
		FROM "pending_offline_operations" ORDER BY "id"`)
	if err != nil {
		return nil, fmt.Errorf("unable to list pending_offline_operations: %w", err)
	}
	return ops, nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	err := s.db.ExecContext(ctx, `DELETE FROM "pending_offline_operations" WHERE "id" = ?`, id)
	if err != nil {
		return fmt.Errorf("unable to delete pending operation %d: %w", id, err)
	}
	return nil
}

type branchRow struct {
	Branchcode string `db:"branchcode"`
	Branchname string `db:"branchname"`
}

type borrowerRow struct {
	Cardnumber string `db:"cardnumber"`
	Branchcode string `db:"branchcode"`
}

type itemRow struct {
	Barcode       string `db:"barcode"`
	Holdingbranch string `db:"holdingbranch"`
}

func (s *SQLStore) AddBranch(ctx context.Context, branchcode, name string) error {
	return s.db.InsertContext(ctx, "branches", &branchRow{Branchcode: branchcode, Branchname: name})
}

func (s *SQLStore) AddBorrower(ctx context.Context, cardnumber, branchcode string) error {
	return s.db.InsertContext(ctx, "borrowers", &borrowerRow{Cardnumber: cardnumber, Branchcode: branchcode})
}

func (s *SQLStore) AddItem(ctx context.Context, barcode, branchcode string) error {
	return s.db.InsertContext(ctx, "items", &itemRow{Barcode: barcode, Holdingbranch: branchcode})
}
