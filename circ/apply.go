package circ

import (
	"context"
	"fmt"

	"github.com/programmfabrik/sqlpro"

	"github.com/programmfabrik/easydb-migration-tools/offlinecirc/koc"
)

type loan struct {
	ID         int64  `db:"id"`
	BorrowerID int64  `db:"borrower_id"`
	ItemID     int64  `db:"item_id"`
	Branchcode string `db:"branchcode"`
	Issuedate  string `db:"issuedate"`
	Renewals   int64  `db:"renewals"`
}

type issueRow struct {
	BorrowerID int64  `db:"borrower_id"`
	ItemID     int64  `db:"item_id"`
	Branchcode string `db:"branchcode"`
	Issuedate  string `db:"issuedate"`
}

type oldIssueRow struct {
	BorrowerID int64  `db:"borrower_id"`
	ItemID     int64  `db:"item_id"`
	Branchcode string `db:"branchcode"`
	Issuedate  string `db:"issuedate"`
	Returndate string `db:"returndate"`
	Renewals   int64  `db:"renewals"`
}

type accountlineRow struct {
	BorrowerID int64   `db:"borrower_id"`
	Branchcode string  `db:"branchcode"`
	Amount     float64 `db:"amount"`
	Type       string  `db:"type"`
	Date       string  `db:"date"`
	ManagerID  int64   `db:"manager_id"`
}

// Apply runs op in one transaction. The loan or payment is booked at
// sess.Branchcode with sess.UserID as operator.
func (s *SQLStore) Apply(ctx context.Context, sess Session, op PendingOperation) (rep Report, err error) {
	rep = Report{Operation: op}

	tx, err := s.db.Begin()
	if err != nil {
		return rep, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	switch koc.Kind(op.Action) {
	case koc.KindIssue:
		rep.Status, err = applyIssue(ctx, tx, sess, op)
	case koc.KindReturn:
		rep.Status, err = applyReturn(ctx, tx, sess, op)
	case koc.KindPayment:
		rep.Status, err = applyPayment(ctx, tx, sess, op)
	default:
		rep.Status = StatusUnknownAction
	}
	if err != nil {
		return rep, fmt.Errorf("unable to apply %s operation %d: %w", op.Action, op.ID, err)
	}
	return rep, nil
}

func applyIssue(ctx context.Context, tx *sqlpro.DB, sess Session, op PendingOperation) (string, error) {
	borrowerID, found, err := queryID(ctx, tx, `SELECT "id" FROM "borrowers" WHERE "cardnumber" = ?`, op.Cardnumber)
	if err != nil || !found {
		return StatusBorrowerNotFound, err
	}
	itemID, found, err := queryID(ctx, tx, `SELECT "id" FROM "items" WHERE "barcode" = ?`, op.Barcode)
	if err != nil || !found {
		return StatusItemNotFound, err
	}
	current, found, err := openLoan(ctx, tx, itemID)
	if err != nil {
		return "", err
	}
	if found {
		if current.BorrowerID == borrowerID {
			err = tx.ExecContext(ctx, `UPDATE "issues" SET "renewals" = "renewals" + 1, "lastreneweddate" = ? WHERE "id" = ?`,
				op.Timestamp, current.ID)
			if err != nil {
				return "", err
			}
			return StatusSuccess, nil
		}
		err = closeLoan(ctx, tx, current, op.Timestamp, sess.Branchcode)
		if err != nil {
			return "", err
		}
	}
	err = tx.InsertContext(ctx, "issues", &issueRow{
		BorrowerID: borrowerID,
		ItemID:     itemID,
		Branchcode: sess.Branchcode,
		Issuedate:  op.Timestamp,
	})
	if err != nil {
		return "", fmt.Errorf("unable to insert issues: %w", err)
	}
	err = tx.ExecContext(ctx, `UPDATE "items" SET "onloan" = ?, "holdingbranch" = ? WHERE "id" = ?`,
		op.Timestamp, sess.Branchcode, itemID)
	if err != nil {
		return "", err
	}
	return StatusSuccess, nil
}

func applyReturn(ctx context.Context, tx *sqlpro.DB, sess Session, op PendingOperation) (string, error) {
	itemID, found, err := queryID(ctx, tx, `SELECT "id" FROM "items" WHERE "barcode" = ?`, op.Barcode)
	if err != nil || !found {
		return StatusItemNotFound, err
	}
	current, found, err := openLoan(ctx, tx, itemID)
	if err != nil {
		return "", err
	}
	if !found {
		return StatusItemNotIssued, nil
	}
	err = closeLoan(ctx, tx, current, op.Timestamp, sess.Branchcode)
	if err != nil {
		return "", err
	}
	return StatusSuccess, nil
}

func applyPayment(ctx context.Context, tx *sqlpro.DB, sess Session, op PendingOperation) (string, error) {
	borrowerID, found, err := queryID(ctx, tx, `SELECT "id" FROM "borrowers" WHERE "cardnumber" = ?`, op.Cardnumber)
	if err != nil || !found {
		return StatusBorrowerNotFound, err
	}
	amount, err := koc.ParseAmount(op.Amount)
	if err != nil {
		return StatusInvalidAmount, nil
	}
	err = tx.InsertContext(ctx, "accountlines", &accountlineRow{
		BorrowerID: borrowerID,
		Branchcode: sess.Branchcode,
		Amount:     -amount,
		Type:       "Payment",
		Date:       op.Timestamp,
		ManagerID:  sess.UserID,
	})
	if err != nil {
		return "", fmt.Errorf("unable to insert accountlines: %w", err)
	}
	return StatusSuccess, nil
}

func queryID(ctx context.Context, tx *sqlpro.DB, query string, args ...any) (int64, bool, error) {
	ids := []int64{}
	err := tx.QueryContext(ctx, &ids, query, args...)
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func openLoan(ctx context.Context, tx *sqlpro.DB, itemID int64) (loan, bool, error) {
	loans := []loan{}
	err := tx.QueryContext(ctx, &loans, `SELECT "id", "borrower_id", "item_id", "branchcode", "issuedate", "renewals"
		FROM "issues" WHERE "item_id" = ?`, itemID)
	if err != nil {
		return loan{}, false, err
	}
	if len(loans) == 0 {
		return loan{}, false, nil
	}
	return loans[0], true, nil
}

// closeLoan moves the loan to old_issues and puts the item back on the shelf
// of branchcode.
func closeLoan(ctx context.Context, tx *sqlpro.DB, l loan, returndate, branchcode string) error {
	err := tx.InsertContext(ctx, "old_issues", &oldIssueRow{
		BorrowerID: l.BorrowerID,
		ItemID:     l.ItemID,
		Branchcode: l.Branchcode,
		Issuedate:  l.Issuedate,
		Returndate: returndate,
		Renewals:   l.Renewals,
	})
	if err != nil {
		return fmt.Errorf("unable to insert old_issues: %w", err)
	}
	err = tx.ExecContext(ctx, `DELETE FROM "issues" WHERE "id" = ?`, l.ID)
	if err != nil {
		return err
	}
	return tx.ExecContext(ctx, `UPDATE "items" SET "onloan" = '', "holdingbranch" = ? WHERE "id" = ?`,
		branchcode, l.ItemID)
}
