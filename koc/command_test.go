package koc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programmfabrik/easydb-migration-tools/offlinecirc/koc"
)

func TestDecodeCommand(t *testing.T) {
	rec, err := koc.DecodeCommand("2024-01-01 10:00:00 42\tissue\tCARD1\tBC1")
	require.NoError(t, err)
	assert.Equal(t, koc.Timestamp{Date: "2024-01-01", Time: "10:00:00", ID: "42"}, rec.Timestamp)
	assert.Equal(t, koc.KindIssue, rec.Kind())
	assert.Equal(t, koc.Issue{Cardnumber: "CARD1", Barcode: "BC1"}, rec.Command)
	assert.Equal(t, map[string]string{"cardnumber": "CARD1", "barcode": "BC1"}, rec.Args())
}

func TestDecodeCommandVariants(t *testing.T) {
	for _, tc := range []struct {
		line string
		want koc.Command
	}{
		{"2024-01-01 10:00:00 1\treturn\tBC1\r\n", koc.Return{Barcode: "BC1"}},
		{"2024-01-01 10:00:00 2\tpayment\tCARD1\t12.50", koc.Payment{Cardnumber: "CARD1", Amount: "12.50"}},
		// extra trailing arguments are ignored
		{"2024-01-01 10:00:00 3\treturn\tBC1\textra", koc.Return{Barcode: "BC1"}},
		{"2024-01-01  10:00:00 4\tissue\tC\tB\n", koc.Issue{Cardnumber: "C", Barcode: "B"}},
	} {
		rec, err := koc.DecodeCommand(tc.line)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, rec.Command, tc.line)
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	for _, tc := range []struct {
		line string
		err  error
	}{
		{"2024-01-01 10:00:00\tissue\tC\tB", koc.ErrMalformedTimestamp},
		{"2024-01-01 10:00:00 1 2\tissue\tC\tB", koc.ErrMalformedTimestamp},
		{"", koc.ErrMalformedTimestamp},
		{"2024-01-01 10:00:00 1\trenew\tBC1", koc.ErrUnknownCommand},
		{"2024-01-01 10:00:00 1", koc.ErrUnknownCommand},
		{"2024-01-01 10:00:00 1\tissue\tCARD1", koc.ErrArgumentCountMismatch},
		{"2024-01-01 10:00:00 1\treturn", koc.ErrArgumentCountMismatch},
		{"2024-01-01 10:00:00 1\tpayment\tCARD1\tten", koc.ErrInvalidArgument},
		{"2024-01-01 10:00:00 1\tpayment\tCARD1\tNaN", koc.ErrInvalidArgument},
		{"2024-01-01 10:00:00 1\tpayment\tCARD1\tInf", koc.ErrInvalidArgument},
		{"2024-01-01 10:00:00 1\tpayment\tCARD1\t-Inf", koc.ErrInvalidArgument},
		{"2024-01-01 10:00:00 1\tpayment\tCARD1\t0x1p-2", koc.ErrInvalidArgument},
		{"2024-01-01 10:00:00 1\tpayment\tCARD1\t1e400", koc.ErrInvalidArgument},
		{"2024-01-01 10:00:00 1\tpayment\tCARD1\t", koc.ErrInvalidArgument},
	} {
		_, err := koc.DecodeCommand(tc.line)
		assert.ErrorIs(t, err, tc.err, tc.line)
	}
}

func TestCommandRoundTrip(t *testing.T) {
	ts := koc.Timestamp{Date: "2024-01-01", Time: "10:00:00", ID: "7"}
	for _, rec := range []koc.Record{
		{Timestamp: ts, Command: koc.Issue{Cardnumber: "CARD1", Barcode: "BC1"}},
		{Timestamp: ts, Command: koc.Return{Barcode: "BC2"}},
		{Timestamp: ts, Command: koc.Payment{Cardnumber: "CARD3", Amount: "3.75"}},
	} {
		line := koc.EncodeCommand(rec)
		got, err := koc.DecodeCommand(line)
		require.NoError(t, err, line)
		assert.Equal(t, rec, got)
	}
}

func TestEncodeCommandOrder(t *testing.T) {
	rec := koc.Record{
		Timestamp: koc.Timestamp{Date: "2024-01-01", Time: "10:00:00", ID: "1"},
		Command:   koc.Payment{Cardnumber: "CARD1", Amount: "5"},
	}
	assert.Equal(t, "2024-01-01 10:00:00 1\tpayment\tCARD1\t5", koc.EncodeCommand(rec))
}

func TestDefaultTableShapes(t *testing.T) {
	names := func(k koc.Kind) (n []string) {
		s, ok := koc.DefaultTable.Shape(k)
		require.True(t, ok)
		for _, a := range s.Args {
			n = append(n, a.Name)
		}
		return n
	}
	assert.Equal(t, []string{"cardnumber", "barcode"}, names(koc.KindIssue))
	assert.Equal(t, []string{"barcode"}, names(koc.KindReturn))
	assert.Equal(t, []string{"cardnumber", "amount"}, names(koc.KindPayment))

	_, ok := koc.DefaultTable.Shape("renew")
	assert.False(t, ok)
}

func TestParseAmount(t *testing.T) {
	for in, want := range map[string]float64{
		"12.50": 12.5,
		"5":     5,
		"-1.25": -1.25,
		"+3.":   3,
		".75":   0.75,
	} {
		got, err := koc.ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"NaN", "nan", "Inf", "-Inf", "+Infinity", "0x1p-2", "1e3", "1_000", " 1", "", "."} {
		_, err := koc.ParseAmount(in)
		assert.Error(t, err, in)
	}
}
