package koc

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type Kind string

const (
	KindIssue   Kind = "issue"
	KindReturn  Kind = "return"
	KindPayment Kind = "payment"
)

const (
	ArgCardnumber = "cardnumber"
	ArgBarcode    = "barcode"
	ArgAmount     = "amount"
)

// Command is one of Issue, Return or Payment.
type Command interface {
	Kind() Kind
	// Values returns the arguments in the order of the command's shape.
	Values() []string
}

type Issue struct {
	Cardnumber string `json:"cardnumber"`
	Barcode    string `json:"barcode"`
}

func (Issue) Kind() Kind { return KindIssue }
func (c Issue) Values() []string { return []string{c.Cardnumber, c.Barcode} }

type Return struct {
	Barcode string `json:"barcode"`
}

func (Return) Kind() Kind { return KindReturn }
func (c Return) Values() []string { return []string{c.Barcode} }

type Payment struct {
	Cardnumber string `json:"cardnumber"`
	Amount     string `json:"amount"`
}

func (Payment) Kind() Kind { return KindPayment }
func (c Payment) Values() []string { return []string{c.Cardnumber, c.Amount} }

type Timestamp struct {
	Date string `json:"date"`
	Time string `json:"time"`
	ID   string `json:"id"`
}

func (ts Timestamp) String() string {
	return ts.Date + " " + ts.Time + " " + ts.ID
}

// DateTime is the timestamp without the id part.
func (ts Timestamp) DateTime() string {
	return ts.Date + " " + ts.Time
}

// Record is one decoded command line.
type Record struct {
	Timestamp Timestamp `json:"timestamp"`
	Command   Command   `json:"command"`
}

func (r Record) Kind() Kind {
	if r.Command == nil {
		return ""
	}
	return r.Command.Kind()
}

// Args maps argument names to values.
func (r Record) Args() map[string]string {
	args := map[string]string{}
	if r.Command == nil {
		return args
	}
	shape, ok := DefaultTable.Shape(r.Command.Kind())
	if !ok {
		return args
	}
	vals := r.Command.Values()
	for idx, arg := range shape.Args {
		if idx < len(vals) {
			args[arg.Name] = vals[idx]
		}
	}
	return args
}

// Arg is a named positional argument. Parse may be nil.
type Arg struct {
	Name  string
	Parse func(value string) error
}

// Shape describes the arguments of one command.
type Shape struct {
	Kind  Kind
	Args  []Arg
	build func(values []string) Command
}

// Table maps command tokens to their shapes. It is never modified after
// construction.
type Table struct {
	shapes map[Kind]Shape
}

func newTable(shapes ...Shape) *Table {
	t := &Table{shapes: make(map[Kind]Shape, len(shapes))}
	for _, s := range shapes {
		t.shapes[s.Kind] = s
	}
	return t
}

var DefaultTable = newTable(
	Shape{
		Kind: KindIssue,
		Args: []Arg{{Name: ArgCardnumber}, {Name: ArgBarcode}},
		build: func(v []string) Command {
			return Issue{Cardnumber: v[0], Barcode: v[1]}
		},
	},
	Shape{
		Kind: KindReturn,
		Args: []Arg{{Name: ArgBarcode}},
		build: func(v []string) Command {
			return Return{Barcode: v[0]}
		},
	},
	Shape{
		Kind: KindPayment,
		Args: []Arg{{Name: ArgCardnumber}, {Name: ArgAmount, Parse: parseAmount}},
		build: func(v []string) Command {
			return Payment{Cardnumber: v[0], Amount: v[1]}
		},
	},
)

func (t *Table) Shape(kind Kind) (Shape, bool) {
	s, ok := t.shapes[kind]
	return s, ok
}

// Decode parses one command line. Arguments beyond the shape are ignored.
func (t *Table) Decode(line string) (rec Record, err error) {
	line = trimEOL(line)
	parts := strings.Split(line, "\t")
	ts := strings.Fields(parts[0])
	if len(ts) != 3 {
		return rec, fmt.Errorf("%w: %q needs date, time and id", ErrMalformedTimestamp, parts[0])
	}
	rec.Timestamp = Timestamp{Date: ts[0], Time: ts[1], ID: ts[2]}
	if len(parts) < 2 {
		return rec, fmt.Errorf("%w: missing command", ErrUnknownCommand)
	}
	shape, ok := t.shapes[Kind(parts[1])]
	if !ok {
		return rec, fmt.Errorf("%w: %q", ErrUnknownCommand, parts[1])
	}
	args := parts[2:]
	if len(args) < len(shape.Args) {
		return rec, fmt.Errorf("%w: %s needs %d arguments, got %d", ErrArgumentCountMismatch, shape.Kind, len(shape.Args), len(args))
	}
	values := make([]string, len(shape.Args))
	for idx, arg := range shape.Args {
		values[idx] = args[idx]
		if arg.Parse == nil {
			continue
		}
		err = arg.Parse(args[idx])
		if err != nil {
			return rec, fmt.Errorf("%w: %s %q: %s", ErrInvalidArgument, arg.Name, args[idx], err.Error())
		}
	}
	rec.Command = shape.build(values)
	return rec, nil
}

// Encode is the inverse of Decode.
func (t *Table) Encode(rec Record) string {
	fields := []string{rec.Timestamp.String(), string(rec.Kind())}
	if rec.Command != nil {
		fields = append(fields, rec.Command.Values()...)
	}
	return strings.Join(fields, "\t")
}

func DecodeCommand(line string) (Record, error) {
	return DefaultTable.Decode(line)
}

func EncodeCommand(rec Record) string {
	return DefaultTable.Encode(rec)
}

var amountPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ParseAmount accepts plain decimal text only, no exponent, hex, NaN or Inf.
func ParseAmount(s string) (float64, error) {
	if !amountPattern.MatchString(s) {
		return 0, fmt.Errorf("%q is not a decimal amount", s)
	}
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return amount, nil
}

func parseAmount(s string) error {
	_, err := ParseAmount(s)
	return err
}
