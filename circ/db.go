package circ

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/programmfabrik/golib"
	"github.com/programmfabrik/sqlpro"

	_ "embed"
)

//go:embed initdb.sql
var schemaSQL string

// primary key column put in place of --SERIAL-- in initdb.sql
var serialColumn = map[string]string{
	string(sqlpro.SQLITE3):  `"id" INTEGER PRIMARY KEY AUTOINCREMENT,`,
	string(sqlpro.POSTGRES): `"id" SERIAL PRIMARY KEY,`,
}

// Open connects to dsn, given as "sqlite3:<file.sqlite>" or
// "postgres:<conninfo>", and makes sure the schema exists.
func Open(ctx context.Context, dsn string) (*SQLStore, error) {
	driver, conn, found := strings.Cut(dsn, ":")
	if !found {
		return nil, fmt.Errorf("dsn %q malformed", dsn)
	}
	if _, ok := serialColumn[driver]; !ok {
		return nil, fmt.Errorf("dsn %q: unsupported driver %q", dsn, driver)
	}
	db, err := connect(ctx, driver, conn)
	if err != nil {
		return nil, fmt.Errorf("unable to open store %q: %w", dsn, err)
	}
	return &SQLStore{db: db}, nil
}

func connect(ctx context.Context, driver, conn string) (*sqlpro.DB, error) {
	db, err := sqlpro.Open(driver, conn)
	if err != nil {
		return nil, err
	}
	err = db.DB().PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping db: %w", err)
	}
	golib.Pln("connected to %s db %q", driver, conn)

	err = db.ExecContext(ctx, schemaFor(driver))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to apply schema: %w", err)
	}
	return db, nil
}

func schemaFor(driver string) string {
	return strings.ReplaceAll(schemaSQL, "--SERIAL--", serialColumn[driver])
}
