package circ

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/programmfabrik/golib"

	"github.com/programmfabrik/easydb-migration-tools/offlinecirc/koc"
)

// Verbosity levels.
const (
	Quiet    = 0
	Progress = 1
	RawLines = 2
	Dump     = 3
)

func logf(verbose, level int, format string, args ...any) {
	if verbose < level {
		return
	}
	golib.Pln(format, args...)
}

func dumpRecord(verbose int, rec koc.Record) {
	if verbose < Dump {
		return
	}
	s, err := jsoniter.ConfigFastest.MarshalToString(map[string]any{
		"timestamp": rec.Timestamp,
		"command":   rec.Kind(),
		"args":      rec.Args(),
	})
	if err != nil {
		golib.Pln("unable to dump record: %s", err.Error())
		return
	}
	golib.Pln("%s", s)
}
