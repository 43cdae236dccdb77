package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/programmfabrik/golib"

	"github.com/programmfabrik/easydb-migration-tools/offlinecirc/cmd"
)

var cli struct {
	Export cmd.Export `cmd:"" help:"split a combined circulation log into one KOC file per branch"`
	Import cmd.Import `cmd:"" help:"import KOC files as pending operations and process them"`
}

func main() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		golib.Pln("unable to load .env: %s", err.Error())
	}

	ctx := kong.Parse(&cli,
		kong.Vars{},
		kong.Description(`Handle offline circulation (KOC) files`),
		kong.Configuration(cmd.YAMLConfig, "koc.yml", "~/.config/koc.yml"),
		// usage errors and --help exit with 1
		kong.Exit(func(int) { os.Exit(1) }),
	)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
