package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mksite/cmd/mksite/commands"
	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("mksite"),
		kong.Description("Static site builder driven by Go templates."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = kctx.Run(&commands.Global{Logger: slog.Default(), Out: os.Stdout}, cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
