package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/apidocbuilder/cmd/apidocbuilder/commands"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("apidocbuilder"),
		kong.Description("Build API reference documentation for the Hack runtime and standard libraries."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := parser.Run(&commands.Global{Logger: slog.Default()})
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
