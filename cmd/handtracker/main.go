package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Session SessionCmd       `cmd:"" help:"Manage sessions"`
	Hand    HandCmd          `cmd:"" help:"Record and inspect hands"`
	Enter   EnterCmd         `cmd:"" help:"Enter a hand interactively"`
	Serve   ServeCmd         `cmd:"" help:"Run the HTTP API"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("handtracker"),
		kong.Description("Record live poker hands action by action"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
