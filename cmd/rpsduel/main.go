package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command. Set flags override the
// config file and the environment.
type Globals struct {
	Config   string `short:"c" default:"rpsduel.hcl" help:"Path to HCL configuration file"`
	EnvFile  string `default:".env" help:"Optional .env file with the API key"`
	LogLevel string `short:"l" help:"Log level: debug, info, warn or error (overrides config)"`
	Locale   string `help:"Language tag for labels and commentary, e.g. zh-TW or en (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for the opponent (optional)"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Play    PlayCmd          `cmd:"" default:"1" help:"Play in the terminal"`
	Serve   ServeCmd         `cmd:"" help:"Serve sessions over WebSocket"`
	Round   RoundCmd         `cmd:"" help:"Play a single round and print the result"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rpsduel"),
		kong.Description("Rock paper scissors against the computer, with commentary"),
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
