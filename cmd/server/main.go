package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/moontravel/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Version kong.VersionFlag
		Serve   commands.ServeCmd   `cmd:"" default:"1" help:"Start the HTTP API server"`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply database migrations"`
		Seed    commands.SeedCmd    `cmd:"" help:"Sign up identities from a YAML file"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("moontravel"),
		kong.Description("MoonTravel booking backend"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
