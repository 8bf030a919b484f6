package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/cloudconsole/cmd/console/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Users     commands.UsersCmd     `cmd:"" help:"List users"`
		Orgs      commands.OrgsCmd      `cmd:"" help:"List organizations"`
		Vpcs      commands.VpcsCmd      `cmd:"" help:"List VPCs"`
		VpcSet    commands.VpcSetCmd    `cmd:"" name:"vpc-set" help:"Change a field of a VPC and save it"`
		VpcCreate commands.VpcCreateCmd `cmd:"" name:"vpc-create" help:"Create a VPC"`
		VpcRm     commands.VpcRmCmd     `cmd:"" name:"vpc-rm" help:"Delete a VPC"`

		ServerURL string `help:"Console API server URL" default:"http://localhost:8080" env:"CLOUDCONSOLE_SERVER_URL"`
		CacheDir  string `help:"Directory for cached API responses, empty keeps them in memory" default:"" env:"CLOUDCONSOLE_CACHE_DIR"`
		Tracing   bool   `help:"Enable tracing of API requests" default:"false" env:"CLOUDCONSOLE_TRACING"`
		Debug     bool   `help:"Enable debug mode."`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:     cli.Debug,
		Version:   version,
		ServerURL: cli.ServerURL,
		CacheDir:  cli.CacheDir,
		Tracing:   cli.Tracing,
	})
	cmd.FatalIfErrorf(err)
}
