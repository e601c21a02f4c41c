package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dutchcoders/text4shell-scanner/cmd"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func main() {
	cli.ErrWriter = color.Output

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)

	app := cmd.New()
	err := app.RunContext(ctx, os.Args)
	cancel()

	if err != nil {
		fmt.Fprintln(cli.ErrWriter, color.RedString("[!] %s", err.Error()))
		os.Exit(1)
	}
}
