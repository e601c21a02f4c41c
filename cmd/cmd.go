package cmd

import (
	"fmt"
	"os"

	scanner "github.com/dutchcoders/text4shell-scanner/app"
	build "github.com/dutchcoders/text4shell-scanner/build"
	"github.com/fatih/color"
	logging "github.com/op/go-logging"

	cli "github.com/urfave/cli/v2"
)

var log = logging.MustGetLogger("text4shell/cmd")

var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{level:.4s}%{color:reset} %{message}`,
)

var globalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:  "quiet",
		Usage: "suppress error and warning messages, diagnoses are always printed",
	},
	&cli.StringSliceFlag{
		Name:  "exclude",
		Usage: "exclude the following directories",
		Value: cli.NewStringSlice(),
	},
	&cli.StringSliceFlag{
		Name:  "exclude-glob",
		Usage: "exclude the following file paths (glob)",
		Value: cli.NewStringSlice(),
	},
	&cli.IntFlag{
		Name:  "max-depth",
		Usage: "maximum archive nesting depth, 0 is unlimited",
		Value: 0,
	},
	&cli.StringFlag{
		Name:  "max-entry-size",
		Usage: "maximum size of an archive entry read into memory (e.g. 512MB), empty is unlimited",
	},
	&cli.BoolFlag{
		Name:  "progress",
		Usage: "show a live progress line",
	},
	&cli.BoolFlag{
		Name:  "disable-color",
		Usage: "disable color output",
	},
	&cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable verbose mode",
	},
	&cli.BoolFlag{
		Name:  "debug",
		Usage: "enable debug mode",
	},
}

type Cmd struct {
	*cli.App
}

// parseTargetArgs handles "<root> [-quiet] [-exclude <dir>...]", where the
// options follow the target and aren't seen by the flag parser.
func parseTargetArgs(args []string) (target string, quiet bool, exclude []string, err error) {
	if len(args) == 0 {
		return "", false, nil, fmt.Errorf("no target specified")
	}

	target, rest := args[0], args[1:]

	if len(rest) > 0 && isFlag(rest[0], "quiet") {
		quiet = true
		rest = rest[1:]
	}

	if len(rest) == 0 {
		return target, quiet, nil, nil
	}

	if !isFlag(rest[0], "exclude") {
		return "", false, nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	return target, quiet, rest[1:], nil
}

func isFlag(arg, name string) bool {
	return arg == "-"+name || arg == "--"+name
}

func usageError(c *cli.Context, msg string, err error) error {
	cli.ShowAppHelp(c)
	return cli.Exit(color.RedString("[!] %s: %s", msg, err.Error()), 1)
}

// commonOptions converts the flags shared by all scan commands.
func commonOptions(c *cli.Context, quiet bool) ([]scanner.OptionFn, error) {
	options := []scanner.OptionFn{}

	if fn, err := scanner.Output(c.App.Writer); err != nil {
		return nil, err
	} else {
		options = append(options, fn)
	}

	if !quiet && !c.Bool("quiet") {
	} else if fn, err := scanner.Quiet(); err != nil {
	} else {
		options = append(options, fn)
	}

	if !c.Bool("progress") {
	} else if fn, err := scanner.Progress(); err != nil {
	} else {
		options = append(options, fn)
	}

	if fn, err := scanner.MaxDepth(c.Int("max-depth")); err != nil {
		return nil, usageError(c, "Could not set max depth", err)
	} else {
		options = append(options, fn)
	}

	if fn, err := scanner.MaxEntrySize(c.String("max-entry-size")); err != nil {
		return nil, usageError(c, "Could not set max entry size", err)
	} else {
		options = append(options, fn)
	}

	return options, nil
}

func ScanAction(c *cli.Context) error {
	target, quiet, exclude, err := parseTargetArgs(c.Args().Slice())
	if err != nil {
		return usageError(c, "Could not set target", err)
	}

	options, err := commonOptions(c, quiet)
	if err != nil {
		return err
	}

	if fn, err := scanner.TargetPath(target); err != nil {
		return usageError(c, "Could not set target", err)
	} else {
		options = append(options, fn)
	}

	if exclude = append(c.StringSlice("exclude"), exclude...); len(exclude) == 0 {
	} else if fn, err := scanner.ExcludeList(exclude); err != nil {
		return usageError(c, "Could not set exclude list", err)
	} else {
		options = append(options, fn)
	}

	if patterns := c.StringSlice("exclude-glob"); len(patterns) == 0 {
	} else if fn, err := scanner.ExcludeGlobs(patterns); err != nil {
		return usageError(c, "Could not set exclude patterns", err)
	} else {
		options = append(options, fn)
	}

	b, err := scanner.New(options...)
	if err != nil {
		return cli.Exit(color.RedString("[!] Error: %s", err.Error()), 1)
	}

	if err := b.Scan(c.Context); err != nil {
		return cli.Exit(color.RedString("[!] Error scanning: %s", err.Error()), 1)
	}

	return nil
}

func ScanImageAction(c *cli.Context) error {
	options, err := commonOptions(c, false)
	if err != nil {
		return err
	}

	if !c.Bool("all") {
	} else if fn, err := scanner.AllImages(); err != nil {
	} else {
		options = append(options, fn)
	}

	if args := c.Args(); !args.Present() && !c.Bool("all") {
		return usageError(c, "Could not set images", fmt.Errorf("no images specified"))
	} else if fn, err := scanner.Images(args.Slice()); err != nil {
		return usageError(c, "Could not set images", err)
	} else {
		options = append(options, fn)
	}

	b, err := scanner.New(options...)
	if err != nil {
		return cli.Exit(color.RedString("[!] Error: %s", err.Error()), 1)
	}

	if err := b.ScanImage(c.Context); err != nil {
		return cli.Exit(color.RedString("[!] Error scanning images: %s", err.Error()), 1)
	}

	return nil
}

func setupLogging(c *cli.Context) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))

	switch {
	case c.Bool("debug"):
		leveled.SetLevel(logging.DEBUG, "")
	case c.Bool("verbose"):
		leveled.SetLevel(logging.INFO, "")
	default:
		leveled.SetLevel(logging.WARNING, "")
	}

	logging.SetBackend(leveled)
}

func New() *Cmd {
	app := cli.NewApp()
	app.Name = "text4shell-scanner"
	app.Usage = "detect commons-text StringLookupFactory versions in (nested) archives"
	app.UsageText = "text4shell-scanner <root_folder> [-quiet] [-exclude <folder1> <folder2> ...]\n" +
		"   text4shell-scanner <archive_file> [-quiet]\n" +
		"   text4shell-scanner scan-image [--all] <image>..."
	app.Description = `This application will scan recursively through directories and archives, including archives nested in archives, to detect commons-text StringLookupFactory.class files and the version range they were built from.`
	app.Flags = globalFlags
	app.Writer = color.Output
	app.Commands = []*cli.Command{
		{
			Name:   "scan-image",
			Usage:  "scan local container images",
			Action: ScanImageAction,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "all",
					Usage: "scan all local images",
				},
			},
		},
	}

	app.Version = fmt.Sprintf("%s (build on %s)", build.ReleaseTag, build.BuildDate)
	app.Before = func(c *cli.Context) error {
		fmt.Fprintln(c.App.Writer, "text4shell-scanner")
		fmt.Fprintln(c.App.Writer, "--------------------------------------")

		color.NoColor = color.NoColor || c.Bool("disable-color")

		setupLogging(c)

		log.Debugf("version %s", app.Version)
		return nil
	}

	app.Action = ScanAction
	return &Cmd{
		App: app,
	}
}
