package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

var version = "dev"

func Execute(args []string) error {
	app := cli.App{
		Name:      "tasque",
		Usage:     "fires named tasks on calendar schedules",
		UsageText: "tasque <command> [arguments...]",
		Version:   version,
		Commands: []cli.Command{
			{
				Name:   "run",
				Usage:  "run the scheduler until interrupted",
				Action: run,
				Flags:  runFlags,
			},
			{
				Name:      "next",
				Aliases:   []string{"n"},
				Usage:     "print the upcoming occurrences of a cron expression",
				ArgsUsage: "<cron expression>",
				Action:    next,
				Flags:     nextFlags,
			},
			{
				Name:   "check",
				Usage:  "validate a config file and show when each task fires next",
				Action: check,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:    "history",
				Aliases: []string{"h"},
				Usage:   "list recently fired tasks from the journal",
				Action:  history,
				Flags:   historyFlags,
			},
		},
	}
	return app.Run(args)
}

func main() {
	if err := Execute(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tasque: %s\n", err)
		os.Exit(1)
	}
}
