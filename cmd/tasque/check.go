package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"

	"tasque/internal/runner"
)

func check(ctx *cli.Context) error {
	_, cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	svc, err := runner.New(cfg, runner.Options{})
	if err != nil {
		return err
	}

	loc, _ := cfg.Location()
	fmt.Printf("%s: ok (%d tasks, %d enabled, tz %s)\n", configPath, len(cfg.Tasks), len(cfg.EnabledTasks()), loc)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tNEXT\tSCHEDULES")
	for _, st := range svc.Snapshot() {
		nextAt := "never"
		if st.HasNext {
			nextAt = st.Next.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", st.ID, nextAt, strings.Join(st.Schedules, " | "))
	}
	return tw.Flush()
}
