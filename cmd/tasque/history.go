package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"

	"tasque/pkg/logx"
)

var (
	historyLimit int

	historyFlags = []cli.Flag{
		configFlag,
		cli.IntFlag{
			Name:        "limit, l",
			Value:       20,
			Usage:       "maximum number of records to list",
			Destination: &historyLimit,
		},
	}
)

func history(ctx *cli.Context) error {
	_, cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	store, err := openHistory(cfg, logx.NewConsole("warn"))
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("history is disabled in this config")
	}
	defer store.Close()

	recs, err := store.Recent(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no fires recorded")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DUE\tTASK\tLAG\tSESSION")
	for _, r := range recs {
		lag := r.FiredAt.Sub(r.Due).Round(time.Millisecond)
		task := r.TaskID
		if r.Tied {
			task += " (tied)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Due.Format(time.RFC3339), task, lag, r.Session)
	}
	return tw.Flush()
}
