package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"

	"tasque/internal/config"
	"tasque/pkg/schedule"
)

var (
	nextCount int
	nextFrom  string
	nextTZ    string

	nextFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "count, n",
			Value:       5,
			Usage:       "number of occurrences to print",
			Destination: &nextCount,
		},
		cli.StringFlag{
			Name:        "from, f",
			Usage:       "RFC 3339 instant to start after (default: now)",
			Destination: &nextFrom,
		},
		cli.StringFlag{
			Name:        "tz",
			Usage:       "IANA timezone the expression is evaluated in (default: local)",
			Destination: &nextTZ,
		},
	}
)

func next(ctx *cli.Context) error {
	expr := strings.TrimSpace(strings.Join(ctx.Args(), " "))
	if expr == "" {
		return errors.New("no cron expression provided")
	}
	set, err := schedule.ParseCron(expr)
	if err != nil {
		return err
	}
	loc, err := (&config.Config{Timezone: nextTZ}).Location()
	if err != nil {
		return err
	}

	from := time.Now()
	if nextFrom != "" {
		if from, err = time.Parse(time.RFC3339, nextFrom); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	}

	for _, at := range upcoming(set, from.In(loc), nextCount) {
		fmt.Println(at.Format(time.RFC3339))
	}
	return nil
}

// upcoming lists up to n occurrences strictly after from.
func upcoming(set schedule.Set, from time.Time, n int) []time.Time {
	out := make([]time.Time, 0, max(n, 0))
	t := from.Truncate(time.Second).Add(time.Second)
	for len(out) < n {
		at, ok := set.NextOccurrence(t)
		if !ok {
			break
		}
		out = append(out, at)
		t = at.Add(time.Second)
	}
	return out
}
