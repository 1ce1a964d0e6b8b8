// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mealctlgo/internal/meta"
	"github.com/staranto/mealctlgo/internal/output"
)

// cacheStatsCommandAction summarizes the cache snapshot: where it lives, how
// many entries it holds, how many have gone stale, and the age spread.
func cacheStatsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	st := m.Cache.Stats(ctx)

	fmt.Printf("Location: %s\n", st.Location)
	fmt.Printf("Entries:  %d (%d stale)\n", st.Entries, st.Stale)
	fmt.Printf("Size:     %s\n", humanize.Bytes(uint64(st.Bytes))) //nolint:gosec
	if st.Entries > 0 {
		fmt.Printf("Oldest:   %s\n", humanize.Time(st.Oldest))
		fmt.Printf("Newest:   %s\n", humanize.Time(st.Newest))
	}

	if cmd.Bool("keys") {
		for _, key := range m.Cache.Keys(ctx) {
			fmt.Printf("  %s\n", key)
		}
	}

	return nil
}

// cacheVacuumCommandAction physically removes expired entries. Staleness
// already hides them from reads; this just reclaims the bytes.
func cacheVacuumCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	evicted, err := m.Cache.EvictExpired(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Evicted %d expired entries.\n", evicted)
	return nil
}

// cachePurgeCommandAction drops the whole snapshot.
func cachePurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	if !cmd.Bool("force") {
		return errors.New("refusing to purge without --force")
	}

	if err := m.Cache.Purge(ctx); err != nil {
		return err
	}

	fmt.Println("Cache purged.")
	return nil
}

// cacheDiffCommandAction fetches a fresh copy of one cached key without
// touching the snapshot and prints what a refresh would change.
func cacheDiffCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	key := cmd.Args().First()
	if key == "" {
		return errors.New("cache key required")
	}

	cached, ok := m.Cache.GetStale(ctx, key)
	if !ok {
		return fmt.Errorf("no cached entry for %q", key)
	}

	fetch, err := FetchForKey(m, key)
	if err != nil {
		return err
	}

	fresh, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch for %q failed: %w", key, err)
	}

	diff, err := output.RenderDiff(cached, fresh, cmd.Bool("color"))
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Println("Cached entry is identical to the live API response.")
		return nil
	}

	fmt.Print(diff)
	return nil
}

// CacheCommandBuilder constructs the cli.Command definition for the "cache"
// command and its stats/vacuum/purge/diff subcommands.
func CacheCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	md := map[string]any{
		"meta": meta,
	}

	return &cli.Command{
		Name:      "cache",
		Usage:     "inspect and maintain the recipe cache",
		UsageText: `mealctl cache <stats|vacuum|purge|diff> [options]`,
		Metadata:  md,
		Commands: []*cli.Command{
			{
				Name:     "stats",
				Usage:    "summarize the cache snapshot",
				Metadata: md,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "keys",
						Aliases:     []string{"k"},
						Usage:       "list cached keys",
						HideDefault: true,
					},
				},
				Action: cacheStatsCommandAction,
			},
			{
				Name:     "vacuum",
				Usage:    "remove expired entries from the snapshot",
				Metadata: md,
				Action:   cacheVacuumCommandAction,
			},
			{
				Name:     "purge",
				Usage:    "drop every cached entry",
				Metadata: md,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "force",
						Usage:       "confirm the purge",
						HideDefault: true,
					},
				},
				Action: cachePurgeCommandAction,
			},
			{
				Name:      "diff",
				Usage:     "compare a cached entry against the live API",
				UsageText: `mealctl cache diff <key>`,
				Metadata:  md,
				Flags: []cli.Flag{
					&cli.BoolWithInverseFlag{
						Name:    "color",
						Aliases: []string{"c"},
						Usage:   "enable colored diff output",
					},
				},
				Action: cacheDiffCommandAction,
			},
		},
	}
}
