// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/staranto/mealctlgo/internal/meta"
)

// searchCommandAction is the action handler for the "search" subcommand. It
// searches recipes by name, serving from the cache when fresh and emitting
// output per common flags.
func searchCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "search",
		DefaultAttrs: []string{"idMeal:id", "strMeal:name", "strCategory:category", "strArea:area"},
		Parent:       "meals",
		CacheKeyFn: func(cmd *cli.Command) (string, error) {
			term := cmd.Args().First()
			if term == "" {
				return "", errors.New("search term required")
			}
			return "search:" + term, nil
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command) (json.RawMessage, error) {
			return ClientFor(cmd, GetMeta(cmd)).SearchByName(ctx, cmd.Args().First())
		},
	}
	return runner.Run(ctx, cmd)
}

// SearchCommandBuilder constructs the cli.Command definition for the "search"
// command, wiring flags, metadata, and the action/validator handlers.
func SearchCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "search",
		Usage:     "search recipes by name",
		UsageText: `mealctl search <term> [options]`,
		Flags: []cli.Flag{
			NewAPIFlag("search", meta.Config.Source),
		},
		Action:    searchCommandAction,
		Meta:      meta,
	}).Build()
}
