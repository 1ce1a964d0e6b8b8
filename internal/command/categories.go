// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/staranto/mealctlgo/internal/meta"
)

// categoriesCommandAction is the action handler for the "categories"
// subcommand. Category descriptions run long, so the default transform
// truncates them.
func categoriesCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName: "categories",
		DefaultAttrs: []string{
			"idCategory:id",
			"strCategory:name",
			"strCategoryDescription:description:60",
		},
		Parent: "categories",
		CacheKeyFn: func(cmd *cli.Command) (string, error) {
			return "categories", nil
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command) (json.RawMessage, error) {
			return ClientFor(cmd, GetMeta(cmd)).Categories(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

// CategoriesCommandBuilder constructs the cli.Command definition for the
// "categories" command, wiring flags, metadata, and the action/validator
// handlers.
func CategoriesCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "categories",
		Usage:     "list recipe categories",
		UsageText: `mealctl categories [options]`,
		Flags: []cli.Flag{
			NewAPIFlag("categories", meta.Config.Source),
		},
		Action:    categoriesCommandAction,
		Meta:      meta,
	}).Build()
}
