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

// ingredientCommandAction is the action handler for the "ingredient"
// subcommand. The filter endpoint returns a slimmer row shape than search
// (no category/area), so the defaults differ.
func ingredientCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "ingredient",
		DefaultAttrs: []string{"idMeal:id", "strMeal:name"},
		Parent:       "meals",
		CacheKeyFn: func(cmd *cli.Command) (string, error) {
			ing := cmd.Args().First()
			if ing == "" {
				return "", errors.New("ingredient required")
			}
			return "ingredient:" + ing, nil
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command) (json.RawMessage, error) {
			return ClientFor(cmd, GetMeta(cmd)).FilterByIngredient(ctx, cmd.Args().First())
		},
	}
	return runner.Run(ctx, cmd)
}

// IngredientCommandBuilder constructs the cli.Command definition for the
// "ingredient" command, wiring flags, metadata, and the action/validator
// handlers.
func IngredientCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "ingredient",
		Usage:     "list recipes using an ingredient",
		UsageText: `mealctl ingredient <name> [options]`,
		Flags: []cli.Flag{
			NewAPIFlag("ingredient", meta.Config.Source),
		},
		Action:    ingredientCommandAction,
		Meta:      meta,
	}).Build()
}
