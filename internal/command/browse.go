// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mealctlgo/internal/mealdb"
	"github.com/staranto/mealctlgo/internal/meta"
	"github.com/staranto/mealctlgo/internal/output"
	"github.com/staranto/mealctlgo/internal/tui"
)

// browseCommandAction is the action handler for the "browse" subcommand. It
// runs a search, puts the hits in an interactive picker, and shows the full
// detail of whichever recipe is chosen.
func browseCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "browse") {
		return nil
	}

	term := cmd.Args().First()
	if term == "" {
		return errors.New("search term required")
	}

	raw, err := m.Cache.GetOrFetch(ctx, "search:"+term,
		func(ctx context.Context) (json.RawMessage, error) {
			return ClientFor(cmd, m).SearchByName(ctx, term)
		},
		cmd.Bool("refresh"))
	if err != nil {
		return err
	}

	hits := mealdb.Meals(raw)
	if len(hits) == 0 {
		fmt.Fprintf(os.Stderr, "No recipes match %q.\n", term)
		return nil
	}

	choice, err := tui.Pick(fmt.Sprintf("Recipes matching %q", term), hits)
	if err != nil {
		return err
	}
	if choice == nil {
		return nil
	}

	detail, err := m.Cache.GetOrFetch(ctx, "lookup:"+choice.ID,
		func(ctx context.Context) (json.RawMessage, error) {
			return ClientFor(cmd, m).LookupByID(ctx, choice.ID)
		},
		cmd.Bool("refresh"))
	if err != nil {
		return err
	}

	al := BuildAttrs(cmd,
		"idMeal:id", "strMeal:name", "strCategory:category",
		"strArea:area", "strYoutube:video")
	output.SliceDiceSpit(detail, al, cmd, "meals", os.Stdout)

	if cmd.String("output") == "text" {
		for _, ing := range mealdb.Ingredients(detail) {
			fmt.Fprintf(os.Stdout, "  - %s\n", ing)
		}
	}

	return nil
}

// BrowseCommandBuilder constructs the cli.Command definition for the
// "browse" command, wiring flags, metadata, and the action/validator
// handlers.
func BrowseCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "browse",
		Usage:     "pick a recipe from search results interactively",
		UsageText: `mealctl browse <term> [options]`,
		Flags: []cli.Flag{
			NewAPIFlag("browse", meta.Config.Source),
		},
		Action:    browseCommandAction,
		Meta:      meta,
	}).Build()
}
