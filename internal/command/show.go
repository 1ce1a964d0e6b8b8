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
)

// showCommandAction is the action handler for the "show" subcommand. It
// fetches the full recipe detail for an id and renders it along with the
// flattened ingredient list.
func showCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "show") {
		return nil
	}

	id := cmd.Args().First()
	if id == "" {
		return errors.New("recipe id required")
	}

	al := BuildAttrs(cmd,
		"idMeal:id", "strMeal:name", "strCategory:category",
		"strArea:area", "strYoutube:video")

	raw, err := m.Cache.GetOrFetch(ctx, "lookup:"+id,
		func(ctx context.Context) (json.RawMessage, error) {
			return ClientFor(cmd, m).LookupByID(ctx, id)
		},
		cmd.Bool("refresh"))
	if err != nil {
		return err
	}

	output.SliceDiceSpit(raw, al, cmd, "meals", os.Stdout)

	// The per-position ingredient/measure pairs are awkward in the flag-driven
	// pipeline, so text output gets them as a flat list after the table.
	if cmd.String("output") == "text" {
		for _, ing := range mealdb.Ingredients(raw) {
			fmt.Fprintf(os.Stdout, "  - %s\n", ing)
		}
	}

	return nil
}

// ShowCommandBuilder constructs the cli.Command definition for the "show"
// command, wiring flags, metadata, and the action/validator handlers.
func ShowCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "show",
		Usage:     "show the full detail of one recipe",
		UsageText: `mealctl show <id> [options]`,
		Flags: []cli.Flag{
			NewAPIFlag("show", meta.Config.Source),
		},
		Action:    showCommandAction,
		Meta:      meta,
	}).Build()
}
