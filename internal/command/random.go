// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mealctlgo/internal/meta"
	"github.com/staranto/mealctlgo/internal/output"
)

// randomCommandAction is the action handler for the "random" subcommand. A
// random pick is only random if it is refetched every time, so the cache is
// always bypassed; the cached copy still serves as the offline fallback.
func randomCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "random") {
		return nil
	}

	al := BuildAttrs(cmd,
		"idMeal:id", "strMeal:name", "strCategory:category", "strArea:area")

	raw, err := m.Cache.GetOrFetch(ctx, "random",
		func(ctx context.Context) (json.RawMessage, error) {
			return ClientFor(cmd, m).Random(ctx)
		},
		true)
	if err != nil {
		return err
	}

	output.SliceDiceSpit(raw, al, cmd, "meals", os.Stdout)
	return nil
}

// RandomCommandBuilder constructs the cli.Command definition for the
// "random" command, wiring flags, metadata, and the action/validator
// handlers.
func RandomCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "random",
		Usage:     "fetch one random recipe",
		UsageText: `mealctl random [options]`,
		Flags: []cli.Flag{
			NewAPIFlag("random", meta.Config.Source),
		},
		Action:    randomCommandAction,
		Meta:      meta,
	}).Build()
}
