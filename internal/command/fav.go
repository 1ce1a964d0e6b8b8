// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mealctlgo/internal/favorites"
	"github.com/staranto/mealctlgo/internal/meta"
	"github.com/staranto/mealctlgo/internal/output"
)

// favLsCommandAction lists saved favorites through the common output
// pipeline, so --output/--filter/--sort work the same as for query commands.
func favLsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	favs := m.Favorites.List()
	rows := make([]map[string]any, 0, len(favs))
	for _, fav := range favs {
		rows = append(rows, map[string]any{
			"id":    fav.ID,
			"name":  fav.Name,
			"added": humanize.Time(fav.Added()),
		})
	}

	raw, err := json.Marshal(map[string]any{"favorites": rows})
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}

	al := BuildAttrs(cmd, "id", "name", "added")
	output.SliceDiceSpit(raw, al, cmd, "favorites", os.Stdout)
	return nil
}

// favAddCommandAction saves a recipe id to the favorites list. The recipe is
// looked up first (cache permitting) so the stored entry carries its name.
func favAddCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id := cmd.Args().First()
	if id == "" {
		return errors.New("recipe id required")
	}

	raw, err := m.Cache.GetOrFetch(ctx, "lookup:"+id,
		func(ctx context.Context) (json.RawMessage, error) {
			return m.Client.LookupByID(ctx, id)
		},
		cmd.Bool("refresh"))
	if err != nil {
		return err
	}

	name := gjson.GetBytes(raw, "meals.0.strMeal").String()
	if name == "" {
		return fmt.Errorf("no recipe with id %q", id)
	}

	added, err := m.Favorites.Add(favorites.Favorite{ID: id, Name: name})
	if err != nil {
		return err
	}
	if !added {
		fmt.Printf("%s (%s) is already a favorite.\n", name, id)
		return nil
	}

	fmt.Printf("Added %s (%s).\n", name, id)
	return nil
}

// favRmCommandAction removes a recipe id from the favorites list.
func favRmCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	id := cmd.Args().First()
	if id == "" {
		return errors.New("recipe id required")
	}

	removed, err := m.Favorites.Remove(id)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Printf("%s is not a favorite.\n", id)
		return nil
	}

	fmt.Printf("Removed %s.\n", id)
	return nil
}

// FavCommandBuilder constructs the cli.Command definition for the "fav"
// command and its ls/add/rm subcommands.
func FavCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	md := map[string]any{
		"meta": meta,
	}

	return &cli.Command{
		Name:      "fav",
		Usage:     "manage the favorites list",
		UsageText: `mealctl fav <ls|add|rm> [options]`,
		Metadata:  md,
		Commands: []*cli.Command{
			{
				Name:     "ls",
				Usage:    "list favorites",
				Metadata: md,
				Flags:    NewGlobalFlags("fav"),
				Action:   favLsCommandAction,
			},
			{
				Name:      "add",
				Usage:     "add a recipe to favorites",
				UsageText: `mealctl fav add <id>`,
				Metadata:  md,
				Flags:     []cli.Flag{refreshFlag},
				Action:    favAddCommandAction,
			},
			{
				Name:      "rm",
				Usage:     "remove a recipe from favorites",
				UsageText: `mealctl fav rm <id>`,
				Metadata:  md,
				Action:    favRmCommandAction,
			},
		},
	}
}
