// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mealctlgo/internal/attrs"
	"github.com/staranto/mealctlgo/internal/cache"
	"github.com/staranto/mealctlgo/internal/mealdb"
	"github.com/staranto/mealctlgo/internal/meta"
	"github.com/staranto/mealctlgo/internal/output"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr mealctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "mealctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// ClientFor returns the API client for a command invocation, honoring a
// per-command --api override of the base URL.
func ClientFor(cmd *cli.Command, m meta.Meta) *mealdb.Client {
	if api := cmd.String("api"); api != "" && (m.Client == nil || api != m.Client.BaseURL) {
		return mealdb.NewClient(api)
	}
	return m.Client
}

// QueryCommandBuilder is a helper that constructs a cli.Command for query
// subcommands (search, show, random, ingredient, categories, browse) using a
// consistent pattern. It accepts the command name, usage text, optional
// UsageText, custom flags, the action handler, and meta. The builder
// automatically wires metadata, adds the tldr/refresh flags, applies global
// flags, and sets up validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			tldrFlag,
			refreshFlag,
		}, NewGlobalFlags(qcb.Name)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner encapsulates the common query action pattern for the
// cached query subcommands. It handles GetMeta, the tldr short-circuit,
// BuildAttrs, the cached fetch, and output emission, with the API call
// provided by FetchFn and the cache key by CacheKeyFn.
type QueryActionRunner struct {
	CommandName  string
	DefaultAttrs []string
	Parent       string
	CacheKeyFn   func(*cli.Command) (string, error)
	FetchFn      func(context.Context, *cli.Command) (json.RawMessage, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}

	al := BuildAttrs(cmd, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", al)

	key, err := qar.CacheKeyFn(cmd)
	if err != nil {
		return err
	}

	raw, err := m.Cache.GetOrFetch(ctx, key,
		func(ctx context.Context) (json.RawMessage, error) {
			return qar.FetchFn(ctx, cmd)
		},
		cmd.Bool("refresh"))
	if err != nil {
		return err
	}

	output.SliceDiceSpit(raw, al, cmd, qar.Parent, os.Stdout)
	return nil
}

// FetchForKey re-derives the API call for a previously cached key. Keys are
// "<kind>:<arg>" (or a bare kind for argument-less endpoints), matching what
// the query commands store.
func FetchForKey(m meta.Meta, key string) (cache.FetchFunc, error) {
	kind, arg, _ := strings.Cut(key, ":")
	switch kind {
	case "search":
		return func(ctx context.Context) (json.RawMessage, error) {
			return m.Client.SearchByName(ctx, arg)
		}, nil
	case "lookup":
		return func(ctx context.Context) (json.RawMessage, error) {
			return m.Client.LookupByID(ctx, arg)
		}, nil
	case "ingredient":
		return func(ctx context.Context) (json.RawMessage, error) {
			return m.Client.FilterByIngredient(ctx, arg)
		}, nil
	case "categories":
		return func(ctx context.Context) (json.RawMessage, error) {
			return m.Client.Categories(ctx)
		}, nil
	case "random":
		return func(ctx context.Context) (json.RawMessage, error) {
			return m.Client.Random(ctx)
		}, nil
	}
	return nil, fmt.Errorf("unrecognized cache key %q", key)
}
