// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mealctlgo/internal/aws"
	"github.com/staranto/mealctlgo/internal/cache"
	"github.com/staranto/mealctlgo/internal/config"
	"github.com/staranto/mealctlgo/internal/favorites"
	"github.com/staranto/mealctlgo/internal/mealdb"
	"github.com/staranto/mealctlgo/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the mealctl
	// subcommand and also represents the namespace key to be used when retrieving
	// config values. arg[1] could be -h/--help, so ignore it if it appears to be
	// a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, _ := config.Load(ns)

	store, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		Cache:       store,
		Client:      mealdb.NewClient(apiBase()),
		Favorites:   favorites.New(filepath.Join(baseDir(), "favorites.json")),
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "mealctl",
		Usage: "Recipe lookup with a durable local cache",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "mealctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		BrowseCommandBuilder(app, meta),
		CacheCommandBuilder(app, meta),
		CategoriesCommandBuilder(app, meta),
		FavCommandBuilder(app, meta),
		IngredientCommandBuilder(app, meta),
		RandomCommandBuilder(app, meta),
		SearchCommandBuilder(app, meta),
		ShowCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}

// initStore builds the cache store from config, ensures its medium exists,
// and vacuums expired entries once per process.
func initStore(ctx context.Context) (*cache.Store, error) {
	ttl, _ := config.GetDuration("cache.ttl", cache.DefaultTTL)

	opts := []cache.Option{cache.WithTTL(ttl)}

	// An S3 bucket in config moves the whole snapshot off the local disk.
	if bucket, err := config.GetString("cache.s3.bucket"); err == nil && bucket != "" {
		key, _ := config.GetString("cache.s3.key", "mealctl/cache.json")

		var awsOpts []aws.Option
		if profile, err := config.GetString("cache.s3.profile"); err == nil && profile != "" {
			awsOpts = append(awsOpts, aws.WithProfile(profile))
		}
		if region, err := config.GetString("cache.s3.region"); err == nil && region != "" {
			awsOpts = append(awsOpts, aws.WithRegion(region))
		}

		medium, err := cache.NewS3Medium(ctx, bucket, key, awsOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to init S3 cache medium: %w", err)
		}
		opts = append(opts, cache.WithMedium(medium))
	}

	store := cache.New(filepath.Join(baseDir(), "cache.json"), opts...)
	if err := store.Init(ctx); err != nil {
		return nil, err
	}

	// Startup vacuum. Best-effort: a failed save here never blocks a query.
	if evicted, err := store.EvictExpired(ctx); err != nil {
		log.Warnf("startup vacuum failed: %v", err)
	} else if evicted > 0 {
		log.Debugf("startup vacuum evicted %d entries", evicted)
	}

	return store, nil
}

// baseDir resolves where mealctl keeps its local files, honoring
// MEALCTL_CACHE_DIR and the cache.path config key before falling back to
// the platform cache dir.
func baseDir() string {
	if dir := os.Getenv("MEALCTL_CACHE_DIR"); dir != "" {
		return dir
	}
	if dir, err := config.GetString("cache.path"); err == nil && dir != "" {
		return dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "mealctl")
}

// apiBase resolves the recipe API base URL from MEALCTL_API or config.
func apiBase() string {
	if api := os.Getenv("MEALCTL_API"); api != "" {
		return api
	}
	api, _ := config.GetString("api", mealdb.DefaultBaseURL)
	return api
}
