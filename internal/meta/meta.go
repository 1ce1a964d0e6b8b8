// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/mealctlgo/internal/cache"
	"github.com/staranto/mealctlgo/internal/config"
	"github.com/staranto/mealctlgo/internal/favorites"
	"github.com/staranto/mealctlgo/internal/mealdb"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args        []string
	Config      config.Type
	Context     context.Context
	Cache       *cache.Store
	Client      *mealdb.Client
	Favorites   *favorites.Store
	StartingDir string
}
