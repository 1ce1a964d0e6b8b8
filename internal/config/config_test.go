// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// setupTestConfig sets MEALCTL_CFG to point at a testdata file and resets
// the global Config so each case loads fresh.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	assert.NoError(t, err, "failed to get absolute path for test config")

	t.Setenv("MEALCTL_CFG", absPath)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		wantErr   bool
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "https://www.themealdb.com/api/json/v1/1", cfg.Data["api"])
				assert.Equal(t, "text", cfg.Data["output"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				cache, ok := cfg.Data["cache"].(map[string]interface{})
				assert.True(t, ok, "cache should be a map")
				assert.Equal(t, "24h", cache["ttl"])
				search, ok := cfg.Data["search"].(map[string]interface{})
				assert.True(t, ok, "search should be a map")
				assert.Equal(t, "json", search["output"])
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source, "should have a source path")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("MEALCTL_CFG", "/nonexistent/path/mealctl.yaml")
	Config = Type{}

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_CfgIsDirectory(t *testing.T) {
	t.Setenv("MEALCTL_CFG", "testdata")
	Config = Type{}

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "points to a directory")
}

func TestNamespacePrecedence(t *testing.T) {
	setupTestConfig(t, "nested.yaml")

	_, err := Load("search")
	assert.NoError(t, err)

	// Namespaced key wins over the global one.
	got, err := GetString("output")
	assert.NoError(t, err)
	assert.Equal(t, "json", got)

	// Fall through to the global key when the namespace has none.
	got, err = GetString("api")
	assert.NoError(t, err)
	assert.Equal(t, "https://www.themealdb.com/api/json/v1/1", got)
}

func TestGetters(t *testing.T) {
	setupTestConfig(t, "nested.yaml")
	_, err := Load()
	assert.NoError(t, err)

	t.Run("string default", func(t *testing.T) {
		got, err := GetString("no.such.key", "fallback")
		assert.NoError(t, err)
		assert.Equal(t, "fallback", got)
	})

	t.Run("int", func(t *testing.T) {
		got, err := GetInt("limit")
		assert.NoError(t, err)
		assert.Equal(t, 25, got)
	})

	t.Run("bool", func(t *testing.T) {
		got, err := GetBool("color")
		assert.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("duration string", func(t *testing.T) {
		got, err := GetDuration("cache.ttl")
		assert.NoError(t, err)
		assert.Equal(t, 24*time.Hour, got)
	})

	t.Run("duration bare int is hours", func(t *testing.T) {
		got, err := GetDuration("cache.clean")
		assert.NoError(t, err)
		assert.Equal(t, 48*time.Hour, got)
	})

	t.Run("duration default", func(t *testing.T) {
		got, err := GetDuration("no.such.key", time.Minute)
		assert.NoError(t, err)
		assert.Equal(t, time.Minute, got)
	})

	t.Run("string slice", func(t *testing.T) {
		got, err := GetStringSlice("search.defaults")
		assert.NoError(t, err)
		assert.Equal(t, []string{"--titles", "--sort name"}, got)
	})
}
