// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/mealctlgo/internal/attrs"
)

const payload = `{"meals":[
	{"strMeal":"Teriyaki Chicken Casserole","strCategory":"Chicken","strArea":"Japanese","idMeal":"52772"},
	{"strMeal":"Beef Wellington","strCategory":"Beef","strArea":"British","idMeal":"52803"}
]}`

// runSpit executes SliceDiceSpit under a real cli.Command so flag
// resolution behaves exactly as it does in production.
func runSpit(t *testing.T, args []string, attrSpec string) string {
	t.Helper()

	var al attrs.AttrList
	require.NoError(t, al.Set(attrSpec))

	var buf bytes.Buffer
	cmd := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Value: "text"},
			&cli.StringFlag{Name: "filter"},
			&cli.StringFlag{Name: "sort"},
			&cli.BoolFlag{Name: "color"},
			&cli.BoolFlag{Name: "titles"},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			SliceDiceSpit([]byte(payload), al, c, "meals", &buf)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return buf.String()
}

func TestSliceDiceSpit(t *testing.T) {
	t.Run("raw dumps the payload untouched", func(t *testing.T) {
		got := runSpit(t, []string{"--output", "raw"}, "strMeal:name")
		assert.JSONEq(t, payload, got)
	})

	t.Run("json emits projected rows", func(t *testing.T) {
		got := runSpit(t, []string{"--output", "json"}, "strMeal:name,strArea:area")
		assert.JSONEq(t, `[
			{"name":"Teriyaki Chicken Casserole","area":"Japanese"},
			{"name":"Beef Wellington","area":"British"}
		]`, got)
	})

	t.Run("yaml emits projected rows", func(t *testing.T) {
		got := runSpit(t, []string{"--output", "yaml"}, "strMeal:name")
		assert.Contains(t, got, "name: Teriyaki Chicken Casserole")
		assert.Contains(t, got, "name: Beef Wellington")
	})

	t.Run("filter applies before emission", func(t *testing.T) {
		got := runSpit(t, []string{"--output", "json", "--filter", "category=Beef"},
			"strMeal:name,strCategory:category")
		assert.JSONEq(t, `[{"name":"Beef Wellington","category":"Beef"}]`, got)
	})

	t.Run("transforms apply to output", func(t *testing.T) {
		got := runSpit(t, []string{"--output", "json"}, "strMeal:name:u")
		assert.Contains(t, got, "BEEF WELLINGTON")
	})

	t.Run("text includes rows and optional titles", func(t *testing.T) {
		got := runSpit(t, []string{"--titles"}, "strMeal:name,strArea:area")
		assert.Contains(t, got, "Beef Wellington")
		assert.Contains(t, got, "name")

		got = runSpit(t, nil, "strMeal:name")
		assert.Contains(t, got, "Beef Wellington")
		assert.NotContains(t, got, "name")
	})

	t.Run("sort orders rows", func(t *testing.T) {
		got := runSpit(t, []string{"--output", "json", "--sort", "name"}, "strMeal:name")
		assert.Less(t,
			strings.Index(got, "Beef Wellington"),
			strings.Index(got, "Teriyaki Chicken Casserole"))
	})
}

func TestSortDataset(t *testing.T) {
	rows := func() []map[string]interface{} {
		return []map[string]interface{}{
			{"name": "b", "n": float64(2)},
			{"name": "a", "n": float64(3)},
			{"name": "c", "n": float64(1)},
		}
	}

	t.Run("ascending", func(t *testing.T) {
		r := rows()
		SortDataset(r, "name")
		assert.Equal(t, "a", r[0]["name"])
		assert.Equal(t, "c", r[2]["name"])
	})

	t.Run("descending", func(t *testing.T) {
		r := rows()
		SortDataset(r, "-name")
		assert.Equal(t, "c", r[0]["name"])
	})

	t.Run("empty spec is a no-op", func(t *testing.T) {
		r := rows()
		SortDataset(r, "")
		assert.Equal(t, "b", r[0]["name"])
	})
}

func TestInterfaceToString(t *testing.T) {
	assert.Equal(t, "x", InterfaceToString("x"))
	assert.Equal(t, "42", InterfaceToString(42))
	assert.Equal(t, "42", InterfaceToString(float64(42)))
	assert.Equal(t, "1.5", InterfaceToString(1.5))
	assert.Equal(t, "true", InterfaceToString(true))
	assert.Equal(t, "-", InterfaceToString(nil, "-"))
	assert.Equal(t, "", InterfaceToString(""))
	assert.Equal(t, `["a"]`, InterfaceToString([]string{"a"}))
}

func TestRenderDiff(t *testing.T) {
	t.Run("equivalent documents yield nothing", func(t *testing.T) {
		out, err := RenderDiff([]byte(`{"a":1}`), []byte(`{"a":1}`), false)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("changed field shows up", func(t *testing.T) {
		out, err := RenderDiff([]byte(`{"a":1,"b":"x"}`), []byte(`{"a":2,"b":"x"}`), false)
		require.NoError(t, err)
		assert.Contains(t, out, `"a"`)
	})

	t.Run("unparseable left document errors", func(t *testing.T) {
		_, err := RenderDiff([]byte(`not json`), []byte(`{}`), false)
		assert.Error(t, err)
	})
}
