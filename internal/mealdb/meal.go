// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package mealdb

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Meal is the typed view the picker and favorites need. The full payload
// stays raw everywhere else.
type Meal struct {
	ID       string
	Name     string
	Category string
	Area     string
}

// maxIngredientSlots is how many strIngredientN/strMeasureN pairs the API
// carries per recipe.
const maxIngredientSlots = 20

// Meals extracts the typed view from a raw API payload. A null "meals"
// field (no matches) yields an empty slice.
func Meals(raw []byte) []Meal {
	var meals []Meal
	for _, m := range gjson.GetBytes(raw, "meals").Array() {
		meals = append(meals, Meal{
			ID:       m.Get("idMeal").String(),
			Name:     m.Get("strMeal").String(),
			Category: m.Get("strCategory").String(),
			Area:     m.Get("strArea").String(),
		})
	}
	return meals
}

// Ingredients flattens the positional strIngredient1..20/strMeasure1..20
// pairs of the first meal in raw into "measure ingredient" lines, skipping
// the empty slots the API pads with.
func Ingredients(raw []byte) []string {
	meal := gjson.GetBytes(raw, "meals.0")
	if !meal.Exists() {
		return nil
	}

	var lines []string
	for i := 1; i <= maxIngredientSlots; i++ {
		ingredient := strings.TrimSpace(meal.Get(fmt.Sprintf("strIngredient%d", i)).String())
		if ingredient == "" {
			continue
		}
		measure := strings.TrimSpace(meal.Get(fmt.Sprintf("strMeasure%d", i)).String())
		if measure == "" {
			lines = append(lines, ingredient)
			continue
		}
		lines = append(lines, measure+" "+ingredient)
	}
	return lines
}
