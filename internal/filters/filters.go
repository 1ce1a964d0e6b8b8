// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package filters applies --filter expressions to recipe result rows.
package filters

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/mealctlgo/internal/attrs"
)

// filterRegex parses a filter expression into key, operator and target.
// Operators are one of = ^ ~ < or >, optionally prefixed with '!'. This
// allows forms like '=', '!=', '^', '!^', etc.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>])(.*)$`)

// Filter represents a single parsed --filter expression including the key,
// operand, optional negation and target value.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter specification string into a slice of
// Filter. Invalid specs are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Default delimiter is ",", allow an override for targets that contain
	// commas.
	delim := ","
	if d, ok := os.LookupEnv("MEALCTL_FILTER_DELIM"); ok {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		negate := strings.HasPrefix(parts[2], "!")
		if negate {
			parts[2] = strings.TrimPrefix(parts[2], "!")
		}

		filters = append(filters, Filter{
			Key:     parts[1],
			Negate:  negate,
			Operand: parts[2],
			Target:  parts[3],
		})
	}

	return filters
}

// FilterDataset returns the rows of candidates that pass the filter spec,
// projected down to the requested attrs. It is the entry point used by
// the output pipeline.
func FilterDataset(candidates gjson.Result, al attrs.AttrList, spec string) []map[string]interface{} {
	//nolint:prealloc
	var filteredResults []map[string]interface{}

	filters := BuildFilters(spec)

	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, al, filters) {
			continue
		}

		result := make(map[string]interface{})
		for i := range al {
			attr := al[i]
			// Transforms are intentionally deferred to the output phase;
			// filtering sees raw values.
			result[attr.OutputKey] = candidate.Get(attr.Key).Value()
		}
		filteredResults = append(filteredResults, result)
	}

	return filteredResults
}

// applyFilters returns true if the candidate row matches all of the
// provided filters. Filter keys refer to output keys.
func applyFilters(candidate gjson.Result, al attrs.AttrList, filters []Filter) bool {
	if len(filters) == 0 {
		return true
	}

	for _, filter := range filters {
		var key string
		for _, attr := range al {
			if attr.OutputKey == filter.Key {
				key = attr.Key
				break
			}
		}

		// An unknown filter key is reported but doesn't reject the row, so a
		// typo doesn't silently empty the result set.
		if key == "" {
			log.Errorf("filter key not found: %s", filter.Key)
			continue
		}

		value := candidate.Get(key).Value()
		if value == nil {
			return false
		}

		result := true
		switch v := value.(type) {
		case string:
			result = checkStringOperand(v, filter)
		case bool:
			result = checkStringOperand(strconv.FormatBool(v), filter)
		case float64:
			result = checkNumericOperand(v, filter)
		}

		if !result {
			return false
		}
	}

	return true
}

// checkStringOperand compares string values. Matching is case-insensitive
// because the recipe API is inconsistent about casing.
func checkStringOperand(value string, filter Filter) bool {
	v := strings.ToLower(value)
	tgt := strings.ToLower(filter.Target)

	var matched bool
	switch filter.Operand {
	case "=":
		matched = v == tgt
	case "^":
		matched = strings.HasPrefix(v, tgt)
	case "~":
		matched = strings.Contains(v, tgt)
	case "<":
		matched = v < tgt
	case ">":
		matched = v > tgt
	default:
		log.Error("unsupported string operand: " + filter.Operand)
		return false
	}

	return matched == !filter.Negate
}

// checkNumericOperand compares a numeric value against the filter target
// using numeric semantics.
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Target), 64)
	if err != nil {
		log.Error("invalid numeric target: " + filter.Target)
		return false
	}

	var matched bool
	switch filter.Operand {
	case "=":
		matched = value == tgt
	case "<":
		matched = value < tgt
	case ">":
		matched = value > tgt
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}

	return matched == !filter.Negate
}
