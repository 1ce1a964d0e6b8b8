// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"

	gojsondiff "github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// RenderDiff produces a human-readable structural diff between two JSON
// documents, used by `cache diff` to show what a refresh would change.
// Returns ("", nil) when the documents are equivalent.
func RenderDiff(left, right []byte, color bool) (string, error) {
	differ := gojsondiff.New()
	d, err := differ.Compare(left, right)
	if err != nil {
		return "", fmt.Errorf("failed to compare documents: %w", err)
	}
	if !d.Modified() {
		return "", nil
	}

	var leftObj map[string]interface{}
	if err := json.Unmarshal(left, &leftObj); err != nil {
		return "", fmt.Errorf("failed to parse cached document: %w", err)
	}

	f := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	out, err := f.Format(d)
	if err != nil {
		return "", fmt.Errorf("failed to format diff: %w", err)
	}
	return out, nil
}
