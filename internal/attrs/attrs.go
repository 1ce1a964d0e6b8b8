// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package attrs parses the --attrs flag into the list of JSON keys to
// extract from recipe payloads, with optional output renames and value
// transformations.
package attrs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Attr represents each of the keys to be included in the output. These are
// identified by the JSON attribute key, thus the name.
type Attr struct {
	// The JSON key to extract from the result JSON object.
	Key string
	// Should this Attr be included in output or is it just intended for
	// filtering and sorting?
	Include bool
	// The key to use in the output. Also the column title when
	// output=text.
	OutputKey string
	// Transformation spec to apply to the output value.
	TransformSpec string
}

// Transform applies the attr's transform spec to a single output value.
// Only strings are transformed; everything else passes through.
func (a *Attr) Transform(value interface{}) interface{} {
	result, ok := value.(string)
	if !ok {
		return value
	}

	// We need to know which case transformation appears last. This covers
	// the case where a global case transformation has been prepended to the
	// attr's own, letting the attr's carry more weight. IOW
	// --attrs '*::u,name::l' leaves name lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Is it a length-based transformation? Same last-wins logic as case, so
	// a specific length overrides a global one.
	if a.TransformSpec != "" {
		re := regexp.MustCompile(`-?\d+`)
		match := re.FindAllString(a.TransformSpec, -1)
		if len(match) != 0 {
			l, _ := strconv.Atoi(match[len(match)-1])
			abs := int(math.Abs(float64(l)))
			if len(result) > abs {
				if l < 0 {
					// Negative lengths keep both ends of the value.
					lr := abs/2 - 1
					left := result[0:lr]
					right := result[len(result)-lr:]
					result = left + ".." + right
				} else {
					result = result[:l]
				}
			}
		}
	}

	return result
}

type AttrList []Attr

// String returns a representation matching the format of the original
// --attrs flag.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses each spec from the --attrs flag and adds it to the AttrList.
// A spec has up to three : delimited fields: the JSON key, the output key
// (defaulting to the last dotted segment of the JSON key) and a transform
// spec. A leading ! excludes the attr from output while keeping it usable
// for filtering and sorting. Key * carries a global transform spec.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

	specs := strings.Split(value, ",")
specloop:
	for _, spec := range specs {
		attr := Attr{
			Include: true,
		}

		fields := strings.Split(spec, ":")

		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}

		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			if fields[outputIdx] != "" {
				attr.OutputKey = strings.TrimSpace(fields[outputIdx])
			} else {
				attr.OutputKey = attr.Key
			}
		}

		attr.TransformSpec = ""
		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// If the attr already exists in the list (because it's one of the
		// command's defaults or the user double-entered it) just apply the
		// OutputKey, Include and TransformSpec to the existing Attr.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the * entry's transform spec, if any, to
// every attr in the list.
func (alist *AttrList) SetGlobalTransformSpec() error {
	spec := ""

	for a := range *alist {
		if (*alist)[a].Key == "*" {
			spec = (*alist)[a].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for a := range *alist {
		if (*alist)[a].Key == "*" {
			continue
		}
		(*alist)[a].TransformSpec = spec + (*alist)[a].TransformSpec
	}

	return nil
}
