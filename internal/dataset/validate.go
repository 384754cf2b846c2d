package dataset

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Validate checks that raw, a value decoded by encoding/json into any, has the
// shape of a dataset file:
//
//	{ "headers": [string], "rows": [{ "date": string, "values": {string: number}, "hidden"?: bool }] }
//
// All violations are collected. On failure the returned error is a
// *[SchemaError]. Unknown keys are ignored.
//
// Validate is structural only: it does not compare value keys against
// headers, look for duplicate headers or check date order.
func Validate(raw any) (Document, error) {
	v := validator{}
	doc := v.document(raw)

	if len(v.violations) > 0 {
		return Document{}, &SchemaError{Violations: v.violations}
	}

	return doc, nil
}

type validator struct {
	violations []Violation
}

func (v *validator) add(path, format string, args ...any) {
	v.violations = append(v.violations, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) mismatch(path, want string, got any) {
	v.add(path, "expected %s, received %s", want, kindOf(got))
}

func (v *validator) document(raw any) Document {
	obj, ok := raw.(map[string]any)
	if !ok {
		v.mismatch("", "object", raw)

		return Document{}
	}

	doc := Document{
		Headers: v.headers(obj),
		Rows:    v.rows(obj),
	}

	return doc
}

func (v *validator) headers(obj map[string]any) []string {
	raw, ok := obj["headers"]
	if !ok {
		v.add("headers", "required")

		return nil
	}

	items, ok := raw.([]any)
	if !ok {
		v.mismatch("headers", "array", raw)

		return nil
	}

	headers := make([]string, 0, len(items))

	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			v.mismatch(join("headers", strconv.Itoa(i)), "string", item)

			continue
		}

		headers = append(headers, s)
	}

	return headers
}

func (v *validator) rows(obj map[string]any) []DocumentRow {
	raw, ok := obj["rows"]
	if !ok {
		v.add("rows", "required")

		return nil
	}

	items, ok := raw.([]any)
	if !ok {
		v.mismatch("rows", "array", raw)

		return nil
	}

	rows := make([]DocumentRow, 0, len(items))

	for i, item := range items {
		path := join("rows", strconv.Itoa(i))

		rowObj, ok := item.(map[string]any)
		if !ok {
			v.mismatch(path, "object", item)

			continue
		}

		rows = append(rows, v.row(path, rowObj))
	}

	return rows
}

func (v *validator) row(path string, obj map[string]any) DocumentRow {
	var row DocumentRow

	switch raw, ok := obj["date"]; {
	case !ok:
		v.add(join(path, "date"), "required")
	default:
		s, isString := raw.(string)
		if !isString {
			v.mismatch(join(path, "date"), "date string", raw)

			break
		}

		d, err := ParseDate(s)
		if err != nil {
			v.add(join(path, "date"), "invalid date %q", s)

			break
		}

		row.Date = d
	}

	switch raw, ok := obj["values"]; {
	case !ok:
		v.add(join(path, "values"), "required")
	default:
		row.Values = v.values(join(path, "values"), raw)
	}

	if raw, ok := obj["hidden"]; ok {
		b, isBool := raw.(bool)
		if isBool {
			row.Hidden = &b
		} else {
			v.mismatch(join(path, "hidden"), "boolean", raw)
		}
	}

	return row
}

func (v *validator) values(path string, raw any) map[string]float64 {
	obj, ok := raw.(map[string]any)
	if !ok {
		v.mismatch(path, "object", raw)

		return nil
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	// Sorted so violations come out in a stable order.
	slices.Sort(keys)

	values := make(map[string]float64, len(obj))

	for _, k := range keys {
		n, ok := number(obj[k])
		if !ok {
			v.mismatch(join(path, k), "number", obj[k])

			continue
		}

		values[k] = n
	}

	return values
}

func number(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}

	return path + "." + key
}

func kindOf(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", raw)
	}
}
