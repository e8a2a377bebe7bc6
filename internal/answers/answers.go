// Package answers turns submitted answer payloads into an emspt.AnswerMap.
package answers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
)

var (
	ErrMalformed     = errors.New("malformed answers")
	ErrCountMismatch = errors.New("answer count does not match question count")
)

// Parse accepts three payload shapes:
//
//	{"q1": 5, "q2": 7}
//	[{"id": "q1", "value": 5}, {"id": 2, "value": 7}]
//	[5, 7]            // positional, mapped onto order
//
// Question ids are normalized to strings. Values are not range checked.
func Parse(raw []byte, order []string) (emspt.AnswerMap, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	res := gjson.ParseBytes(raw)
	switch {
	case res.IsObject():
		return parseObject(res)
	case res.IsArray():
		items := res.Array()
		// [] counts as positional so it fails against a non-empty order
		if allNumbers(items) {
			return parsePositional(items, order)
		}
		return parseItems(items)
	default:
		return nil, fmt.Errorf("%w: expected an object or an array", ErrMalformed)
	}
}

func parseObject(res gjson.Result) (emspt.AnswerMap, error) {
	out := emspt.AnswerMap{}
	var err error
	res.ForEach(func(k, v gjson.Result) bool {
		var n int
		if n, err = toInt(v); err != nil {
			err = fmt.Errorf("%w: question %s: %v", ErrMalformed, k.String(), err)
			return false
		}
		out[k.String()] = n
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parsePositional(items []gjson.Result, order []string) (emspt.AnswerMap, error) {
	if len(items) != len(order) {
		return nil, fmt.Errorf("%w: got %d answers for %d questions", ErrCountMismatch, len(items), len(order))
	}
	out := make(emspt.AnswerMap, len(items))
	for i, v := range items {
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("%w: position %d: %v", ErrMalformed, i, err)
		}
		out[order[i]] = n
	}
	return out, nil
}

func parseItems(items []gjson.Result) (emspt.AnswerMap, error) {
	out := make(emspt.AnswerMap, len(items))
	for i, it := range items {
		id, val := it.Get("id"), it.Get("value")
		if !it.IsObject() || !id.Exists() || !val.Exists() {
			return nil, fmt.Errorf("%w: item %d must be {\"id\": ..., \"value\": ...}", ErrMalformed, i)
		}
		key := strings.TrimSpace(id.String())
		if key == "" || id.IsObject() || id.IsArray() {
			return nil, fmt.Errorf("%w: item %d has an empty id", ErrMalformed, i)
		}
		n, err := toInt(val)
		if err != nil {
			return nil, fmt.Errorf("%w: question %s: %v", ErrMalformed, key, err)
		}
		out[key] = n
	}
	return out, nil
}

func allNumbers(items []gjson.Result) bool {
	for _, it := range items {
		if it.Type != gjson.Number {
			return false
		}
	}
	return true
}

// toInt truncates numbers and parses numeric strings.
func toInt(v gjson.Result) (int, error) {
	switch v.Type {
	case gjson.Number:
		if math.IsInf(v.Num, 0) || math.IsNaN(v.Num) {
			return 0, fmt.Errorf("value %s is not finite", v.Raw)
		}
		return int(v.Num), nil
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", v.Str)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("value %s is not a number", v.Raw)
	}
}

// QuestionOrder flattens the question ids of keys in first-seen order.
// It is the default positional order for a form when the caller did not
// record one.
func QuestionOrder(keys []emspt.ScaleKey) []string {
	seen := map[string]bool{}
	var out []string
	for _, sk := range keys {
		for _, q := range sk.Questions {
			if !seen[q] {
				seen[q] = true
				out = append(out, q)
			}
		}
	}
	return out
}
