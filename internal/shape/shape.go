// Package shape decides how a JSON value is presented as table records and
// which columns those records expose.
package shape

import (
	"sort"
	"strings"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// Policy selects how a bare object is turned into records.
type Policy int

const (
	// PropertyValue converts an object into one {property, value} record per key.
	PropertyValue Policy = iota
	// LargestArray tabulates the object's largest non-empty array-of-objects
	// member, falling back to PropertyValue when there is none.
	LargestArray
)

func (p Policy) String() string {
	if p == LargestArray {
		return "largest-array"
	}
	return "property-value"
}

// Synthesized column names.
const (
	IndexColumn    = "index"
	ValueColumn    = "value"
	PropertyColumn = "property"
)

// Infer turns v into an ordered list of records. Records are key/value
// mappings; row identifiers are assigned by the caller.
//
//  1. arrays whose first element is an object yield one record per element
//  2. other arrays yield {index, value} records
//  3. empty arrays yield nothing
//  4. objects yield {property, value} records, non-empty values first
//  5. scalars are treated as a one-element array of primitives
func Infer(v jsonvalue.Value, policy Policy) []*jsonvalue.Object {
	switch v.Kind() {
	case jsonvalue.KindArray:
		items := v.Items()
		if len(items) == 0 {
			return []*jsonvalue.Object{}
		}
		if items[0].Kind() == jsonvalue.KindObject {
			return objectRows(items)
		}
		return primitiveRows(items)
	case jsonvalue.KindObject:
		if policy == LargestArray {
			if arr, ok := LargestObjectArray(v.Object()); ok {
				return objectRows(arr.Items())
			}
		}
		return propertyRows(v.Object())
	default:
		return primitiveRows([]jsonvalue.Value{v})
	}
}

// objectRows keeps object items as records. Stray non-object items in a
// mostly-object array are wrapped under the value column so they still show.
func objectRows(items []jsonvalue.Value) []*jsonvalue.Object {
	out := make([]*jsonvalue.Object, len(items))
	for i, item := range items {
		if obj := item.Object(); obj != nil {
			out[i] = obj
			continue
		}
		out[i] = jsonvalue.NewObject(jsonvalue.Member{Key: ValueColumn, Value: item})
	}
	return out
}

func primitiveRows(items []jsonvalue.Value) []*jsonvalue.Object {
	out := make([]*jsonvalue.Object, len(items))
	for i, item := range items {
		out[i] = jsonvalue.NewObject(
			jsonvalue.Member{Key: IndexColumn, Value: jsonvalue.Int(int64(i))},
			jsonvalue.Member{Key: ValueColumn, Value: item},
		)
	}
	return out
}

func propertyRows(obj *jsonvalue.Object) []*jsonvalue.Object {
	members := obj.Members()
	sort.SliceStable(members, func(i, j int) bool {
		return !members[i].Value.IsEmpty() && members[j].Value.IsEmpty()
	})
	out := make([]*jsonvalue.Object, len(members))
	for i, m := range members {
		out[i] = jsonvalue.NewObject(
			jsonvalue.Member{Key: PropertyColumn, Value: jsonvalue.String(m.Key)},
			jsonvalue.Member{Key: ValueColumn, Value: m.Value},
		)
	}
	return out
}

// LargestObjectArray returns the longest member of obj that is a non-empty
// array whose first element is an object. Ties keep the earliest member.
func LargestObjectArray(obj *jsonvalue.Object) (jsonvalue.Value, bool) {
	var (
		best  jsonvalue.Value
		found bool
	)
	for _, m := range obj.Members() {
		if m.Value.Kind() != jsonvalue.KindArray || m.Value.Len() == 0 {
			continue
		}
		if m.Value.Items()[0].Kind() != jsonvalue.KindObject {
			continue
		}
		if !found || m.Value.Len() > best.Len() {
			best, found = m.Value, true
		}
	}
	return best, found
}

// Present reports whether a looked-up field counts towards column density.
func Present(v jsonvalue.Value, ok bool) bool {
	return ok && !v.IsEmpty()
}

// Columns returns the union of keys over the first sample records (all when
// sample <= 0), ordered by descending density, then first-discovery order.
func Columns(records []*jsonvalue.Object, sample int) []string {
	if sample > 0 && len(records) > sample {
		records = records[:sample]
	}
	var order []string
	filled := make(map[string]int)
	for _, rec := range records {
		for _, m := range rec.Members() {
			if _, seen := filled[m.Key]; !seen {
				filled[m.Key] = 0
				order = append(order, m.Key)
			}
			if Present(m.Value, true) {
				filled[m.Key]++
			}
		}
	}
	// every column shares the same denominator, so density order is fill order
	sort.SliceStable(order, func(i, j int) bool {
		return filled[order[i]] > filled[order[j]]
	})
	return order
}

// PriorityFields are surfaced first when choosing columns for a nested array.
var PriorityFields = []string{"id", "name", "title", "rating", "comment", "date", "price", "description"}

// NestedColumns picks the columns of an expanded array's mini-table from the
// first sample items: priority fields first, then by frequency, capped at max
// (no cap when max <= 0). Primitive items contribute the value column.
func NestedColumns(items []jsonvalue.Value, sample, max int) []string {
	if sample > 0 && len(items) > sample {
		items = items[:sample]
	}
	var order []string
	freq := make(map[string]int)
	add := func(key string) {
		if _, seen := freq[key]; !seen {
			order = append(order, key)
		}
		freq[key]++
	}
	for _, item := range items {
		if obj := item.Object(); obj != nil {
			for _, k := range obj.Keys() {
				add(k)
			}
			continue
		}
		add(ValueColumn)
	}
	sort.SliceStable(order, func(i, j int) bool {
		pi, pj := priority(order[i]), priority(order[j])
		switch {
		case pi >= 0 && pj >= 0:
			return pi < pj
		case pi >= 0:
			return true
		case pj >= 0:
			return false
		}
		return freq[order[i]] > freq[order[j]]
	})
	if max > 0 && len(order) > max {
		order = order[:max]
	}
	return order
}

func priority(key string) int {
	lower := strings.ToLower(key)
	for i, f := range PriorityFields {
		if f == lower {
			return i
		}
	}
	return -1
}
