// Package limiter trims the root record set before a table is built.
package limiter

import (
	"fmt"

	"github.com/oakwood-commons/jsontable/pkg/jsonvalue"
)

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int // Show only this many records (0 = unlimited)
	Offset int // Skip the first N records (0 = no skip)
	Tail   int // Show only the last N records (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations.
// Limit and Tail are mutually exclusive; Offset is ignored when Tail is set.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Apply limits the items of an array or the members of an object, keeping
// member order. Scalars are returned unchanged.
func (c Config) Apply(v jsonvalue.Value) jsonvalue.Value {
	if !c.IsActive() {
		return v
	}
	switch v.Kind() {
	case jsonvalue.KindArray:
		start, end := c.bounds(v.Len())
		return jsonvalue.Array(v.Items()[start:end]...)
	case jsonvalue.KindObject:
		members := v.Object().Members()
		start, end := c.bounds(len(members))
		return jsonvalue.ObjectOf(members[start:end]...)
	default:
		return v
	}
}

// bounds returns the [start, end) window over length records.
func (c Config) bounds(length int) (int, int) {
	if c.Tail > 0 {
		return max(length-c.Tail, 0), length
	}
	start := min(c.Offset, length)
	end := length
	if c.Limit > 0 {
		end = min(start+c.Limit, length)
	}
	return start, end
}
