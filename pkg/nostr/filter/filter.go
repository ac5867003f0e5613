// Package filter is a relay query: a conjunction of optional constraints on
// event fields.
//
// A nil slice or pointer means the field is absent from the query. The With
// methods build filters up without modifying their receiver: the list fields
// accumulate across calls and the scalar fields are replaced.
package filter

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/event"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/kind"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tag"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tags"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/timestamp"
	"golang.org/x/exp/slices"
)

// ErrUnsupportedTag is returned when encoding a filter that holds a tag other
// than e or p, which have no filter key.
var ErrUnsupportedTag = &codec.Error{Kind: codec.Malformed, Field: "tags",
	Detail: "only e and p tags can be used in a filter"}

// T is a query where one or all elements can be filled in.
type T struct {
	IDs     []eventid.T
	Authors []keys.PubKey
	Kinds   []kind.T
	// Tags become the #e and #p keys. Relay hints are not part of a query and
	// are not encoded.
	Tags  tags.T
	Since *timestamp.T
	Until *timestamp.T
	Limit *int
}

// New returns an empty filter, which matches every event.
func New() *T { return &T{} }

// Clone returns a deep copy of f.
func (f *T) Clone() (c *T) {
	c = &T{
		IDs:     slices.Clone(f.IDs),
		Authors: slices.Clone(f.Authors),
		Kinds:   slices.Clone(f.Kinds),
		Tags:    slices.Clone(f.Tags),
	}
	if f.Since != nil {
		c.Since = f.Since.Ptr()
	}
	if f.Until != nil {
		c.Until = f.Until.Ptr()
	}
	if f.Limit != nil {
		l := *f.Limit
		c.Limit = &l
	}
	return
}

// WithIDs returns a copy of f with ids appended to its ids.
func (f *T) WithIDs(ids ...eventid.T) (c *T) {
	c = f.Clone()
	c.IDs = append(nonNil(c.IDs), ids...)
	return
}

// WithAuthors returns a copy of f with pks appended to its authors.
func (f *T) WithAuthors(pks ...keys.PubKey) (c *T) {
	c = f.Clone()
	c.Authors = append(nonNil(c.Authors), pks...)
	return
}

// WithKinds returns a copy of f with ks appended to its kinds.
func (f *T) WithKinds(ks ...kind.T) (c *T) {
	c = f.Clone()
	c.Kinds = append(nonNil(c.Kinds), ks...)
	return
}

// WithTags returns a copy of f with t appended to its tags.
func (f *T) WithTags(t ...tag.T) (c *T) {
	c = f.Clone()
	c.Tags = append(nonNil(c.Tags), t...)
	return
}

// WithSince returns a copy of f with since replaced.
func (f *T) WithSince(since timestamp.T) (c *T) {
	c = f.Clone()
	c.Since = since.Ptr()
	return
}

// WithUntil returns a copy of f with until replaced.
func (f *T) WithUntil(until timestamp.T) (c *T) {
	c = f.Clone()
	c.Until = until.Ptr()
	return
}

// WithLimit returns a copy of f with limit replaced.
func (f *T) WithLimit(limit int) (c *T) {
	c = f.Clone()
	c.Limit = &limit
	return
}

// nonNil makes a field present even when nothing is appended to it.
func nonNil[V any](s []V) []V {
	if s == nil {
		return []V{}
	}
	return s
}

// Matches reports whether ev satisfies every present constraint of f. Within
// a list any one value is enough. Since and until are inclusive.
func (f *T) Matches(ev *event.T) bool {
	if ev == nil {
		return false
	}
	if f.IDs != nil && !slices.Contains(f.IDs, ev.ID) {
		return false
	}
	if f.Authors != nil && !slices.Contains(f.Authors, ev.PubKey) {
		return false
	}
	if f.Kinds != nil && !slices.Contains(f.Kinds, ev.Kind) {
		return false
	}
	if ids := f.Tags.EventIDs(); ids != nil {
		if !slices.ContainsFunc(ev.Tags.EventIDs(), func(id eventid.T) bool {
			return slices.Contains(ids, id)
		}) {
			return false
		}
	}
	if pks := f.Tags.PubKeys(); pks != nil {
		if !slices.ContainsFunc(ev.Tags.PubKeys(), func(pk keys.PubKey) bool {
			return slices.Contains(pks, pk)
		}) {
			return false
		}
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	return true
}

// Equal reports whether a and b are the same query.
func Equal(a, b *T) bool {
	switch {
	case !slices.Equal(a.IDs, b.IDs),
		!slices.Equal(a.Authors, b.Authors),
		!slices.Equal(a.Kinds, b.Kinds),
		!slices.EqualFunc(a.Tags.Strings(), b.Tags.Strings(), slices.Equal[[]string]),
		!equalPtr(a.Since, b.Since),
		!equalPtr(a.Until, b.Until),
		!equalPtr(a.Limit, b.Limit):
		return false
	}
	return true
}

func equalPtr[V comparable](a, b *V) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
