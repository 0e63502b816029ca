// Package registry tracks the tables and columns referenced by the query
// being compiled.
//
// A Collection is insertion ordered and indexed by name GUID, so it holds
// at most one Item per fully qualified query name. Lookups accept partial
// names: absent segments in the search name match anything.
package registry

import (
	"iter"
	"slices"

	"github.com/roach88/rdfsql/internal/name"
	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// Named is a catalog object with a name.
type Named interface {
	Name() name.ItemName
}

// Item is a catalog object as referenced by one query.
type Item[T Named] struct {
	// Object is the catalog table or column.
	Object T

	// Optional is true when the item is only reachable through an outer
	// join or, for columns, when the column is nullable.
	Optional bool

	// Var holds the item's value in the compiled query.
	Var queryir.Var

	// GUIDVar names the underlying RDF node when the item takes part in
	// a shared-binding join.
	GUIDVar queryir.Var

	// View selects the segments used when the item's name is displayed.
	View name.Segments

	// MergedInto is set on a column collapsed into another by USING.
	MergedInto *Item[T]

	name name.ItemName
	guid string
}

// NewItem wraps obj under its query name. Variables derive from the
// name's GUID.
func NewItem[T Named](obj T, queryName name.ItemName, optional bool) *Item[T] {
	guid := queryName.GUID()
	view := name.Column
	if queryName.Kind() != name.KindColumn {
		view = name.Table
	}
	return &Item[T]{
		Object:   obj,
		Optional: optional,
		Var:      queryir.Var(guid),
		GUIDVar:  queryir.Var("g" + guid[1:]),
		View:     view,
		name:     queryName,
		guid:     guid,
	}
}

// Name returns the name the query uses for the item.
func (it *Item[T]) Name() name.ItemName { return it.name }

// GUID returns the GUID of the query name.
func (it *Item[T]) GUID() string { return it.guid }

// DisplayName renders the name through the item's View.
func (it *Item[T]) DisplayName() string {
	return it.name.WithSegments(it.View).QualifiedName()
}

// Equal reports whether both items have the same query name. Optionality
// does not participate.
func (it *Item[T]) Equal(other *Item[T]) bool {
	return it.name.Equal(other.name)
}

// Resolved follows MergedInto links to the surviving item.
func (it *Item[T]) Resolved() *Item[T] {
	for it.MergedInto != nil {
		it = it.MergedInto
	}
	return it
}

// Collection is an insertion-ordered set of items keyed by query name.
//
// Collection is not safe for concurrent use. Iterators returned by Match,
// NotMatch and All panic if the collection changes while they run.
type Collection[T Named] struct {
	items   []*Item[T]
	byGUID  map[string]*Item[T]
	version uint64
}

// New returns an empty collection.
func New[T Named]() *Collection[T] {
	return &Collection[T]{byGUID: map[string]*Item[T]{}}
}

// Len returns the number of items.
func (c *Collection[T]) Len() int { return len(c.items) }

// Add inserts item. It returns false, and changes nothing, when an equal
// item is already present.
func (c *Collection[T]) Add(item *Item[T]) bool {
	if _, ok := c.byGUID[item.guid]; ok {
		return false
	}
	c.items = append(c.items, item)
	c.byGUID[item.guid] = item
	c.version++
	return true
}

// Remove deletes the item equal to item. It returns false when absent.
func (c *Collection[T]) Remove(item *Item[T]) bool {
	if _, ok := c.byGUID[item.guid]; !ok {
		return false
	}
	delete(c.byGUID, item.guid)
	c.items = slices.DeleteFunc(c.items, func(it *Item[T]) bool { return it.guid == item.guid })
	c.version++
	return true
}

// Contains reports whether an item equal to item is present.
func (c *Collection[T]) Contains(item *Item[T]) bool {
	_, ok := c.byGUID[item.guid]
	return ok
}

// FindByGUID returns the item whose query name has the given GUID.
func (c *Collection[T]) FindByGUID(guid string) (*Item[T], bool) {
	it, ok := c.byGUID[guid]
	return it, ok
}

// Get returns the single item agreeing with ref. It returns (nil, nil)
// when nothing matches and AMBIGUOUS_REFERENCE when several items do.
func (c *Collection[T]) Get(ref name.ItemName) (*Item[T], error) {
	if it, ok := c.byGUID[ref.GUID()]; ok {
		return it, nil
	}
	var found []*Item[T]
	for it := range c.Match(ref) {
		found = append(found, it)
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		candidates := make([]string, len(found))
		for i, it := range found {
			candidates[i] = it.name.QualifiedName()
		}
		return nil, sqlerr.AmbiguousReference(ref.QualifiedName(), candidates)
	}
}

// Match iterates the items agreeing with ref in insertion order.
func (c *Collection[T]) Match(ref name.ItemName) iter.Seq[*Item[T]] {
	return c.filter(func(it *Item[T]) bool { return it.name.Matches(ref) })
}

// NotMatch iterates the items that do not agree with ref.
func (c *Collection[T]) NotMatch(ref name.ItemName) iter.Seq[*Item[T]] {
	return c.filter(func(it *Item[T]) bool { return !it.name.Matches(ref) })
}

// All iterates every item in insertion order.
func (c *Collection[T]) All() iter.Seq[*Item[T]] {
	return c.filter(func(*Item[T]) bool { return true })
}

func (c *Collection[T]) filter(keep func(*Item[T]) bool) iter.Seq[*Item[T]] {
	return func(yield func(*Item[T]) bool) {
		version := c.version
		for i := 0; i < len(c.items); i++ {
			if c.version != version {
				panic("registry: collection modified during iteration")
			}
			it := c.items[i]
			if keep(it) && !yield(it) {
				return
			}
		}
		if c.version != version {
			panic("registry: collection modified during iteration")
		}
	}
}

// Items returns a snapshot of the items in insertion order.
func (c *Collection[T]) Items() []*Item[T] {
	return slices.Clone(c.items)
}

// AddAll adds every item and returns how many were new.
func (c *Collection[T]) AddAll(items ...*Item[T]) int {
	n := 0
	for _, it := range items {
		if c.Add(it) {
			n++
		}
	}
	return n
}

// RemoveAll removes every item equal to one of items and returns how many
// were removed.
func (c *Collection[T]) RemoveAll(items ...*Item[T]) int {
	n := 0
	for _, it := range items {
		if c.Remove(it) {
			n++
		}
	}
	return n
}

// RetainAll removes every item not equal to one of items and returns how
// many were removed.
func (c *Collection[T]) RetainAll(items ...*Item[T]) int {
	keep := make(map[string]bool, len(items))
	for _, it := range items {
		keep[it.guid] = true
	}
	var drop []*Item[T]
	for _, it := range c.items {
		if !keep[it.guid] {
			drop = append(drop, it)
		}
	}
	return c.RemoveAll(drop...)
}
