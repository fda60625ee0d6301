package notes

import (
	"fmt"
	"sort"
	"strings"
)

type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortNewest:
		return SortNewest, nil
	case SortOldest:
		return SortOldest, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

func (o SortOrder) Toggle() SortOrder {
	if o == SortOldest {
		return SortNewest
	}
	return SortOldest
}

// Project filters backing by a case-insensitive title match on term and
// orders the result by CreatedAt. Equal timestamps keep backing order.
// backing is never modified.
func Project(backing []Note, term string, order SortOrder) []Note {
	out := make([]Note, 0, len(backing))
	needle := strings.ToLower(term)
	for _, n := range backing {
		if needle != "" && !strings.Contains(strings.ToLower(n.Title), needle) {
			continue
		}
		out = append(out, n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if order == SortOldest {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Collection holds the backing list last confirmed by the backend together
// with the current search term and sort order, and the projection derived
// from them. Ids in the backing list are unique.
type Collection struct {
	backing    []Note
	term       string
	order      SortOrder
	projection []Note
}

func NewCollection(list []Note) *Collection {
	c := &Collection{order: SortNewest}
	c.SetAuthoritativeList(list)
	return c
}

// SetAuthoritativeList replaces the backing list. Later duplicates of an id
// are dropped.
func (c *Collection) SetAuthoritativeList(list []Note) {
	seen := make(map[string]struct{}, len(list))
	backing := make([]Note, 0, len(list))
	for _, n := range list {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		backing = append(backing, n)
	}
	c.backing = backing
	c.recompute()
}

func (c *Collection) ApplySearch(term string) {
	c.term = term
	c.recompute()
}

func (c *Collection) ApplySort(order SortOrder) {
	if order != SortOldest {
		order = SortNewest
	}
	c.order = order
	c.recompute()
}

// ApplyCreate appends n. An id already held is replaced in place instead.
func (c *Collection) ApplyCreate(n Note) {
	if i := c.indexOf(n.ID); i >= 0 {
		c.backing[i] = n
	} else {
		c.backing = append(c.backing, n)
	}
	c.recompute()
}

// ApplyUpdate replaces the note with n.ID and reports whether it was held.
func (c *Collection) ApplyUpdate(n Note) bool {
	i := c.indexOf(n.ID)
	if i < 0 {
		return false
	}
	c.backing[i] = n
	c.recompute()
	return true
}

// ApplyDelete removes the note with id and reports whether it was held.
func (c *Collection) ApplyDelete(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.backing = append(c.backing[:i:i], c.backing[i+1:]...)
	c.recompute()
	return true
}

func (c *Collection) Get(id string) (Note, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.backing[i], true
	}
	return Note{}, false
}

func (c *Collection) Projection() []Note {
	out := make([]Note, len(c.projection))
	copy(out, c.projection)
	return out
}

func (c *Collection) Backing() []Note {
	out := make([]Note, len(c.backing))
	copy(out, c.backing)
	return out
}

func (c *Collection) SearchTerm() string   { return c.term }
func (c *Collection) SortOrder() SortOrder { return c.order }
func (c *Collection) Len() int             { return len(c.backing) }

func (c *Collection) indexOf(id string) int {
	for i := range c.backing {
		if c.backing[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) recompute() {
	c.projection = Project(c.backing, c.term, c.order)
}
