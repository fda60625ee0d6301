package notes

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func twoNotes() []Note {
	return []Note{
		{ID: "1", Title: "Shopping", Content: "milk", CreatedAt: t0},
		{ID: "2", Title: "Work plan", Content: "ship it", CreatedAt: t0.Add(time.Hour)},
	}
}

func ids(list []Note) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestCollection_SearchScenario(t *testing.T) {
	c := NewCollection(twoNotes())

	c.ApplySearch("work")
	require.Equal(t, []string{"2"}, ids(c.Projection()))

	c.ApplySearch("")
	c.ApplySort(SortOldest)
	require.Equal(t, []string{"1", "2"}, ids(c.Projection()))

	c.ApplySort(SortNewest)
	require.Equal(t, []string{"2", "1"}, ids(c.Projection()))
}

func TestCollection_DefaultsToNewest(t *testing.T) {
	c := NewCollection(twoNotes())
	require.Equal(t, SortNewest, c.SortOrder())
	require.Equal(t, []string{"2", "1"}, ids(c.Projection()))
}

func TestCollection_CreateThenDeleteRestoresList(t *testing.T) {
	c := NewCollection(twoNotes())
	before := c.Backing()

	created := Note{ID: "3", Title: "A", Content: "B", CreatedAt: t0.Add(2 * time.Hour)}
	c.ApplyCreate(created)
	require.Equal(t, 3, c.Len())
	require.Equal(t, []string{"3", "2", "1"}, ids(c.Projection()))

	require.True(t, c.ApplyDelete("3"))
	require.Equal(t, before, c.Backing())
	require.Equal(t, []string{"2", "1"}, ids(c.Projection()))
}

func TestCollection_UnknownIDIsNoop(t *testing.T) {
	c := NewCollection(twoNotes())
	before := c.Backing()

	require.False(t, c.ApplyUpdate(Note{ID: "nope", Title: "x", Content: "y"}))
	require.False(t, c.ApplyDelete("nope"))
	require.Equal(t, before, c.Backing())
}

func TestCollection_EmptyList(t *testing.T) {
	c := NewCollection(nil)
	c.ApplySearch("anything")
	c.ApplySort(SortOldest)
	require.NotNil(t, c.Projection())
	require.Empty(t, c.Projection())
}

func TestCollection_DuplicateIDs(t *testing.T) {
	list := append(twoNotes(), Note{ID: "1", Title: "Shadow", CreatedAt: t0})
	c := NewCollection(list)
	require.Equal(t, 2, c.Len())
	n, ok := c.Get("1")
	require.True(t, ok)
	require.Equal(t, "Shopping", n.Title)

	c.ApplyCreate(Note{ID: "2", Title: "Work plan v2", CreatedAt: t0})
	require.Equal(t, 2, c.Len())
	n, _ = c.Get("2")
	require.Equal(t, "Work plan v2", n.Title)
}

func TestCollection_UpdateKeepsSearchAndSort(t *testing.T) {
	c := NewCollection(twoNotes())
	c.ApplySearch("plan")
	require.Len(t, c.Projection(), 1)

	// renamed out of the current filter
	require.True(t, c.ApplyUpdate(Note{ID: "2", Title: "Errands", Content: "x", CreatedAt: t0.Add(time.Hour)}))
	require.Empty(t, c.Projection())
	require.Equal(t, "plan", c.SearchTerm())
}

func TestCollection_ProjectionIsACopy(t *testing.T) {
	c := NewCollection(twoNotes())
	p := c.Projection()
	p[0].Title = "mutated"
	require.NotEqual(t, "mutated", c.Projection()[0].Title)
}

func TestProject_TiesKeepBackingOrder(t *testing.T) {
	list := []Note{
		{ID: "a", Title: "a", CreatedAt: t0},
		{ID: "b", Title: "b", CreatedAt: t0},
		{ID: "c", Title: "c", CreatedAt: t0},
	}
	require.Equal(t, []string{"a", "b", "c"}, ids(Project(list, "", SortNewest)))
	require.Equal(t, []string{"a", "b", "c"}, ids(Project(list, "", SortOldest)))
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder(" Oldest ")
	require.NoError(t, err)
	require.Equal(t, SortOldest, o)

	o, err = ParseSortOrder("newest")
	require.NoError(t, err)
	require.Equal(t, SortNewest, o)

	_, err = ParseSortOrder("alphabetical")
	require.Error(t, err)

	require.Equal(t, SortOldest, SortNewest.Toggle())
	require.Equal(t, SortNewest, SortOldest.Toggle())
}

func noteGen(id int) *rapid.Generator[Note] {
	return rapid.Custom(func(t *rapid.T) Note {
		return Note{
			ID:        fmt.Sprintf("n%d", id),
			Title:     rapid.StringMatching(`[A-Za-z ]{1,20}`).Draw(t, "title"),
			Content:   "body",
			CreatedAt: t0.Add(time.Duration(rapid.IntRange(0, 50).Draw(t, "minutes")) * time.Minute),
		}
	})
}

func listGen() *rapid.Generator[[]Note] {
	return rapid.Custom(func(t *rapid.T) []Note {
		n := rapid.IntRange(0, 20).Draw(t, "len")
		out := make([]Note, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, noteGen(i).Draw(t, fmt.Sprintf("note%d", i)))
		}
		return out
	})
}

func TestCollection_SearchProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		list := listGen().Draw(t, "list")
		term := rapid.StringMatching(`[A-Za-z]{0,3}`).Draw(t, "term")

		c := NewCollection(list)
		c.ApplySearch(term)

		want := map[string]bool{}
		for _, n := range list {
			if strings.Contains(strings.ToLower(n.Title), strings.ToLower(term)) {
				want[n.ID] = true
			}
		}
		got := c.Projection()
		if len(got) != len(want) {
			t.Fatalf("projection has %d notes, want %d", len(got), len(want))
		}
		for _, n := range got {
			if !want[n.ID] {
				t.Fatalf("note %s (%q) should not match %q", n.ID, n.Title, term)
			}
		}
	})
}

func TestCollection_SortProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		list := listGen().Draw(t, "list")
		order := rapid.SampledFrom([]SortOrder{SortNewest, SortOldest}).Draw(t, "order")

		c := NewCollection(list)
		c.ApplySort(order)
		p := c.Projection()
		for i := 1; i < len(p); i++ {
			prev, cur := p[i-1].CreatedAt, p[i].CreatedAt
			if order == SortNewest && cur.After(prev) {
				t.Fatalf("newest order increases at %d", i)
			}
			if order == SortOldest && cur.Before(prev) {
				t.Fatalf("oldest order decreases at %d", i)
			}
		}
	})
}

func TestCollection_UpdateProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		list := listGen().Draw(t, "list")
		if len(list) == 0 {
			t.Skip("nothing to update")
		}
		c := NewCollection(list)
		before := c.Backing()

		target := rapid.IntRange(0, len(before)-1).Draw(t, "target")
		updated := before[target]
		updated.Title = rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "newTitle")
		updated.Content = "changed"
		c.ApplyUpdate(updated)

		after := c.Backing()
		if len(after) != len(before) {
			t.Fatalf("size changed from %d to %d", len(before), len(after))
		}
		for i := range before {
			if i == target {
				if after[i] != updated {
					t.Fatalf("target not replaced")
				}
				continue
			}
			if after[i] != before[i] {
				t.Fatalf("note %s changed", before[i].ID)
			}
		}
	})
}

func TestCollection_CreateDeleteProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		list := listGen().Draw(t, "list")
		c := NewCollection(list)
		before := c.Backing()

		c.ApplySort(rapid.SampledFrom([]SortOrder{SortNewest, SortOldest}).Draw(t, "order"))
		created := noteGen(1000).Draw(t, "created")
		c.ApplyCreate(created)
		c.ApplyDelete(created.ID)

		if got := c.Backing(); len(got) != len(before) {
			t.Fatalf("backing has %d notes, want %d", len(got), len(before))
		}
		require.ElementsMatch(t, before, c.Backing())
	})
}
