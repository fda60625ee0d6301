package storage

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/electr1fy0/bluenote/notes"
	"github.com/google/uuid"
)

// Notebook is an in-memory note store, safe for concurrent use. It is the
// backing store of the development server.
type Notebook struct {
	mu sync.RWMutex

	Version int                    `json:"version"`
	Notes   map[string]*notes.Note `json:"notes"`

	now func() time.Time
}

var _ notes.Repository = (*Notebook)(nil)

func NewNotebook() *Notebook {
	return &Notebook{
		Version: 1,
		Notes:   make(map[string]*notes.Note),
		now:     time.Now,
	}
}

func (nb *Notebook) List(ctx context.Context) ([]notes.Note, error) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	out := make([]notes.Note, 0, len(nb.Notes))
	for _, n := range nb.Notes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (nb *Notebook) Create(ctx context.Context, title, content string) (notes.Note, error) {
	if err := checkFields(title, content); err != nil {
		return notes.Note{}, err
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()

	n := &notes.Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		CreatedAt: nb.clock().UTC(),
	}
	nb.Notes[n.ID] = n
	return *n, nil
}

func (nb *Notebook) Get(ctx context.Context, id string) (notes.Note, error) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	n, ok := nb.Notes[id]
	if !ok {
		return notes.Note{}, notes.ErrNotFound
	}
	return *n, nil
}

func (nb *Notebook) Update(ctx context.Context, id, title, content string) (notes.Note, error) {
	if err := checkFields(title, content); err != nil {
		return notes.Note{}, err
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()

	n, ok := nb.Notes[id]
	if !ok {
		return notes.Note{}, notes.ErrNotFound
	}
	n.Title = title
	n.Content = content
	return *n, nil
}

func (nb *Notebook) Delete(ctx context.Context, id string) error {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	if _, ok := nb.Notes[id]; !ok {
		return notes.ErrNotFound
	}
	delete(nb.Notes, id)
	return nil
}

// restore puts id back to prev, or removes it when prev is nil.
func (nb *Notebook) restore(id string, prev *notes.Note) {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	if prev == nil {
		delete(nb.Notes, id)
		return
	}
	n := *prev
	nb.Notes[id] = &n
}

func (nb *Notebook) ToJSON() ([]byte, error) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return json.Marshal(nb)
}

func FromJSON(data []byte) (*Notebook, error) {
	nb := NewNotebook()
	if err := json.Unmarshal(data, nb); err != nil {
		return nil, err
	}
	if nb.Notes == nil {
		nb.Notes = make(map[string]*notes.Note)
	}
	return nb, nil
}

func (nb *Notebook) clock() time.Time {
	if nb.now == nil {
		return time.Now()
	}
	return nb.now()
}

func checkFields(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return &notes.ValidationError{Field: notes.FieldTitle, Message: "title and content required"}
	}
	if strings.TrimSpace(content) == "" {
		return &notes.ValidationError{Field: notes.FieldContent, Message: "title and content required"}
	}
	return nil
}
