package notes

import (
	"context"
	"strings"
)

const (
	FieldTitle   = "title"
	FieldContent = "content"
)

// Draft is the unsaved form state for one note. A Draft with an empty id
// creates a note on submit; otherwise it updates the note with that id.
type Draft struct {
	id      string
	Title   string
	Content string

	// per-field validation messages from the last Submit
	errs map[string]string
}

func NewDraft() *Draft {
	return &Draft{}
}

func EditDraft(n Note) *Draft {
	return &Draft{id: n.ID, Title: n.Title, Content: n.Content}
}

func (d *Draft) ID() string { return d.id }
func (d *Draft) IsNew() bool { return d.id == "" }
func (d *Draft) Empty() bool { return d.Title == "" && d.Content == "" }

// FieldError returns the validation message recorded for field, if any.
func (d *Draft) FieldError(field string) string {
	return d.errs[field]
}

func (d *Draft) Valid() bool {
	return len(d.errs) == 0
}

// Validate checks both fields and records a message for each blank one.
func (d *Draft) Validate() error {
	d.errs = nil
	var first *ValidationError
	for _, f := range []struct{ name, value string }{
		{FieldTitle, d.Title},
		{FieldContent, d.Content},
	} {
		if strings.TrimSpace(f.value) != "" {
			continue
		}
		if d.errs == nil {
			d.errs = make(map[string]string, 2)
		}
		d.errs[f.name] = "Title and Content are required"
		if first == nil {
			first = &ValidationError{Field: f.name, Message: d.errs[f.name]}
		}
	}
	if first != nil {
		return first
	}
	return nil
}

// Submit validates the draft and sends it to repo. Nothing is sent when
// validation fails. On success the draft is cleared and the note the
// backend returned is handed back; on failure the draft is kept.
func (d *Draft) Submit(ctx context.Context, repo Repository) (Note, error) {
	if err := d.Validate(); err != nil {
		return Note{}, err
	}

	var (
		n   Note
		err error
	)
	if d.IsNew() {
		n, err = repo.Create(ctx, d.Title, d.Content)
	} else {
		n, err = repo.Update(ctx, d.id, d.Title, d.Content)
	}
	if err != nil {
		return Note{}, err
	}
	d.clear()
	return n, nil
}

// Cancel discards the draft.
func (d *Draft) Cancel() {
	d.clear()
}

func (d *Draft) clear() {
	d.Title = ""
	d.Content = ""
	d.errs = nil
}
