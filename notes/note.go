package notes

import (
	"context"
	"encoding/json"
	"time"
)

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts "_id" when "id" is absent, as document stores send it.
func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Note(raw.plain)
	if n.ID == "" {
		n.ID = raw.MongoID
	}
	return nil
}

// Repository is the remote source of truth for notes.
type Repository interface {
	List(ctx context.Context) ([]Note, error)
	Create(ctx context.Context, title, content string) (Note, error)
	Update(ctx context.Context, id, title, content string) (Note, error)
	Delete(ctx context.Context, id string) error
}
