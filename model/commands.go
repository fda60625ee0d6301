package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/electr1fy0/bluenote/notes"
)

func loadNotes(repo notes.Repository, gen int) tea.Cmd {
	return func() tea.Msg {
		list, err := repo.List(context.Background())
		return notesLoadedMsg{gen: gen, notes: list, err: err}
	}
}

// saveNote submits a copy of the draft so the mounted form is never
// touched off the event loop.
func saveNote(repo notes.Repository, gen, formID int, draft notes.Draft) tea.Cmd {
	created := draft.IsNew()
	return func() tea.Msg {
		n, err := draft.Submit(context.Background(), repo)
		return noteSavedMsg{gen: gen, formID: formID, created: created, note: n, err: err}
	}
}

func deleteNote(repo notes.Repository, gen int, n notes.Note) tea.Cmd {
	return func() tea.Msg {
		err := repo.Delete(context.Background(), n.ID)
		return noteDeletedMsg{gen: gen, id: n.ID, title: n.Title, err: err}
	}
}
