package model

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/electr1fy0/bluenote/notes"
)

type state int

const (
	stateList state = iota
	stateView
	stateSearch
	stateConfirm
	stateForm
)

type listItem struct {
	note notes.Note
}

// notesLoadedMsg answers the List call issued for view generation gen.
type notesLoadedMsg struct {
	gen   int
	notes []notes.Note
	err   error
}

type noteSavedMsg struct {
	gen     int
	formID  int
	created bool
	note    notes.Note
	err     error
}

type noteDeletedMsg struct {
	gen   int
	id    string
	title string
	err   error
}

// noteForm is the mounted edit surface. id distinguishes it from forms
// that were open earlier so late answers can be dropped.
type noteForm struct {
	id         int
	draft      *notes.Draft
	title      textinput.Model
	content    textarea.Model
	focus      int

	// widget values right after pre-filling; the widgets sanitize what
	// they are given, so only a changed value is copied back
	loadedTitle   string
	loadedContent string

	submitting bool
}

type Options struct {
	// MarkdownStyle is a glamour standard style name ("dark", "light", "notty").
	MarkdownStyle string
	// Clipboard defaults to atotto/clipboard.
	Clipboard func(string) error
}

type Model struct {
	state state

	width  int
	height int

	repo notes.Repository

	// gen identifies the mounted list view; coll is owned by it.
	gen     int
	coll    *notes.Collection
	loading bool

	list        list.Model
	searchInput textinput.Model

	current     notes.Note
	viewContent string

	form    *noteForm
	formSeq int

	confirmMsg  string
	confirmNote notes.Note
	returnTo    state

	status    string
	lastError string

	keys keyMap
	help help.Model
	opts Options
}
