package model

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/electr1fy0/bluenote/api"
	"github.com/electr1fy0/bluenote/notes"
	"github.com/electr1fy0/bluenote/utils"
	"github.com/muesli/reflow/truncate"
)

const previewWidth = 185

func (i listItem) FilterValue() string { return i.note.Title }

func (i listItem) Title() string { return i.note.Title }

func (i listItem) Description() string {
	preview := truncate.StringWithTail(strings.Join(strings.Fields(i.note.Content), " "), previewWidth, "...")
	return preview + "\nCreated At: " + formatTime(i.note.CreatedAt)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func sortLabel(o notes.SortOrder) string {
	if o == notes.SortOldest {
		return "oldest first"
	}
	return "newest first"
}

func New(repo notes.Repository, opts Options) Model {
	si := textinput.New()
	si.Placeholder = "search notes..."
	si.CharLimit = 100
	si.Width = 40

	d := list.NewDefaultDelegate()
	d.SetHeight(3)

	l := list.New([]list.Item{}, d, 0, 0)
	l.Title = "Notes"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = "dark"
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	return Model{
		state:       stateList,
		repo:        repo,
		gen:         1,
		coll:        notes.NewCollection(nil),
		loading:     true,
		list:        l,
		searchInput: si,
		keys:        defaultKeyMap(),
		help:        help.New(),
		opts:        opts,
	}
}

func (m Model) Init() tea.Cmd {
	return loadNotes(m.repo, m.gen)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetWidth(msg.Width - 4)
		m.list.SetHeight(msg.Height - 8)
		m.help.Width = msg.Width
		if m.form != nil {
			m.form.resize(msg.Width, msg.Height)
		}
		if m.state == stateView {
			m.viewContent = renderNote(m.current.Content, m.opts.MarkdownStyle, m.width)
		}
		return m, nil
	case notesLoadedMsg:
		return m.handleLoaded(msg), nil
	case noteSavedMsg:
		return m.handleSaved(msg), nil
	case noteDeletedMsg:
		return m.handleDeleted(msg), nil
	case utils.EditorFinishedMsg:
		return m.handleEditorFinished(msg), nil
	}

	switch m.state {
	case stateSearch:
		return m.updateSearch(msg)
	case stateConfirm:
		return m.updateConfirm(msg)
	case stateForm:
		return m.updateForm(msg)
	case stateView:
		return m.updateView(msg)
	}
	return m.updateList(msg)
}

func (m Model) handleLoaded(msg notesLoadedMsg) Model {
	if msg.gen != m.gen {
		log.Printf("dropping notes for unmounted view %d (current %d)", msg.gen, m.gen)
		return m
	}
	m.loading = false
	if msg.err != nil {
		log.Printf("Error fetching notes: %v", msg.err)
		m.setError("Could not load notes, showing the last list")
		return m
	}

	coll := notes.NewCollection(msg.notes)
	coll.ApplySearch(m.coll.SearchTerm())
	coll.ApplySort(m.coll.SortOrder())
	m.coll = coll
	m.refreshList()
	m.setStatus(fmt.Sprintf("Loaded %d notes", coll.Len()))
	return m
}

func (m Model) handleSaved(msg noteSavedMsg) Model {
	mounted := m.form != nil && m.form.id == msg.formID
	if msg.err != nil {
		log.Printf("save note failed: %v", msg.err)
		if mounted {
			m.form.submitting = false
		}
		verb := "updating"
		if msg.created {
			verb = "adding"
		}
		m.setError(errorMessage(verb, msg.err))
		return m
	}

	if msg.gen == m.gen {
		if msg.created {
			m.coll.ApplyCreate(msg.note)
		} else if !m.coll.ApplyUpdate(msg.note) {
			log.Printf("updated note %s is not in the current view", msg.note.ID)
		}
		m.refreshList()
	} else {
		log.Printf("dropping saved note %s for unmounted view %d", msg.note.ID, msg.gen)
	}

	if mounted {
		m.form.draft.Cancel()
		m.form = nil
		if m.state == stateForm {
			m.state = stateList
		}
	}
	if msg.created {
		m.setStatus("Note added successfully!")
	} else {
		m.setStatus("Note updated successfully")
	}
	return m
}

func (m Model) handleDeleted(msg noteDeletedMsg) Model {
	if msg.err != nil {
		log.Printf("delete note %s failed: %v", msg.id, msg.err)
		m.setError(errorMessage("deleting", msg.err))
		return m
	}
	if msg.gen == m.gen {
		m.coll.ApplyDelete(msg.id)
		m.refreshList()
	}
	if m.state == stateView && m.current.ID == msg.id {
		m.state = stateList
	}
	m.setStatus("Deleted: " + msg.title)
	return m
}

func (m Model) handleEditorFinished(msg utils.EditorFinishedMsg) Model {
	if m.form == nil {
		return m
	}
	if msg.Err != nil {
		m.setError("Editor failed: " + msg.Err.Error())
		return m
	}
	m.form.content.SetValue(strings.TrimRight(msg.Content, "\n"))
	return m
}

func errorMessage(verb string, err error) string {
	switch {
	case errors.Is(err, notes.ErrNetwork):
		return "Error: cannot reach the notes server"
	case errors.Is(err, notes.ErrNotFound):
		return "Error: the note no longer exists"
	}
	if apiErr := api.AsError(err); apiErr != nil && apiErr.Message != "" {
		return "Error: " + apiErr.Message
	}
	return "An error occurred while " + verb + " the Note"
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		// an error notification lasts until the next key
		if m.lastError != "" {
			m.clearStatus()
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Search):
			m.searchInput.SetValue(m.coll.SearchTerm())
			m.searchInput.CursorEnd()
			m.state = stateSearch
			return m, m.searchInput.Focus()
		case key.Matches(msg, m.keys.Sort):
			m.coll.ApplySort(m.coll.SortOrder().Toggle())
			m.refreshList()
			m.setStatus("Sorted " + sortLabel(m.coll.SortOrder()))
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.gen++
			m.loading = true
			m.setStatus("Reloading notes...")
			return m, loadNotes(m.repo, m.gen)
		case key.Matches(msg, m.keys.Dismiss):
			m.clearStatus()
			return m, nil
		case key.Matches(msg, m.keys.Add):
			return m.openForm(notes.NewDraft())
		case key.Matches(msg, m.keys.Edit):
			if n, ok := m.selected(); ok {
				return m.openForm(notes.EditDraft(n))
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if n, ok := m.selected(); ok {
				m.askDelete(n)
			}
			return m, nil
		case key.Matches(msg, m.keys.Open):
			if n, ok := m.selected(); ok {
				m.openNote(n)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			m.searchInput.Blur()
			m.state = stateList
			m.setStatus(fmt.Sprintf("Search: '%s' (%d results)", m.coll.SearchTerm(), len(m.list.Items())))
			return m, nil
		case "esc":
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.coll.ApplySearch("")
			m.refreshList()
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if term := m.searchInput.Value(); term != m.coll.SearchTerm() {
		m.coll.ApplySearch(term)
		m.refreshList()
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.state = m.returnTo
			m.setStatus("Deleting " + m.confirmNote.Title + "...")
			return m, deleteNote(m.repo, m.gen, m.confirmNote)
		case key.Matches(msg, m.keys.Deny):
			m.state = m.returnTo
		}
	}
	return m, nil
}

func (m Model) updateView(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.lastError != "" {
			m.clearStatus()
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.state = stateList
		case key.Matches(msg, m.keys.Edit):
			return m.openForm(notes.EditDraft(m.current))
		case key.Matches(msg, m.keys.Delete):
			m.askDelete(m.current)
		case key.Matches(msg, m.keys.Copy):
			if err := m.opts.Clipboard(m.current.Content); err != nil {
				m.setError("Copy failed: " + err.Error())
			} else {
				m.setStatus("Copied note to clipboard")
			}
		case key.Matches(msg, m.keys.Dismiss):
			m.clearStatus()
		}
	}
	return m, nil
}

// selected returns the highlighted note as the collection currently holds it.
func (m *Model) selected() (notes.Note, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return notes.Note{}, false
	}
	return m.coll.Get(it.note.ID)
}

func (m *Model) openNote(n notes.Note) {
	m.current = n
	m.viewContent = renderNote(n.Content, m.opts.MarkdownStyle, m.width)
	m.state = stateView
}

func (m *Model) askDelete(n notes.Note) {
	m.confirmMsg = fmt.Sprintf("Delete note '%s'? (y/N)", n.Title)
	m.confirmNote = n
	m.returnTo = m.state
	m.state = stateConfirm
}

func (m *Model) refreshList() {
	projection := m.coll.Projection()
	items := make([]list.Item, 0, len(projection))
	for _, n := range projection {
		items = append(items, listItem{note: n})
	}
	m.list.SetItems(items)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.lastError = ""
}

func (m *Model) setError(s string) {
	m.status = s
	m.lastError = s
}

func (m *Model) clearStatus() {
	m.status = ""
	m.lastError = ""
}
