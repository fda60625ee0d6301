package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/electr1fy0/bluenote/notes"
	"github.com/electr1fy0/bluenote/utils"
)

const (
	focusTitle = iota
	focusContent
)

func newForm(id int, d *notes.Draft, width, height int) *noteForm {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 0
	ti.SetValue(d.Title)

	ta := textarea.New()
	ta.Placeholder = "Write your note in markdown..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetValue(d.Content)

	f := &noteForm{
		id:            id,
		draft:         d,
		title:         ti,
		content:       ta,
		loadedTitle:   ti.Value(),
		loadedContent: ta.Value(),
	}
	f.resize(width, height)
	return f
}

func (f *noteForm) resize(width, height int) {
	w := max(width-4, 20)
	f.title.Width = w
	f.content.SetWidth(w)
	f.content.SetHeight(max(height-14, 4))
}

func (f *noteForm) focusField(i int) tea.Cmd {
	f.focus = i
	if i == focusTitle {
		f.content.Blur()
		return f.title.Focus()
	}
	f.title.Blur()
	return f.content.Focus()
}

// sync copies the widget values the user changed into the draft.
func (f *noteForm) sync() {
	if v := f.title.Value(); v != f.loadedTitle {
		f.draft.Title = v
	}
	if v := f.content.Value(); v != f.loadedContent {
		f.draft.Content = v
	}
}

func (m Model) openForm(d *notes.Draft) (tea.Model, tea.Cmd) {
	m.formSeq++
	m.form = newForm(m.formSeq, d, m.width, m.height)
	m.state = stateForm
	return m, m.form.focusField(focusTitle)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := m.form
	if f == nil {
		m.state = stateList
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			f.draft.Cancel()
			m.form = nil
			m.state = stateList
			return m, nil
		case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
			return m, f.focusField(1 - f.focus)
		case key.Matches(msg, m.keys.Editor):
			return m, utils.OpenEditorWithContent(f.content.Value())
		case key.Matches(msg, m.keys.Submit):
			if f.submitting {
				return m, nil
			}
			f.sync()
			if err := f.draft.Validate(); err != nil {
				return m, nil
			}
			f.submitting = true
			m.setStatus("Saving...")
			return m, saveNote(m.repo, m.gen, f.id, *f.draft)
		}
	}

	var cmd tea.Cmd
	if f.focus == focusTitle {
		f.title, cmd = f.title.Update(msg)
	} else {
		f.content, cmd = f.content.Update(msg)
	}
	return m, cmd
}

func (m Model) formView(s *strings.Builder) {
	f := m.form
	heading := "Update Note"
	if f.draft.IsNew() {
		heading = "Add Note"
	}
	s.WriteString(labelStyle.Render(heading))
	s.WriteString("\n\n")

	label := func(name string, i int) string {
		if f.focus == i {
			return focusedLabel.Render(name)
		}
		return labelStyle.Render(name)
	}

	s.WriteString(label("Title", focusTitle) + "\n")
	s.WriteString(f.title.View() + "\n")
	if msg := f.draft.FieldError(notes.FieldTitle); msg != "" {
		s.WriteString(errorStyle.Render(msg) + "\n")
	}
	s.WriteString("\n")

	s.WriteString(label("Content", focusContent) + "\n")
	s.WriteString(f.content.View() + "\n")
	if msg := f.draft.FieldError(notes.FieldContent); msg != "" {
		s.WriteString(errorStyle.Render(msg) + "\n")
	}

	if f.submitting {
		s.WriteString("\n" + helpStyle.Render("saving...") + "\n")
	}
	s.WriteString("\n" + m.help.ShortHelpView(m.keys.formHelp()))
}
