package model

import (
	"fmt"
	"strings"
)

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("bluenote"))
	s.WriteString("\n\n")

	switch m.state {
	case stateSearch:
		s.WriteString("Search notes:\n\n")
		s.WriteString(m.searchInput.View())
		s.WriteString("\n\n")
		s.WriteString(m.list.View())
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("enter: keep results • esc: clear search"))

	case stateConfirm:
		s.WriteString(warningStyle.Render(m.confirmMsg))
		s.WriteString("\n\n")
		s.WriteString(m.help.ShortHelpView(m.keys.confirmHelp()))

	case stateForm:
		if m.form != nil {
			m.formView(&s)
		}

	case stateView:
		s.WriteString(labelStyle.Render(m.current.Title))
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("Created At: " + formatTime(m.current.CreatedAt)))
		s.WriteString("\n")
		s.WriteString(m.viewContent)
		s.WriteString("\n")
		s.WriteString(m.help.ShortHelpView(m.keys.viewHelp()))

	default:
		m.listView(&s)
	}

	if m.status != "" {
		s.WriteString("\n\n")
		if m.lastError != "" {
			s.WriteString(notificationBox.Render(errorStyle.Render(m.lastError) + helpStyle.Render("  (x to dismiss)")))
		} else {
			s.WriteString(successStyle.Render(m.status))
		}
	}
	return s.String()
}

func (m Model) listView(s *strings.Builder) {
	switch {
	case m.loading && m.coll.Len() == 0:
		s.WriteString("Loading notes...\n")
	case m.coll.Len() == 0:
		s.WriteString("No notes yet. Press a to add one.\n")
	case len(m.list.Items()) == 0:
		fmt.Fprintf(s, "No notes match '%s'.\n", m.coll.SearchTerm())
	default:
		s.WriteString(m.list.View())
		s.WriteString("\n")
	}

	info := sortLabel(m.coll.SortOrder())
	if term := m.coll.SearchTerm(); term != "" {
		info += fmt.Sprintf(" • search: '%s'", term)
	}
	s.WriteString(helpStyle.Render(info))
	s.WriteString("\n")
	s.WriteString(m.help.ShortHelpView(m.keys.listHelp()))
}
