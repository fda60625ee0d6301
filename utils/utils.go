package utils

import (
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

// EditorFinishedMsg carries the edited text back into the program.
type EditorFinishedMsg struct {
	Content string
	Err     error
}

// Editor picks $EDITOR, then nvim, then vi, then ed.
func Editor() string {
	if ed := os.Getenv("EDITOR"); ed != "" {
		return ed
	}
	for _, name := range []string{"nvim", "vi"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return "ed"
}

// OpenEditorWithContent suspends the program, edits initial in a temp file
// and reports the result as an EditorFinishedMsg.
func OpenEditorWithContent(initial string) tea.Cmd {
	tmp, err := os.CreateTemp("", "bluenote-*.md")
	if err != nil {
		return func() tea.Msg { return EditorFinishedMsg{Content: initial, Err: err} }
	}
	tmpName := tmp.Name()
	_, err = tmp.WriteString(initial)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return func() tea.Msg { return EditorFinishedMsg{Content: initial, Err: err} }
	}

	return tea.ExecProcess(exec.Command(Editor(), tmpName), func(err error) tea.Msg {
		return readBack(tmpName, initial, err)
	})
}

func readBack(path, initial string, runErr error) EditorFinishedMsg {
	defer os.Remove(path)
	if runErr != nil {
		return EditorFinishedMsg{Content: initial, Err: runErr}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return EditorFinishedMsg{Content: initial, Err: err}
	}
	return EditorFinishedMsg{Content: string(b)}
}
