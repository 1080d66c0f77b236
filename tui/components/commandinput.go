package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/tui/styles"
)

// CommandInputState is the ':' command line with its history.
type CommandInputState struct {
	Active    bool
	Input     []rune
	CursorPos int
	Result    string
	IsError   bool

	history []string
	// histPos indexes history while browsing; len(history) means the live line.
	histPos int
}

// CommandInput renders the prompt while active, else the last result.
func CommandInput(state CommandInputState, width int) string {
	line := styles.Bar.Width(width)
	if state.Active {
		prompt := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Render(":")
		text := lipgloss.NewStyle().Foreground(styles.LightLavender)
		pos := min(state.CursorPos, len(state.Input))
		shown := string(state.Input[:pos]) + "_" + string(state.Input[pos:])
		return line.Render(prompt + text.Render(shown))
	}
	if state.Result != "" {
		st := styles.Success
		if state.IsError {
			st = styles.Warning
		}
		return line.Render(" " + st.Render(state.Result))
	}
	return line.Render(" ")
}

// Activate opens an empty prompt.
func (s *CommandInputState) Activate() {
	s.Active = true
	s.Input = nil
	s.CursorPos = 0
	s.histPos = len(s.history)
}

func (s *CommandInputState) InsertChar(c rune) {
	pos := min(s.CursorPos, len(s.Input))
	s.Input = append(s.Input[:pos], append([]rune{c}, s.Input[pos:]...)...)
	s.CursorPos = pos + 1
}

func (s *CommandInputState) Backspace() {
	if s.CursorPos == 0 || len(s.Input) == 0 {
		return
	}
	pos := min(s.CursorPos, len(s.Input))
	s.Input = append(s.Input[:pos-1], s.Input[pos:]...)
	s.CursorPos = pos - 1
}

func (s *CommandInputState) Delete() {
	if s.CursorPos < len(s.Input) {
		s.Input = append(s.Input[:s.CursorPos], s.Input[s.CursorPos+1:]...)
	}
}

func (s *CommandInputState) MoveCursorLeft() {
	if s.CursorPos > 0 {
		s.CursorPos--
	}
}

func (s *CommandInputState) MoveCursorRight() {
	if s.CursorPos < len(s.Input) {
		s.CursorPos++
	}
}

// HistoryPrev recalls the previous command.
func (s *CommandInputState) HistoryPrev() {
	if s.histPos == 0 {
		return
	}
	s.histPos--
	s.setInput(s.history[s.histPos])
}

// HistoryNext walks forward again, ending on an empty line.
func (s *CommandInputState) HistoryNext() {
	if s.histPos >= len(s.history) {
		return
	}
	s.histPos++
	if s.histPos == len(s.history) {
		s.setInput("")
		return
	}
	s.setInput(s.history[s.histPos])
}

func (s *CommandInputState) setInput(v string) {
	s.Input = []rune(v)
	s.CursorPos = len(s.Input)
}

// Clear closes the prompt without running anything.
func (s *CommandInputState) Clear() {
	s.Input = nil
	s.CursorPos = 0
	s.Active = false
}

// Submit returns the entered command, records it in history and closes the
// prompt. Repeats of the last command are not recorded twice.
func (s *CommandInputState) Submit() string {
	cmd := string(s.Input)
	if cmd != "" && (len(s.history) == 0 || s.history[len(s.history)-1] != cmd) {
		s.history = append(s.history, cmd)
	}
	s.Clear()
	return cmd
}

func (s *CommandInputState) SetResult(msg string, isError bool) {
	s.Result = msg
	s.IsError = isError
}

func (s *CommandInputState) ClearResult() {
	s.Result = ""
	s.IsError = false
}
