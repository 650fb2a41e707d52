package selector

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dtnitsch/cinii-translator/pkg/results"
	"github.com/dtnitsch/cinii-translator/pkg/translator"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	urlStyle     = lipgloss.NewStyle().Faint(true)
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// TUI lets the user tick results in a terminal checklist.
type TUI struct {
	In  io.Reader
	Out io.Writer
}

func (s TUI) SelectItems(ctx context.Context, set *results.Set) ([]string, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if s.In != nil {
		opts = append(opts, tea.WithInput(s.In))
	}
	if s.Out != nil {
		opts = append(opts, tea.WithOutput(s.Out))
	}

	final, err := tea.NewProgram(newChecklist(set), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}
	m := final.(checklist)
	if m.cancelled {
		return nil, translator.ErrSelectionCancelled
	}
	return m.selected(), nil
}

type checklist struct {
	entries   []results.Entry
	checked   []bool
	cursor    int
	done      bool
	cancelled bool
}

func newChecklist(set *results.Set) checklist {
	entries := set.Entries()
	return checklist{entries: entries, checked: make([]bool, len(entries))}
}

func (m checklist) Init() tea.Cmd { return nil }

func (m checklist) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case " ", "x":
		if len(m.checked) > 0 {
			m.checked[m.cursor] = !m.checked[m.cursor]
		}
	case "a":
		all := !m.allChecked()
		for i := range m.checked {
			m.checked[i] = all
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m checklist) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("Select items to import (%d found)", len(m.entries))))
	sb.WriteString("\n\n")
	for i, e := range m.entries {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		box := "[ ]"
		if m.checked[i] {
			box = checkedStyle.Render("[x]")
		}
		fmt.Fprintf(&sb, "%s%s %s %s\n", pointer, box, e.Title, urlStyle.Render(e.URL))
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("↑/↓ move • space toggle • a all • enter import • q cancel"))
	sb.WriteString("\n")
	return sb.String()
}

func (m checklist) allChecked() bool {
	for _, c := range m.checked {
		if !c {
			return false
		}
	}
	return true
}

// selected returns checked URLs in listing order.
func (m checklist) selected() []string {
	var urls []string
	for i, c := range m.checked {
		if c {
			urls = append(urls, m.entries[i].URL)
		}
	}
	return urls
}
