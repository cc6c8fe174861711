package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ImageListModel - Interactive image selection
// =============================================================================

// ImageEntry is one dataset image presented in the interactive picker.
type ImageEntry struct {
	Path      string
	Name      string
	Width     int
	Height    int
	Skeletons int
	HasLabel  bool
}

// ImageSelection holds the result of the image selection.
type ImageSelection struct {
	Entry *ImageEntry
}

// ImageListModel is the bubbletea model for interactive image selection.
type ImageListModel struct {
	Entries  []ImageEntry
	Cursor   int
	Selected *ImageSelection
	Height   int
	Offset   int
}

// NewImageListModel creates a new image list model.
func NewImageListModel(entries []ImageEntry) ImageListModel {
	return ImageListModel{
		Entries: entries,
		Cursor:  0,
		Height:  15,
		Offset:  0,
	}
}

func (m ImageListModel) Init() tea.Cmd {
	return nil
}

func (m ImageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			entry := m.Entries[m.Cursor]
			m.Selected = &ImageSelection{Entry: &entry}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ImageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Image"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		size := "—"
		if e.Width > 0 && e.Height > 0 {
			size = fmt.Sprintf("%dx%d", e.Width, e.Height)
		}

		skeletons := "—"
		if e.Skeletons > 0 {
			skeletons = fmt.Sprintf("%d", e.Skeletons)
		}

		label := ""
		if e.HasLabel {
			label = "✓"
		}

		rows = append(rows, []string{cursor, e.Name, size, skeletons, label})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Image", "Size", "Skeletons", "Labeled").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}
			e := m.Entries[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 2 {
				base = base.Foreground(colorDim)
			}

			if isCurrent {
				if e.HasLabel {
					if col != 2 {
						return base.Foreground(colorGreen).Bold(true)
					}
					return base.Bold(true)
				}
				return base.Foreground(colorGray).Bold(true)
			} else if e.HasLabel {
				if col != 2 {
					return base.Foreground(colorGreen)
				}
				return base
			}
			return base.Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}
