package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/bytecoding/codec"
	"github.com/wippyai/bytecoding/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newInspectCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <schema.yaml>",
		Short: "Browse resolved types interactively",
		Long: `Inspect opens a schema file in a terminal UI: a list of declared
types, and per type the resolved serialization order, union tags and
hook bindings. Types that fail to resolve show their diagnostic.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

func runInspect(filename string) error {
	p := tea.NewProgram(newInspectModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type inspectModel struct {
	err       error
	resolved  map[string]*codec.Resolved
	resErrs   map[string]error
	filename  string
	types     []*schema.Type
	filter    textinput.Model
	selected  int
	filtering bool
	state     modelState
}

type modelState int

const (
	stateSelectType modelState = iota
	stateShowType
)

func newInspectModel(filename string) *inspectModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter"
	ti.Width = 40
	return &inspectModel{
		filename: filename,
		filter:   ti,
		state:    stateSelectType,
	}
}

type loadedMsg struct {
	err      error
	types    []*schema.Type
	resolved map[string]*codec.Resolved
	resErrs  map[string]error
}

func (m *inspectModel) Init() tea.Cmd {
	return m.loadSchema
}

func (m *inspectModel) loadSchema() tea.Msg {
	f, err := schema.LoadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	types := f.Types.Types()
	resolved := make(map[string]*codec.Resolved, len(types))
	resErrs := make(map[string]error)
	for _, t := range types {
		r, err := codec.Resolve(t)
		if err != nil {
			resErrs[t.Name] = err
			continue
		}
		resolved[t.Name] = r
	}
	return loadedMsg{types: types, resolved: resolved, resErrs: resErrs}
}

// visible returns the types matching the current filter.
func (m *inspectModel) visible() []*schema.Type {
	query := strings.ToLower(m.filter.Value())
	if query == "" {
		return m.types
	}
	var out []*schema.Type
	for _, t := range m.types {
		if strings.Contains(strings.ToLower(t.Name), query) {
			out = append(out, t)
		}
	}
	return out
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.filtering = false
				m.filter.SetValue("")
				m.filter.Blur()
				m.selected = 0
				return m, nil
			case "enter":
				m.filtering = false
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.selected = 0
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.visible())-1 {
				m.selected++
			}

		case "/":
			if m.state == stateSelectType {
				m.filtering = true
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "enter":
			if m.state == stateSelectType && len(m.visible()) > 0 {
				m.state = stateShowType
			}

		case "esc":
			if m.state == stateShowType {
				m.state = stateSelectType
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.types = msg.types
		m.resolved = msg.resolved
		m.resErrs = msg.resErrs
	}

	return m, nil
}

func (m *inspectModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.types == nil {
		return "Loading schema..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Schema Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectType:
		if m.filtering || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}

		visible := m.visible()
		if len(visible) == 0 {
			b.WriteString(helpStyle.Render("no types match"))
			b.WriteString("\n")
		}
		for i, t := range visible {
			line := m.formatType(t)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • q quit"))

	case stateShowType:
		visible := m.visible()
		if m.selected >= len(visible) {
			m.state = stateSelectType
			return m.View()
		}
		t := visible[m.selected]
		b.WriteString(m.detailView(t))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • q quit"))
	}

	return b.String()
}

func (m *inspectModel) formatType(t *schema.Type) string {
	summary := ""
	switch t.Kind {
	case schema.Union:
		summary = strconv.Itoa(len(t.Variants)) + " variant(s)"
	default:
		summary = strconv.Itoa(len(t.Fields)) + " field(s)"
	}
	line := nameStyle.Render(t.Name) + " " + typeStyle.Render(t.Kind.String()) + " " + summary
	if _, bad := m.resErrs[t.Name]; bad {
		line += " " + errorStyle.Render("✗")
	}
	return line
}

func (m *inspectModel) detailView(t *schema.Type) string {
	var b strings.Builder

	b.WriteString(nameStyle.Render(t.Name))
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(t.Kind.String()))
	b.WriteString("\n\n")

	if err, ok := m.resErrs[t.Name]; ok {
		b.WriteString(errorStyle.Render(fmt.Sprintf("does not resolve:\n  %v", err)))
		b.WriteString("\n")
		return b.String()
	}
	r := m.resolved[t.Name]

	if hooks := formatHooks(r.Attrs); hooks != "" {
		b.WriteString("hooks: ")
		b.WriteString(typeStyle.Render(hooks))
		b.WriteString("\n\n")
	}

	if t.Kind == schema.Union {
		b.WriteString(fmt.Sprintf("tag width u%d", r.Attrs.TagWidth()))
		if r.Attrs.InferredTags() {
			b.WriteString(", inferred tags")
		}
		b.WriteString("\n\n")
		for _, rv := range r.Variants {
			v := t.Variants[rv.Index]
			b.WriteString("  ")
			b.WriteString(nameStyle.Render(rv.Name))
			b.WriteString(" = ")
			b.WriteString(tagStyle.Render(rv.Tag))
			b.WriteString("\n")
			writeFields(&b, "    ", v.Fields, rv.Fields)
		}
		return b.String()
	}

	b.WriteString("serialization order:\n")
	writeFields(&b, "  ", t.Fields, r.Fields)
	return b.String()
}

// writeFields renders payload or record fields in serialization order.
func writeFields(b *strings.Builder, indent string, fields []schema.Field, ordered []codec.ResolvedField) {
	for _, rf := range ordered {
		f := fields[rf.Index]
		b.WriteString(indent)
		b.WriteString(rf.Name)
		b.WriteString(": ")
		b.WriteString(typeStyle.Render(f.Type.String()))
		if rf.Ignore {
			b.WriteString(helpStyle.Render(" (ignored)"))
		}
		b.WriteString("\n")
	}
}

func formatHooks(attrs schema.TypeAttrs) string {
	var parts []string
	if attrs.PreEncode != "" {
		parts = append(parts, "pre_enc="+attrs.PreEncode)
	}
	if attrs.PostEncode != "" {
		parts = append(parts, "post_enc="+attrs.PostEncode)
	}
	if attrs.PreDecode != "" {
		parts = append(parts, "pre_dec="+attrs.PreDecode)
	}
	if attrs.PostDecode != "" {
		parts = append(parts, "post_dec="+attrs.PostDecode)
	}
	return strings.Join(parts, ", ")
}
