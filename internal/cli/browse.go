package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aarondoran/TerminalTasks/internal/model"
	"github.com/Aarondoran/TerminalTasks/internal/store"
	"github.com/Aarondoran/TerminalTasks/internal/ui"
)

// listItem adapts a task to bubbles/list.Item. pos is the 0-based
// position the task has (or will have) in the store.
type listItem struct {
	pos  int
	task model.Task
}

func (i listItem) Title() string       { return i.task.Description }
func (i listItem) Description() string { return i.task.Date }
func (i listItem) FilterValue() string { return i.task.Description }

type browser struct {
	list list.Model

	// Inline add
	adding bool
	ti     textinput.Model
	addErr string

	// Pending changes, applied to the store on quit.
	added  []string
	marked map[int]bool
	abort  bool

	// now dates tasks added in the browser before they are saved; the
	// store stamps the persisted date.
	now func() time.Time

	width, height int
}

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	box := t.Muted.Render(t.BoxUnchecked)
	text := it.task.Description
	if it.task.Done {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}
	line := fmt.Sprintf("%2d. %s %s %s", it.pos+1, box, text, t.Muted.Render(it.task.Date))
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprint(w, prefix+line)
}

var (
	markBind = key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "mark done"))
	addBind  = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	quitBind = key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "save & quit"))
)

func newBrowser(entries []store.Entry, now func() time.Time) browser {
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, listItem{pos: e.Index - 1, task: e.Task})
	}

	l := list.New(items, itemDelegate{}, 76, 20)
	l.Title = "Todos"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.SetStatusBarItemName("task", "tasks")
	l.KeyMap.Quit.SetEnabled(false)
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{markBind, addBind, quitBind} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{markBind, addBind, quitBind} }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New task..."
	ti.CharLimit = 200

	b := browser{
		list:   l,
		ti:     ti,
		marked: map[int]bool{},
		now:    now,
		width:  80,
		height: 24,
	}
	b.refreshTitle()
	return b
}

func (m *browser) refreshTitle() {
	var done, pending int
	for _, it := range m.list.Items() {
		if li, ok := it.(listItem); ok && li.task.Done {
			done++
		} else {
			pending++
		}
	}
	m.list.Title = ui.Header(done, pending)
}

func (m browser) Init() tea.Cmd { return nil }

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
		return m, nil
	}

	// add mode
	if m.adding {
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "enter":
				title := m.ti.Value()
				if strings.TrimSpace(title) == "" {
					m.addErr = "Task cannot be empty"
					return m, nil
				}
				pos := len(m.list.Items())
				task, _ := model.NewTask(title, m.now())
				cmd := m.list.InsertItem(pos, listItem{pos: pos, task: task})
				m.list.Select(pos)
				m.added = append(m.added, title)
				m.ti.SetValue("")
				m.ti.Blur()
				m.adding = false
				m.addErr = ""
				m.refreshTitle()
				return m, cmd
			case "esc":
				m.adding = false
				m.addErr = ""
				m.ti.SetValue("")
				m.ti.Blur()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c":
			m.abort = true
			return m, tea.Quit
		case "q", "esc":
			return m, tea.Quit
		case " ", "enter":
			i := m.list.Index()
			if i >= 0 && i < len(m.list.Items()) {
				if li, ok := m.list.Items()[i].(listItem); ok && !li.task.Done {
					li.task.Done = true
					m.list.SetItem(i, li)
					m.marked[li.pos] = true
					m.refreshTitle()
				}
			}
			return m, nil
		case "a":
			m.adding = true
			m.ti.SetValue("")
			return m, m.ti.Focus()
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browser) View() string {
	listHeight := m.height - 4
	if m.adding {
		listHeight = m.height - 8
	}
	if listHeight < 1 {
		listHeight = 1
	}
	m.list.SetSize(m.width-4, listHeight)

	content := m.list.View()
	if m.adding {
		bar := lipgloss.NewStyle().
			Border(ui.Current().Border).
			BorderForeground(ui.Current().BorderColor).
			Padding(0, 1)
		title := "Add task"
		if m.addErr != "" {
			title += ": " + ui.Current().Error.Render(m.addErr)
		}
		content += "\n" + bar.Render(title+"\n"+m.ti.View())
	}
	return ui.PanelString([]string{content})
}

// changed reports whether quitting should touch storage.
func (m browser) changed() bool {
	return !m.abort && (len(m.added) > 0 || len(m.marked) > 0)
}

// apply saves the session in one write. Additions go first so marks on
// newly added tasks find their positions.
func (m browser) apply(ctx context.Context, s *store.Store) error {
	if !m.changed() {
		return nil
	}
	positions := make([]int, 0, len(m.marked))
	for pos := range m.marked {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return s.Apply(ctx, m.added, positions)
}

// runBrowser starts the Bubble Tea list and persists changes when quitting.
func runBrowser(ctx context.Context, s *store.Store, opt Options) error {
	p := tea.NewProgram(newBrowser(s.List(), opt.Now), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	fm, ok := final.(browser)
	if !ok || !fm.changed() {
		return nil
	}
	if err := fm.apply(ctx, s); err != nil {
		return err
	}
	ui.OK(opt.Stdout, fmt.Sprintf("saved: %d added, %d marked done", len(fm.added), len(fm.marked)))
	return nil
}
