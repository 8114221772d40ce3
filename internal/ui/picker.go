package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"ytaudio/internal/models"
)

// Model is the track picker state. Every track starts selected and the
// user deselects what they don't want before confirming.
type Model struct {
	playlist  *models.Playlist
	trackList list.Model
	width     int
	height    int
	confirmed bool
	help      help.Model
	keys      keyMap
}

var _ tea.Model = (*Model)(nil)

// NewModel creates a picker over a resolved playlist with all tracks selected.
func NewModel(playlist *models.Playlist) *Model {
	items := make([]list.Item, len(playlist.Entries))
	for i, entry := range playlist.Entries {
		items[i] = trackItem{entry: entry, picked: true}
	}

	trackList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	trackList.Title = fmt.Sprintf("Tracks in '%s'", playlist.Title)
	trackList.SetShowHelp(false)
	trackList.SetFilteringEnabled(false)

	return &Model{
		playlist:  playlist,
		trackList: trackList,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.trackList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.confirmed = false
			return m, tea.Quit
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case " ":
			return m, m.toggleCurrent()
		case "a":
			return m, m.setAll(true)
		case "n":
			return m, m.setAll(false)
		}
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

// View renders the track list with selection marks and contextual help.
func (m *Model) View() string {
	summary := styles.help.Render(fmt.Sprintf("%d of %d tracks selected", len(m.Selected()), m.playlist.TrackCount()))
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n%s\n\n%s", m.trackList.View(), summary, helpView)
}

// Confirmed reports whether the user confirmed the selection rather than
// cancelling out of the picker.
func (m *Model) Confirmed() bool { return m.confirmed }

// Selected returns the picked entries in playlist order.
func (m *Model) Selected() []models.TrackEntry {
	var entries []models.TrackEntry
	for _, item := range m.trackList.Items() {
		if i, ok := item.(trackItem); ok && i.picked {
			entries = append(entries, i.entry)
		}
	}
	return entries
}

func (m *Model) toggleCurrent() tea.Cmd {
	idx := m.trackList.Index()
	item, ok := m.trackList.SelectedItem().(trackItem)
	if !ok {
		return nil
	}
	item.picked = !item.picked
	return m.trackList.SetItem(idx, item)
}

func (m *Model) setAll(picked bool) tea.Cmd {
	var cmds []tea.Cmd
	for idx, li := range m.trackList.Items() {
		if item, ok := li.(trackItem); ok && item.picked != picked {
			item.picked = picked
			cmds = append(cmds, m.trackList.SetItem(idx, item))
		}
	}
	return tea.Batch(cmds...)
}

// SelectTracks runs the picker and returns the confirmed entries. A nil
// slice with nil error means the user cancelled.
func SelectTracks(playlist *models.Playlist) ([]models.TrackEntry, error) {
	model := NewModel(playlist)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, fmt.Errorf("track picker failed: %w", err)
	}

	picker, ok := final.(*Model)
	if !ok || !picker.Confirmed() {
		return nil, nil
	}
	return picker.Selected(), nil
}
