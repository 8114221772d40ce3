package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"ytaudio/internal/formatter"
	"ytaudio/internal/meta"
	"ytaudio/internal/models"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.TrackEntry] to implement [list.Item]. The picked
// flag is flipped in place via [list.Model.SetItem] when the user toggles
// a track.
type trackItem struct {
	entry  models.TrackEntry
	picked bool
}

func (i trackItem) FilterValue() string { return i.entry.Title }

func (i trackItem) Title() string {
	mark := "[ ]"
	if i.picked {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %02d. %s", mark, i.entry.Index, meta.CleanTitle(i.entry.Title))
}

func (i trackItem) Description() string {
	desc := i.entry.Uploader
	if i.entry.DurationSecs > 0 {
		desc = fmt.Sprintf("%s • %s", desc, formatter.FormatDuration(i.entry.DurationSecs))
	}
	return desc
}
