// Package ui implements an interactive track picker using bubbletea's Elm architecture.
//
// The picker shows a resolved playlist's tracks with all entries selected.
// Space toggles the highlighted track, a/n select all or none, enter confirms,
// and q or esc cancels. The (view) [Model] implements bubbletea's standard
// Init/Update/View pattern.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
