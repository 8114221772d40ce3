// package formatter renders playlist and history data for terminal display
// and exports run logs to CSV and Markdown.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ytaudio/internal/meta"
	"ytaudio/internal/models"
)

// FormatDuration renders a track duration in seconds as m:ss or h:mm:ss.
// Unknown (zero) durations render as a dash.
func FormatDuration(secs int) string {
	if secs <= 0 {
		return "-"
	}
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// RenderTrackTable renders a resolved playlist as a table: index, title,
// uploader, duration.
func RenderTrackTable(playlist *models.Playlist) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", "Uploader", "Duration"})

	for _, entry := range playlist.Entries {
		tw.AppendRow(table.Row{
			fmt.Sprintf("%02d", entry.Index),
			meta.CleanTitle(entry.Title),
			entry.Uploader,
			FormatDuration(entry.DurationSecs),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

// RenderHistoryTable renders past downloads as a table, newest first.
func RenderHistoryTable(downloads []*models.PersistedDownload) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", "Artist", "Album", "Duration", "Downloaded"})

	for _, d := range downloads {
		tw.AppendRow(table.Row{
			d.Sequence(),
			d.Title(),
			d.Artist(),
			d.Album(),
			FormatDuration(d.DurationSecs()),
			d.CreatedAt().Format("2006-01-02 15:04"),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

// ExportToCSV converts a run log to CSV format with columns: Track, VideoID, Title, Artist, Filename, Duration
func ExportToCSV(runLog *meta.RunLog) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Track", "VideoID", "Title", "Artist", "Filename", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range runLog.Tracks {
		record := []string{
			strconv.Itoa(track.TrackNumber),
			track.VideoID,
			track.Title,
			track.Artist,
			track.Filename,
			strconv.Itoa(track.DurationSecs),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a run log to Markdown format
func ExportToMarkdown(runLog *meta.RunLog) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", runLog.Album))
	buf.WriteString(fmt.Sprintf("**Album artist:** %s\n\n", runLog.AlbumArtist))
	buf.WriteString(fmt.Sprintf("**Source:** %s\n\n", runLog.PlaylistURL))
	buf.WriteString(fmt.Sprintf("**Downloaded:** %s\n\n", runLog.DownloadDate.Format("2006-01-02")))

	buf.WriteString("| # | Title | Artist | Duration |\n")
	buf.WriteString("|---|-------|--------|----------|\n")
	for _, track := range runLog.Tracks {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
			track.TrackNumber, track.Title, track.Artist, FormatDuration(track.DurationSecs)))
	}

	if len(runLog.Errors) > 0 {
		buf.WriteString("\n## Errors\n\n")
		for _, e := range runLog.Errors {
			buf.WriteString(fmt.Sprintf("- %s\n", e))
		}
	}

	return buf.Bytes(), nil
}
