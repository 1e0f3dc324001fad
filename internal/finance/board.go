package finance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vicanso/go-charts/v2"
)

const (
	statusReached  = "🔥"
	statusTracking = "📈"
)

// Status returns the marker shown next to a snapshot.
func (s QuoteSnapshot) Status() string {
	if s.AchievementPct >= 100 {
		return statusReached
	}
	return statusTracking
}

// Won formats an amount with thousands separators and the won unit.
func Won(v int64) string {
	return humanize.Comma(v) + "원"
}

// FormatBoard renders a report as a plain-text board.
func FormatBoard(rep Report) string {
	var b strings.Builder
	b.WriteString("📊 Target board")
	if !rep.GeneratedAt.IsZero() {
		b.WriteString(" • " + rep.GeneratedAt.In(getSeoulTime()).Format("01/02 15:04 KST"))
	}
	b.WriteString("\n\n")
	if !rep.DirectoryReady {
		b.WriteString("⚠️ Symbol directory not ready yet, names cannot be resolved. Try /refresh in a moment.\n\n")
	}
	if len(rep.Snapshots) == 0 {
		b.WriteString("No quotes could be fetched. Check that the names match the listing (/search NAME).\n")
	}
	for _, s := range rep.Snapshots {
		fmt.Fprintf(&b, "%s %s\n  %s (%+.2f%%) • target %s • %.1f%%\n",
			s.DisplayName, s.Status(), Won(s.CurrentClose), s.DailyChangePct, Won(s.TargetPrice), s.AchievementPct)
	}
	var skipped []string
	for _, d := range rep.Diagnostics {
		if d.Kind == DiagDirectoryUnavailable {
			continue
		}
		skipped = append(skipped, d.String())
	}
	if len(skipped) > 0 {
		b.WriteString("\nSkipped:\n")
		for _, s := range skipped {
			b.WriteString("- " + s + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// MakeBoardChart renders achievement per snapshot as a bar chart. The
// y axis always reaches 100 so reached targets stand out.
func MakeBoardChart(snaps []QuoteSnapshot, at time.Time) ([]byte, error) {
	if len(snaps) == 0 {
		return nil, errors.New("no snapshots to chart")
	}
	names := make([]string, len(snaps))
	values := make([]float64, len(snaps))
	yMax := 100.0
	for i, s := range snaps {
		names[i] = s.DisplayName
		values[i] = s.AchievementPct
		if s.AchievementPct > yMax {
			yMax = s.AchievementPct
		}
	}
	yMax *= 1.1
	yMin := 0.0
	title := "Target achievement (%)"
	if !at.IsZero() {
		title += " • " + at.In(getSeoulTime()).Format("Jan 02 15:04")
	}
	width := 200 + 90*len(snaps)
	if width < 600 {
		width = 600
	}

	painter, err := charts.BarRender([][]float64{values},
		charts.TitleTextOptionFunc(title),
		charts.XAxisDataOptionFunc(names),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(480),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}
