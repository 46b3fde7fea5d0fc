package telemetry

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// RenderRecord formats one record as a single console line.
func RenderRecord(src Source, r Record) string {
	return fmt.Sprintf("%s %s %s %s %s %s %s %s %s",
		dimStyle.Render(time.Now().Format("15:04:05")),
		dimStyle.Render(fmt.Sprintf("[%s]", src)),
		labelStyle.Render("up:"),
		valueStyle.Render(fmt.Sprintf("%dms", r.TS)),
		labelStyle.Render("temp:"),
		valueStyle.Render(fmt.Sprintf("%dC", r.I2C)),
		labelStyle.Render("can:"),
		valueStyle.Render(r.CAN101),
		dimStyle.Render(r.CAN120),
	)
}

// RenderStats formats the accumulated counters.
func RenderStats(s *Stats) string {
	line := fmt.Sprintf("%s %s udp=%d tcp=%d",
		labelStyle.Render("records:"),
		valueStyle.Render(fmt.Sprintf("%d", s.Total())),
		s.UDPRecords, s.TCPRecords)
	if s.ParseErrs > 0 {
		line += " " + errStyle.Render(fmt.Sprintf("errors=%d", s.ParseErrs))
	}
	return line
}
