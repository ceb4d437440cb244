package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/aussiebroadwan/stockroom/internal/notify"
	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// emit prints v as indented JSON, or rows as a table.
func (c *CLI) emit(asJSON bool, v any, headers []string, rows [][]string) error {
	if asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	if len(rows) == 0 {
		fmt.Fprintln(c.stdout, dimStyle.Render("(none)"))
		return nil
	}

	fmt.Fprintln(c.stdout, renderTable(headers, rows))
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// renderNotifications prints the notifications posted since the last call.
// Ids only grow, so the highest one shown marks the position.
func (c *CLI) renderNotifications(w io.Writer) {
	for _, n := range c.queue.List() {
		if n.ID <= c.shownID {
			continue
		}
		fmt.Fprintln(w, formatNotification(n))
		c.shownID = n.ID
	}
}

func formatNotification(n notify.Notification) string {
	switch n.Severity {
	case notify.SeveritySuccess:
		return successStyle.Render(fmt.Sprintf("✓ [%d] %s", n.ID, n.Message))
	case notify.SeverityError:
		return errorStyle.Render(fmt.Sprintf("✗ [%d] %s", n.ID, n.Message))
	default:
		return infoStyle.Render(fmt.Sprintf("• [%d] %s", n.ID, n.Message))
	}
}

func yesNo(f invsdk.Flag) string {
	if f {
		return "yes"
	}
	return "no"
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func optMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return money(*v)
}

func optString(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func optInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
