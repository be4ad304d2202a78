package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/hr-attrition/internal/insights"
	"github.com/Veraticus/hr-attrition/internal/ml"
	"github.com/Veraticus/hr-attrition/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// RenderTable lays out rows under headers with left-aligned columns.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = style.Width(widths[i] + 2).Render(cell)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, line(headers, TableHeaderStyle))
	for _, row := range rows {
		lines = append(lines, line(row, TableCellStyle))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// RenderPrediction renders a prediction as a box with the risk label,
// probability and the associate's details.
func RenderPrediction(p *model.Prediction) string {
	riskStyle := LowRiskStyle
	if p.Class == 1 {
		riskStyle = HighRiskStyle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render("Risk:"), riskStyle.Render(p.Label))
	fmt.Fprintf(&b, "%s %.2f%%\n", BoldStyle.Render("Probability of leaving:"), p.Probability)
	if p.ModelID != "" {
		fmt.Fprintf(&b, "%s\n", SubtleStyle.Render("model "+p.ModelID))
	}

	keys := make([]string, 0, len(p.Details))
	for k := range p.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, FormatValue(p.Details[k])})
	}
	if len(rows) > 0 {
		b.WriteString("\n")
		b.WriteString(RenderTable([]string{"Field", "Value"}, rows))
	}

	return RenderBox(PeopleIcon+" "+p.Name, strings.TrimRight(b.String(), "\n"))
}

// RenderReport renders evaluation metrics and the confusion matrix.
func RenderReport(r *ml.Report) string {
	rows := make([][]string, 0, len(r.Classes)+3)
	for _, m := range r.Classes {
		rows = append(rows, metricsRow(strconv.Itoa(m.Label), m))
	}
	rows = append(rows,
		[]string{"accuracy", "", "", fmt.Sprintf("%.2f", r.Accuracy), strconv.Itoa(r.Support)},
		metricsRow("macro avg", r.MacroAvg),
		metricsRow("weighted avg", r.WeightedAvg),
	)

	metrics := RenderTable([]string{"", "precision", "recall", "f1-score", "support"}, rows)

	headers := []string{"true \\ predicted"}
	for _, l := range r.Labels {
		headers = append(headers, strconv.Itoa(l))
	}
	confusion := make([][]string, 0, len(r.Confusion))
	for i, row := range r.Confusion {
		cells := []string{strconv.Itoa(r.Labels[i])}
		for _, v := range row {
			cells = append(cells, strconv.Itoa(v))
		}
		confusion = append(confusion, cells)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		metrics,
		"",
		SubtitleStyle.Render("Confusion matrix"),
		RenderTable(headers, confusion),
	)
}

func metricsRow(label string, m ml.ClassMetrics) []string {
	return []string{
		label,
		fmt.Sprintf("%.2f", m.Precision),
		fmt.Sprintf("%.2f", m.Recall),
		fmt.Sprintf("%.2f", m.F1),
		strconv.Itoa(m.Support),
	}
}

// RenderBreakdown renders one breakdown with a share column.
func RenderBreakdown(b insights.Breakdown) string {
	title := SubtitleStyle.Bold(true).Render(b.Title)
	if len(b.Counts) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, SubtleStyle.Render("  no data"))
	}

	total := b.Total()
	rows := make([][]string, 0, len(b.Counts))
	for _, c := range b.Counts {
		share := 100 * float64(c.Count) / float64(total)
		rows = append(rows, []string{c.Value, strconv.Itoa(c.Count), fmt.Sprintf("%.1f%%", share)})
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, RenderTable([]string{"Value", "Count", "Share"}, rows))
}

// RenderSummary renders every breakdown of a population summary.
func RenderSummary(s *insights.Summary) string {
	header := fmt.Sprintf("%s associates, %s active",
		BoldStyle.Render(strconv.Itoa(s.Total)), BoldStyle.Render(strconv.Itoa(s.Active)))

	sections := []string{
		header,
		RenderBreakdown(s.Departments),
		RenderBreakdown(s.Recruitment),
		RenderBreakdown(s.Genders),
		RenderBreakdown(s.Locations),
		RenderBreakdown(s.TerminationReasons),
	}
	for _, b := range s.GenderByDepartment {
		b.Title = "Gender in " + b.Title
		sections = append(sections, RenderBreakdown(b))
	}

	return strings.Join(sections, "\n\n")
}

// RenderCard renders an insight card.
func RenderCard(c *insights.Card) string {
	rows := make([][]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		rows = append(rows, []string{BoldStyle.Render(f.Label), f.Value})
	}

	lines := make([]string, 0, len(rows))
	width := 0
	for _, r := range rows {
		if w := lipgloss.Width(r[0]); w > width {
			width = w
		}
	}
	for _, r := range rows {
		lines = append(lines, lipgloss.NewStyle().Width(width+2).Render(r[0])+r[1])
	}

	return RenderBox(PeopleIcon+" "+c.Name, strings.Join(lines, "\n"))
}

// RenderRecords renders a short listing of records.
func RenderRecords(records []model.Record) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		status, _ := r.Status()
		rows = append(rows, []string{r.ID(), r.Name(), r.Department(), status})
	}
	return RenderTable([]string{"ID", "Name", "Department", "Status"}, rows)
}

// RenderRecord renders every field of one record, sorted by name.
func RenderRecord(r model.Record) string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, FormatValue(r[k])})
	}
	return RenderTable([]string{"Field", "Value"}, rows)
}

// RenderTrainingRuns renders training history, newest first as given.
func RenderTrainingRuns(runs []model.TrainingRun) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		accuracy := "-"
		if run.Accuracy != nil {
			accuracy = fmt.Sprintf("%.2f", *run.Accuracy)
		}
		degraded := ""
		if run.Degraded {
			degraded = WarningIcon
		}
		rows = append(rows, []string{
			run.TrainedAt.Local().Format("2006-01-02 15:04"),
			run.ID,
			strconv.Itoa(run.Samples),
			strconv.Itoa(run.Features),
			accuracy,
			degraded,
		})
	}
	return RenderTable([]string{"Trained", "Model", "Samples", "Features", "Accuracy", "Degraded"}, rows)
}

// FormatValue renders a record value for display. Whole floats print
// without a fraction; nil prints as "-".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
