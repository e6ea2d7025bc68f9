package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
)

// FormatAssignments renders a node's direct assignments as a table.
func FormatAssignments(views []contract.AssignmentView) string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		latest := Dim("--")
		if len(v.Measurements) > 0 {
			m := v.Measurements[0]
			latest = fmt.Sprintf("%s on %s", m.Value, FormatDate(m.Date))
		}
		rows = append(rows, []string{
			v.Type,
			v.MaxValue.String(),
			latest,
			RenderProgress(v.Percentage, 10),
			Bool(v.ReportGlobal),
		})
	}
	return RenderTable([]string{"TYPE", "MAX", "LATEST", "PROGRESS", "GLOBAL"}, rows)
}

// FormatIndirect renders the assignments a group derives from below.
func FormatIndirect(views []contract.IndirectView) string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		contributors := Dim("all children")
		if v.Type != domain.AdvanceTypeChildren {
			contributors = strconv.Itoa(v.Contributors)
		}
		global := Bool(v.ReportGlobal)
		if v.Consensus {
			global += Dim(" (consensus)")
		}
		rows = append(rows, []string{
			v.Type,
			v.MaxValue.String(),
			contributors,
			RenderProgress(v.Percentage, 10),
			global,
		})
	}
	return RenderTable([]string{"TYPE", "MAX", "FROM", "PROGRESS", "GLOBAL"}, rows)
}

// FormatMeasurements renders a series latest first.
func FormatMeasurements(ms []contract.MeasurementView) string {
	if len(ms) == 0 {
		return Dim("No measurements.") + "\n"
	}
	rows := make([][]string, len(ms))
	for i, m := range ms {
		rows[i] = []string{FormatDate(m.Date), m.Value.String(), FormatPercent(m.Percentage)}
	}
	return RenderTable([]string{"DATE", "VALUE", "PERCENT"}, rows)
}

// FormatFake renders the consolidated series of one indirect assignment.
func FormatFake(v *contract.IndirectView) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s %s\n\n", Bold(v.Type), Dim("max"), v.MaxValue))
	b.WriteString(RenderProgress(v.Percentage, 30))
	b.WriteString("\n\n")
	b.WriteString(FormatMeasurements(v.Measurements))
	return b.String()
}

// FormatAdvanceTypes renders the advance type registry.
func FormatAdvanceTypes(types []*domain.AdvanceType) string {
	rows := make([][]string, 0, len(types))
	for _, t := range types {
		origin := StyleBlue.Render("custom")
		if t.Predefined {
			origin = Dim("predefined")
		}
		name := t.Name
		if !t.Active {
			name = Dim(name + " (inactive)")
		}
		rows = append(rows, []string{
			name,
			t.DefaultMaxValue.String(),
			strconv.Itoa(int(t.Precision)),
			Bool(t.Percentage),
			origin,
		})
	}
	return RenderTable([]string{"NAME", "MAX", "PRECISION", "PERCENTAGE", "ORIGIN"}, rows)
}
