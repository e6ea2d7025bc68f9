package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
)

const treeBarWidth = 12

// FormatProgress renders an order progress report: the overall bar, the
// node tree with each node's percentage and source, then any warnings.
func FormatProgress(resp *contract.ProgressResponse) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n", StyleHeader.Render(resp.OrderCode), Bold(resp.OrderName)))
	b.WriteString(Dim(fmt.Sprintf("at %s · weighted by %s", FormatDate(resp.At), resp.WeightBasis)))
	b.WriteString("\n\n")
	b.WriteString(RenderProgress(resp.Percentage, 30))
	b.WriteString("\n")

	if len(resp.Rows) > 0 {
		b.WriteString("\n")
		b.WriteString(RenderTree(ProgressTreeItems(resp.Rows)))
	}

	if len(resp.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range resp.Warnings {
			b.WriteString(StyleYellow.Render("! "+w) + "\n")
		}
	}
	return b.String()
}

// ProgressTreeItems turns pre-ordered rows into tree items, marking the last
// child of each parent.
func ProgressTreeItems(rows []contract.ProgressRow) []TreeItem {
	items := make([]TreeItem, len(rows))
	for i, r := range rows {
		items[i] = TreeItem{
			Title:  r.Name,
			Seq:    r.Seq,
			Level:  r.Depth,
			IsLast: isLastSibling(rows, i),
			Group:  r.Kind == domain.NodeGroup,
			Detail: fmt.Sprintf("%s %7s  %s",
				RenderCompactBar(r.Percentage, treeBarWidth, false),
				FormatPercent(r.Percentage),
				SourceBadge(r.Source, r.SourceType)),
		}
	}
	return items
}

func isLastSibling(rows []contract.ProgressRow, i int) bool {
	for j := i + 1; j < len(rows); j++ {
		switch {
		case rows[j].Depth == rows[i].Depth:
			return false
		case rows[j].Depth < rows[i].Depth:
			return true
		}
	}
	return true
}
