package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
)

// FormatOrderList renders orders as a table.
func FormatOrderList(orders []*domain.Order) string {
	rows := make([][]string, len(orders))
	for i, o := range orders {
		rows[i] = []string{
			StyleHeader.Render(o.DisplayID()),
			o.Name,
			string(o.WeightBasis),
			TruncID(o.ID),
		}
	}
	return RenderTable([]string{"CODE", "NAME", "WEIGHT", "ID"}, rows)
}

// FormatNodeTree renders an order's nodes as a tree, siblings by order
// index.
func FormatNodeTree(nodes []*domain.WorkNode, basis domain.WeightBasis) string {
	children := make(map[string][]*domain.WorkNode)
	for _, n := range nodes {
		parent := ""
		if n.ParentID != nil {
			parent = *n.ParentID
		}
		children[parent] = append(children[parent], n)
	}
	for _, list := range children {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].OrderIndex != list[j].OrderIndex {
				return list[i].OrderIndex < list[j].OrderIndex
			}
			return list[i].Seq < list[j].Seq
		})
	}

	var items []TreeItem
	var walk func(parent string, level int)
	walk = func(parent string, level int) {
		list := children[parent]
		for i, n := range list {
			detail := ""
			if !n.IsGroup() {
				detail = Dim(nodeWeight(n, basis))
			}
			items = append(items, TreeItem{
				Title:  n.Name,
				Seq:    n.Seq,
				Level:  level,
				IsLast: i == len(list)-1,
				Group:  n.IsGroup(),
				Detail: detail,
			})
			walk(n.ID, level+1)
		}
	}
	walk("", 0)
	return RenderTree(items)
}

// FormatNodeDetail renders one node's fields.
func FormatNodeDetail(n *domain.WorkNode, order *domain.Order) string {
	var b strings.Builder
	b.WriteString(Bold(n.Name) + "\n")
	field := func(label, value string) {
		b.WriteString(fmt.Sprintf("\n%s  %s", Dim(fmt.Sprintf("%-7s", label)), value))
	}
	field("ID", "#"+strconv.Itoa(n.Seq)+" "+TruncID(n.ID))
	if order != nil {
		field("ORDER", order.DisplayID())
	}
	if n.Code != "" {
		field("CODE", n.Code)
	}
	if n.ParentID != nil {
		field("PARENT", TruncID(*n.ParentID))
	}
	field("INDEX", strconv.Itoa(n.OrderIndex))
	if !n.IsGroup() {
		field("HOURS", strconv.Itoa(n.Hours))
		field("BUDGET", n.Budget.String())
	}
	return RenderBox(string(n.Kind), b.String()) + "\n"
}

func nodeWeight(n *domain.WorkNode, basis domain.WeightBasis) string {
	if basis == domain.WeightBudget {
		return n.Budget.String()
	}
	return strconv.Itoa(n.Hours) + "h"
}
