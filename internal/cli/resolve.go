package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
)

// resolveOrderID resolves an order identifier which can be:
//   - An order code (case-insensitive)
//   - A full UUID
//   - A UUID prefix
func resolveOrderID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("order is required")
	}

	if o, err := app.Orders.GetByCode(ctx, input); err == nil {
		return o.ID, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	orders, err := app.Orders.List(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return matchID("order", input, ids)
}

// resolveNodeID resolves a node identifier which can be:
//   - A seq such as "#3" or "3" (requires order context)
//   - A full UUID
//   - A UUID prefix, searched within the order when one is given
func resolveNodeID(ctx context.Context, app *App, input, orderID string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("node is required")
	}
	if seq, err := strconv.Atoi(strings.TrimPrefix(input, "#")); err == nil && seq > 0 {
		if orderID == "" {
			return "", fmt.Errorf("numeric ID #%d requires order context (use --order flag)", seq)
		}
		node, err := app.Nodes.GetBySeq(ctx, orderID, seq)
		if err != nil {
			return "", fmt.Errorf("node #%d not found in order: %w", seq, err)
		}
		return node.ID, nil
	}

	if n, err := app.Nodes.GetByID(ctx, input); err == nil {
		return n.ID, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	var nodes []*domain.WorkNode
	if orderID != "" {
		list, err := app.Nodes.ListByOrder(ctx, orderID)
		if err != nil {
			return "", err
		}
		nodes = list
	} else {
		orders, err := app.Orders.List(ctx)
		if err != nil {
			return "", err
		}
		for _, o := range orders {
			list, err := app.Nodes.ListByOrder(ctx, o.ID)
			if err != nil {
				return "", err
			}
			nodes = append(nodes, list...)
		}
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return matchID("node", input, ids)
}

// resolveOrderForFlag resolves an optional --order flag value.
func resolveOrderForFlag(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", nil
	}
	return resolveOrderID(ctx, app, input)
}

func matchID(what, input string, ids []string) (string, error) {
	var matches []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", what, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", what, input, len(matches))
	}
}
