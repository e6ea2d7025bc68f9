package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/google/uuid"
)

type nodeService struct {
	nodes repository.WorkNodeRepo
	uow   db.UnitOfWork
}

func NewNodeService(nodes repository.WorkNodeRepo, uow db.UnitOfWork) NodeService {
	return &nodeService{nodes: nodes, uow: uow}
}

// Create allocates the node's order-scoped Seq and inserts it.
func (s *nodeService) Create(ctx context.Context, n *domain.WorkNode) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Kind == "" {
		n.Kind = domain.NodeLine
	}
	if err := validateNode(n); err != nil {
		return err
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteWorkNodeRepo(tx)
		if err := checkParent(ctx, txNodes, n); err != nil {
			return err
		}
		seq, err := repository.NewSQLiteOrderSequenceRepo(tx).NextOrderSeq(ctx, n.OrderID)
		if err != nil {
			return err
		}
		n.Seq = seq
		return txNodes.Create(ctx, n)
	})
}

func (s *nodeService) GetByID(ctx context.Context, id string) (*domain.WorkNode, error) {
	return s.nodes.GetByID(ctx, id)
}

func (s *nodeService) GetBySeq(ctx context.Context, orderID string, seq int) (*domain.WorkNode, error) {
	return s.nodes.GetBySeq(ctx, orderID, seq)
}

func (s *nodeService) ListByOrder(ctx context.Context, orderID string) ([]*domain.WorkNode, error) {
	return s.nodes.ListByOrder(ctx, orderID)
}

func (s *nodeService) ListChildren(ctx context.Context, parentID string) ([]*domain.WorkNode, error) {
	return s.nodes.ListChildren(ctx, parentID)
}

// Update saves name, code, weights and placement. A group that already has
// children cannot become a line, and a move must leave every advance type at
// most once on each root-to-leaf path of the order.
func (s *nodeService) Update(ctx context.Context, n *domain.WorkNode) error {
	if err := validateNode(n); err != nil {
		return err
	}
	n.UpdatedAt = time.Now().UTC()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteWorkNodeRepo(tx)
		if err := checkParent(ctx, txNodes, n); err != nil {
			return err
		}
		if !n.IsGroup() {
			children, err := txNodes.ListChildren(ctx, n.ID)
			if err != nil {
				return err
			}
			if len(children) > 0 {
				return fmt.Errorf("node #%d has %d children and must stay a group", n.Seq, len(children))
			}
		}
		rows, err := loadOrderRows(ctx, txRepos(tx), n.OrderID)
		if err != nil {
			return err
		}
		rows.replaceNode(n)
		if _, err := rows.build(); err != nil {
			return fmt.Errorf("updating node #%d: %w", n.Seq, err)
		}
		return txNodes.Update(ctx, n)
	})
}

// Delete removes the node and everything below it.
func (s *nodeService) Delete(ctx context.Context, id string) error {
	return s.nodes.Delete(ctx, id)
}

func validateNode(n *domain.WorkNode) error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("node name is required")
	}
	if !domain.ValidNodeKinds[string(n.Kind)] {
		return fmt.Errorf("invalid node kind %q (use group or line)", n.Kind)
	}
	if n.Hours < 0 {
		return fmt.Errorf("hours must not be negative (got %d)", n.Hours)
	}
	if n.Budget.IsNegative() {
		return fmt.Errorf("budget must not be negative (got %s)", n.Budget)
	}
	return nil
}

// checkParent requires the parent to be a group of the same order and not
// the node itself or one of its descendants.
func checkParent(ctx context.Context, nodes repository.WorkNodeRepo, n *domain.WorkNode) error {
	if n.ParentID == nil {
		return nil
	}
	for id := *n.ParentID; ; {
		if id == n.ID {
			return fmt.Errorf("node #%d cannot be moved below itself", n.Seq)
		}
		p, err := nodes.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("parent node: %w", err)
		}
		if id == *n.ParentID {
			if p.OrderID != n.OrderID {
				return fmt.Errorf("parent node #%d belongs to another order", p.Seq)
			}
			if !p.IsGroup() {
				return fmt.Errorf("parent node #%d is a line and cannot hold children", p.Seq)
			}
		}
		if p.ParentID == nil {
			return nil
		}
		id = *p.ParentID
	}
}
