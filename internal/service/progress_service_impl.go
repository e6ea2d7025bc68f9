package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/advance"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
)

type progressService struct {
	repos treeRepos
	opts  options
}

func NewProgressService(
	orders repository.OrderRepo,
	nodes repository.WorkNodeRepo,
	types repository.AdvanceTypeRepo,
	assignments repository.AdvanceAssignmentRepo,
	opts ...Option,
) ProgressService {
	return &progressService{
		repos: treeRepos{orders: orders, nodes: nodes, types: types, assignments: assignments},
		opts:  buildOptions(opts),
	}
}

func (s *progressService) GetProgress(ctx context.Context, req contract.ProgressRequest) (resp *contract.ProgressResponse, err error) {
	fields := map[string]any{"order_id": req.OrderID, "selections": len(req.Selections)}
	defer observe(ctx, s.opts.observer, "progress", time.Now(), fields, &err)

	ot, err := loadOrderTree(ctx, s.repos, req.OrderID, s.opts.treeOptions()...)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &contract.ProgressError{Code: contract.ProgressErrUnknownOrder, Message: fmt.Sprintf("order %q not found", req.OrderID)}
		}
		return nil, err
	}

	if err := applySelections(ot, req.Selections); err != nil {
		return nil, err
	}

	at := ot.tree.Today()
	if req.At != nil {
		at = advance.Day(*req.At)
	}

	reports := ot.tree.ReportAt(at)
	resp = &contract.ProgressResponse{
		OrderID:     ot.order.ID,
		OrderCode:   ot.order.Code,
		OrderName:   ot.order.Name,
		WeightBasis: ot.order.WeightBasis,
		At:          at,
	}
	for _, r := range reports {
		if r.ID == ot.tree.Root() {
			resp.Percentage = r.Percentage
			if r.Weight.IsZero() && len(ot.nodes) > 0 {
				resp.Warnings = append(resp.Warnings, fmt.Sprintf("order has no planned %s; group percentages are 0", ot.order.WeightBasis))
			}
			continue
		}
		n := ot.byID[r.Key]
		row := contract.ProgressRow{
			NodeID:     n.ID,
			Seq:        n.Seq,
			Code:       n.Code,
			Name:       n.Name,
			Kind:       n.Kind,
			Depth:      r.Depth - 1,
			Weight:     r.Weight,
			Percentage: r.Percentage,
			Source:     r.Source,
			SourceType: r.SourceType,
		}
		if len(r.Direct) > 0 && r.Source == domain.SourceNone && len(r.Indirect) == 0 {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("node #%d has assignments but none reports global advance", n.Seq))
		}
		if req.IncludeAssignments {
			for _, a := range r.Direct {
				row.Direct = append(row.Direct, assignmentView(ot, n.ID, a, at))
			}
			for _, ia := range r.Indirect {
				v, err := indirectView(ot.tree, r.ID, ia, at)
				if err != nil {
					return nil, err
				}
				row.Indirect = append(row.Indirect, v)
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	fields["nodes"] = len(resp.Rows)
	return resp, nil
}

// applySelections overrides which indirect assignment reports each group's
// global advance. The tree is discarded after the request.
func applySelections(ot *orderTree, selections map[string]string) error {
	for nodeID, typeName := range selections {
		h, err := ot.handle(nodeID)
		if err != nil {
			return &contract.ProgressError{Code: contract.ProgressErrInvalidSelection, Message: err.Error()}
		}
		if typeName == contract.SelectNone {
			for _, ia := range ot.tree.IndirectAdvanceAssignments(h) {
				if ia.ReportGlobalAdvance {
					err = ot.tree.SetIndirectReportGlobal(h, ia.Type, false)
				}
			}
		} else {
			err = ot.tree.SelectIndirectGlobal(h, typeName)
		}
		if err != nil {
			return &contract.ProgressError{
				Code:    contract.ProgressErrInvalidSelection,
				Message: fmt.Sprintf("node #%d: %v", ot.byID[nodeID].Seq, err),
			}
		}
	}
	return nil
}
