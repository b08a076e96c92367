package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"go.uber.org/zap"
)

// normalizeStatus maps case-insensitive input onto a known status label.
func normalizeStatus(status string) (string, bool) {
	status = strings.TrimSpace(status)
	for _, known := range domain.TransferStatuses {
		if strings.EqualFold(known, status) {
			return known, true
		}
	}
	return "", false
}

// UpdateStatus moves a transfer to status. Any transition among the known
// statuses is allowed, including backwards ones.
func (s *TransferService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Transfer, error) {
	next, ok := normalizeStatus(status)
	if !ok {
		return nil, domain.NewValidationError("status", fmt.Sprintf("must be one of %s", strings.Join(domain.TransferStatuses, ", ")))
	}

	current, err := s.transfers.GetTransfer(ctx, id)
	if err != nil {
		return nil, domain.WrapStore("get transfer", err)
	}
	if current.Status == next {
		return current, nil
	}

	if err := s.transfers.PatchTransfer(ctx, id, models.TransferPatch{Status: &next}); err != nil {
		return nil, domain.WrapStore("update transfer status", err)
	}

	prev := current.Status
	current.Status = next
	s.audit.Record(ctx, domain.AuditEntityTransfer, id, "transfer.status_changed", prev, next,
		map[string]any{"order_ref": current.OrderRef})
	s.logger.Info("transfer status changed",
		zap.String("order_ref", current.OrderRef),
		zap.String("from", prev),
		zap.String("to", next),
	)
	return current, nil
}
