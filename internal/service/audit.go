package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/models"
	"go.uber.org/zap"
)

type actorKey struct{}

// WithActor attaches the acting staff member to ctx for audit entries.
func WithActor(ctx context.Context, actorID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

func actorFromContext(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(actorKey{}).(uuid.UUID); ok {
		return &id
	}
	return nil
}

// AuditService writes immutable audit trail entries.
type AuditService struct {
	store  AuditStore
	logger *zap.Logger
}

func NewAuditService(store AuditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{store: store, logger: logger}
}

// Write stores a single audit record.
func (s *AuditService) Write(ctx context.Context, entityType string, entityID uuid.UUID, action, prevState, nextState string, metadata map[string]any) error {
	var meta []byte
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		meta = b
	}
	return s.store.InsertAuditLog(ctx, models.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorFromContext(ctx),
		Action:     action,
		PrevState:  prevState,
		NextState:  nextState,
		Metadata:   meta,
	})
}

// Record is Write for follow-up entries whose failure must not fail the
// operation that produced them.
func (s *AuditService) Record(ctx context.Context, entityType string, entityID uuid.UUID, action, prevState, nextState string, metadata map[string]any) {
	if s == nil || s.store == nil {
		return
	}
	if err := s.Write(ctx, entityType, entityID, action, prevState, nextState, metadata); err != nil {
		s.logger.Warn("audit write failed",
			zap.Error(err),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.String("action", action),
		)
	}
}
