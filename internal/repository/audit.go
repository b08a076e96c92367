package repository

import (
	"context"
	"fmt"

	"github.com/nileops/remit-console/internal/models"
)

func (r *Repository) InsertAuditLog(ctx context.Context, e models.AuditEntry) error {
	query := `INSERT INTO audit_log (entity_type, entity_id, actor_id, action, prev_state, next_state, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`
	_, err := r.db.Exec(ctx, query,
		e.EntityType, e.EntityID, e.ActorID, e.Action,
		textParam(e.PrevState), textParam(e.NextState), e.Metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func textParam(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
