package audit

import (
	"context"

	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
)

// Audit actions for content-service.
const (
	ActionCreateContent = "content.create"
	ActionUpdateContent = "content.update"
	ActionDeleteContent = "content.delete"
	ActionUpsertPage    = "page.upsert"
	ActionDeletePage    = "page.delete"
	ActionFlushCache    = "cache.flush"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Entry describes one administrative action.
type Entry struct {
	Action   string
	UserID   string
	Entity   string
	TargetID string
	Detail   string
}

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, e Entry, msg string) {
	l := log.Ctx(ctx)
	ev := l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, e.Action).
		Str(log.FieldUserID, e.UserID)
	if e.Entity != "" {
		ev = ev.Str(log.FieldEntity, e.Entity)
	}
	if e.TargetID != "" {
		ev = ev.Str(FieldTargetID, e.TargetID)
	}
	if e.Detail != "" {
		ev = ev.Str(FieldDetail, e.Detail)
	}
	ev.Msg(msg)
}
