package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Recorder appends audit entries. Callers that mutate state inside a
// transaction use In(tx) so the entry commits or rolls back together with
// the primary effect.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// In returns a Recorder bound to the given transaction handle.
func (r *Recorder) In(tx *gorm.DB) *Recorder {
	return &Recorder{db: tx}
}

// Record inserts one entry. The detail payload is stored as an opaque JSON blob.
func (r *Recorder) Record(ctx context.Context, actorID int64, action, entityType string, entityID int64, detail map[string]any) error {
	entry := &Entry{
		UserID:     actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		Timestamp:  time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}
