package audit

import "time"

// Entry is one immutable record of a privileged action. Rows are only ever
// inserted; there is no update or delete API.
type Entry struct {
	ID         int64          `gorm:"column:id;primaryKey" json:"id"`
	UserID     int64          `gorm:"column:user_id" json:"user_id"`
	Action     string         `gorm:"column:action" json:"action"`
	EntityType string         `gorm:"column:entity_type" json:"entity_type"`
	EntityID   int64          `gorm:"column:entity_id" json:"entity_id"`
	Detail     map[string]any `gorm:"column:details;serializer:json" json:"details"`
	Timestamp  time.Time      `gorm:"column:timestamp" json:"timestamp"`
}

func (Entry) TableName() string { return "audit_logs" }

// Actions recorded by the privileged operations.
const (
	ActionCreateCase         = "create_case"
	ActionGrantAccess        = "grant_access"
	ActionRevokeAccess       = "revoke_access"
	ActionAddExternalMapping = "add_external_mapping"
	ActionUploadFile         = "upload_file"
)

// Entity types referenced by audit entries.
const (
	EntityCase = "case"
	EntityFile = "file"
)
