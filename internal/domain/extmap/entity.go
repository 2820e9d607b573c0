package extmap

import "time"

// Mapping ties one case to its identifier in an external system. A case may
// hold at most one mapping per external system.
type Mapping struct {
	ID             int64     `gorm:"column:id;primaryKey" json:"id"`
	InternalCaseID int64     `gorm:"column:internal_case_id;uniqueIndex:uq_case_system" json:"internal_case_id"`
	ExternalCaseID string    `gorm:"column:external_case_id" json:"external_case_id"`
	ExternalSystem string    `gorm:"column:external_system;uniqueIndex:uq_case_system" json:"external_system"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Mapping) TableName() string { return "internal_external_case_mapping" }
