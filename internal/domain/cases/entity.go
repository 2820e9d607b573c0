package cases

import "time"

// Case is a collaboration record users attach files to. The creator receives
// an admin grant atomically with the insert.
type Case struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"id"`
	Title       string    `gorm:"column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedBy   int64     `gorm:"column:created_by" json:"created_by"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Case) TableName() string { return "cases" }

// CaseWithAccess is one row of a user's case listing, joined with the level
// the user holds on that case.
type CaseWithAccess struct {
	Case
	AccessLevel string `gorm:"column:access_level" json:"access_level"`
}
