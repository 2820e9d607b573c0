package access

import "time"

// Level is an access level attached to a (user, case) pair.
type Level string

const (
	LevelRead  Level = "read"
	LevelWrite Level = "write"
	LevelAdmin Level = "admin"
)

func (l Level) Valid() bool {
	switch l {
	case LevelRead, LevelWrite, LevelAdmin:
		return true
	}
	return false
}

// Grant is a persisted (user, case, level) authorization tuple. The unique
// index makes the upsert converge concurrent grants to a single row.
type Grant struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"id"`
	UserID      int64     `gorm:"column:user_id;uniqueIndex:uq_user_case" json:"user_id"`
	CaseID      int64     `gorm:"column:case_id;uniqueIndex:uq_user_case" json:"case_id"`
	AccessLevel Level     `gorm:"column:access_level" json:"access_level"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Grant) TableName() string { return "user_case_access" }

// Grantee is one row of the case membership listing.
type Grantee struct {
	ID          int64  `gorm:"column:id" json:"id"`
	Username    string `gorm:"column:username" json:"username"`
	AccessLevel Level  `gorm:"column:access_level" json:"access_level"`
}
