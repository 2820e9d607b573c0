package cases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"casehub/internal/domain/access"
	"casehub/internal/domain/audit"

	"gorm.io/gorm"
)

// Service creates and lists case records.
type Service struct {
	db    *gorm.DB
	audit *audit.Recorder
}

func NewService(db *gorm.DB, auditRec *audit.Recorder) *Service {
	return &Service{db: db, audit: auditRec}
}

// Create inserts the case, the owner's admin grant and the audit entry in
// one transaction. A crash can never leave a case without an owner grant.
func (s *Service) Create(ctx context.Context, ownerID int64, title, description string) (*Case, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	newCase := &Case{
		Title:       title,
		Description: description,
		CreatedBy:   ownerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(newCase).Error; err != nil {
			return fmt.Errorf("failed to insert case: %w", err)
		}

		grant := &access.Grant{
			UserID:      ownerID,
			CaseID:      newCase.ID,
			AccessLevel: access.LevelAdmin,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(grant).Error; err != nil {
			return fmt.Errorf("failed to insert owner grant: %w", err)
		}

		return s.audit.In(tx).Record(ctx, ownerID, audit.ActionCreateCase, audit.EntityCase, newCase.ID,
			map[string]any{"title": title})
	})
	if err != nil {
		return nil, err
	}

	return newCase, nil
}

// ListForUser returns every case the user holds a grant on, joined with the
// grant's level.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]CaseWithAccess, error) {
	rows := make([]CaseWithAccess, 0)
	err := s.db.WithContext(ctx).
		Table("cases").
		Select("cases.*, user_case_access.access_level").
		Joins("JOIN user_case_access ON cases.id = user_case_access.case_id").
		Where("user_case_access.user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return rows, nil
}
