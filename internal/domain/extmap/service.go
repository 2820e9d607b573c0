package extmap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"casehub/internal/domain/access"
	"casehub/internal/domain/audit"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Service maintains the case ↔ external-system identifier registry.
type Service struct {
	db     *gorm.DB
	access *access.Service
	audit  *audit.Recorder
}

func NewService(db *gorm.DB, accessSvc *access.Service, auditRec *audit.Recorder) *Service {
	return &Service{db: db, access: accessSvc, audit: auditRec}
}

// Create inserts a mapping. Requires admin on the case. A duplicate
// (case, system) pair is a conflict, not a silent overwrite.
func (s *Service) Create(ctx context.Context, requesterID, caseID int64, externalCaseID, externalSystem string) (*Mapping, error) {
	if err := s.access.Check(ctx, requesterID, caseID, access.CapManageMapping); err != nil {
		return nil, err
	}

	externalCaseID = strings.TrimSpace(externalCaseID)
	externalSystem = strings.TrimSpace(externalSystem)
	if externalCaseID == "" || externalSystem == "" {
		return nil, ErrMissingFields
	}

	mapping := &Mapping{
		InternalCaseID: caseID,
		ExternalCaseID: externalCaseID,
		ExternalSystem: externalSystem,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mapping).Error; err != nil {
			if isDuplicate(err) {
				return ErrMappingExists
			}
			return fmt.Errorf("failed to insert mapping: %w", err)
		}

		return s.audit.In(tx).Record(ctx, requesterID, audit.ActionAddExternalMapping, audit.EntityCase, caseID,
			map[string]any{"external_case_id": externalCaseID, "external_system": externalSystem})
	})
	if err != nil {
		return nil, err
	}

	return mapping, nil
}

// Get returns the first mapping for the case, or (nil, nil) when the case
// has none. Absence is not an error. Requires any grant on the case.
func (s *Service) Get(ctx context.Context, requesterID, caseID int64) (*Mapping, error) {
	if err := s.access.Check(ctx, requesterID, caseID, access.CapViewMapping); err != nil {
		return nil, err
	}

	var mapping Mapping
	err := s.db.WithContext(ctx).
		Where("internal_case_id = ?", caseID).
		Order("id").
		First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	return &mapping, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// sqlite does not go through the gorm error translator
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
