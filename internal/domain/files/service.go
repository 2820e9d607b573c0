package files

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"casehub/internal/domain/access"
	"casehub/internal/domain/audit"
	"casehub/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultSessionTTL = 24 * time.Hour
	maxPartNumber     = 10000
)

// ObjectStore is the narrow slice of the storage client the orchestrator
// consumes. File bytes never pass through this service; clients push parts
// straight to storage via presigned URLs.
type ObjectStore interface {
	CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error)
	PresignUploadPart(key, uploadID string, partNumber int64) (string, error)
	CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []storage.CompletedPart) error
	AbortMultipartUpload(ctx context.Context, key, uploadID string) error
	PresignDownload(key string) (string, error)
	ObjectURL(key string) string
}

// PrepareResult is what the uploading client needs to drive the rest of the
// protocol: the storage session id and the derived object key.
type PrepareResult struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

// Service orchestrates the three-phase upload protocol and the read side
// (download URLs, per-case listings). Every phase is gated by AccessControl.
type Service struct {
	db         *gorm.DB
	store      ObjectStore
	access     *access.Service
	audit      *audit.Recorder
	sessionTTL time.Duration
}

func NewService(db *gorm.DB, store ObjectStore, accessSvc *access.Service, auditRec *audit.Recorder, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &Service{
		db:         db,
		store:      store,
		access:     accessSvc,
		audit:      auditRec,
		sessionTTL: sessionTTL,
	}
}

// Prepare opens a multipart session against storage and records it. The
// object key is derived as cases/{caseId}/files/{filename}; an identical
// filename within a case overwrites the prior object on completion.
func (s *Service) Prepare(ctx context.Context, requesterID, caseID int64, filename, contentType string) (*PrepareResult, error) {
	if err := s.access.Check(ctx, requesterID, caseID, access.CapUploadFile); err != nil {
		return nil, err
	}

	filename = strings.TrimSpace(filename)
	if filename == "" || path.Base(filename) != filename {
		return nil, ErrInvalidFilename
	}

	key := objectKey(caseID, filename)
	uploadID, err := s.store.CreateMultipartUpload(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	now := time.Now()
	session := &UploadSession{
		ID:          uuid.New().String(),
		UploadID:    uploadID,
		ObjectKey:   key,
		Filename:    filename,
		ContentType: contentType,
		CaseID:      caseID,
		CreatedBy:   requesterID,
		Status:      SessionInitiated,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.sessionTTL),
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to record upload session: %w", err)
	}

	return &PrepareResult{UploadID: uploadID, Key: key}, nil
}

// SignPart returns a short-lived URL for pushing one part. Possession of the
// upload id is not enough: the requester must still hold write or admin on
// the session's case.
func (s *Service) SignPart(ctx context.Context, requesterID int64, uploadID, key string, partNumber int64) (string, error) {
	if partNumber < 1 || partNumber > maxPartNumber {
		return "", ErrInvalidPart
	}

	session, err := s.openSession(ctx, uploadID, key)
	if err != nil {
		return "", err
	}
	if err := s.access.Check(ctx, requesterID, session.CaseID, access.CapUploadFile); err != nil {
		return "", err
	}

	url, err := s.store.PresignUploadPart(key, uploadID, partNumber)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return url, nil
}

// Complete assembles the uploaded parts into one object, then records the
// file row, closes the session and appends the audit entry in a single
// transaction.
func (s *Service) Complete(ctx context.Context, requesterID int64, uploadID, key string, parts []storage.CompletedPart, fileSize int64, metadata map[string]any) (*File, error) {
	if len(parts) == 0 {
		return nil, ErrNoParts
	}

	session, err := s.openSession(ctx, uploadID, key)
	if err != nil {
		return nil, err
	}
	if err := s.access.Check(ctx, requesterID, session.CaseID, access.CapUploadFile); err != nil {
		return nil, err
	}

	if err := s.store.CompleteMultipartUpload(ctx, key, uploadID, parts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	file := &File{
		Filename:   session.Filename,
		FileURL:    s.store.ObjectURL(key),
		FileType:   session.ContentType,
		FileSize:   fileSize,
		Metadata:   metadata,
		CaseID:     session.CaseID,
		UploadedBy: requesterID,
		UploadedAt: time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(file).Error; err != nil {
			return fmt.Errorf("failed to insert file record: %w", err)
		}
		if err := tx.Model(&UploadSession{}).
			Where("id = ?", session.ID).
			Update("status", SessionCompleted).Error; err != nil {
			return fmt.Errorf("failed to close upload session: %w", err)
		}

		return s.audit.In(tx).Record(ctx, requesterID, audit.ActionUploadFile, audit.EntityFile, file.ID,
			map[string]any{"filename": file.Filename})
	})
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Abort discards an unfinished session so storage reclaims the parts.
func (s *Service) Abort(ctx context.Context, requesterID int64, uploadID, key string) error {
	session, err := s.openSession(ctx, uploadID, key)
	if err != nil {
		return err
	}
	if err := s.access.Check(ctx, requesterID, session.CaseID, access.CapUploadFile); err != nil {
		return err
	}

	if err := s.store.AbortMultipartUpload(ctx, key, uploadID); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return s.db.WithContext(ctx).Model(&UploadSession{}).
		Where("id = ?", session.ID).
		Update("status", SessionAborted).Error
}

// Download returns a short-lived read URL for the file's object.
func (s *Service) Download(ctx context.Context, requesterID, fileID int64) (string, error) {
	var file File
	err := s.db.WithContext(ctx).Where("id = ?", fileID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrFileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load file record: %w", err)
	}

	if err := s.access.Check(ctx, requesterID, file.CaseID, access.CapDownloadFile); err != nil {
		return "", err
	}

	url, err := s.store.PresignDownload(objectKey(file.CaseID, file.Filename))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return url, nil
}

// ListByCase returns the file records of a case.
func (s *Service) ListByCase(ctx context.Context, requesterID, caseID int64) ([]File, error) {
	if err := s.access.Check(ctx, requesterID, caseID, access.CapListFiles); err != nil {
		return nil, err
	}

	records := make([]File, 0)
	err := s.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("uploaded_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return records, nil
}

// CleanupExpired aborts every initiated session past its expiry. Storage
// errors are logged and skipped so one stuck session does not block the rest.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	var sessions []UploadSession
	err := s.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", SessionInitiated, time.Now()).
		Find(&sessions).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list expired sessions: %w", err)
	}

	aborted := 0
	for _, session := range sessions {
		if err := s.store.AbortMultipartUpload(ctx, session.ObjectKey, session.UploadID); err != nil {
			log.Printf("upload_cleanup abort failed session=%s upload_id=%s: %v", session.ID, session.UploadID, err)
			continue
		}
		if err := s.db.WithContext(ctx).Model(&UploadSession{}).
			Where("id = ?", session.ID).
			Update("status", SessionAborted).Error; err != nil {
			return aborted, fmt.Errorf("failed to mark session aborted: %w", err)
		}
		aborted++
	}
	return aborted, nil
}

func (s *Service) openSession(ctx context.Context, uploadID, key string) (*UploadSession, error) {
	var session UploadSession
	err := s.db.WithContext(ctx).Where("upload_id = ?", uploadID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load upload session: %w", err)
	}

	if session.ObjectKey != key {
		return nil, ErrKeyMismatch
	}
	if session.Status != SessionInitiated {
		return nil, ErrSessionClosed
	}
	return &session, nil
}

func objectKey(caseID int64, filename string) string {
	return fmt.Sprintf("cases/%d/files/%s", caseID, filename)
}
