package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"casehub/internal/config"
	"casehub/internal/database"
	"casehub/internal/domain/access"
	"casehub/internal/domain/audit"
	"casehub/internal/domain/files"
	"casehub/internal/storage"
)

// Aborts multipart sessions that were prepared but never completed. Abandoned
// sessions otherwise leave orphaned parts in the bucket forever. Intended to
// run from cron.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	store, err := storage.NewClient(storage.Config{
		Bucket:     cfg.S3Bucket,
		Region:     cfg.S3Region,
		Endpoint:   cfg.S3Endpoint,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		PresignTTL: cfg.PresignTTL,
	})
	if err != nil {
		log.Fatal(err)
	}

	auditRec := audit.NewRecorder(db)
	svc := files.NewService(db, store, access.NewService(db, auditRec), auditRec, cfg.UploadSessionTTL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	aborted, err := svc.CleanupExpired(ctx)
	if err != nil {
		log.Fatalf("upload cleanup failed: %v", err)
	}

	log.Printf("upload cleanup completed: aborted_sessions=%d", aborted)
}
