package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"casehub/internal/config"
	"casehub/internal/database"
	"casehub/internal/domain/access"
	"casehub/internal/domain/audit"
	"casehub/internal/domain/auth"
	"casehub/internal/domain/cases"
	"casehub/internal/domain/extmap"
	"casehub/internal/domain/files"
	"casehub/internal/middleware"
	jwtsvc "casehub/internal/pkg/jwt"
	"casehub/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&auth.User{},
		&cases.Case{},
		&access.Grant{},
		&files.File{},
		&files.UploadSession{},
		&extmap.Mapping{},
		&audit.Entry{},
	); err != nil {
		log.Fatal(err)
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

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	auditRec := audit.NewRecorder(db)

	accessService := access.NewService(db, auditRec)
	accessHandler := access.NewHandler(accessService)

	authService := auth.NewService(auth.NewRepository(db), j)
	authHandler := auth.NewHandler(authService)

	caseService := cases.NewService(db, auditRec)
	caseHandler := cases.NewHandler(caseService)

	mappingService := extmap.NewService(db, accessService, auditRec)
	mappingHandler := extmap.NewHandler(mappingService)

	fileService := files.NewService(db, store, accessService, auditRec, cfg.UploadSessionTTL)
	fileHandler := files.NewHandler(fileService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	v1 := r.Group("/api/v1")
	{
		// public
		auth.RegisterRoutes(v1, authHandler)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			cases.RegisterRoutes(protected, caseHandler)
			access.RegisterRoutes(protected, accessHandler)
			extmap.RegisterRoutes(protected, mappingHandler)
			files.RegisterRoutes(protected, fileHandler)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
