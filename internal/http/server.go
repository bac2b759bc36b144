package http

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/config"
	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/services"
	"github.com/NAVER-CLOUD-3-ANDROID/swen-backend/internal/storage"
)

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	speech *services.SpeechService
}

func NewServer(cfg config.Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	var speechStore services.SpeechStore = store
	if cfg.StoreBackend == "redis" {
		redisStore, err := storage.NewRedisSpeechStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		speechStore = redisStore
	}

	var artifacts services.ArtifactStore
	if cfg.ArtifactBackend == "minio" {
		objectStore, err := storage.NewObjectStore(context.Background(), cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, fmt.Errorf("init object store: %w", err)
		}
		artifacts = objectStore
	} else {
		fileManager, err := storage.NewFileManager(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("init file manager: %w", err)
		}
		artifacts = fileManager
	}

	newsClient := services.NewNewsClient(cfg)
	scriptClient := services.NewScriptClient(cfg)
	dubbingClient := services.NewDubbingClient(cfg)

	speechSvc := services.NewSpeechService(dubbingClient, speechStore, artifacts)
	pipeline := services.NewNewsAudioService(newsClient, scriptClient, speechSvc)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger())
	engine.Use(CORS())

	api := NewAPI(cfg, store, newsClient, scriptClient, speechSvc, pipeline)
	registerRoutes(engine, api)

	return &Server{engine: engine, cfg: cfg, speech: speechSvc}, nil
}

func (s *Server) Run() error {
	ctx := context.Background()

	if err := s.speech.ReconcileStaleSpeeches(ctx, s.cfg.StaleJobAge); err != nil {
		log.Printf("startup reconcile failed: %v", err)
	}
	go s.speech.WatchStaleSpeeches(ctx, s.cfg.ReconcileInterval, s.cfg.StaleJobAge)

	addr := fmt.Sprintf(":%s", s.cfg.Port)
	return s.engine.Run(addr)
}
