package services

import (
	"github.com/docuflow/docuflow/internal/app/config"
	"github.com/docuflow/docuflow/internal/domain/models"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/internal/infrastructure/api"
	"github.com/docuflow/docuflow/internal/infrastructure/tokenstore"
	"github.com/docuflow/docuflow/pkg/logger"
	"github.com/google/uuid"
)

// ServiceManager constructs every service once at startup and hands
// them to the views that need them. Nothing is looked up ambiently.
type ServiceManager struct {
	Config *config.Config

	// Infrastructure
	Tokens *tokenstore.FileStore
	API    *api.Client

	// Domain services
	Session    *services.SessionService
	Collection *services.CollectionService
	Actions    *services.ActionService
	Users      *services.UserService
	Downloads  *services.DownloadService
}

// NewServiceManager creates a new service manager
func NewServiceManager(cfg *config.Config, log *logger.Logger) (*ServiceManager, error) {
	tokens := tokenstore.New(cfg.Auth.TokenPath)

	client := api.New(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, tokens, log)

	deviceToken := cfg.Auth.DeviceToken
	if deviceToken == "" {
		deviceToken = uuid.NewString()
	}

	initial := services.Filters{
		Status:     models.DocStatus(cfg.Defaults.Status),
		Department: cfg.Defaults.Department,
	}

	sm := &ServiceManager{
		Config:     cfg,
		Tokens:     tokens,
		API:        client,
		Session:    services.NewSessionService(client, tokens, deviceToken, log),
		Collection: services.NewCollectionService(client, initial, log),
		Actions:    services.NewActionService(client, log),
		Users:      services.NewUserService(client, log),
		Downloads:  services.NewDownloadService(client, cfg.Storage.DownloadDir, log),
	}

	return sm, nil
}

// Close gracefully shuts down all services
func (sm *ServiceManager) Close() error {
	sm.API.Close()
	return nil
}
