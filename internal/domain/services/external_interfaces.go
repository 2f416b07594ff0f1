package services

import (
	"context"
	"io"

	"github.com/docuflow/docuflow/internal/domain/models"
)

// DocumentQuery carries the server-side filter fields for the document
// listing. Empty fields must be omitted from the request entirely, not
// sent as empty strings.
type DocumentQuery struct {
	Status     string
	Department string
	StartDate  string
	EndDate    string
	CreatedBy  string
}

// DocumentAPI is the document listing endpoint of the remote workflow
// service.
type DocumentAPI interface {
	GetDocuments(ctx context.Context, query DocumentQuery) ([]models.Document, error)
}

// FileAPI covers the document-mutating and download endpoints. All three
// actions are keyed by the document's unique file name and return the
// server's confirmation message.
type FileAPI interface {
	Approve(ctx context.Context, fileUniqueName string) (string, error)
	Reject(ctx context.Context, fileUniqueName, remarks string) (string, error)
	RequestCorrection(ctx context.Context, fileUniqueName, remarks string) (string, error)
	DownloadPDF(ctx context.Context, fileUniqueName string, w io.Writer) error
}

// LoginRequest is the credential payload for the remote auth endpoint.
type LoginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DeviceToken string `json:"deviceToken"`
}

// LoginResult is the successful auth response: a bearer token plus the
// authenticated user.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// AuthAPI is the remote identity endpoint. The client never implements
// authentication itself; it only consumes the resulting session.
type AuthAPI interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	GetSession(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
}

// UserAPI is the user directory endpoint.
type UserAPI interface {
	GetUsers(ctx context.Context) ([]models.User, error)
}

// TokenStore persists the single auth token between runs. Load returns
// an empty token (not an error) when none is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}
