package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docuflow/docuflow/pkg/logger"
)

var (
	ErrRemarksRequired = errors.New("remarks are required for rejection or correction")
	ErrMissingFileName = errors.New("document file name is required")
	ErrActionFailed    = errors.New("document action failed")
)

// ActionService dispatches approve/reject/correction decisions to the
// remote workflow service. It never mutates local collection state; on
// success the caller refreshes the collection to reconcile.
type ActionService struct {
	files FileAPI
	log   *logger.Logger
}

func NewActionService(files FileAPI, log *logger.Logger) *ActionService {
	return &ActionService{files: files, log: log}
}

// Approve marks the document approved. No remarks are required.
func (s *ActionService) Approve(ctx context.Context, fileUniqueName string) (string, error) {
	if fileUniqueName == "" {
		return "", ErrMissingFileName
	}

	message, err := s.files.Approve(ctx, fileUniqueName)
	if err != nil {
		s.log.Error("approve failed", "file", fileUniqueName, "error", err)
		return "", fmt.Errorf("%w: %v", ErrActionFailed, err)
	}
	s.log.Info("document approved", "file", fileUniqueName)
	return message, nil
}

// Reject marks the document rejected. Remarks are validated before any
// network call is made.
func (s *ActionService) Reject(ctx context.Context, fileUniqueName, remarks string) (string, error) {
	if fileUniqueName == "" {
		return "", ErrMissingFileName
	}
	if strings.TrimSpace(remarks) == "" {
		return "", ErrRemarksRequired
	}

	message, err := s.files.Reject(ctx, fileUniqueName, remarks)
	if err != nil {
		s.log.Error("reject failed", "file", fileUniqueName, "error", err)
		return "", fmt.Errorf("%w: %v", ErrActionFailed, err)
	}
	s.log.Info("document rejected", "file", fileUniqueName)
	return message, nil
}

// RequestCorrection sends the document back for correction. Remarks are
// validated before any network call is made.
func (s *ActionService) RequestCorrection(ctx context.Context, fileUniqueName, remarks string) (string, error) {
	if fileUniqueName == "" {
		return "", ErrMissingFileName
	}
	if strings.TrimSpace(remarks) == "" {
		return "", ErrRemarksRequired
	}

	message, err := s.files.RequestCorrection(ctx, fileUniqueName, remarks)
	if err != nil {
		s.log.Error("correction request failed", "file", fileUniqueName, "error", err)
		return "", fmt.Errorf("%w: %v", ErrActionFailed, err)
	}
	s.log.Info("correction requested", "file", fileUniqueName)
	return message, nil
}
