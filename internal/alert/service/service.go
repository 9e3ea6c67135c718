package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"defiguard/internal/alert"
	"defiguard/internal/metrics"
	"defiguard/internal/registry"
)

// AlertRepository is what the orchestrators need from the persistence layer.
type AlertRepository interface {
	Create(ctx context.Context, a *alert.Alert) error
	GetByID(ctx context.Context, id string) (*alert.Alert, error)
	ListByUser(ctx context.Context, userID int64) ([]*alert.Alert, error)
	Replace(ctx context.Context, a *alert.Alert) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo     AlertRepository
	registry *registry.Registry
	logger   *zap.Logger
}

func NewService(repo AlertRepository, reg *registry.Registry, logger *zap.Logger) *Service {
	return &Service{repo: repo, registry: reg, logger: logger}
}

// Create runs the full creation pipeline: validate, map chains and markets,
// then persist the alert with all nested rows in one write. Any failure
// before the write leaves nothing persisted.
func (s *Service) Create(ctx context.Context, userID int64, params *alert.Params) (*alert.Alert, error) {
	a, err := s.buildAlert(userID, params)
	if err != nil {
		metrics.AlertValidationFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	a.ID = uuid.NewString()
	a.Status = alert.StatusActive
	assignChildIDs(a)

	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.Error("alert create failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	metrics.AlertsCreatedTotal.WithLabelValues(string(a.Category)).Inc()
	return a, nil
}

// Get returns the caller's alert with nested entities and notification
// history.
func (s *Service) Get(ctx context.Context, userID int64, id string) (*alert.Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, alert.ErrNotOwner
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*alert.Alert, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update applies replace-wholesale semantics: the new payload is validated
// and mapped like a create, then every child collection is replaced inside a
// single transaction. There is no partial-update merge.
func (s *Service) Update(ctx context.Context, userID int64, id string, params *alert.Params) (*alert.Alert, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	a, err := s.buildAlert(userID, params)
	if err != nil {
		metrics.AlertValidationFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	a.ID = existing.ID
	a.Status = existing.Status
	assignChildIDs(a)

	if err := s.repo.Replace(ctx, a); err != nil {
		s.logger.Error("alert update failed", zap.String("alert_id", id), zap.Error(err))
		return nil, err
	}
	metrics.AlertsUpdatedTotal.Inc()
	return s.repo.GetByID(ctx, id)
}

// Delete cascades through the alert's children and returns the alert's
// last-known state. Deleting an id that no longer exists reports ErrNotFound
// rather than silently succeeding.
func (s *Service) Delete(ctx context.Context, userID int64, id string) (*alert.Alert, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, alert.ErrNotFound) {
			s.logger.Error("alert delete failed", zap.String("alert_id", id), zap.Error(err))
		}
		return nil, err
	}
	metrics.AlertsDeletedTotal.Inc()
	return a, nil
}

// buildAlert is the VALIDATING and MAPPING phases shared by create and
// update.
func (s *Service) buildAlert(userID int64, params *alert.Params) (*alert.Alert, error) {
	conditions, channels, err := alert.ValidateParams(params)
	if err != nil {
		return nil, err
	}
	chains, err := s.registry.MapChains(params.SelectedChains)
	if err != nil {
		return nil, err
	}
	assets, err := s.registry.MapMarkets(params.SelectedMarkets)
	if err != nil {
		return nil, err
	}

	return &alert.Alert{
		UserID:                userID,
		WalletAddress:         params.WalletAddress,
		Category:              alert.Category(params.Category),
		ActionType:            alert.ActionType(params.ActionType),
		IsComparison:          params.IsComparison,
		NotificationFrequency: alert.NotificationFrequency(params.NotificationFrequency),
		CompareProtocols:      params.CompareProtocols,
		Conditions:            conditions,
		DeliveryChannels:      channels,
		Chains:                chains,
		Assets:                assets,
	}, nil
}

func assignChildIDs(a *alert.Alert) {
	for i := range a.Conditions {
		a.Conditions[i].ID = uuid.NewString()
		a.Conditions[i].AlertID = a.ID
	}
	for i := range a.DeliveryChannels {
		a.DeliveryChannels[i].ID = uuid.NewString()
		a.DeliveryChannels[i].AlertID = a.ID
	}
}

func failureReason(err error) string {
	var (
		missing   *alert.MissingFieldError
		invalid   *alert.InvalidFieldError
		empty     *alert.EmptyCollectionError
		condition *alert.InvalidConditionError
		channel   *alert.InvalidChannelError
		chain     *registry.UnknownChainError
		market    *registry.UnknownMarketError
	)
	switch {
	case errors.As(err, &missing):
		return "missing_field"
	case errors.As(err, &invalid):
		return "invalid_field"
	case errors.As(err, &empty):
		return "empty_collection"
	case errors.As(err, &condition):
		return "invalid_condition"
	case errors.As(err, &channel):
		return "invalid_channel"
	case errors.As(err, &chain):
		return "unknown_chain"
	case errors.As(err, &market):
		return "unknown_market"
	}
	return "other"
}
