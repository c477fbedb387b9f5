package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
	"github.com/souqly/souqly-backend/pkg/logger"
)

type referralCreator interface {
	OnboardSeller(ctx context.Context, sellerID uuid.UUID, email, businessName string) (string, error)
}

// OnboardingService starts the marketplace partner-referral flow for sellers
// who have not connected a merchant account yet.
type OnboardingService interface {
	StartOnboarding(ctx context.Context, sellerID uuid.UUID, email, businessName string) (string, error)
}

type onboardingService struct {
	gateway referralCreator
	repo    ProfileRepository
	logg    *logger.Logger
}

// NewOnboardingService builds the onboarding service.
func NewOnboardingService(gateway referralCreator, repo ProfileRepository, logg *logger.Logger) (OnboardingService, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &onboardingService{gateway: gateway, repo: repo, logg: logg}, nil
}

// StartOnboarding creates a referral and records its action URL. Sellers who
// already carry a merchant id are rejected: re-onboarding a connected account
// would orphan the existing merchant link.
func (s *onboardingService) StartOnboarding(ctx context.Context, sellerID uuid.UUID, email, businessName string) (string, error) {
	if sellerID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}

	profile, err := s.repo.FindBySellerID(ctx, sellerID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller payment profile")
	}
	if profile != nil && profile.Onboarded() {
		return "", pkgerrors.New(pkgerrors.CodeConflict, "seller already onboarded")
	}

	referralURL, err := s.gateway.OnboardSeller(ctx, sellerID, email, businessName)
	if err != nil {
		return "", err
	}

	if err := s.repo.SaveReferral(ctx, sellerID, referralURL); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save onboarding referral")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithSellerID(ctx, sellerID.String()), "seller onboarding referral created")
	}
	return referralURL, nil
}
