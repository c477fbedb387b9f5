package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/souqly-backend/pkg/db/models"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
)

type stubReferralCreator struct {
	url   string
	err   error
	calls int
}

func (s *stubReferralCreator) OnboardSeller(ctx context.Context, sellerID uuid.UUID, email, businessName string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type stubProfileRepo struct {
	profile       *models.SellerPaymentProfile
	findErr       error
	savedReferral string
	saveErr       error
}

func (s *stubProfileRepo) FindBySellerID(ctx context.Context, sellerID uuid.UUID) (*models.SellerPaymentProfile, error) {
	return s.profile, s.findErr
}

func (s *stubProfileRepo) SaveReferral(ctx context.Context, sellerID uuid.UUID, referralURL string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.savedReferral = referralURL
	return nil
}

func (s *stubProfileRepo) SetMerchantID(ctx context.Context, sellerID uuid.UUID, merchantID string) error {
	return nil
}

func TestStartOnboardingCreatesReferral(t *testing.T) {
	gateway := &stubReferralCreator{url: "https://gateway.example/onboard/xyz"}
	repo := &stubProfileRepo{}
	svc, err := NewOnboardingService(gateway, repo, nil)
	require.NoError(t, err)

	url, err := svc.StartOnboarding(context.Background(), uuid.New(), "seller@example.com", "Souqly Seller")
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example/onboard/xyz", url)
	assert.Equal(t, url, repo.savedReferral)
	assert.Equal(t, 1, gateway.calls)
}

func TestStartOnboardingRejectsOnboardedSeller(t *testing.T) {
	gateway := &stubReferralCreator{url: "https://gateway.example/onboard/xyz"}
	repo := &stubProfileRepo{profile: &models.SellerPaymentProfile{MarketplaceMerchantID: "M-1"}}
	svc, err := NewOnboardingService(gateway, repo, nil)
	require.NoError(t, err)

	_, err = svc.StartOnboarding(context.Background(), uuid.New(), "seller@example.com", "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Zero(t, gateway.calls)
}

func TestStartOnboardingPropagatesGatewayError(t *testing.T) {
	gatewayErr := pkgerrors.New(pkgerrors.CodeOnboarding, "referral rejected")
	gateway := &stubReferralCreator{err: gatewayErr}
	svc, err := NewOnboardingService(gateway, &stubProfileRepo{}, nil)
	require.NoError(t, err)

	_, err = svc.StartOnboarding(context.Background(), uuid.New(), "seller@example.com", "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeOnboarding))
}

func TestStartOnboardingWrapsRepoErrors(t *testing.T) {
	svc, err := NewOnboardingService(&stubReferralCreator{url: "u"}, &stubProfileRepo{findErr: errors.New("db down")}, nil)
	require.NoError(t, err)

	_, err = svc.StartOnboarding(context.Background(), uuid.New(), "seller@example.com", "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestNewOnboardingServiceRequiresDeps(t *testing.T) {
	_, err := NewOnboardingService(nil, &stubProfileRepo{}, nil)
	assert.Error(t, err)

	_, err = NewOnboardingService(&stubReferralCreator{}, nil, nil)
	assert.Error(t, err)
}
