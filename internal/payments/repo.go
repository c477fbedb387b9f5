package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/souqly/souqly-backend/pkg/db/models"
)

// ProfileRepository stores seller marketplace onboarding state.
type ProfileRepository interface {
	FindBySellerID(ctx context.Context, sellerID uuid.UUID) (*models.SellerPaymentProfile, error)
	SaveReferral(ctx context.Context, sellerID uuid.UUID, referralURL string) error
	SetMerchantID(ctx context.Context, sellerID uuid.UUID, merchantID string) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository builds a profile repository bound to the provided DB.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// FindBySellerID returns the seller's profile, or nil when none exists yet.
// A missing profile is normal: it simply means the seller never started
// onboarding.
func (r *profileRepository) FindBySellerID(ctx context.Context, sellerID uuid.UUID) (*models.SellerPaymentProfile, error) {
	var profile models.SellerPaymentProfile
	err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) SaveReferral(ctx context.Context, sellerID uuid.UUID, referralURL string) error {
	profile := models.SellerPaymentProfile{
		SellerID:              sellerID,
		OnboardingReferralURL: referralURL,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seller_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"onboarding_referral_url", "updated_at"}),
	}).Create(&profile).Error
}

func (r *profileRepository) SetMerchantID(ctx context.Context, sellerID uuid.UUID, merchantID string) error {
	now := time.Now()
	profile := models.SellerPaymentProfile{
		SellerID:              sellerID,
		MarketplaceMerchantID: merchantID,
		OnboardedAt:           &now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seller_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"marketplace_merchant_id", "onboarded_at", "updated_at"}),
	}).Create(&profile).Error
}
