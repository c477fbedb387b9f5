package vouchers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/souqly/souqly-backend/pkg/db/models"
	"github.com/souqly/souqly-backend/pkg/enums"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
)

// Service exposes voucher reads for checkout and CRUD for the admin surface.
type Service interface {
	ListActive(ctx context.Context) ([]models.Voucher, error)
	FindByCode(ctx context.Context, code string) (*models.Voucher, error)
	Create(ctx context.Context, input UpsertInput) (*models.Voucher, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Voucher, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpsertInput carries the admin-editable voucher fields.
type UpsertInput struct {
	Code          string
	Kind          enums.VoucherKind
	ValueCents    int64
	ValuePercent  int
	MinOrderCents int64
	ExpiresAt     time.Time
	Disabled      bool
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the voucher service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("voucher repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.Voucher, error) {
	out, err := s.repo.ListActive(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vouchers")
	}
	return out, nil
}

func (s *service) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher code required")
	}
	voucher, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find voucher")
	}
	return voucher, nil
}

func (s *service) Create(ctx context.Context, input UpsertInput) (*models.Voucher, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	voucher := &models.Voucher{
		Code:          strings.ToUpper(strings.TrimSpace(input.Code)),
		Kind:          input.Kind,
		ValueCents:    input.ValueCents,
		ValuePercent:  input.ValuePercent,
		MinOrderCents: input.MinOrderCents,
		ExpiresAt:     input.ExpiresAt,
		Disabled:      input.Disabled,
	}
	created, err := s.repo.Create(ctx, voucher)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create voucher")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Voucher, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher id required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	voucher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "voucher not found")
	}
	voucher.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	voucher.Kind = input.Kind
	voucher.ValueCents = input.ValueCents
	voucher.ValuePercent = input.ValuePercent
	voucher.MinOrderCents = input.MinOrderCents
	voucher.ExpiresAt = input.ExpiresAt
	voucher.Disabled = input.Disabled
	if err := s.repo.Update(ctx, voucher); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update voucher")
	}
	return voucher, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "voucher id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete voucher")
	}
	return nil
}

// validateInput enforces the voucher kind invariants: percentage values live
// in (0, 100], fixed values must be positive.
func validateInput(input UpsertInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "voucher code required")
	}
	if input.MinOrderCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum order value must not be negative")
	}
	if input.ExpiresAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry date required")
	}
	switch input.Kind {
	case enums.VoucherKindFixed:
		if input.ValueCents <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "fixed voucher value must be positive")
		}
	case enums.VoucherKindPercentage:
		if input.ValuePercent <= 0 || input.ValuePercent > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation, "percentage voucher value must be within (0, 100]")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown voucher kind")
	}
	return nil
}
