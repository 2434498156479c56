package actorrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/pkg/errs"
)

// GormActorRepository implements ActorRepository using GORM.
type GormActorRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

// NewGormActorRepository creates a new GORM actor repository.
func NewGormActorRepository(db *gorm.DB, tracker aggregateTracker) *GormActorRepository {
	return &GormActorRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a freshly approved identity to the database.
func (r *GormActorRepository) Add(ctx context.Context, actor *identity.ActorIdentity) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	dto := fromDomain(actor)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewValueIsInvalidError("companyCode is already taken: " + actor.CompanyCode())
		}
		return err
	}

	r.tracker.TrackAggregate(actor.CompanyCode(), actor)
	return nil
}

// Get retrieves an identity by its company code.
func (r *GormActorRepository) Get(ctx context.Context, companyCode string) (*identity.ActorIdentity, error) {
	if companyCode == "" {
		return nil, errs.NewValueIsRequiredError("companyCode")
	}

	var dto ActorDTO
	if err := r.db.WithContext(ctx).First(&dto, "company_code = ?", companyCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("companyCode", companyCode)
		}
		return nil, err
	}

	return toDomain(dto)
}

// Exists reports whether an identity with the company code was approved.
func (r *GormActorRepository) Exists(ctx context.Context, companyCode string) (bool, error) {
	if companyCode == "" {
		return false, errs.NewValueIsRequiredError("companyCode")
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&ActorDTO{}).
		Where("company_code = ?", companyCode).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
