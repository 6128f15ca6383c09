package grant

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=grant_repo.go -destination=mock/grant_repo_mock.go -package=mock
type Repository interface {
	// OrganizationByGrant returns the funding organization of a grant.
	OrganizationByGrant(ctx context.Context, grantID uuid.UUID) (string, error)
	// OrganizationByGrantItem resolves a budget line to its grant's organization.
	OrganizationByGrantItem(ctx context.Context, grantItemID uuid.UUID) (string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) OrganizationByGrant(ctx context.Context, grantID uuid.UUID) (string, error) {
	var org string
	err := r.db.WithContext(ctx).
		Model(&Grant{}).
		Select("organization").
		Where("id = ?", grantID).
		First(&org).Error
	return org, err
}

func (r *repository) OrganizationByGrantItem(ctx context.Context, grantItemID uuid.UUID) (string, error) {
	var org string
	err := r.db.WithContext(ctx).
		Table("grant_items").
		Select("grants.organization").
		Joins("JOIN grants ON grants.id = grant_items.grant_id").
		Where("grant_items.id = ?", grantItemID).
		First(&org).Error
	return org, err
}
