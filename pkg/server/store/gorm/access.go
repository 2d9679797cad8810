package gorm

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/gateway-admin/pkg/model"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

// Ensure AccessGrantsStore implements store.AccessGrantsStore
var _ store.AccessGrantsStore = (*AccessGrantsStore)(nil)

// AccessGrantsStore implements store.AccessGrantsStore using GORM
type AccessGrantsStore struct {
	db *gorm.DB
}

// NewAccessGrantsStore creates a new AccessGrantsStore
func NewAccessGrantsStore(db *gorm.DB) *AccessGrantsStore {
	return &AccessGrantsStore{db: db}
}

// CreateAccessGrant inserts grant unless its owner already holds one on the
// same resource. A credential token with no credential row yields
// store.ErrCredentialNotFound.
func (s *AccessGrantsStore) CreateAccessGrant(ctx context.Context, grant *store.AccessGrant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := grantToModel(grant)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.ResourceAccess{}).Where(map[string]interface{}{
			"resource_type": row.ResourceType,
			"resource_id":   row.ResourceID,
			"owner_id":      row.OwnerID,
			"owner_type":    row.OwnerType,
		}).Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return store.ErrGrantExists
		}
		return tx.Create(&row).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrGrantExists
	}
	if isForeignKeyViolation(err) {
		return store.ErrCredentialNotFound
	}
	if err != nil {
		return err
	}
	*grant = grantFromModel(row)
	return nil
}

// GetAccessGrant loads a grant by id.
func (s *AccessGrantsStore) GetAccessGrant(ctx context.Context, id int64) (*store.AccessGrant, error) {
	var row model.ResourceAccess
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrGrantNotFound
	}
	if err != nil {
		return nil, err
	}
	grant := grantFromModel(row)
	return &grant, nil
}

// UpdateAccessGrant applies the non-nil fields of patch.
func (s *AccessGrantsStore) UpdateAccessGrant(ctx context.Context, id int64, patch store.AccessGrantPatch) (*store.AccessGrant, error) {
	updates := map[string]interface{}{}
	if patch.Enabled != nil {
		updates["enabled"] = *patch.Enabled
	}
	if patch.CredentialToken != nil {
		updates["credential_token"] = *patch.CredentialToken
	}
	if patch.LoginUsername != nil {
		updates["login_username"] = *patch.LoginUsername
	}

	if len(updates) > 0 {
		tx := s.db.WithContext(ctx).Model(&model.ResourceAccess{}).Where("id = ?", id).Updates(updates)
		if isForeignKeyViolation(tx.Error) {
			return nil, store.ErrCredentialNotFound
		}
		if tx.Error != nil {
			return nil, tx.Error
		}
		if tx.RowsAffected == 0 {
			return nil, store.ErrGrantNotFound
		}
	}
	return s.GetAccessGrant(ctx, id)
}

// DeleteAccessGrant removes a grant.
func (s *AccessGrantsStore) DeleteAccessGrant(ctx context.Context, id int64) error {
	tx := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ResourceAccess{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrGrantNotFound
	}
	return nil
}

// ListAccessGrants returns grants matching filter ordered by id.
func (s *AccessGrantsStore) ListAccessGrants(ctx context.Context, filter store.AccessGrantFilter) ([]store.AccessGrant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&model.ResourceAccess{})
	if filter.GatewayID != "" {
		q = q.Where("gateway_id = ?", filter.GatewayID)
	}
	if filter.ResourceType != nil {
		q = q.Where("resource_type = ?", filter.ResourceType.String())
	}
	if filter.ResourceID != "" {
		q = q.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.CredentialToken != "" {
		q = q.Where("credential_token = ?", filter.CredentialToken)
	}
	if filter.EnabledOnly {
		q = q.Where("enabled = ?", true)
	}
	if len(filter.Owners) > 0 {
		clauses := make([]string, 0, len(filter.Owners))
		args := make([]interface{}, 0, 2*len(filter.Owners))
		for _, o := range filter.Owners {
			clauses = append(clauses, "(owner_id = ? AND owner_type = ?)")
			args = append(args, o.OwnerID, o.OwnerType.String())
		}
		q = q.Where(strings.Join(clauses, " OR "), args...)
	}

	var rows []model.ResourceAccess
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.AccessGrant, 0, len(rows))
	for _, r := range rows {
		out = append(out, grantFromModel(r))
	}
	return out, nil
}

func grantToModel(g *store.AccessGrant) model.ResourceAccess {
	return model.ResourceAccess{
		ID:              g.ID,
		ResourceType:    g.ResourceType.String(),
		ResourceID:      g.ResourceID,
		OwnerID:         g.OwnerID,
		OwnerType:       g.OwnerType.String(),
		GatewayID:       g.GatewayID,
		CredentialToken: g.CredentialToken,
		LoginUsername:   g.LoginUsername,
		Enabled:         g.Enabled,
	}
}

// grantFromModel tolerates unknown enum strings by leaving the zero value;
// rows are only ever written through grantToModel.
func grantFromModel(r model.ResourceAccess) store.AccessGrant {
	rt, _ := preference.ParseResourceType(r.ResourceType)
	ot, _ := preference.ParseLevel(r.OwnerType)
	return store.AccessGrant{
		ID:              r.ID,
		ResourceType:    rt,
		ResourceID:      r.ResourceID,
		OwnerID:         r.OwnerID,
		OwnerType:       ot,
		GatewayID:       r.GatewayID,
		CredentialToken: r.CredentialToken,
		LoginUsername:   r.LoginUsername,
		Enabled:         r.Enabled,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
