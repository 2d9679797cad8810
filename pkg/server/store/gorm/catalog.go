package gorm

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/gateway-admin/pkg/model"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/store"
)

var _ store.CatalogStore = (*CatalogStore)(nil)

// CatalogStore implements store.CatalogStore using GORM
type CatalogStore struct {
	db *gorm.DB
}

// NewCatalogStore creates a new CatalogStore
func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) UpsertResource(ctx context.Context, r store.CatalogResource) error {
	row := model.Resource{
		ResourceType: r.ResourceType.String(),
		ResourceID:   r.ResourceID,
		GatewayID:    r.GatewayID,
		Name:         r.Name,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_type"}, {Name: "resource_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"gateway_id", "name"}),
	}).Create(&row).Error
}

func (s *CatalogStore) ResourceNames(ctx context.Context, resourceType preference.ResourceType, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []model.Resource
	err := s.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id IN ?", resourceType.String(), ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		names[r.ResourceID] = r.Name
	}
	return names, nil
}

var _ store.GroupsStore = (*GroupsStore)(nil)

// GroupsStore implements store.GroupsStore using GORM
type GroupsStore struct {
	db *gorm.DB
}

// NewGroupsStore creates a new GroupsStore
func NewGroupsStore(db *gorm.DB) *GroupsStore {
	return &GroupsStore{db: db}
}

func (s *GroupsStore) GroupsForUser(ctx context.Context, gatewayID, userID string) ([]string, error) {
	groups := []string{}
	err := s.db.WithContext(ctx).Model(&model.GroupMembership{}).
		Where("gateway_id = ? AND user_id = ?", gatewayID, userID).
		Order("group_id").
		Pluck("group_id", &groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *GroupsStore) AddMember(ctx context.Context, gatewayID, groupID, userID string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model.GroupMembership{
		GatewayID: gatewayID,
		GroupID:   groupID,
		UserID:    userID,
	}).Error
}

func (s *GroupsStore) RemoveMember(ctx context.Context, gatewayID, groupID, userID string) error {
	return s.db.WithContext(ctx).
		Where("gateway_id = ? AND group_id = ? AND user_id = ?", gatewayID, groupID, userID).
		Delete(&model.GroupMembership{}).Error
}
