package models

import (
	"context"
	"time"

	"github.com/parishdesk/parish_backend/utils"
	"gorm.io/gorm"
)

const (
	RoleAdmin     = "admin"
	RoleSecretary = "secretary"
	RoleTreasurer = "treasurer"
)

type Role struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;unique" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// RoleExists reports whether roleId names a seeded role.
func RoleExists(ctx context.Context, db *gorm.DB, roleId int) (bool, error) {
	if roleId <= 0 {
		return false, nil
	}
	count, err := utils.ResourceCountWhere[Role](ctx, db, "id = ?", roleId)
	if err != nil {
		return false, classifyWriteError("roles", err)
	}
	return count > 0, nil
}

func GetRoleByName(ctx context.Context, db *gorm.DB, name string) (*Role, error) {
	var role Role
	if err := db.WithContext(ctx).Where("name = ?", name).Take(&role).Error; err != nil {
		return nil, classifyReadError("roles", 0, err)
	}
	return &role, nil
}

func seedRoles() []Role {
	return []Role{{Name: RoleAdmin}, {Name: RoleSecretary}, {Name: RoleTreasurer}}
}

// IsAdminRole reports whether roleId is the seeded admin role.
func IsAdminRole(ctx context.Context, db *gorm.DB, roleId int) (bool, error) {
	if roleId <= 0 {
		return false, nil
	}
	count, err := utils.ResourceCountWhere[Role](ctx, db, "id = ? AND name = ?", roleId, RoleAdmin)
	if err != nil {
		return false, classifyWriteError("roles", err)
	}
	return count > 0, nil
}
