package repository

import (
	"errors"
	"strings"

	"github.com/tip-next/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口（归因查询口径）
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByRelationID(relationID int64) (*models.User, error)
	GetBySpecialID(specialID int64) (*models.User, error)
	GetByPddPid(pid string) (*models.User, error)
	GetByJdAuthID(authID string) (*models.User, error)
	GetByUnionID(unionID string) (*models.User, error)
}

// GormUserRepository GORM 用户仓储实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID 按主键查询用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first("id = ?", id)
}

// GetByRelationID 按淘宝渠道关系ID查询用户
func (r *GormUserRepository) GetByRelationID(relationID int64) (*models.User, error) {
	if relationID == 0 {
		return nil, nil
	}
	return r.first("relation_id = ?", relationID)
}

// GetBySpecialID 按淘宝会员运营ID查询用户
func (r *GormUserRepository) GetBySpecialID(specialID int64) (*models.User, error) {
	if specialID == 0 {
		return nil, nil
	}
	return r.first("special_id = ?", specialID)
}

// GetByPddPid 按拼多多推广位查询用户
func (r *GormUserRepository) GetByPddPid(pid string) (*models.User, error) {
	pid = strings.TrimSpace(pid)
	if pid == "" {
		return nil, nil
	}
	return r.first("pdd_pid = ?", pid)
}

// GetByJdAuthID 按京东授权ID查询用户
func (r *GormUserRepository) GetByJdAuthID(authID string) (*models.User, error) {
	authID = strings.TrimSpace(authID)
	if authID == "" {
		return nil, nil
	}
	return r.first("jd_auth_id = ?", authID)
}

// GetByUnionID 按联盟通用ID查询用户
func (r *GormUserRepository) GetByUnionID(unionID string) (*models.User, error) {
	unionID = strings.TrimSpace(unionID)
	if unionID == "" {
		return nil, nil
	}
	return r.first("union_id = ?", unionID)
}

func (r *GormUserRepository) first(query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
