package repository

import (
	"context"

	"skillnet/internal/model"

	"gorm.io/gorm"
)

// CompetenceRepository 技能数据仓储
type CompetenceRepository struct {
	db *gorm.DB
}

// NewCompetenceRepository 创建CompetenceRepository实例
func NewCompetenceRepository(db *gorm.DB) *CompetenceRepository {
	return &CompetenceRepository{db: db}
}

// Create 创建技能
func (r *CompetenceRepository) Create(ctx context.Context, c *model.Competence) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

// List 获取全部技能
func (r *CompetenceRepository) List(ctx context.Context) ([]*model.Competence, error) {
	var list []*model.Competence
	err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error
	return list, err
}

// GetByID 根据ID获取技能
func (r *CompetenceRepository) GetByID(ctx context.Context, id uint) (*model.Competence, error) {
	var c model.Competence
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Update 按字段部分更新
func (r *CompetenceRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Competence{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除技能（软删除），返回是否命中记录
func (r *CompetenceRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Competence{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
