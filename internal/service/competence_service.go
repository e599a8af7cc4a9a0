package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"skillnet/internal/model"
	"skillnet/internal/repository"
)

const maxCompetenceNameLen = 128

// CompetenceUpdate 技能部分更新，nil 字段保持不变
type CompetenceUpdate struct {
	Name        *string
	Description *string
}

// CompetenceService 技能目录
type CompetenceService struct {
	repo *repository.CompetenceRepository
}

// NewCompetenceService 创建CompetenceService实例
func NewCompetenceService(repo *repository.CompetenceRepository) *CompetenceService {
	return &CompetenceService{repo: repo}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name is required")
	}
	if utf8.RuneCountInString(name) > maxCompetenceNameLen {
		return "", invalid(fmt.Sprintf("name must be at most %d characters", maxCompetenceNameLen))
	}
	return name, nil
}

// Create 创建技能
func (s *CompetenceService) Create(ctx context.Context, name, description string) (*model.Competence, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	c := &model.Competence{Name: name, Description: strings.TrimSpace(description)}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create competence: %w", err)
	}
	return c, nil
}

// FindAll 获取全部技能
func (s *CompetenceService) FindAll(ctx context.Context) ([]*model.Competence, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competences: %w", err)
	}
	return list, nil
}

// FindOne 按ID获取技能
func (s *CompetenceService) FindOne(ctx context.Context, id uint) (*model.Competence, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "competence")
	}
	return c, nil
}

// Update 部分更新技能
func (s *CompetenceService) Update(ctx context.Context, id uint, upd CompetenceUpdate) (*model.Competence, error) {
	if _, err := s.FindOne(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if upd.Name != nil {
		name, err := validateName(*upd.Name)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if upd.Description != nil {
		fields["description"] = strings.TrimSpace(*upd.Description)
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("update competence: %w", err)
		}
	}
	return s.FindOne(ctx, id)
}

// Remove 删除技能
func (s *CompetenceService) Remove(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete competence: %w", err)
	}
	if !deleted {
		return fmt.Errorf("competence: %w", ErrNotFound)
	}
	return nil
}
