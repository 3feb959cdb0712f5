package services

import (
	"accessnav/internal/models"
	apperrors "accessnav/pkg/errors"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RouteService struct {
	db *gorm.DB
}

func NewRouteService(db *gorm.DB) *RouteService {
	return &RouteService{db: db}
}

// CreateRouteParams 创建线路参数
type CreateRouteParams struct {
	Name          string
	Description   string
	City          string
	Difficulty    string
	Wheelchair    bool
	DistanceM     int
	Waypoints     datatypes.JSON
	Accessibility datatypes.JSON
}

// Create 创建线路
func (s *RouteService) Create(params CreateRouteParams, createdBy uint) (*models.Route, error) {
	if params.Difficulty == "" {
		params.Difficulty = models.RouteDifficultyEasy
	}

	route := &models.Route{
		Name:          params.Name,
		Description:   params.Description,
		City:          params.City,
		Difficulty:    params.Difficulty,
		Wheelchair:    params.Wheelchair,
		DistanceM:     params.DistanceM,
		Waypoints:     params.Waypoints,
		Accessibility: params.Accessibility,
		CreatedBy:     createdBy,
	}

	err := s.db.Create(route).Error
	return route, err
}

// GetByID 根据ID获取线路
func (s *RouteService) GetByID(id uint) (*models.Route, error) {
	var route models.Route
	err := s.db.First(&route, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("线路不存在")
	}
	return &route, err
}

// GetOwnerID 归属检查用：查线路属主
func (s *RouteService) GetOwnerID(id uint) (uint, error) {
	route, err := s.GetByID(id)
	if err != nil {
		return 0, err
	}
	return route.CreatedBy, nil
}

// GetWithPage 分页获取线路，支持城市、难度、轮椅可达筛选
func (s *RouteService) GetWithPage(city, difficulty string, wheelchair *bool, page, pageSize int) ([]*models.Route, int64, error) {
	var routes []*models.Route
	var total int64

	query := s.db.Model(&models.Route{})
	if city != "" {
		query = query.Where("city = ?", city)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if wheelchair != nil {
		query = query.Where("wheelchair = ?", *wheelchair)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("id DESC").Offset(offset).Limit(pageSize).Find(&routes).Error
	if err != nil {
		return nil, 0, err
	}

	return routes, total, nil
}

// Update 更新线路
func (s *RouteService) Update(id uint, params CreateRouteParams) (*models.Route, error) {
	route, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	route.Name = params.Name
	route.Description = params.Description
	route.City = params.City
	if params.Difficulty != "" {
		route.Difficulty = params.Difficulty
	}
	route.Wheelchair = params.Wheelchair
	route.DistanceM = params.DistanceM
	if params.Waypoints != nil {
		route.Waypoints = params.Waypoints
	}
	if params.Accessibility != nil {
		route.Accessibility = params.Accessibility
	}

	err = s.db.Save(route).Error
	return route, err
}

// Publish 发布线路
func (s *RouteService) Publish(id uint) (*models.Route, error) {
	route, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	route.IsPublished = true
	err = s.db.Save(route).Error
	return route, err
}

// Delete 删除线路
func (s *RouteService) Delete(id uint) error {
	route, err := s.GetByID(id)
	if err != nil {
		return err
	}
	return s.db.Delete(route).Error
}
