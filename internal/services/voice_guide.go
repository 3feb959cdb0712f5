package services

import (
	"accessnav/internal/models"
	apperrors "accessnav/pkg/errors"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VoiceGuideService struct {
	db *gorm.DB
}

func NewVoiceGuideService(db *gorm.DB) *VoiceGuideService {
	return &VoiceGuideService{db: db}
}

// CreateVoiceGuideParams 创建导览参数
type CreateVoiceGuideParams struct {
	RouteID    uint
	Locale     string
	Title      string
	Transcript string
	Media      datatypes.JSON
}

// Create 创建语音导览元数据记录
func (s *VoiceGuideService) Create(params CreateVoiceGuideParams, createdBy uint) (*models.VoiceGuide, error) {
	var route models.Route
	if err := s.db.First(&route, params.RouteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("线路不存在")
		}
		return nil, err
	}

	if params.Locale == "" {
		params.Locale = "zh-CN"
	}

	guide := &models.VoiceGuide{
		ExternalID: uuid.New().String(),
		RouteID:    params.RouteID,
		Locale:     params.Locale,
		Title:      params.Title,
		Transcript: params.Transcript,
		Media:      params.Media,
		CreatedBy:  createdBy,
		IsActive:   true,
	}

	err := s.db.Create(guide).Error
	return guide, err
}

// GetByID 根据ID获取导览
func (s *VoiceGuideService) GetByID(id uint) (*models.VoiceGuide, error) {
	var guide models.VoiceGuide
	err := s.db.First(&guide, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("语音导览不存在")
	}
	return &guide, err
}

// GetByExternalID 根据UUID外部标识获取导览
func (s *VoiceGuideService) GetByExternalID(externalID string) (*models.VoiceGuide, error) {
	var guide models.VoiceGuide
	err := s.db.Where("external_id = ?", externalID).First(&guide).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("语音导览不存在")
	}
	return &guide, err
}

// GetOwnerID 归属检查用：查导览创建者
func (s *VoiceGuideService) GetOwnerID(id uint) (uint, error) {
	guide, err := s.GetByID(id)
	if err != nil {
		return 0, err
	}
	return guide.CreatedBy, nil
}

// GetByRoute 获取线路下启用中的导览
func (s *VoiceGuideService) GetByRoute(routeID uint, locale string) ([]*models.VoiceGuide, error) {
	var guides []*models.VoiceGuide

	query := s.db.Where("route_id = ? AND is_active = ?", routeID, true)
	if locale != "" {
		query = query.Where("locale = ?", locale)
	}

	err := query.Order("id").Find(&guides).Error
	return guides, err
}

// Update 更新导览
func (s *VoiceGuideService) Update(id uint, params CreateVoiceGuideParams) (*models.VoiceGuide, error) {
	guide, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if params.Locale != "" {
		guide.Locale = params.Locale
	}
	guide.Title = params.Title
	guide.Transcript = params.Transcript
	if params.Media != nil {
		guide.Media = params.Media
	}

	err = s.db.Save(guide).Error
	return guide, err
}

// Delete 删除导览（下线）
func (s *VoiceGuideService) Delete(id uint) error {
	guide, err := s.GetByID(id)
	if err != nil {
		return err
	}
	guide.IsActive = false
	return s.db.Save(guide).Error
}
