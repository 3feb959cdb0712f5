package services

import (
	"accessnav/internal/models"
	apperrors "accessnav/pkg/errors"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TouristRegistrationService struct {
	db *gorm.DB
}

func NewTouristRegistrationService(db *gorm.DB) *TouristRegistrationService {
	return &TouristRegistrationService{db: db}
}

// Create 创建游客登记，生成UUID确认码
func (s *TouristRegistrationService) Create(userID, routeID uint, visitDate time.Time, partySize int, details datatypes.JSON) (*models.TouristRegistration, error) {
	var route models.Route
	if err := s.db.First(&route, routeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("线路不存在")
		}
		return nil, err
	}

	if partySize < 1 {
		partySize = 1
	}

	registration := &models.TouristRegistration{
		UserID:           userID,
		RouteID:          routeID,
		ConfirmationCode: uuid.New().String(),
		VisitDate:        visitDate,
		PartySize:        partySize,
		Status:           models.RegistrationStatusPending,
		Details:          details,
	}

	err := s.db.Create(registration).Error
	return registration, err
}

// GetByID 根据ID获取登记
func (s *TouristRegistrationService) GetByID(id uint) (*models.TouristRegistration, error) {
	var registration models.TouristRegistration
	err := s.db.Preload("Route").First(&registration, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("登记不存在")
	}
	return &registration, err
}

// GetOwnerID 归属检查用：查登记人
func (s *TouristRegistrationService) GetOwnerID(id uint) (uint, error) {
	var registration models.TouristRegistration
	err := s.db.Select("user_id").First(&registration, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.NewNotFoundError("登记不存在")
	}
	if err != nil {
		return 0, err
	}
	return registration.UserID, nil
}

// GetByUserWithPage 分页获取用户的登记
func (s *TouristRegistrationService) GetByUserWithPage(userID uint, status string, page, pageSize int) ([]*models.TouristRegistration, int64, error) {
	var registrations []*models.TouristRegistration
	var total int64

	query := s.db.Model(&models.TouristRegistration{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Route").Order("id DESC").Offset(offset).Limit(pageSize).Find(&registrations).Error
	if err != nil {
		return nil, 0, err
	}

	return registrations, total, nil
}

// UpdateStatus 更新登记状态（审核操作）
func (s *TouristRegistrationService) UpdateStatus(id uint, status string) (*models.TouristRegistration, error) {
	if status != models.RegistrationStatusPending &&
		status != models.RegistrationStatusConfirmed &&
		status != models.RegistrationStatusCancelled {
		return nil, apperrors.NewInvalidOperationError("非法的登记状态")
	}

	registration, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	registration.Status = status
	err = s.db.Save(registration).Error
	return registration, err
}

// Cancel 取消登记
func (s *TouristRegistrationService) Cancel(id uint) (*models.TouristRegistration, error) {
	return s.UpdateStatus(id, models.RegistrationStatusCancelled)
}

// Delete 删除登记
func (s *TouristRegistrationService) Delete(id uint) error {
	registration, err := s.GetByID(id)
	if err != nil {
		return err
	}
	return s.db.Delete(registration).Error
}
