package services

import (
	"accessnav/internal/models"
	apperrors "accessnav/pkg/errors"
	"errors"

	"gorm.io/gorm"
)

type MessageService struct {
	db  *gorm.DB
	hub *MessageHub // 可为空，空时仅落库不推送
}

func NewMessageService(db *gorm.DB, hub *MessageHub) *MessageService {
	return &MessageService{db: db, hub: hub}
}

// Create 创建消息并推送给在线的接收者
func (s *MessageService) Create(userID uint, title, content, kind string, sentBy *uint) (*models.Message, error) {
	if kind == "" {
		kind = models.MessageKindNotice
	}

	message := &models.Message{
		UserID:  userID,
		Title:   title,
		Content: content,
		Kind:    kind,
		SentBy:  sentBy,
	}

	if err := s.db.Create(message).Error; err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Push(message)
	}
	return message, nil
}

// GetByID 根据ID获取消息
func (s *MessageService) GetByID(id uint) (*models.Message, error) {
	var message models.Message
	err := s.db.First(&message, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("消息不存在")
	}
	return &message, err
}

// GetOwnerID 归属检查用：查消息接收者
func (s *MessageService) GetOwnerID(id uint) (uint, error) {
	message, err := s.GetByID(id)
	if err != nil {
		return 0, err
	}
	return message.UserID, nil
}

// GetByUserWithPage 分页获取用户的消息
func (s *MessageService) GetByUserWithPage(userID uint, unreadOnly bool, page, pageSize int) ([]*models.Message, int64, error) {
	var messages []*models.Message
	var total int64

	query := s.db.Model(&models.Message{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("id DESC").Offset(offset).Limit(pageSize).Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// MarkRead 标记消息已读
func (s *MessageService) MarkRead(id uint) (*models.Message, error) {
	message, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	message.IsRead = true
	err = s.db.Save(message).Error
	return message, err
}

// Delete 删除消息
func (s *MessageService) Delete(id uint) error {
	message, err := s.GetByID(id)
	if err != nil {
		return err
	}
	return s.db.Delete(message).Error
}
