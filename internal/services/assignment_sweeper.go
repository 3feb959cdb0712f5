package services

import (
	"accessnav/pkg/logger"

	"github.com/robfig/cron/v3"
)

// AssignmentSweeper 分配过期对账任务
// 每小时把expires_at已过的分配翻转为非活跃，仅用于让审计查询
// 与实际状态一致——权限解析的过期判定始终在读取时内联完成，
// 正确性不依赖本任务。
type AssignmentSweeper struct {
	assignmentService *AssignmentService
	cron              *cron.Cron
	entryID           cron.EntryID
}

func NewAssignmentSweeper(assignmentService *AssignmentService) *AssignmentSweeper {
	return &AssignmentSweeper{
		assignmentService: assignmentService,
		cron:              cron.New(),
	}
}

// Start 启动定时任务
func (s *AssignmentSweeper) Start() error {
	entryID, err := s.cron.AddFunc("@hourly", s.sweep)
	if err != nil {
		return err
	}
	s.entryID = entryID
	s.cron.Start()
	return nil
}

// Stop 停止定时任务
func (s *AssignmentSweeper) Stop() {
	s.cron.Stop()
}

func (s *AssignmentSweeper) sweep() {
	appLogger := logger.GetLogger()
	affected, err := s.assignmentService.DeactivateExpired()
	if err != nil {
		appLogger.Errorf("Failed to deactivate expired assignments: %v", err)
		return
	}
	if affected > 0 {
		appLogger.Infof("Deactivated %d expired role assignments", affected)
	}
}
