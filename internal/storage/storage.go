package storage

import (
	"context"
	"errors"

	"github.com/hytyads/worklog-tools-form-luc/internal/models"
)

var (
	// ErrDailyLimitReached 当天记录数已达上限
	ErrDailyLimitReached = errors.New("daily record limit (100) reached")
	// ErrInvalidDate 日期不是 YYYY-MM-DD 格式
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrEmptyContent 记录内容为空
	ErrEmptyContent = errors.New("record content is empty")
	// ErrRecordNotFound 记录不存在
	ErrRecordNotFound = errors.New("record not found")
)

// Storage 数据存储接口
type Storage interface {
	// GetRecordsByDate 获取指定日期的所有工作记录，没有则返回空
	GetRecordsByDate(ctx context.Context, date string) ([]models.WorkRecord, error)

	// AddRecord 在指定日期追加一条记录
	AddRecord(ctx context.Context, date, content string) (models.WorkRecord, error)

	// UpdateRecord 替换记录内容，记录不存在时不做任何事
	UpdateRecord(ctx context.Context, date, id, content string) error

	// DeleteRecord 删除记录，分区为空时一并删除分区
	DeleteRecord(ctx context.Context, date, id string) error

	// GetDatesWithData 获取所有有记录的日期（用于日历标记）
	GetDatesWithData(ctx context.Context) ([]string, error)

	// GetRecordsInRange 获取闭区间内的所有记录，按时间戳升序
	GetRecordsInRange(ctx context.Context, startDate, endDate string) ([]models.WorkRecord, error)

	// GetUserSettings 读取用户设置，缺失字段使用默认值
	GetUserSettings(ctx context.Context) (models.Settings, error)

	// SaveUserSettings 整体覆盖用户设置
	SaveUserSettings(ctx context.Context, settings models.Settings) error

	// GetSummaryHistory 获取总结历史（最新在前）
	GetSummaryHistory(ctx context.Context) ([]models.SummaryRecord, error)

	// GetSummaryRecord 按 ID 获取单条总结
	GetSummaryRecord(ctx context.Context, id string) (models.SummaryRecord, error)

	// SaveSummaryRecord 保存一条总结到历史最前面
	SaveSummaryRecord(ctx context.Context, startDate, endDate, content string) (models.SummaryRecord, error)

	// DeleteSummaryRecord 删除一条总结，不存在时不做任何事
	DeleteSummaryRecord(ctx context.Context, id string) error
}
