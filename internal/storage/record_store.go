package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hytyads/worklog-tools-form-luc/internal/kv"
	"github.com/hytyads/worklog-tools-form-luc/internal/models"
)

// 存储中的三个独立键
const (
	RecordsKey  = "worklog_data"
	SettingsKey = "worklog_settings"
	HistoryKey  = "worklog_summary_history"
)

const (
	// MaxRecordsPerDay 每天最多记录条数
	MaxRecordsPerDay = 100
	// MaxSummaryHistory 总结历史最多保留条数
	MaxSummaryHistory = 50
)

const dateLayout = "2006-01-02"

var _ Storage = (*RecordStore)(nil)

// RecordStore 基于键值存储的记录存储实现
// 每次修改都会整体读取、修改、写回对应的表。mu 只保证同一进程内的串行写入，
// 多个进程同时写同一个存储不受保护（serve 通过进程锁保证只有一个常驻写入者）
type RecordStore struct {
	kv    kv.Store
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewRecordStore 创建记录存储
func NewRecordStore(store kv.Store) *RecordStore {
	return &RecordStore{
		kv:    store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// ValidateDate 校验 YYYY-MM-DD 格式
func ValidateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// GetRecordsByDate 获取指定日期的工作记录
func (s *RecordStore) GetRecordsByDate(ctx context.Context, date string) ([]models.WorkRecord, error) {
	table, err := s.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	records := table[date]
	if records == nil {
		return []models.WorkRecord{}, nil
	}
	return records, nil
}

// AddRecord 追加工作记录
func (s *RecordStore) AddRecord(ctx context.Context, date, content string) (models.WorkRecord, error) {
	if err := ValidateDate(date); err != nil {
		return models.WorkRecord{}, err
	}
	if strings.TrimSpace(content) == "" {
		return models.WorkRecord{}, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.loadRecords(ctx)
	if err != nil {
		return models.WorkRecord{}, err
	}

	if len(table[date]) >= MaxRecordsPerDay {
		return models.WorkRecord{}, ErrDailyLimitReached
	}

	record := models.WorkRecord{
		ID:        s.newID(),
		Content:   content,
		Timestamp: s.now().UnixMilli(),
		Date:      date,
	}
	table[date] = append(table[date], record)

	if err := s.saveRecords(ctx, table); err != nil {
		return models.WorkRecord{}, err
	}
	return record, nil
}

// UpdateRecord 替换记录内容，其余字段保持不变
func (s *RecordStore) UpdateRecord(ctx context.Context, date, id, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.loadRecords(ctx)
	if err != nil {
		return err
	}

	records := table[date]
	for i := range records {
		if records[i].ID == id {
			records[i].Content = content
			return s.saveRecords(ctx, table)
		}
	}
	return nil
}

// DeleteRecord 删除记录
func (s *RecordStore) DeleteRecord(ctx context.Context, date, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.loadRecords(ctx)
	if err != nil {
		return err
	}

	records := table[date]
	for i := range records {
		if records[i].ID != id {
			continue
		}
		records = append(records[:i], records[i+1:]...)
		if len(records) == 0 {
			// 空分区不落盘
			delete(table, date)
		} else {
			table[date] = records
		}
		return s.saveRecords(ctx, table)
	}
	return nil
}

// GetDatesWithData 获取所有非空分区的日期，升序
func (s *RecordStore) GetDatesWithData(ctx context.Context) ([]string, error) {
	table, err := s.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(table))
	for date, records := range table {
		if len(records) > 0 {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// GetRecordsInRange 获取 [startDate, endDate] 内的记录
// YYYY-MM-DD 的字典序与时间顺序一致，直接按字符串比较
func (s *RecordStore) GetRecordsInRange(ctx context.Context, startDate, endDate string) ([]models.WorkRecord, error) {
	if err := ValidateDate(startDate); err != nil {
		return nil, err
	}
	if err := ValidateDate(endDate); err != nil {
		return nil, err
	}

	table, err := s.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(table))
	for date := range table {
		if date >= startDate && date <= endDate {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)

	records := []models.WorkRecord{}
	for _, date := range dates {
		records = append(records, table[date]...)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}

// GetUserSettings 读取用户设置
// 存储的字段覆盖在默认值之上，新增字段无需迁移即可获得默认值
func (s *RecordStore) GetUserSettings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()

	data, err := s.kv.Get(ctx, SettingsKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings: %w", err)
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return models.DefaultSettings(), fmt.Errorf("unmarshal settings: %w", err)
	}
	settings.Provider = settings.Provider.Normalize()
	return settings, nil
}

// SaveUserSettings 整体覆盖用户设置
func (s *RecordStore) SaveUserSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.putJSON(ctx, SettingsKey, settings)
}

// GetSummaryHistory 获取总结历史
func (s *RecordStore) GetSummaryHistory(ctx context.Context) ([]models.SummaryRecord, error) {
	history := []models.SummaryRecord{}
	if err := s.getJSON(ctx, HistoryKey, &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.SummaryRecord{}
	}
	return history, nil
}

// GetSummaryRecord 按 ID 获取总结
func (s *RecordStore) GetSummaryRecord(ctx context.Context, id string) (models.SummaryRecord, error) {
	history, err := s.GetSummaryHistory(ctx)
	if err != nil {
		return models.SummaryRecord{}, err
	}
	for _, record := range history {
		if record.ID == id {
			return record, nil
		}
	}
	return models.SummaryRecord{}, fmt.Errorf("%w: summary %s", ErrRecordNotFound, id)
}

// SaveSummaryRecord 保存总结，超出上限时淘汰最旧的
func (s *RecordStore) SaveSummaryRecord(ctx context.Context, startDate, endDate, content string) (models.SummaryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.GetSummaryHistory(ctx)
	if err != nil {
		return models.SummaryRecord{}, err
	}

	record := models.SummaryRecord{
		ID:        s.newID(),
		StartDate: startDate,
		EndDate:   endDate,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
	}

	history = append([]models.SummaryRecord{record}, history...)
	if len(history) > MaxSummaryHistory {
		history = history[:MaxSummaryHistory]
	}

	if err := s.putJSON(ctx, HistoryKey, history); err != nil {
		return models.SummaryRecord{}, err
	}
	return record, nil
}

// DeleteSummaryRecord 删除总结
func (s *RecordStore) DeleteSummaryRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.GetSummaryHistory(ctx)
	if err != nil {
		return err
	}

	kept := make([]models.SummaryRecord, 0, len(history))
	for _, record := range history {
		if record.ID != id {
			kept = append(kept, record)
		}
	}
	if len(kept) == len(history) {
		return nil
	}
	return s.putJSON(ctx, HistoryKey, kept)
}

// loadRecords 读取整张记录表
func (s *RecordStore) loadRecords(ctx context.Context) (map[string][]models.WorkRecord, error) {
	var table map[string][]models.WorkRecord
	if err := s.getJSON(ctx, RecordsKey, &table); err != nil {
		return nil, err
	}
	if table == nil {
		table = make(map[string][]models.WorkRecord)
	}
	return table, nil
}

// saveRecords 写回整张记录表，表为空时删除整个键
func (s *RecordStore) saveRecords(ctx context.Context, table map[string][]models.WorkRecord) error {
	if len(table) == 0 {
		if err := s.kv.Delete(ctx, RecordsKey); err != nil {
			return fmt.Errorf("delete records: %w", err)
		}
		return nil
	}
	return s.putJSON(ctx, RecordsKey, table)
}

// getJSON 读取并解析键，不存在时保持 v 不变
func (s *RecordStore) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// putJSON 序列化并写入键
func (s *RecordStore) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
