package models

// WorkRecord 表示单条工作记录
type WorkRecord struct {
	ID        string `json:"id"`        // 唯一标识，创建后不可变
	Content   string `json:"content"`   // 工作内容
	Timestamp int64  `json:"timestamp"` // 创建时间（毫秒时间戳）
	Date      string `json:"date"`      // 格式: YYYY-MM-DD，与所在分区的键一致
}

// Language 总结语言
type Language string

const (
	LanguageZh Language = "zh"
	LanguageEn Language = "en"
)

// Provider AI 提供商
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai-compatible"

	// providerOpenAILegacy 旧版本保存的取值
	providerOpenAILegacy Provider = "openai"
)

// Normalize 将旧取值映射为当前取值
func (p Provider) Normalize() Provider {
	if p == providerOpenAILegacy {
		return ProviderOpenAI
	}
	return p
}

// Settings 用户设置（单例）
type Settings struct {
	Language     Language `json:"language"`
	Provider     Provider `json:"provider"`
	APIKey       string   `json:"apiKey"`
	BaseURL      string   `json:"baseUrl"`      // 仅 openai-compatible 使用
	ModelName    string   `json:"modelName"`    // 仅 openai-compatible 使用
	CustomPrompt string   `json:"customPrompt"` // 非空时完全替换默认系统提示词
}

// DefaultSettings 返回默认设置
func DefaultSettings() Settings {
	return Settings{
		Language:     LanguageZh,
		Provider:     ProviderGemini,
		APIKey:       "",
		BaseURL:      "https://api.openai.com/v1",
		ModelName:    "gpt-3.5-turbo",
		CustomPrompt: "",
	}
}

// SummaryRecord 已保存的 AI 总结
type SummaryRecord struct {
	ID        string `json:"id"`
	StartDate string `json:"startDate"` // 起始日期（含）
	EndDate   string `json:"endDate"`   // 结束日期（含）
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // 创建时间（毫秒时间戳）
}

// StoreConfig 持久化存储配置
type StoreConfig struct {
	Backend       string `yaml:"backend" json:"backend"`               // "file"、"sqlite" 或 "redis"（默认 file）
	SQLitePath    string `yaml:"sqlite_path" json:"sqlite_path"`       // sqlite 数据库文件
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr"`         // redis 地址
	RedisPassword string `yaml:"redis_password" json:"redis_password"` // redis 密码
	RedisDB       int    `yaml:"redis_db" json:"redis_db"`             // redis 库编号
	RedisPrefix   string `yaml:"redis_prefix" json:"redis_prefix"`     // redis 键前缀
}

// Config 应用配置
type Config struct {
	WorkDir   string      `yaml:"work_dir" json:"work_dir"`     // 相对路径的基准目录
	DataDir   string      `yaml:"data_dir" json:"data_dir"`     // 数据目录
	ExportDir string      `yaml:"export_dir" json:"export_dir"` // 导出目录
	RunDir    string      `yaml:"run_dir" json:"run_dir"`       // 运行时目录（锁文件、任务状态）
	Store     StoreConfig `yaml:"store" json:"store"`

	// AI 调用配置
	GeminiBaseURL  string `yaml:"gemini_base_url" json:"gemini_base_url"` // Gemini API 地址
	RequestTimeout int    `yaml:"request_timeout" json:"request_timeout"` // 请求超时（秒），0 表示不限制

	// 定时总结（cron 表达式，留空则不启用）
	DailySummaryCron  string `yaml:"daily_summary_cron" json:"daily_summary_cron"`
	WeeklySummaryCron string `yaml:"weekly_summary_cron" json:"weekly_summary_cron"`

	// 日志
	EnableLogging bool   `yaml:"enable_logging" json:"enable_logging"` // 是否写日志文件
	LogFile       string `yaml:"log_file" json:"log_file"`             // 日志文件路径
	LogLevel      string `yaml:"log_level" json:"log_level"`           // 控制台日志级别
	LogMaxSizeMB  int    `yaml:"log_max_size_mb" json:"log_max_size_mb"`
}
