package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"rosterlens/internal/actionplan"
	"rosterlens/internal/logger"
	"rosterlens/internal/model"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Import     ImportConfig     `toml:"import"`
	ActionPlan ActionPlanConfig `toml:"actionplan"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// ImportConfig 导入解析配置
type ImportConfig struct {
	DefaultMode string `toml:"default_mode"`
	SampleSize  int    `toml:"sample_size"`
	AliasFile   string `toml:"alias_file"` // 为空时使用内置别名表
	MaxUploadMB int    `toml:"max_upload_mb"`
}

// ActionPlanConfig 整改计划配置
type ActionPlanConfig struct {
	Attach string `toml:"attach"` // always | first_turn
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // console | json
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Import: ImportConfig{
			DefaultMode: string(model.ParseModeLenient),
			SampleSize:  3,
			MaxUploadMB: 20,
		},
		ActionPlan: ActionPlanConfig{
			Attach: actionplan.AttachAlways,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate 检查配置取值
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port 超出范围: %d", c.Server.Port)
	}
	if _, ok := model.ParseModeFrom(c.Import.DefaultMode); !ok {
		return fmt.Errorf("import.default_mode 无效: %q", c.Import.DefaultMode)
	}
	if c.Import.SampleSize <= 0 {
		return fmt.Errorf("import.sample_size 必须大于 0: %d", c.Import.SampleSize)
	}
	if c.Import.MaxUploadMB <= 0 {
		return fmt.Errorf("import.max_upload_mb 必须大于 0: %d", c.Import.MaxUploadMB)
	}
	if _, err := actionplan.PolicyByName(c.ActionPlan.Attach); err != nil {
		return fmt.Errorf("actionplan.attach 无效: %w", err)
	}
	return nil
}

// ParseMode 默认解析模式
func (c *AppConfig) ParseMode() model.ParseMode {
	mode, _ := model.ParseModeFrom(c.Import.DefaultMode)
	return mode
}

// AttachPolicy 整改计划附带策略；Validate 已保证名称有效
func (c *AppConfig) AttachPolicy() actionplan.AttachPolicy {
	p, err := actionplan.PolicyByName(c.ActionPlan.Attach)
	if err != nil {
		return actionplan.AlwaysAttach
	}
	return p
}

// LoggerOptions 由配置生成日志选项；开发模式下使用控制台格式
func (c *AppConfig) LoggerOptions() logger.Options {
	opt := logger.Options{Level: c.Log.Level, Format: c.Log.Format}
	if c.Server.DevMode && opt.Format == "" {
		opt.Format = "console"
	}
	return opt
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	serverMap, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return LoadFile(filepath.Join(exeDir, "config.toml"))
}

// LoadFile 从指定路径加载配置；文件不存在时使用默认配置，随后应用环境变量覆盖
func LoadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, info, fmt.Errorf("解析配置文件失败: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, info, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := applyEnv(cfg, &info); err != nil {
		return nil, info, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, info, err
	}
	return cfg, info, nil
}

// LoadConfig 加载配置
func LoadConfig() (*AppConfig, error) {
	cfg, _, err := LoadConfigWithInfo()
	return cfg, err
}

// applyEnv 环境变量覆盖（用于容器 / 本地运行）
func applyEnv(cfg *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv("ROSTERLENS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROSTERLENS_PORT 无效: %w", err)
		}
		cfg.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv("ROSTERLENS_DEV_MODE"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ROSTERLENS_DEV_MODE 无效: %w", err)
		}
		cfg.Server.DevMode = dev
	}
	if v := os.Getenv("ROSTERLENS_DATA_DIR"); v != "" {
		cfg.Data.DataDir = v
	}
	if v := os.Getenv("ROSTERLENS_PARSE_MODE"); v != "" {
		cfg.Import.DefaultMode = strings.ToLower(v)
	}
	if v := os.Getenv("ROSTERLENS_ALIAS_FILE"); v != "" {
		cfg.Import.AliasFile = v
	}
	if v := os.Getenv("ROSTERLENS_PLAN_ATTACH"); v != "" {
		cfg.ActionPlan.Attach = strings.ToLower(v)
	}
	if v := os.Getenv("ROSTERLENS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ROSTERLENS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// SaveConfig 保存配置到指定路径
func SaveConfig(cfg *AppConfig, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// EnsureDataDir 确保数据目录及上传暂存目录存在；相对路径基于可执行文件目录
func EnsureDataDir(cfg *AppConfig) (string, error) {
	dataDir := cfg.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0o755); err != nil {
		return "", fmt.Errorf("创建数据目录失败: %w", err)
	}
	return dataDir, nil
}

// UploadDir 上传暂存目录
func UploadDir(dataDir string) string {
	return filepath.Join(dataDir, "uploads")
}

// DatabasePath 校验结果数据库路径
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "rosterlens.db")
}
