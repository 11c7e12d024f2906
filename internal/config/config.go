package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 面板状态存储后端
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "PANEL_"

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server" envPrefix:"SERVER_"`
	Data   DataConfig   `toml:"data" envPrefix:"DATA_"`
	Alerts AlertsConfig `toml:"alerts" envPrefix:"ALERTS_"`
	Upload UploadConfig `toml:"upload" envPrefix:"UPLOAD_"`
	Log    LogConfig    `toml:"log" envPrefix:"LOG_"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port" env:"PORT" validate:"min=1,max=65535"`
	DevMode bool `toml:"dev_mode" env:"DEV_MODE"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir  string `toml:"data_dir" env:"DIR" validate:"required"`
	Backend  string `toml:"backend" env:"BACKEND" validate:"oneof=sqlite json"`
	AutoSave bool   `toml:"autosave" env:"AUTOSAVE"`
}

// AlertsConfig 沟通提醒配置
type AlertsConfig struct {
	ThresholdDays int `toml:"threshold_days" env:"THRESHOLD_DAYS" validate:"min=1"`
}

// UploadConfig 上传限制
type UploadConfig struct {
	MaxBytes int64 `toml:"max_bytes" env:"MAX_BYTES" validate:"min=1"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `toml:"format" env:"FORMAT" validate:"oneof=text json"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
	EnvFiles      int
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    8501,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:  "data",
			Backend:  BackendSQLite,
			AutoSave: true,
		},
		Alerts: AlertsConfig{
			ThresholdDays: 14,
		},
		Upload: UploadConfig{
			MaxBytes: 10 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
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

func baseDir() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		return "."
	}
	return exeDir
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFromDir(baseDir())
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// LoadFromDir 按优先级加载配置：默认值 < config.toml < .env 文件 < PANEL_* 环境变量
func LoadFromDir(dir string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: filepath.Join(dir, "config.toml")}
	config := DefaultConfig()

	data, err := os.ReadFile(info.Path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", info.Path, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, fmt.Errorf("failed to read %s: %w", info.Path, err)
	}

	n, err := loadEnvFiles(filepath.Join(dir, ".env"), filepath.Join(dir, ".env.local"))
	if err != nil {
		return nil, info, fmt.Errorf("failed to load env files: %w", err)
	}
	info.EnvFiles = n

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, info, fmt.Errorf("failed to parse environment: %w", err)
	}
	if _, ok := os.LookupEnv(EnvPrefix + "SERVER_PORT"); ok {
		info.PortSpecified = true
	}

	if err := Validate(config); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// loadEnvFiles 只加载存在的文件；已设置的环境变量不会被覆盖
func loadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

var validate = validator.New()

// Validate 校验配置取值
func Validate(config *AppConfig) error {
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig, dir string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.toml"), data, 0644)
}

// ResolveDataDir 数据目录：相对路径以可执行文件目录为基准
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir(), config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DBPath SQLite 数据库路径（上传日志，以及 sqlite 后端的面板状态）
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "panel.db")
}

// StateFilePath json 后端的面板状态文件路径
func StateFilePath(dataDir string) string {
	return filepath.Join(dataDir, "progreso_panel.json")
}
