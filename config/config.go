package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultFile 默认配置文件
	DefaultFile = "config/config.json"

	// EnvPrefix 环境变量前缀,例 AWATCHER_MONGODB_HOST
	EnvPrefix = "AWATCHER"
)

type Config struct {
	MongoDB    MongoDB    `mapstructure:"mongodb"`
	Store      Store      `mapstructure:"store"`
	Provider   Provider   `mapstructure:"provider"`
	DataUpdate DataUpdate `mapstructure:"data_update"`
	Logging    Logging    `mapstructure:"logging"`
	Journal    Journal    `mapstructure:"journal"`
}

type MongoDB struct {
	URI                      string `mapstructure:"uri"` //设置后忽略host,port,username,password
	Host                     string `mapstructure:"host"`
	Port                     int    `mapstructure:"port"`
	DBName                   string `mapstructure:"db_name"`
	Username                 string `mapstructure:"username"`
	Password                 string `mapstructure:"password"`
	AuthSource               string `mapstructure:"auth_source"`
	ConnectionPoolSize       uint64 `mapstructure:"connection_pool_size"`
	MaxRetryAttempts         int    `mapstructure:"max_retry_attempts"`
	RetryDelaySeconds        int    `mapstructure:"retry_delay_seconds"`
	ServerSelectionTimeoutMS int    `mapstructure:"server_selection_timeout_ms"`
}

// Store 股票数据存储,mongodb,sqlite或mysql
type Store struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"` //sqlite是文件路径,mysql是dsn
}

// Provider 行情服务器
type Provider struct {
	Hosts          []string `mapstructure:"hosts"`           //为空使用内置地址
	TimeoutSeconds int      `mapstructure:"timeout_seconds"` //等待响应的超时时间
	Redial         bool     `mapstructure:"redial"`          //断线重连
	Debug          bool     `mapstructure:"debug"`           //打印通讯数据
}

type DataUpdate struct {
	DefaultStartDate string `mapstructure:"default_start_date"` //日线,小时线默认开始日期
	AdjustFactorDays int    `mapstructure:"adjust_factor_days"` //复权因子默认获取的天数
	Schedule         string `mapstructure:"schedule"`           //定时任务,带秒
	ContinueOnError  bool   `mapstructure:"continue_on_error"`  //全部股票模式下单只失败是否继续
	CalendarDSN      string `mapstructure:"calendar_dsn"`       //交易日历sqlite文件
}

type Logging struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	RotationMB int    `mapstructure:"rotation_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Journal 运行记录
type Journal struct {
	Enable bool   `mapstructure:"enable"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mongodb.uri", "")
	v.SetDefault("mongodb.host", "localhost")
	v.SetDefault("mongodb.port", 27017)
	v.SetDefault("mongodb.db_name", "alib")
	v.SetDefault("mongodb.username", "")
	v.SetDefault("mongodb.password", "")
	v.SetDefault("mongodb.auth_source", "admin")
	v.SetDefault("mongodb.connection_pool_size", 10)
	v.SetDefault("mongodb.max_retry_attempts", 3)
	v.SetDefault("mongodb.retry_delay_seconds", 5)
	v.SetDefault("mongodb.server_selection_timeout_ms", 5000)

	v.SetDefault("store.driver", "mongodb")
	v.SetDefault("store.dsn", "")

	v.SetDefault("provider.hosts", []string{})
	v.SetDefault("provider.timeout_seconds", 5)
	v.SetDefault("provider.redial", false)
	v.SetDefault("provider.debug", false)

	v.SetDefault("data_update.default_start_date", "1990-01-01")
	v.SetDefault("data_update.adjust_factor_days", 365)
	v.SetDefault("data_update.schedule", "0 30 15 * * *")
	v.SetDefault("data_update.continue_on_error", false)
	v.SetDefault("data_update.calendar_dsn", "data/workday.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file_path", "logs/awatcher.log")
	v.SetDefault("logging.rotation_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)

	v.SetDefault("journal.enable", true)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "data/journal.db")
}

// Load 加载配置,优先级 环境变量 > 配置文件 > 默认值
// filename为空时使用DefaultFile,默认文件不存在则只用默认值
func Load(filename string) (*Config, error) {
	//.env不存在不算错误
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("加载.env失败: %w", err)
	}

	explicit := filename != ""
	if !explicit {
		filename = DefaultFile
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(filename); err == nil {
		v.SetConfigFile(filename)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件[%s]失败: %w", filename, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("配置文件[%s]不存在: %w", filename, err)
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate 校验配置
func (this *Config) Validate() error {
	switch this.Store.Driver {
	case "mongodb", "sqlite", "mysql":
	default:
		return fmt.Errorf("未知的存储驱动: %s", this.Store.Driver)
	}
	if this.Store.Driver == "mysql" && this.Store.DSN == "" {
		return errors.New("mysql存储需要设置store.dsn")
	}
	if this.MongoDB.MaxRetryAttempts < 1 {
		return errors.New("mongodb.max_retry_attempts不能小于1")
	}
	if this.DataUpdate.AdjustFactorDays < 1 {
		return errors.New("data_update.adjust_factor_days不能小于1")
	}
	return nil
}
