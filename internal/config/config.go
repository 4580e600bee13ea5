package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	Kafka    KafkaConfig
	FFmpeg   FFmpegConfig
	Worker   WorkerConfig
	Logger   Logger
}

type ServerConfig struct {
	AppVersion string
	Mode       string
}

type WorkerConfig struct {
	WorkerCount int
	MaxCPUUsage float64
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

type KafkaConfig struct {
	Brokers       []string
	ViewTopic     string
	ViewGroupID   string
	RetryCount    int
	RetryInterval int
}

type FFmpegConfig struct {
	FFmpegPath  string
	FFprobePath string
	OutputPath  string
	TempPath    string
	HlsTime     int
	HlsListSize int
	Bitrates    []int
	Resolutions []int
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	// Resolutions and Bitrates are parallel lists; the transcoder indexes
	// one by the other.
	if len(c.FFmpeg.Resolutions) != len(c.FFmpeg.Bitrates) {
		return nil, fmt.Errorf("ffmpeg config has %d resolutions but %d bitrates",
			len(c.FFmpeg.Resolutions), len(c.FFmpeg.Bitrates))
	}
	return &c, nil
}
