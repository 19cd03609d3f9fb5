package config

import (
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libconfig"
	"github.com/sgostarter/liblogrus"
	"github.com/sgostarter/libservicetoolset/servicetoolset"
)

const (
	ModelTypeMem   = "mem"
	ModelTypeMongo = "mongo"

	MDITypeMem      = "mem"
	MDITypeRabbitMQ = "rabbitmq"
)

type Config struct {
	Logger l.Wrapper `yaml:"-"`

	Listen        string                            `yaml:"Listen"`
	WebsocketPath string                            `yaml:"WebsocketPath"`
	MetricsPath   string                            `yaml:"MetricsPath"`
	GRPCListen    string                            `yaml:"GRPCListen"`
	GRPCTLSConfig *servicetoolset.GRPCTlsFileConfig `yaml:"GRPCTLSConfig"`

	AppID              string `yaml:"AppID"`
	AppCertificate     string `yaml:"AppCertificate"`
	TokenExpireSeconds int    `yaml:"TokenExpireSeconds"`

	Engine EngineConfig `yaml:"Engine"`

	ModelType   string      `yaml:"ModelType"`
	MongoConfig MongoConfig `yaml:"MongoConfig"`
	MDIType     string      `yaml:"MDIType"`
	RabbitMQURL string      `yaml:"RabbitMQURL"`

	FixtureFile string `yaml:"FixtureFile"`
}

type EngineConfig struct {
	MaxRequestCache             int `yaml:"MaxRequestCache"`
	LockRetryTimeoutSeconds     int `yaml:"LockRetryTimeoutSeconds"`
	TokenWillExpireAheadSeconds int `yaml:"TokenWillExpireAheadSeconds"`
	MaxMessageSize              int `yaml:"MaxMessageSize"`
}

type MongoConfig struct {
	Server   string `yaml:"Server"`
	DB       string `yaml:"DB"`
	UserName string `yaml:"UserName"`
	Password string `yaml:"Password"`
}

func (cfg *Config) fillDefaults() {
	if cfg.Listen == "" {
		cfg.Listen = ":8610"
	}

	if cfg.WebsocketPath == "" {
		cfg.WebsocketPath = "/rtm"
	}

	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	if cfg.ModelType == "" {
		cfg.ModelType = ModelTypeMem
	}

	if cfg.MDIType == "" {
		cfg.MDIType = MDITypeMem
	}

	if cfg.TokenExpireSeconds <= 0 {
		cfg.TokenExpireSeconds = 24 * 3600
	}
}

func newLogger() l.Wrapper {
	logger := l.NewWrapper(liblogrus.NewLogrus())
	logger.GetLogger().SetLevel(l.LevelDebug)

	return logger
}

// Load reads file into a fresh Config.
func Load(file string) (*Config, error) {
	cfg := &Config{
		Logger: newLogger(),
	}

	if _, err := libconfig.Load(file, cfg); err != nil {
		return nil, err
	}

	cfg.fillDefaults()

	return cfg, nil
}
