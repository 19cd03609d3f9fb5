package rtm

import (
	"github.com/sbasestarter/rtm-harness/internal/metrics"
	"github.com/sgostarter/i/l"
)

const (
	maxUserIDLength = 64

	defaultPresenceTimeout   = 300
	defaultHeartbeatInterval = 5
)

type AreaCode uint32

const (
	AreaCodeCN   AreaCode = 0x00000001
	AreaCodeNA   AreaCode = 0x00000002
	AreaCodeEU   AreaCode = 0x00000004
	AreaCodeAS   AreaCode = 0x00000008
	AreaCodeJP   AreaCode = 0x00000010
	AreaCodeIN   AreaCode = 0x00000020
	AreaCodeGlob AreaCode = 0xFFFFFFFF
)

type ProtocolType int

const (
	ProtocolTypeTCPUDP ProtocolType = iota
	ProtocolTypeTCPOnly
)

type EncryptionMode int

const (
	EncryptionModeNone EncryptionMode = iota
	EncryptionModeAES128GCM
	EncryptionModeAES256GCM
)

type ProxyType int

const (
	ProxyTypeNone ProxyType = iota
	ProxyTypeHTTP
	ProxyTypeCloudTCP
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

type LogConfig struct {
	FilePath     string
	FileSizeInKB uint32
	Level        LogLevel
}

type ProxyConfig struct {
	ProxyType ProxyType
	Server    string
	Port      uint16
	Account   string
	Password  string
}

type EncryptionConfig struct {
	EncryptionMode EncryptionMode
	EncryptionKey  string
	EncryptionSalt [32]byte
}

type PrivateConfig struct {
	ServiceType      ServiceType
	AccessPointHosts []string
}

// Config is checked once by NewClient. Backend and EventHandler are required.
type Config struct {
	AppID             string
	UserID            string
	AreaCode          AreaCode
	ProtocolType      ProtocolType
	PresenceTimeout   uint32
	HeartbeatInterval uint32
	UseStringUserID   bool

	EventHandler EventHandler
	Backend      Backend

	LogConfig        LogConfig
	ProxyConfig      *ProxyConfig
	EncryptionConfig *EncryptionConfig
	PrivateConfig    *PrivateConfig

	Logger  l.Wrapper
	Metrics *metrics.Metrics
}

func (cfg *Config) fillDefaults() {
	if cfg.AreaCode == 0 {
		cfg.AreaCode = AreaCodeGlob
	}

	if cfg.PresenceTimeout == 0 {
		cfg.PresenceTimeout = defaultPresenceTimeout
	}

	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}

	if cfg.Logger == nil {
		cfg.Logger = l.NewNopLoggerWrapper()
	}
}

func (cfg *Config) validate() ErrorCode {
	if cfg.AppID == "" {
		return ErrorCodeInvalidAppID
	}

	if !validUserID(cfg.UserID) {
		return ErrorCodeInvalidUserID
	}

	if cfg.EventHandler == nil {
		return ErrorCodeInvalidEventHandler
	}

	if cfg.Backend == nil {
		return ErrorCodeInitServiceFailed
	}

	if ec := cfg.EncryptionConfig; ec != nil && ec.EncryptionMode != EncryptionModeNone && ec.EncryptionKey == "" {
		return ErrorCodeInvalidEncryptionParameter
	}

	if pc := cfg.PrivateConfig; pc != nil {
		for _, host := range pc.AccessPointHosts {
			if host == "" {
				return ErrorCodeInvalidPrivateConfig
			}
		}
	}

	if pc := cfg.ProxyConfig; pc != nil && pc.ProxyType != ProxyTypeNone && pc.Server == "" {
		return ErrorCodeInvalidParameter
	}

	return ErrorCodeOK
}

// validUserID accepts printable ASCII ids without spaces.
func validUserID(userID string) bool {
	if userID == "" || len(userID) > maxUserIDLength {
		return false
	}

	for idx := 0; idx < len(userID); idx++ {
		if c := userID[idx]; c <= ' ' || c > '~' {
			return false
		}
	}

	return true
}
