package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/viper"

	"mactelnet-go/pkg/protocol"
)

type Config struct {
	Interface  string `mapstructure:"interface"`
	SourceMAC  string `mapstructure:"source_mac"` // empty: use the interface address
	DestMAC    string `mapstructure:"dest_mac"`
	SourceIP   string `mapstructure:"source_ip"` // empty: use the interface address
	DestIP     string `mapstructure:"dest_ip"`
	SourcePort int    `mapstructure:"source_port"`
	DestPort   int    `mapstructure:"dest_port"`
	Direction  string `mapstructure:"direction"` // "client" or "server"
	SessionKey uint16 `mapstructure:"session_key"`
	LogLevel   string `mapstructure:"log_level"`
	LogJournal string `mapstructure:"log_journal"` // SQLite journal file, empty disables
	ConfigFile string `mapstructure:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Interface:  "eth0",
		DestMAC:    "ff:ff:ff:ff:ff:ff",
		DestIP:     "255.255.255.255",
		SourcePort: protocol.Port,
		DestPort:   protocol.Port,
		Direction:  "client",
		LogLevel:   "info",
	}
}

// Settings are the parsed, validated form of a Config.
type Settings struct {
	Direction protocol.Direction
	SrcMAC    net.HardwareAddr // nil when unset
	DstMAC    net.HardwareAddr
	SrcIP     net.IP // nil when unset
	DstIP     net.IP
	SrcPort   int
	DstPort   int
}

// LoadConfig reads defaults, then the config file, then MTF_* environment
// variables. An explicit file must exist; the default search may find none.
func LoadConfig(file string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	v.SetDefault("interface", cfg.Interface)
	v.SetDefault("source_mac", cfg.SourceMAC)
	v.SetDefault("dest_mac", cfg.DestMAC)
	v.SetDefault("source_ip", cfg.SourceIP)
	v.SetDefault("dest_ip", cfg.DestIP)
	v.SetDefault("source_port", cfg.SourcePort)
	v.SetDefault("dest_port", cfg.DestPort)
	v.SetDefault("direction", cfg.Direction)
	v.SetDefault("session_key", cfg.SessionKey)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_journal", cfg.LogJournal)

	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("mtframe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/mactelnet-go/")
		v.AddConfigPath("$HOME/.mactelnet-go")
	}
	v.SetEnvPrefix("MTF")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	return cfg, nil
}

// Parse validates the configuration and converts addresses.
func (c *Config) Parse() (*Settings, error) {
	s := &Settings{SrcPort: c.SourcePort, DstPort: c.DestPort}

	switch strings.ToLower(c.Direction) {
	case "client":
		s.Direction = protocol.FromClient
	case "server":
		s.Direction = protocol.FromServer
	default:
		return nil, fmt.Errorf("config: direction %q must be client or server", c.Direction)
	}

	var err error
	if c.SourceMAC != "" {
		if s.SrcMAC, err = parseMAC(c.SourceMAC); err != nil {
			return nil, err
		}
	}
	if s.DstMAC, err = parseMAC(c.DestMAC); err != nil {
		return nil, err
	}
	if c.SourceIP != "" {
		if s.SrcIP, err = parseIPv4(c.SourceIP); err != nil {
			return nil, err
		}
	}
	if s.DstIP, err = parseIPv4(c.DestIP); err != nil {
		return nil, err
	}

	for _, p := range []int{c.SourcePort, c.DestPort} {
		if p <= 0 || p > 0xffff {
			return nil, fmt.Errorf("config: port %d out of range", p)
		}
	}
	return s, nil
}

func parseMAC(s string) (net.HardwareAddr, error) {
	mac, err := net.ParseMAC(s)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(mac) != 6 {
		return nil, fmt.Errorf("config: %q is not an Ethernet address", s)
	}
	return mac, nil
}

func parseIPv4(s string) (net.IP, error) {
	ip := net.ParseIP(s).To4()
	if ip == nil {
		return nil, fmt.Errorf("config: %q is not an IPv4 address", s)
	}
	return ip, nil
}
