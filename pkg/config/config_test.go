package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mactelnet-go/pkg/protocol"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mtframe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
interface: br-lan
source_mac: "02:00:00:00:00:01"
dest_mac: "02:00:00:00:00:02"
source_ip: 10.0.0.1
direction: server
session_key: 1234
log_level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "br-lan", cfg.Interface)
	assert.Equal(t, "02:00:00:00:00:01", cfg.SourceMAC)
	assert.Equal(t, uint16(1234), cfg.SessionKey)
	assert.Equal(t, protocol.Port, cfg.DestPort, "unset keys keep defaults")
	assert.Equal(t, "255.255.255.255", cfg.DestIP)
	assert.Equal(t, path, cfg.ConfigFile)

	s, err := cfg.Parse()
	require.NoError(t, err)
	assert.Equal(t, protocol.FromServer, s.Direction)
	assert.Equal(t, "02:00:00:00:00:02", s.DstMAC.String())
	assert.True(t, s.SrcIP.Equal([]byte{10, 0, 0, 1}))
	assert.Equal(t, protocol.Port, s.SrcPort)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("MTF_INTERFACE", "wlan0")
	t.Setenv("MTF_DEST_PORT", "5678")

	cfg, err := LoadConfig(writeConfig(t, "interface: eth1\n"))
	require.NoError(t, err)
	assert.Equal(t, "wlan0", cfg.Interface)
	assert.Equal(t, 5678, cfg.DestPort)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaultsParse(t *testing.T) {
	s, err := DefaultConfig().Parse()
	require.NoError(t, err)
	assert.Equal(t, protocol.FromClient, s.Direction)
	assert.Nil(t, s.SrcMAC)
	assert.Nil(t, s.SrcIP)
	assert.Equal(t, "ff:ff:ff:ff:ff:ff", s.DstMAC.String())
	assert.True(t, s.DstIP.Equal(net4(255, 255, 255, 255)))
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"direction", func(c *Config) { c.Direction = "sideways" }},
		{"dest mac", func(c *Config) { c.DestMAC = "zz:00" }},
		{"eui64 mac", func(c *Config) { c.SourceMAC = "02:00:00:00:00:00:00:01" }},
		{"dest ip", func(c *Config) { c.DestIP = "ff02::1" }},
		{"source ip", func(c *Config) { c.SourceIP = "not-an-ip" }},
		{"port", func(c *Config) { c.DestPort = 70000 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			_, err := cfg.Parse()
			assert.Error(t, err)
		})
	}
}

func net4(a, b, c, d byte) []byte { return []byte{a, b, c, d} }
