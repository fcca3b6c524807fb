package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"mactelnet-go/pkg/config"
	"mactelnet-go/pkg/log"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "mtframe",
		Usage:   "encode, decode and send MAC-Telnet frames",
		Version: Version + " (" + BuildTime + ")",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration `FILE`",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log `LEVEL`",
			},
		},
		Before: setup,
		After: func(c *cli.Context) error {
			return log.Close()
		},
		Commands: []*cli.Command{
			encodeCommand,
			decodeCommand,
			sendCommand,
			journalCommand,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.SetStd()
		log.Fatal().Err(err).Msg("mtframe failed")
	}
}

// setup loads the configuration and wires logging before any command runs.
func setup(c *cli.Context) error {
	log.SetStd()

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	if err := log.SetLevel(level); err != nil {
		return err
	}
	if cfg.LogJournal != "" {
		if err := openJournal(cfg.LogJournal); err != nil {
			return err
		}
	}
	if cfg.ConfigFile != "" {
		log.Debug().Str("file", cfg.ConfigFile).Msg("loaded configuration")
	}

	c.App.Metadata = map[string]interface{}{"config": cfg}
	return nil
}

func loadedConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata["config"].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}
