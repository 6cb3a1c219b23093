package main

import (
	"log"

	"github.com/relaydesk/relaybot/core/bootstrap"
	corecmd "github.com/relaydesk/relaybot/core/cmd"
	coreconfig "github.com/relaydesk/relaybot/core/config"
	"github.com/relaydesk/relaybot/internal/bot"
)

type configCarrier struct {
	cfg *coreconfig.Config
}

func (c *configCarrier) CoreConfig() *coreconfig.Config { return c.cfg }

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return &configCarrier{cfg: cfg}, nil
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg := carrier.CoreConfig()
			infra, err := bootstrap.Run(bootstrap.Options{
				Config:   cfg,
				Database: cfg.Database,
			})
			if err != nil {
				return nil, err
			}
			return bot.New(cfg, infra.DB), nil
		},
	})
	if err != nil {
		log.Fatalf("relaybot: %v", err)
	}
}
