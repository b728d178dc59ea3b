package main

import (
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	toolkitconfig "github.com/raywall/tablestore-toolkit/pkg/config"
	"github.com/raywall/tablestore-toolkit/pkg/logger"
	"github.com/raywall/tablestore-toolkit/tools/emulator/config"
)

// Injectable for tests.
var serverStarter = func(s *config.ServerConfig) error {
	return s.Start()
}

func main() {
	log.Logger = logger.Configure(toolkitconfig.LoggingConf{Enabled: true, Format: "console"})

	path := os.Getenv("EMULATOR_CONFIG_PATH")
	if path == "" {
		path = "emulator.json"
	}
	if err := run(path); err != nil {
		log.Fatal().Err(err).Msg("emulator failed")
	}
}

// run loads the configuration and serves every declared server, one
// goroutine per port, until all of them stop.
func run(configPath string) error {
	var cfg config.Config
	if err := cfg.LoadFromFile(configPath); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, server := range []config.ServerConfig(cfg) {
		wg.Add(1)
		go func(s config.ServerConfig) {
			defer wg.Done()
			if err := serverStarter(&s); err != nil {
				log.Error().Err(err).Int("port", s.Port).Msg("server stopped")
			}
		}(server)
	}
	wg.Wait()
	return nil
}
