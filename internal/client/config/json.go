package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
	"github.com/dmitrijs2005/notekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Intervals accept
// strings like "3s" or integer nanoseconds. Absent fields keep their
// current values; trash_retention may be set to 0 to disable the sweeper.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	DatabaseFile       string          `json:"database_file"`
	ObserveInterval    timex.Duration  `json:"observe_interval"`
	TrashRetention     *timex.Duration `json:"trash_retention"`
	SweepInterval      timex.Duration  `json:"sweep_interval"`
	LogFile            string          `json:"log_file"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabaseFile != "" {
		cfg.DatabaseFile = jc.DatabaseFile
	}
	if jc.ObserveInterval.Duration > 0 {
		cfg.ObserveInterval = jc.ObserveInterval.Duration
	}
	if jc.TrashRetention != nil {
		cfg.TrashRetention = jc.TrashRetention.Duration
	}
	if jc.SweepInterval.Duration > 0 {
		cfg.SweepInterval = jc.SweepInterval.Duration
	}
	if jc.LogFile != "" {
		cfg.LogFile = jc.LogFile
	}
	return nil
}
