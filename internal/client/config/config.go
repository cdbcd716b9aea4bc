package config

import "time"

// Config holds runtime settings for the notekeeper CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the remote store gRPC endpoint.
//   - DatabaseFile: SQLite file holding the local cache and the session.
//   - ObserveInterval: how often the engine checks for a signed-in user.
//   - TrashRetention: how long trashed entities are kept; 0 disables the sweeper.
//   - SweepInterval: how often expired trash is purged.
//   - LogFile: JSON log destination, rotated by size.
type Config struct {
	ServerEndpointAddr string
	DatabaseFile       string
	ObserveInterval    time.Duration
	TrashRetention     time.Duration
	SweepInterval      time.Duration
	LogFile            string
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabaseFile = "notekeeper.db"
	c.ObserveInterval = 3 * time.Second
	c.TrashRetention = 30 * 24 * time.Hour
	c.SweepInterval = time.Hour
	c.LogFile = "notekeeper.log"
}

// LoadConfig applies defaults, then the JSON file named by -c/-config,
// then command-line flags. Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
