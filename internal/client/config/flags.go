package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
)

// parseFlags overlays command-line flags.
//
//	-a string   address and port of the remote store
//	-f string   local database file
//	-i int      identity observe interval, seconds
//	-r int      trash retention, days (0 disables the sweeper)
//	-w int      trash sweep interval, minutes
//	-l string   log file
//
// Only these flags are considered; the rest of args is ignored.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-f", "-i", "-r", "-w", "-l"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DatabaseFile, "f", cfg.DatabaseFile, "local database file")
	observe := fs.Int("i", int(cfg.ObserveInterval.Seconds()), "identity observe interval (in seconds)")
	retention := fs.Int("r", int(cfg.TrashRetention.Hours()/24), "trash retention (in days, 0 disables)")
	sweep := fs.Int("w", int(cfg.SweepInterval.Minutes()), "trash sweep interval (in minutes)")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["i"] {
		cfg.ObserveInterval = time.Duration(*observe) * time.Second
	}
	if set["r"] {
		cfg.TrashRetention = time.Duration(*retention) * 24 * time.Hour
	}
	if set["w"] {
		cfg.SweepInterval = time.Duration(*sweep) * time.Minute
	}
	return nil
}
