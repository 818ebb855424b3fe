package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/punchclock/internal/terminalsim"
	"github.com/okian/punchclock/pkg/logger"
)

const (
	defaultAddr  = ":4370"
	defaultUsers = 12
)

func main() {
	var (
		addr      = flag.String("addr", defaultAddr, "Listen address")
		users     = flag.Int("users", defaultUsers, "Number of users to generate")
		seed      = flag.Uint64("seed", 1, "Generator seed")
		tz        = flag.String("tz", "Local", "IANA time zone punches are generated in")
		latency   = flag.Duration("latency", 0, "Delay added to every response")
		failEvery = flag.Int("fail-every", 0, "Fail every Nth request with 503")
		verbose   = flag.Bool("verbose", false, "Log every request")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		terminalsim.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	loc := time.Local
	if *tz != "Local" {
		l, err := time.LoadLocation(*tz)
		if err != nil {
			os.Stderr.WriteString("invalid -tz: " + err.Error() + "\n")
			os.Exit(2)
		}
		loc = l
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := terminalsim.Config{
		Addr:      *addr,
		Users:     *users,
		Seed:      *seed,
		Location:  loc,
		Latency:   *latency,
		FailEvery: *failEvery,
		Verbose:   *verbose,
	}
	data := terminalsim.Generate(cfg, time.Now())

	if err := terminalsim.NewServer(cfg, data).Run(ctx); err != nil {
		logger.Get().Error(ctx, "terminal simulator failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}
