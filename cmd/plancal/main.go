package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"plancal/internal/bot"
	"plancal/internal/config"
	"plancal/internal/console"
	"plancal/internal/discord"
	appLog "plancal/internal/log"
	"plancal/internal/plan"
	"plancal/internal/reminder"
	"plancal/internal/web"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	console    bool
	envPath    string
}

// transport is a chat front end: it feeds the router and can post replies.
type transport interface {
	bot.Sink
	Run(ctx context.Context) error
}

func main() {
	appLog.Info("plancal starting", "version", version)

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid timezone", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	dataPath := conf.DataPath(flags.configPath)
	appLog.Info("effective config",
		"data_file", dataPath,
		"prefix", conf.Prefix,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"listen", conf.Listen,
		"digest_cron", conf.Digest.Cron,
		"console", flags.console,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := plan.NewFileStore(dataPath)
	if err := store.Init(ctx); err != nil {
		appLog.Error("failed to initialize data file", err, "path", dataPath)
		os.Exit(1)
	}
	svc := plan.NewService(store, plan.WithLocation(loc), plan.WithWeekStart(conf.FirstWeekday()))
	router := bot.NewRouter(svc, conf.Prefix)

	front, err := newTransport(flags, conf, router)
	if err != nil {
		appLog.Error("failed to create transport", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := front.Run(gctx)
		if flags.console {
			// EOF on stdin ends the session.
			cancel()
		}
		return err
	})

	if conf.Listen != "" {
		g.Go(func() error {
			return web.StartServer(gctx, svc, conf.Listen)
		})
	}

	if conf.Digest.Cron != "" {
		digest := reminder.NewDigest(svc, front, conf.Digest.ChannelID, conf.Digest.AutoStart)
		sched, err := reminder.Schedule(gctx, conf.Digest.Cron, loc, digest)
		if err != nil {
			appLog.Error("failed to schedule digest", err)
			os.Exit(1)
		}
		g.Go(func() error {
			sched.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		appLog.Error("plancal stopped with error", err)
		os.Exit(1)
	}
	appLog.Info("plancal exiting")
}

func newTransport(flags flagConfig, conf *config.Config, router *bot.Router) (transport, error) {
	if flags.console {
		return console.New(os.Stdin, os.Stdout, router), nil
	}
	if err := config.LoadEnvFile(flags.envPath); err != nil {
		return nil, err
	}
	token, err := conf.Token()
	if err != nil {
		return nil, err
	}
	return discord.New(token, router)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.console, "console", false, "Read commands from stdin instead of connecting to Discord")
	flag.StringVar(&cfg.envPath, "env", ".env", "Path to a dotenv file with the bot token")

	flag.Parse()

	return cfg
}
