package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"etfmon/internal/application/port"
	"etfmon/internal/application/usecase/poller"
	"etfmon/internal/domain"
	"etfmon/internal/infrastructure/config"
	"etfmon/internal/infrastructure/container"
	_ "etfmon/internal/infrastructure/justetf"
	"etfmon/internal/infrastructure/logger"
	"etfmon/internal/infrastructure/portfoliofile"
	"etfmon/internal/infrastructure/pricefeed"
	"etfmon/internal/interfaces/console"
	"etfmon/internal/interfaces/httpapi"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	noColor := flag.Bool("no-color", os.Getenv("NO_COLOR") != "", "disable colored console output")
	flag.Parse()

	logger.Setup("info")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.App.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("resolve market timezone failed")
	}
	hours := domain.MarketHours{
		OpenHour:  cfg.Market.OpenHour,
		CloseHour: cfg.Market.CloseHour,
		Workdays:  cfg.Market.Workdays,
		Location:  loc,
	}

	doc, err := portfoliofile.Load(cfg.App.PortfolioFile)
	if errors.Is(err, portfoliofile.ErrCreated) {
		log.Warn().Str("file", cfg.App.PortfolioFile).Msg("portfolio file created, fill it in and restart")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.App.PortfolioFile).Msg("load portfolio failed")
	}
	portfolio, err := domain.FromConfig(doc, hours)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.App.PortfolioFile).Msg("parse portfolio failed")
	}
	if portfolio.Len() == 0 {
		log.Error().Str("file", cfg.App.PortfolioFile).Msg("portfolio has no etfs, nothing to poll")
		return
	}

	ctr, err := container.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage failed")
	}
	defer ctr.Close()

	factory, ok := pricefeed.Get(cfg.App.Source)
	if !ok {
		log.Fatal().Str("source", cfg.App.Source).Strs("available", pricefeed.Names()).Msg("unknown price source")
	}
	source := factory(pricefeed.Options{
		BaseURL:   cfg.JustETF.BaseURL,
		Locale:    cfg.JustETF.Locale,
		Currency:  cfg.JustETF.Currency,
		UserAgent: cfg.JustETF.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})

	publishers := []port.Publisher{console.NewSink(portfolio, os.Stdout, !*noColor)}
	publishers = append(publishers, ctr.Publishers()...)

	var hub *httpapi.Hub
	if cfg.HTTP.Enabled {
		hub = httpapi.NewHub()
		publishers = append(publishers, hub)
	}

	svc := poller.NewService(poller.ServiceDeps{
		Portfolio:    portfolio,
		Source:       source,
		Publishers:   publishers,
		Repo:         ctr.Repository(),
		Interval:     cfg.PollInterval(),
		FetchTimeout: cfg.FetchTimeout(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("config", *configPath).
		Str("portfolio", cfg.App.PortfolioFile).
		Str("source", source.Name()).
		Int("etfs", portfolio.Len()).
		Dur("interval", cfg.PollInterval()).
		Bool("http", cfg.HTTP.Enabled).
		Msg("etfmon started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(gctx) })
	if cfg.HTTP.Enabled {
		srv := httpapi.NewServer(cfg.HTTP.Addr, svc, hub)
		g.Go(func() error { return srv.Run(gctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("etfmon exited")
	}
}
