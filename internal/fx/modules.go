package fx

import (
	"database/sql"
	"ranked-typing/internal/api"
	"ranked-typing/internal/config"
	"ranked-typing/internal/database"
	"ranked-typing/internal/db"
	"ranked-typing/internal/logger"
	"ranked-typing/internal/matchmaking"
	"ranked-typing/internal/metrics"
	"ranked-typing/internal/repository"
	"ranked-typing/internal/scheduler"
	"ranked-typing/internal/server"
	"ranked-typing/internal/service"
	"ranked-typing/internal/wordlist"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideQueue(players *repository.PlayerRepository, m *metrics.Metrics, cfg *config.Config, logger zerolog.Logger) *matchmaking.Queue {
	return matchmaking.NewQueue(players, m, cfg.QueueEntryTTL, logger.With().Str("component", "matchmaking").Logger())
}

func ProvideResultService(players *repository.PlayerRepository, matches *repository.MatchRepository, m *metrics.Metrics, cfg *config.Config, logger zerolog.Logger) *service.ResultService {
	return service.NewResultService(players, matches, m, cfg, logger)
}

func ProvidePlayerService(players *repository.PlayerRepository, matches *repository.MatchRepository, logger zerolog.Logger) *service.PlayerService {
	return service.NewPlayerService(players, matches, logger)
}

func ProvideDecayService(players *repository.PlayerRepository, m *metrics.Metrics, logger zerolog.Logger) *service.DecayService {
	return service.NewDecayService(players, m, logger)
}

func ProvideWordList(cfg *config.Config, client *api.WordBankClient, logger zerolog.Logger) (*wordlist.Generator, error) {
	return wordlist.NewFromConfig(cfg, client, logger)
}

func ProvideScheduler(cfg *config.Config, queue *matchmaking.Queue, decay *service.DecayService, logger zerolog.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(cfg, queue, decay, logger)
}

var Module = fx.Options(
	config.Module,
	logger.Module,
	metrics.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	// word bank
	fx.Provide(api.NewWordBankClient),
	fx.Provide(ProvideWordList),
	// svc
	fx.Provide(ProvideQueue),
	fx.Provide(ProvideResultService),
	fx.Provide(ProvidePlayerService),
	fx.Provide(ProvideDecayService),
	fx.Provide(ProvideScheduler),
	// server
	fx.Provide(server.NewRankedServer),
)
