package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/internal/config"
	"github.com/robalobadob/numberguess/internal/httpserver"
	"github.com/robalobadob/numberguess/internal/journal"
	"github.com/robalobadob/numberguess/internal/levels"
	"github.com/robalobadob/numberguess/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := levels.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load level presets")
	}

	// Optional round journal
	var j *journal.Journal
	if cfg.DatabaseURL != "" {
		db, dialect, err := openDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		defer db.Close()
		if err := migrate(db, dialect); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
		j = journal.New(db, dialect)
	} else {
		log.Info().Msg("DATABASE_URL not set, round journal disabled")
	}

	mem := store.NewMemoryStore()
	go sweepSessions(mem, cfg.SessionIdle)

	srv := httpserver.New(mem, j, httpserver.Options{
		SessionSecret:    cfg.SessionSecret,
		SessionTTL:       cfg.SessionTTL,
		ClientOrigin:     cfg.ClientOrigin,
		DailySalt:        cfg.DailySalt,
		LeaderboardSlots: cfg.LeaderboardSlots,
		Production:       cfg.Production,
	})
	log.Info().Str("port", cfg.Port).Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// sweepSessions evicts idle in-memory sessions for the life of the process.
func sweepSessions(st store.Store, idle time.Duration) {
	if idle <= 0 {
		return
	}
	t := time.NewTicker(idle / 4)
	defer t.Stop()
	for range t.C {
		if n := st.Sweep(context.Background(), time.Now().Add(-idle)); n > 0 {
			log.Debug().Int("evicted", n).Msg("swept idle sessions")
		}
	}
}
