// Command api runs the read-only admin HTTP API over a translation
// cache: aggregate stats, a single file's correspondence row, and a
// liveness probe. Everything that actually populates the cache —
// file-system traversal, document-type detection, the translate CLI
// itself — is an external collaborator per spec; this binary only
// serves what is already on disk.
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/pflag"

	"github.com/seanblong/doctran/internal/adminapi"
	"github.com/seanblong/doctran/internal/auth"
	"github.com/seanblong/doctran/internal/cachebackend"
	"github.com/seanblong/doctran/internal/config"
)

func main() {
	fs := pflag.NewFlagSet("doctran-api", pflag.ExitOnError)

	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid log level %q: %v", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger.Info().Str("cache_root", cfg.CacheRoot).Bool("admin_enabled", cfg.Admin.Enabled).Msg("starting doctran admin api")

	backend, err := cachebackend.New(cfg.CacheRoot)
	if err != nil {
		log.Fatalf("failed to open cache: %v", err)
	}

	auth.Initialize(cfg.Admin.JwtSecret, cfg.Admin.Enabled)

	mux := adminapi.NewMux(backend)
	handler := hlog.NewHandler(logger)(
		hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
			logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Int("size", size).Dur("dur", dur).Msg("http")
		})(mux),
	)

	s := &http.Server{Addr: cfg.Admin.Bind, Handler: handler}
	logger.Info().Str("addr", s.Addr).Msg("admin api listening")
	log.Fatal(s.ListenAndServe())
}
