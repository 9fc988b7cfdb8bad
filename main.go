package main

import (
	"context"
	"os"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quotedesk/cache"
	"quotedesk/collections"
	"quotedesk/commands"
	"quotedesk/config"
	"quotedesk/handlers"
	"quotedesk/services"
	"quotedesk/storage"
	"quotedesk/store"
)

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newDocumentStorage returns the configured binary store. The local store is
// also returned separately because it serves its own download route.
func newDocumentStorage(cfg *config.Config) (services.DocumentStorage, *storage.LocalStore, error) {
	if cfg.Storage.Driver == config.StorageS3 {
		s3Store, err := storage.NewS3Store(context.Background(), cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		return s3Store, nil, nil
	}
	local, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.PublicBaseURL, cfg.Storage.SigningSecret)
	if err != nil {
		return nil, nil, err
	}
	return local, local, nil
}

func newURLCache(cfg *config.Config) services.URLCache {
	if cfg.Redis.Addr == "" {
		return cache.Noop{}
	}
	rc, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, signed urls will not be cached")
		return cache.Noop{}
	}
	return rc
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogger(cfg)
	services.SetCurrencyPrefix(cfg.CurrencyPrefix)
	if cfg.SigningSecretGenerated {
		log.Warn().Msg("DOCUMENT_SIGNING_SECRET not set, download links will not survive a restart")
	}

	docStorage, localFiles, err := newDocumentStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to initialise document storage")
	}

	app := pocketbase.New()
	s := store.New(app)
	docs := &services.DocumentService{
		Pool:      services.NewRenderPool(int64(cfg.Render.Concurrency), cfg.Render.Timeout),
		Logos:     services.NewLogoLoader(cfg.Render.LogoFetchTimeout),
		Storage:   docStorage,
		Quotes:    s,
		URLs:      newURLCache(cfg),
		SignedTTL: cfg.Storage.SignedURLTTL,
	}

	app.RootCmd.AddCommand(commands.NewRenderCommand(app, docs))

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.MigrateDefaultOrgSettings(app); err != nil {
			log.Warn().Err(err).Msg("org settings migration failed")
		}
		if !cfg.IsProduction() {
			if err := collections.Seed(app); err != nil {
				log.Warn().Err(err).Msg("seed data failed")
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if localFiles != nil {
			se.Router.GET(storage.DownloadPath+"{key...}", handlers.HandleDocumentDownload(localFiles))
		}

		api := se.Router.Group("/api")
		api.Bind(apis.RequireAuth("users"))

		// ── Quotes ───────────────────────────────────────────────
		api.GET("/quotes", handlers.HandleQuoteList(s))
		api.POST("/quotes", handlers.HandleQuoteSave(s))
		api.POST("/quotes/compose", handlers.HandleQuoteCompose(s, docs))
		api.GET("/quotes/{id}", handlers.HandleQuoteGet(s))
		api.PUT("/quotes/{id}", handlers.HandleQuoteSave(s))
		api.DELETE("/quotes/{id}", handlers.HandleQuoteDelete(s))

		// ── Documents ────────────────────────────────────────────
		api.GET("/quotes/{id}/pdf", handlers.HandleQuotePDF(s, docs))
		api.GET("/quotes/{id}/preview", handlers.HandleQuotePreview(s, docs))
		api.GET("/quotes/{id}/export/excel", handlers.HandleQuoteExcel(s, docs))
		api.POST("/quotes/{id}/document", handlers.HandleQuoteFinalize(s, docs))
		api.GET("/quotes/{id}/document/url", handlers.HandleQuoteDocumentURL(s, docs))

		// ── Columns & templates ──────────────────────────────────
		api.GET("/settings/columns", handlers.HandleColumnsGet(s))
		api.PUT("/settings/columns", handlers.HandleColumnsSave(s))
		api.GET("/columns/resolved", handlers.HandleColumnsResolved(s))
		api.GET("/units", handlers.HandleUnitOptions())

		api.GET("/templates", handlers.HandleTemplateList(s))
		api.POST("/templates", handlers.HandleTemplateSave(s))
		api.GET("/templates/{id}", handlers.HandleTemplateGet(s))
		api.PUT("/templates/{id}", handlers.HandleTemplateSave(s))
		api.DELETE("/templates/{id}", handlers.HandleTemplateDelete(s))

		// ── Catalog ──────────────────────────────────────────────
		api.GET("/customers", handlers.HandleCustomerList(s))
		api.POST("/customers", handlers.HandleCustomerSave(s))
		api.GET("/customers/{id}", handlers.HandleCustomerGet(s))
		api.PUT("/customers/{id}", handlers.HandleCustomerSave(s))
		api.DELETE("/customers/{id}", handlers.HandleCustomerDelete(s))

		api.GET("/families", handlers.HandleFamilyList(s))
		api.POST("/families", handlers.HandleFamilySave(s))
		api.GET("/families/{id}", handlers.HandleFamilyGet(s))
		api.PUT("/families/{id}", handlers.HandleFamilySave(s))
		api.DELETE("/families/{id}", handlers.HandleFamilyDelete(s))

		api.GET("/products", handlers.HandleProductList(s))
		api.POST("/products", handlers.HandleProductSave(s))
		api.POST("/products/import", handlers.HandleProductImport(s))
		api.GET("/products/{id}", handlers.HandleProductGet(s))
		api.PUT("/products/{id}", handlers.HandleProductSave(s))
		api.DELETE("/products/{id}", handlers.HandleProductDelete(s))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
