package db

import (
	"fmt"

	"gorm.io/gorm"
	"wohee/vodtracker/internal/config"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/metrics"
	gormModels "wohee/vodtracker/internal/models/gorm"
	"wohee/vodtracker/internal/store"
)

// OpenDocumentStore connects the backend selected by DOCUMENT_BACKEND. The
// returned close func releases the connection; it is a no-op for remote and
// in-memory backends.
func OpenDocumentStore(cfg *config.Config, metricsReg *metrics.MetricsRegistry) (store.DocumentStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case config.BackendAppwrite:
		collections := store.Collections{
			constants.CollectionMembers:     cfg.Appwrite.MembersCollectionID,
			constants.CollectionVodTracking: cfg.Appwrite.VodCollectionID,
			constants.CollectionStatics:     cfg.Appwrite.StaticsCollectionID,
		}
		if cfg.Appwrite.StaticsPreset2CollectionID != "" {
			collections[constants.CollectionStaticsPreset2] = cfg.Appwrite.StaticsPreset2CollectionID
		}
		s := store.NewAppwriteStore(store.AppwriteConfig{
			Endpoint:    cfg.Appwrite.Endpoint,
			ProjectID:   cfg.Appwrite.ProjectID,
			APIKey:      cfg.Appwrite.APIKey,
			DatabaseID:  cfg.Appwrite.DatabaseID,
			Collections: collections,
		},
			store.WithCallObserver(metricsReg.ObserveStoreCall),
			store.WithBreakerObserver(metricsReg.BreakerTransition),
		)
		logging.Info("Using Appwrite document store", "endpoint", cfg.Appwrite.Endpoint, "database", cfg.Appwrite.DatabaseID)
		return s, noop, nil

	case config.BackendPostgres, config.BackendSQLite:
		var (
			orm *gorm.DB
			err error
		)
		if cfg.Store.Backend == config.BackendPostgres {
			orm, err = InitPostgresORM(cfg.Store.PostgresDSN)
		} else {
			orm, err = InitSQLiteORM(cfg.Store.SQLitePath)
		}
		if err != nil {
			return nil, nil, err
		}
		if err := Migrate(orm, constants.CollectionStatics, constants.CollectionStaticsPreset2); err != nil {
			return nil, nil, err
		}

		s, err := store.NewGormStore(orm, cfg.Store.Backend, RosterTables())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build gorm store: %w", err)
		}
		sqlDB, err := orm.DB()
		if err != nil {
			return nil, nil, err
		}
		return s.WithObserver(metricsReg.ObserveStoreCall), sqlDB.Close, nil

	case config.BackendMemory:
		logging.Warn("Using in-memory document store, data is lost on restart")
		return store.NewMemoryStore().WithObserver(metricsReg.ObserveStoreCall), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown document backend %q", cfg.Store.Backend)
	}
}

// RosterTables maps each logical collection to its SQL table.
func RosterTables() map[string]store.GormTable {
	return map[string]store.GormTable{
		constants.CollectionMembers:        {Name: "members", Model: &gormModels.MemberRow{}},
		constants.CollectionVodTracking:    {Name: "vod_tracking", Model: &gormModels.VodTrackingRow{}},
		constants.CollectionStatics:        {Name: constants.CollectionStatics, Model: &gormModels.StaticRow{}},
		constants.CollectionStaticsPreset2: {Name: constants.CollectionStaticsPreset2, Model: &gormModels.StaticRow{}},
	}
}
