package backend

import (
	"context"
	"fmt"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// Create opens the store, connects the optional event broker and report
// exporter, and wires the services. A broker that cannot be reached is
// logged and skipped; a misconfigured exporter is an error.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	store, err := f.createStore(config)
	if err != nil {
		return nil, err
	}
	res.Store = store
	res.closers = append(res.closers, store.Close)

	opts := []services.Option{services.WithLogger(f.logger)}
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, config.AMQPURL, config.AMQPExchange)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange)
			opts = append(opts, services.WithEvents(client))
			res.closers = append(res.closers, client.Close)
			res.EventsEnabled = true
		}
	}

	var exporter sheets.ReportExporter
	if config.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleReportSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountJSONFile,
		})
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("failed to initialize Google Sheets exporter: %w", err)
		}
		exporter = client
		res.ExportEnabled = true
		f.logger.Info("Initialized Google Sheets exporter", "sheet", config.GoogleReportSheetName)
	}

	res.Users = services.NewUserService(store, opts...)
	res.Categories = services.NewCategoryService(store, res.Users, opts...)
	res.Expenses = services.NewExpenseService(store, res.Users, res.Categories, opts...)
	res.Reports = services.NewReportService(store, res.Users, exporter, opts...)

	f.logger.Info("Backend ready",
		"type", config.Type.String(),
		"events_enabled", res.EventsEnabled,
		"export_enabled", res.ExportEnabled)
	return res, nil
}

func (f *DefaultFactory) createStore(config Config) (storage.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
