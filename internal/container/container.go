package container

import (
	"context"
	"fmt"
	"log"

	"evalboard/adapters/excel"
	"evalboard/adapters/sqlstore"
	"evalboard/app"
	"evalboard/domain/evaluation"
	"evalboard/internal/config"
	"evalboard/internal/testkit"
	"evalboard/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB    *sqlx.DB
	Store ports.TableStore

	// Data sources
	Catalog      *evaluation.Catalog
	TableLoader  ports.TableLoader
	InjuryLoader ports.InjuryLoader

	// Services
	Dashboard *app.Dashboard

	// Synthetic data, set only for DATA_SOURCE=synthetic
	TestKit *testkit.TestKit
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
	}

	return c, nil
}

// Init loads the metric catalog, wires the configured data source and builds
// the dashboard service
func (c *Container) Init(ctx context.Context) error {
	if err := c.initCatalog(); err != nil {
		return fmt.Errorf("failed to load metric catalog: %w", err)
	}

	switch c.Config.Data.Source {
	case config.SourceSQL:
		if err := c.InitWithDatabase(ctx); err != nil {
			return err
		}
		c.TableLoader = c.Store
		c.InjuryLoader = c.Store
	case config.SourceSynthetic:
		c.initTestInfrastructure()
		c.TableLoader = c.TestKit.TableLoader()
		c.InjuryLoader = c.TestKit.InjuryLoader()
	default:
		c.initFileLoaders()
	}

	c.Dashboard = app.NewDashboard(c.TableLoader, c.InjuryLoader, c.Catalog, app.DashboardOptions{
		TableTTL:     c.Config.Cache.TableTTL,
		StatsTTL:     c.Config.Cache.StatsTTL,
		ChartsTTL:    c.Config.Cache.ChartsTTL,
		SelectionTTL: c.Config.Cache.SelectionTTL,
		InjuryTTL:    c.Config.Cache.InjuryTTL,
	})

	log.Printf("Container initialized with %s data source", c.Config.Data.Source)
	return nil
}

// InitWithDatabase opens and migrates the configured database
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if c.DB != nil {
		return nil
	}
	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	c.DB = db
	c.Store = sqlstore.NewStore(db)
	return nil
}

func (c *Container) initCatalog() error {
	var err error
	if c.Config.Metrics.File != "" {
		c.Catalog, err = config.LoadMetricCatalog(c.Config.Metrics.File)
	} else {
		c.Catalog, err = config.DefaultMetricCatalog()
	}
	return err
}

// initFileLoaders wires the workbook (or CSV) and the injury CSV
func (c *Container) initFileLoaders() {
	c.TableLoader = excel.NewWorkbookLoader(ReaderConfig(c.Config.Data))
	if c.Config.Data.InjuryFile != "" {
		c.InjuryLoader = excel.NewInjuryLoader(c.Config.Data.InjuryFile)
	}
}

// initTestInfrastructure initializes the synthetic squad
func (c *Container) initTestInfrastructure() {
	c.TestKit = testkit.NewTestKit(c.Catalog, testkit.DefaultSquadConfig())
}

// ReaderConfig maps the data settings onto the workbook reader layout
func ReaderConfig(data config.DataConfig) excel.ReaderConfig {
	sheets := make([]excel.SheetSpec, 0, len(data.Sheets))
	for _, s := range data.Sheets {
		sheets = append(sheets, excel.SheetSpec{Sheet: s.Sheet, Category: s.Category})
	}
	return excel.ReaderConfig{
		FilePath:       data.EvaluationFile,
		Sheets:         sheets,
		HeaderRow:      data.HeaderRow,
		SubjectColumn:  data.SubjectColumn,
		CategoryColumn: data.CategoryColumn,
	}
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
