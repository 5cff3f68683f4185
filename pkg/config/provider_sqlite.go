package config

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens (creating if needed) the database at dbPath and
// brings its schema up to date
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// migrateUp applies the embedded schema migrations
func (s *SQLiteProvider) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// m is not closed: closing it would close the shared connection

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	render, err := s.GetRenderConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load render config: %w", err)
	}
	config.Render = *render

	cache, err := s.GetCacheConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load cache config: %w", err)
	}
	config.Cache = *cache

	config.ApplyDefaults()
	return config, nil
}

const defaultConfigID = `(SELECT id FROM configs WHERE name = 'default')`

// GetControllers returns the enabled controllers
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `
		SELECT controller_type, tls_cert, tls_key, port, listen_addr, max_body_bytes
		FROM controller_configs
		WHERE config_id = ` + defaultConfigID + ` AND enabled = 1
		ORDER BY controller_type
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query controller configs: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData

	for rows.Next() {
		var (
			controllerType    string
			cert, key, listen sql.NullString
			port, maxBody     sql.NullInt64
		)
		if err := rows.Scan(&controllerType, &cert, &key, &port, &listen, &maxBody); err != nil {
			return nil, fmt.Errorf("failed to scan controller config: %w", err)
		}

		c := ControllerData{Type: controllerType}
		switch controllerType {
		case "rest", "restserver":
			c.RESTServer = &RESTServerData{
				Cert:         cert.String,
				Key:          key.String,
				Port:         int(port.Int64),
				ListenAddr:   listen.String,
				MaxBodyBytes: maxBody.Int64,
			}
		case "grpc":
			c.GRPC = &GRPCData{
				Cert:       cert.String,
				Key:        key.String,
				Port:       int(port.Int64),
				ListenAddr: listen.String,
			}
		default:
			return nil, fmt.Errorf("unknown controller type in database: %s", controllerType)
		}
		controllers = append(controllers, c)
	}

	return controllers, rows.Err()
}

// GetRenderConfig returns the render defaults. A missing row yields zero values.
func (s *SQLiteProvider) GetRenderConfig() (*RenderData, error) {
	query := `
		SELECT canvas_width, canvas_height, plot_width_in, plot_height_in, tick_interval_km, assets_host
		FROM render_configs WHERE config_id = ` + defaultConfigID

	var (
		w, h, pw, ph, tick sql.NullFloat64
		assets             sql.NullString
	)
	err := s.db.QueryRow(query).Scan(&w, &h, &pw, &ph, &tick, &assets)
	if errors.Is(err, sql.ErrNoRows) {
		return &RenderData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query render config: %w", err)
	}

	return &RenderData{
		CanvasWidth:    w.Float64,
		CanvasHeight:   h.Float64,
		PlotWidthIn:    pw.Float64,
		PlotHeightIn:   ph.Float64,
		TickIntervalKM: tick.Float64,
		AssetsHost:     assets.String,
	}, nil
}

// GetCacheConfig returns the cache bounds. A missing row yields zero values.
func (s *SQLiteProvider) GetCacheConfig() (*CacheData, error) {
	query := `SELECT analysis_cache_size, handle_limit FROM cache_configs WHERE config_id = ` + defaultConfigID

	var size, limit sql.NullInt64
	err := s.db.QueryRow(query).Scan(&size, &limit)
	if errors.Is(err, sql.ErrNoRows) {
		return &CacheData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache config: %w", err)
	}

	return &CacheData{
		AnalysisCacheSize: int(size.Int64),
		HandleLimit:       int(limit.Int64),
	}, nil
}

// IsReadOnly returns false since SQLite supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.getOrCreateConfigID(tx)
	if err != nil {
		return fmt.Errorf("failed to resolve config id: %w", err)
	}

	if err := s.clearExistingConfig(tx, configID); err != nil {
		return fmt.Errorf("failed to clear existing config: %w", err)
	}

	for _, controller := range configData.Controllers {
		if err := s.insertController(tx, configID, &controller); err != nil {
			return fmt.Errorf("failed to insert controller %s: %w", controller.Type, err)
		}
	}

	r := configData.Render
	_, err = tx.Exec(`
		INSERT INTO render_configs
			(config_id, canvas_width, canvas_height, plot_width_in, plot_height_in, tick_interval_km, assets_host)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		configID, r.CanvasWidth, r.CanvasHeight, r.PlotWidthIn, r.PlotHeightIn, r.TickIntervalKM, nullString(r.AssetsHost))
	if err != nil {
		return fmt.Errorf("failed to insert render config: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO cache_configs (config_id, analysis_cache_size, handle_limit) VALUES (?, ?, ?)`,
		configID, configData.Cache.AnalysisCacheSize, configData.Cache.HandleLimit)
	if err != nil {
		return fmt.Errorf("failed to insert cache config: %w", err)
	}

	if _, err := tx.Exec(`UPDATE configs SET updated_at = datetime('now') WHERE id = ?`, configID); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteProvider) getOrCreateConfigID(tx *sql.Tx) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM configs WHERE name = 'default'`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	result, err := tx.Exec(`INSERT INTO configs (name) VALUES ('default')`)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteProvider) clearExistingConfig(tx *sql.Tx, configID int64) error {
	queries := []string{
		"DELETE FROM controller_configs WHERE config_id = ?",
		"DELETE FROM render_configs WHERE config_id = ?",
		"DELETE FROM cache_configs WHERE config_id = ?",
	}

	for _, query := range queries {
		if _, err := tx.Exec(query, configID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertController(tx *sql.Tx, configID int64, controller *ControllerData) error {
	query := `
		INSERT INTO controller_configs
			(config_id, controller_type, enabled, tls_cert, tls_key, port, listen_addr, max_body_bytes)
		VALUES (?, ?, 1, ?, ?, ?, ?, ?)`

	switch {
	case controller.RESTServer != nil:
		rs := controller.RESTServer
		_, err := tx.Exec(query, configID, controller.Type,
			nullString(rs.Cert), nullString(rs.Key), rs.Port, nullString(rs.ListenAddr), rs.MaxBodyBytes)
		return err
	case controller.GRPC != nil:
		g := controller.GRPC
		_, err := tx.Exec(query, configID, controller.Type,
			nullString(g.Cert), nullString(g.Key), g.Port, nullString(g.ListenAddr), nil)
		return err
	default:
		return fmt.Errorf("controller %q has no settings", controller.Type)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
