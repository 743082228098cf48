// Package workerdb prepares one MySQL database per pytest worker, so parallel
// test processes do not share state. Workers read their database name from
// DB_DATABASE.
package workerdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	"ptc/internal/config"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// Settings holds the server connection read from DB_* variables
type Settings struct {
	Host     string
	Port     string
	User     string
	Password string
}

// SettingsFromEnv reads DB_HOST, DB_PORT, DB_USERNAME and DB_PASSWORD.
// Call config.LoadEnv first to pick up the project's .env file.
func SettingsFromEnv() Settings {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("db_host", "127.0.0.1")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_username", "root")
	v.SetDefault("db_password", "")

	return Settings{
		Host:     v.GetString("db_host"),
		Port:     v.GetString("db_port"),
		User:     v.GetString("db_username"),
		Password: v.GetString("db_password"),
	}
}

// DSN returns the server DSN without a default database
func (s Settings) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(s.Host, s.Port)
	cfg.Timeout = 5 * time.Second
	return cfg.FormatDSN()
}

// DatabaseManager manages test databases
type DatabaseManager struct {
	config   *config.Config
	settings Settings
}

// NewDatabaseManager creates a new DatabaseManager
func NewDatabaseManager(cfg *config.Config, settings Settings) *DatabaseManager {
	return &DatabaseManager{config: cfg, settings: settings}
}

// Names returns the database name of each worker, in worker id order
func (dm *DatabaseManager) Names(workerCount int) []string {
	names := make([]string, 0, workerCount)
	for i := 1; i <= workerCount; i++ {
		names = append(names, dm.config.GetDatabaseName(i))
	}
	return names
}

// EnsureDatabases creates the missing worker databases and returns how many were created
func (dm *DatabaseManager) EnsureDatabases(ctx context.Context, workerCount int) (int, error) {
	names := dm.Names(workerCount)
	for _, name := range names {
		if !validName.MatchString(name) {
			return 0, fmt.Errorf("invalid database name: %s", name)
		}
	}

	db, err := sql.Open("mysql", dm.settings.DSN())
	if err != nil {
		return 0, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to ping database server %s: %w", dm.settings.Host, err)
	}

	created := 0
	for _, name := range names {
		exists, err := dm.databaseExists(ctx, db, name)
		if err != nil {
			return created, fmt.Errorf("failed to check database %s: %w", name, err)
		}
		if exists {
			continue
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
			return created, fmt.Errorf("failed to create database %s: %w", name, err)
		}
		slog.Debug("created worker database", "name", name)
		created++
	}

	return created, nil
}

// databaseExists checks if a database exists
func (dm *DatabaseManager) databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}
