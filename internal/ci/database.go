package ci

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

var dbNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// DatabaseManager provisions the per-environment test databases some CI
// environments ask for.
type DatabaseManager struct {
	workDir string
}

// NewDatabaseManager creates a DatabaseManager for a project checkout.
func NewDatabaseManager(workDir string) *DatabaseManager {
	return &DatabaseManager{workDir: workDir}
}

// DatabaseName returns the database assigned to slot n of an environment.
func DatabaseName(env string, n int) string {
	return fmt.Sprintf("%s_test_%d", env, n)
}

// CheckAndCreate makes sure count databases exist for the environment,
// creating the missing ones. It returns the database names. Connection info
// comes from the project .env file or the process environment, with local
// defaults.
func (dm *DatabaseManager) CheckAndCreate(env string, count int) ([]string, error) {
	// The .env file is optional, plain env vars work too.
	_ = godotenv.Load(filepath.Join(dm.workDir, ".env"))

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/",
		envOr("DB_USERNAME", "root"),
		os.Getenv("DB_PASSWORD"),
		envOr("DB_HOST", "127.0.0.1"),
		envOr("DB_PORT", "3306"),
	)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database server: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database server: %w", err)
	}

	names := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		name := DatabaseName(env, i)
		if !dbNamePattern.MatchString(name) {
			return nil, fmt.Errorf("invalid database name %q", name)
		}
		if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
			return nil, fmt.Errorf("create database %s: %w", name, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
