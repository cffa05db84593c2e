package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const maxConnectBackoff = 30 * time.Second

var (
	db *gorm.DB
)

func GetDB() *gorm.DB {
	return db
}

// SetDB replaces the global handle. Used by one-shot tools and tests that
// open their own connection.
func SetDB(handle *gorm.DB) {
	db = handle
}

func init() {
	// process env wins over .env
	_ = godotenv.Load()
}

// PoolSettings bound the *sql.DB pool of the ventures store.
//
// Set via env:
// - DB_MAX_OPEN_CONNS=50
// - DB_MAX_IDLE_CONNS=25
// - DB_CONN_MAX_LIFETIME_SECONDS=300
// - DB_CONN_MAX_IDLE_TIME_SECONDS=60
type PoolSettings struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

func PoolSettingsFromEnv() PoolSettings {
	return PoolSettings{
		MaxOpen:     intFromEnv("DB_MAX_OPEN_CONNS", 50),
		MaxIdle:     intFromEnv("DB_MAX_IDLE_CONNS", 25),
		MaxLifetime: time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
		MaxIdleTime: time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second,
	}
}

// DSNFromEnv builds the MySQL DSN from DB_USER, DB_PASSWORD, DB_HOST, DB_PORT
// and DB_NAME. A DB_HOST of "/cloudsql/<instance>" dials the Cloud SQL unix socket.
func DSNFromEnv() string {
	cfg := mysqldriver.NewConfig()
	cfg.User = os.Getenv("DB_USER")
	cfg.Passwd = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	host := os.Getenv("DB_HOST")
	if strings.HasPrefix(host, "/cloudsql/") {
		cfg.Net = "unix"
		cfg.Addr = host
	} else {
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%s", host, os.Getenv("DB_PORT"))
	}
	return cfg.FormatDSN()
}

// connectBackoff doubles from 2s and stays at maxConnectBackoff.
func connectBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 5 {
		return maxConnectBackoff
	}
	sleep := time.Second << attempt
	if sleep > maxConnectBackoff {
		sleep = maxConnectBackoff
	}
	return sleep
}

// ConnectDatabaseWithRetry connects and sets the global DB. It blocks until
// MySQL answers, so the server calls it after the listener is up.
func ConnectDatabaseWithRetry() {
	dsn := DSNFromEnv()
	pool := PoolSettingsFromEnv()
	for attempt := 1; ; attempt++ {
		conn, err := openDatabase(dsn, pool)
		if err == nil {
			db = conn
			dbLogger().WithFields(logrus.Fields{"field": "database", "attempt": attempt}).Info("connected to ventures store")
			return
		}
		sleep := connectBackoff(attempt)
		dbLogger().WithFields(logrus.Fields{"field": "database", "attempt": attempt, "retry_in": sleep.String()}).
			Error("failed to connect database: " + err.Error())
		time.Sleep(sleep)
	}
}

func openDatabase(dsn string, pool PoolSettings) (*gorm.DB, error) {
	conn, err := gorm.Open(mysql.Open(dsn), GormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpen)
	}
	if pool.MaxIdle >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdle)
	}
	if pool.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	}
	if pool.MaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.MaxIdleTime)
	}

	if err := conn.Use(otelgorm.NewPlugin()); err != nil {
		dbLogger().WithFields(logrus.Fields{"field": "database"}).Warn("otelgorm plugin not installed: " + err.Error())
	}
	// cascades rely on the guard for ownership checks, so it is not optional
	if err := conn.Use(NewTenantGuardPlugin()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("install tenant guard: %w", err)
	}
	return conn, nil
}

func dbLogger() *logrus.Logger {
	if logg != nil {
		return logg
	}
	return logrus.StandardLogger()
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GormConfig is shared by the production connection and test handles.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				Colorful:                  false,
				LogLevel:                  logger.Error,
				SlowThreshold:             time.Second,
				IgnoreRecordNotFoundError: true,
			},
		),
		NamingStrategy: schema.NamingStrategy{},
		TranslateError: true,
	}
}
