package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	// sqlite のみ
	Path string `yaml:"path"`
}

// Dialect: MySQL と SQLite で SQL が異なる箇所だけを吸収する
type Dialect string

func (d Dialect) ForUpdate() string {
	if d == DriverMySQL {
		return " FOR UPDATE"
	}
	// SQLite: 単一コネクション + BEGIN IMMEDIATE で書き込みが直列化される
	return ""
}

func Connect(c DatabaseConfig) (*sql.DB, Dialect, error) {
	switch c.Driver {
	case DriverMySQL, "":
		conn, err := connectMySQL(c)
		return conn, DriverMySQL, err
	case DriverSQLite:
		conn, err := connectSQLite(c)
		return conn, DriverSQLite, err
	default:
		return nil, "", fmt.Errorf("unsupported driver %q", c.Driver)
	}
}

func connectMySQL(c DatabaseConfig) (*sql.DB, error) {
	// clientFoundRows: UPDATE で値が変わらなくても一致行数を返す
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC&clientFoundRows=true",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	db, err := sql.Open(DriverMySQL, dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	db.SetMaxOpenConns(80)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

func connectSQLite(c DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate", c.Path)

	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	return db, nil
}
