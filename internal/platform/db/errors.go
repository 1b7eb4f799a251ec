package db

import (
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

// IsDuplicateKey: UNIQUE / PRIMARY KEY 違反（両ドライバ）
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}

// IsForeignKeyViolation: 存在しない親行を参照した INSERT/UPDATE
func IsForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlNoReferencedRow
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			strings.Contains(se.Error(), "FOREIGN KEY constraint failed")
	}
	return false
}
