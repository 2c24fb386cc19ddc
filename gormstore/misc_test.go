package gormstore

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// _users matches the quoted "users" table name of any dialect.
const _users = "[`'\"]users[`'\"]"

// _arg matches a placeholder of any dialect.
const _arg = "(?:\\$\\d|\\?)"

type mockedDB struct {
	dialect string
	db      *gorm.DB
	mock    sqlmock.Sqlmock
}

var _dialects = []struct {
	name string
	open func(conn *sql.DB) gorm.Dialector
}{
	{
		name: "mysql",
		open: func(conn *sql.DB) gorm.Dialector {
			return mysql.New(mysql.Config{
				Conn:                      conn,
				SkipInitializeWithVersion: true,
			})
		},
	},
	{
		name: "postgres",
		open: func(conn *sql.DB) gorm.Dialector {
			return postgres.New(postgres.Config{
				Conn: conn,
			})
		},
	},
}

// newMockedDBs opens a GORM connection per supported dialect, each backed by
// its own sqlmock.
func newMockedDBs(t *testing.T) []mockedDB {
	t.Helper()

	ret := make([]mockedDB, 0, len(_dialects))
	for _, d := range _dialects {
		conn, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		t.Cleanup(func() { _ = conn.Close() })

		db, err := gorm.Open(d.open(conn), &gorm.Config{})
		if err != nil {
			t.Fatalf("gorm open %s: %v", d.name, err)
		}

		ret = append(ret, mockedDB{dialect: d.name, db: db.Debug(), mock: mock})
	}

	return ret
}
