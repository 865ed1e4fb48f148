// Package datatest abre bancos SQLite em memória, já migrados, para testes.
package datatest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data"
)

var seq atomic.Int64

// Open devolve um banco exclusivo do teste, fechado ao final dele.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("abrindo sqlite em memória: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("obtendo *sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := data.Migrate(db); err != nil {
		t.Fatalf("migrando: %v", err)
	}
	return db
}
