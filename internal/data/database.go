package data

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger" // Logger do GORM

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// AllModels lista os modelos migrados pelo AutoMigrate, na ordem de criação.
func AllModels() []interface{} {
	return []interface{}{
		&models.DBRepresentation{},
		&models.DBClient{},
		&models.DBVehicle{},
		&models.DBBoleto{},
		&models.DBTransaction{},
		&models.DBQuotation{},
		&models.DBClaim{},
		&models.DBClaimStatusChange{},
		&models.DBEvent{},
		&models.AuditLogEntry{},
	}
}

// Dialector devolve o dialeto GORM para o motor configurado.
func Dialector(cfg *core.Config) (gorm.Dialector, error) {
	switch cfg.DBEngine {
	case "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		appLogger.Infof("Conectando ao PostgreSQL: host=%s dbname=%s user=%s port=%d", cfg.DBHost, cfg.DBName, cfg.DBUser, cfg.DBPort)
		return postgres.Open(dsn), nil
	case "sqlite":
		appLogger.Infof("Usando banco de dados SQLite: %s", cfg.DBName)
		return sqlite.Open(cfg.DBName + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("%w: motor de banco de dados não suportado: %s", core.ErrConfiguration, cfg.DBEngine)
	}
}

// NewGormLogger liga o logger do GORM ao logrus da aplicação.
func NewGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info // Loga todas as queries SQL em modo debug
	}
	return gormlogger.New(
		appLogger.WithFields(logrus.Fields{"component": "gorm"}),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// InitializeDB abre a conexão, configura o pool e executa as migrações.
func InitializeDB(cfg *core.Config) (*gorm.DB, error) {
	appLogger.Infof("Inicializando conexão com banco de dados: %s", cfg.DBEngine)

	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(cfg.AppDebug),
		TranslateError: true, // ErrDuplicatedKey para violações de unicidade
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		appLogger.Errorf("Falha ao conectar ao banco de dados %s: %v", cfg.DBEngine, err)
		return nil, fmt.Errorf("falha ao abrir conexão com %s: %w", cfg.DBEngine, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("falha ao configurar pool de conexões: %w", err)
	}
	if cfg.DBEngine == "sqlite" {
		// SQLite aceita um único escritor.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}
	appLogger.Info("Conexão com banco de dados estabelecida.")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate cria/altera as tabelas para corresponder aos modelos.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("instância de banco de dados é nil, não é possível criar tabelas")
	}
	appLogger.Info("Executando migrações automáticas do GORM...")
	if err := db.AutoMigrate(AllModels()...); err != nil {
		appLogger.Errorf("Falha durante AutoMigrate: %v", err)
		return fmt.Errorf("falha na migração do esquema do banco de dados: %w", err)
	}
	appLogger.Info("Migrações automáticas do GORM concluídas.")
	return nil
}

// CloseDB fecha a conexão com o banco de dados.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		appLogger.Warn("Tentativa de fechar conexão DB nula.")
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Errorf("Erro ao obter *sql.DB para fechar: %v", err)
		return err
	}
	appLogger.Info("Fechando conexão com o banco de dados...")
	return sqlDB.Close()
}
