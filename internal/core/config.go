package core

import (
	"errors"
	"fmt"
	"log" // Usado para logs iniciais antes que o logger da aplicação esteja configurado
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSecretKey = "default_secret_key_please_change_this_in_production_12345"

// Config armazena todas as configurações da aplicação.
type Config struct {
	AppName    string
	AppVersion string
	AppDebug   bool
	SecretKey  string

	// HTTP
	HTTPAddr        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	// Database
	DBEngine   string
	DBName     string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// Logging
	LogDir         string
	LogLevel       string
	LogMaxBytes    int
	LogBackupCount int
	LogToConsole   bool

	// Cache do snapshot (Redis). RedisAddr vazio desliga o cache.
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	SnapshotCacheTTL time.Duration
	SnapshotLockTTL  time.Duration

	// Serviços externos de consulta
	CNPJAPIURL    string
	PlateAPIURL   string
	PlateAPIToken string
	LookupTimeout time.Duration

	// Export
	ExportDir string
}

// LoadConfig carrega as configurações do arquivo .env especificado ou encontrado na árvore de diretórios.
func LoadConfig(envPath string) (*Config, error) {
	foundEnvPath, err := findEnvFile(envPath)
	if err != nil {
		log.Printf("Aviso: arquivo .env em '%s' não encontrado: %v. Usando variáveis de ambiente existentes.", envPath, err)
	} else {
		log.Printf("Carregando configurações de: %s", foundEnvPath)
		if err := godotenv.Load(foundEnvPath); err != nil {
			log.Printf("Aviso: erro ao carregar '%s': %v. Usando valores padrão ou variáveis de ambiente existentes.", foundEnvPath, err)
		}
	}

	cfg := configFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ensureDir(cfg.LogDir, true); err != nil {
		return nil, fmt.Errorf("falha ao criar diretório de log essencial '%s': %w", cfg.LogDir, err)
	}
	if cfg.DBEngine == "sqlite" {
		sqliteDir := filepath.Dir(cfg.DBName)
		if sqliteDir != "." && sqliteDir != string(filepath.Separator) {
			if err := ensureDir(sqliteDir, true); err != nil {
				return nil, fmt.Errorf("falha ao criar diretório para banco de dados SQLite '%s': %w", sqliteDir, err)
			}
		}
	}
	_ = ensureDir(cfg.ExportDir, false)

	log.Println("Configurações carregadas e validadas.")
	return cfg, nil
}

// configFromEnv monta a Config a partir das variáveis de ambiente já carregadas.
func configFromEnv() *Config {
	cfg := &Config{}

	cfg.AppName = getEnv("APP_NAME", "Corretora API GO")
	cfg.AppVersion = getEnv("APP_VERSION", "1.0.0-go")
	cfg.AppDebug = getEnvAsBool("APP_DEBUG", false)
	cfg.SecretKey = getEnv("SECRET_KEY", defaultSecretKey)

	cfg.HTTPAddr = getEnv("APP_HTTP_ADDR", ":8080")
	cfg.CORSOrigins = getEnvAsList("APP_CORS_ORIGINS", []string{"http://localhost:5173"})
	cfg.ShutdownTimeout = getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 15)

	cfg.DBEngine = getEnv("APP_DB_ENGINE", "sqlite")
	cfg.DBName = getEnv("APP_DB_NAME", "corretora_go.db")
	cfg.DBHost = getEnv("APP_DB_HOST", "localhost")
	cfg.DBPort = getEnvAsInt("APP_DB_PORT", 5432)
	cfg.DBUser = getEnv("APP_DB_USER", "user")
	cfg.DBPassword = getEnv("APP_DB_PASSWORD", "password")
	cfg.DBSSLMode = getEnv("APP_DB_SSL_MODE", "disable")

	cfg.LogDir = getEnv("APP_LOG_DIR", "./app_logs")
	cfg.LogLevel = strings.ToUpper(getEnv("APP_LOG_LEVEL", "INFO"))
	cfg.LogMaxBytes = getEnvAsInt("APP_LOG_MAX_BYTES", 5*1024*1024) // 5MB
	cfg.LogBackupCount = getEnvAsInt("APP_LOG_BACKUP_COUNT", 7)
	cfg.LogToConsole = getEnvAsBool("APP_LOG_TO_CONSOLE", true)

	cfg.RedisAddr = getEnv("APP_REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("APP_REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvAsInt("APP_REDIS_DB", 0)
	cfg.SnapshotCacheTTL = getEnvAsDuration("APP_SNAPSHOT_CACHE_TTL", 300) // 5 minutos
	cfg.SnapshotLockTTL = getEnvAsDuration("APP_SNAPSHOT_LOCK_TTL", 30)

	cfg.CNPJAPIURL = getEnv("APP_CNPJ_API_URL", "https://brasilapi.com.br/api/cnpj/v1")
	cfg.PlateAPIURL = getEnv("APP_PLATE_API_URL", "")
	cfg.PlateAPIToken = getEnv("APP_PLATE_API_TOKEN", "")
	cfg.LookupTimeout = getEnvAsDuration("APP_LOOKUP_TIMEOUT", 10)

	cfg.ExportDir = getEnv("APP_EXPORT_DIR", "./app_exports")
	return cfg
}

// Validate verifica as configurações críticas.
func (c *Config) Validate() error {
	if !c.AppDebug && c.SecretKey == defaultSecretKey {
		return errors.New("FATAL: SECRET_KEY não pode ser o valor padrão fora do modo debug (APP_DEBUG=false)")
	}
	if len(c.SecretKey) < 32 && !c.AppDebug {
		log.Printf("AVISO: SECRET_KEY tem menos de 32 caracteres (%d). Recomenda-se uma chave mais longa para produção.", len(c.SecretKey))
	}
	switch c.DBEngine {
	case "postgresql", "sqlite":
	default:
		return fmt.Errorf("%w: APP_DB_ENGINE '%s' não suportado (use postgresql ou sqlite)", ErrConfiguration, c.DBEngine)
	}
	return nil
}

// findEnvFile tenta localizar o arquivo .env.
// Primeiro no path fornecido, depois subindo na árvore de diretórios a partir do CWD.
func findEnvFile(envPath string) (string, error) {
	if _, err := os.Stat(envPath); err == nil {
		absPath, _ := filepath.Abs(envPath)
		return absPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("não foi possível obter o diretório de trabalho atual: %w", err)
	}

	for i := 0; i < 5; i++ {
		tryPath := filepath.Join(cwd, ".env")
		if _, err := os.Stat(tryPath); err == nil {
			return tryPath, nil
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}
	return "", fmt.Errorf("arquivo .env não encontrado no caminho '%s' ou nos diretórios pais", envPath)
}

// ensureDir garante que um diretório exista, criando-o se necessário.
// Se 'critical' for true, retorna erro em caso de falha. Caso contrário, apenas loga um aviso.
func ensureDir(dirPath string, critical bool) error {
	absPath, err := filepath.Abs(dirPath)
	if err == nil {
		err = os.MkdirAll(absPath, os.ModePerm)
	}
	if err != nil {
		msg := fmt.Sprintf("não foi possível garantir o diretório '%s': %v", dirPath, err)
		if critical {
			return errors.New(msg)
		}
		log.Println("AVISO:", msg)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration lê a variável como segundos.
func getEnvAsDuration(key string, fallbackSeconds int) time.Duration {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return time.Duration(value) * time.Second
	}
	return time.Duration(fallbackSeconds) * time.Second
}

// getEnvAsList lê uma lista separada por vírgulas.
func getEnvAsList(key string, fallback []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
