package logger // Nome do pacote 'logger' para evitar conflito com var 'log'

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
)

var (
	mu  sync.RWMutex
	log *logrus.Logger // Logger global
)

// SetupLogger inicializa o logger global da aplicação.
// Deve ser chamado uma vez no início.
func SetupLogger(cfg *core.Config) error {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		fmt.Fprintf(os.Stderr, "Nível de log inválido '%s', usando INFO: %v\n", cfg.LogLevel, err)
	}
	l.SetLevel(level)

	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601 com milissegundos
	})

	logFilePath := filepath.Join(cfg.LogDir, strings.ToLower(strings.ReplaceAll(cfg.AppName, " ", "_"))+".log")
	logDirAbs, _ := filepath.Abs(cfg.LogDir)
	if err := os.MkdirAll(logDirAbs, os.ModePerm); err != nil {
		fmt.Fprintf(os.Stderr, "Falha ao criar diretório de log '%s': %v. Logs de arquivo podem não funcionar.\n", logDirAbs, err)
	}

	fileLogger := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    max(cfg.LogMaxBytes/(1024*1024), 1), // Em megabytes
		MaxBackups: cfg.LogBackupCount,
		MaxAge:     28, // dias
		Compress:   true,
	}

	writers := []io.Writer{fileLogger}
	if cfg.LogToConsole {
		writers = append(writers, os.Stderr)
	}
	l.SetOutput(io.MultiWriter(writers...))

	SetLogger(l)
	l.Infof("Logger configurado. Nível: %s. Arquivo: %s", level.String(), logFilePath)
	return nil
}

// SetLogger troca o logger global. Usado pelos testes para silenciar a saída.
func SetLogger(l *logrus.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// get devolve o logger global ou um logger padrão de stderr se ainda não configurado.
func get() *logrus.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = logrus.New()
	}
	return log
}

func Debug(args ...interface{})                 { get().Debug(args...) }
func Debugf(format string, args ...interface{}) { get().Debugf(format, args...) }
func Info(args ...interface{})                  { get().Info(args...) }
func Infof(format string, args ...interface{})  { get().Infof(format, args...) }
func Warn(args ...interface{})                  { get().Warn(args...) }
func Warnf(format string, args ...interface{})  { get().Warnf(format, args...) }
func Error(args ...interface{})                 { get().Error(args...) }
func Errorf(format string, args ...interface{}) { get().Errorf(format, args...) }
func Fatal(args ...interface{})                 { get().Fatal(args...) }
func Fatalf(format string, args ...interface{}) { get().Fatalf(format, args...) }

// WithFields devolve uma entrada com campos estruturados.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return get().WithFields(fields)
}

// Discard silencia o logger global. Útil em testes.
func Discard() {
	l := logrus.New()
	l.SetOutput(io.Discard)
	SetLogger(l)
}
