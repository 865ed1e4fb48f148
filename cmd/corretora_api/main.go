package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/api"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/auth"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/cache"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/services"
)

func main() {
	envPath := flag.String("env", ".env", "caminho do arquivo .env")
	issueFor := flag.String("emitir-token", "", "emite um token de acesso para o usuário informado e sai (uso local)")
	flag.Parse()

	// --- 1. Carregar Configurações ---
	cfg, err := core.LoadConfig(*envPath)
	if err != nil {
		log.Fatalf("Erro CRÍTICO ao carregar configuração: %v", err)
	}

	// --- 2. Configurar Logger ---
	if err := appLogger.SetupLogger(cfg); err != nil {
		log.Fatalf("Erro CRÍTICO ao configurar logger: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.AppName, auth.AccessTTL)
	if *issueFor != "" {
		token, err := tokens.GerarToken(*issueFor)
		if err != nil {
			log.Fatalf("Erro ao emitir token: %v", err)
		}
		fmt.Println(token)
		return
	}

	appLogger.Info("=====================================================")
	appLogger.Infof("Iniciando %s v%s...", cfg.AppName, cfg.AppVersion)
	appLogger.Debugf("Modo Debug: %t", cfg.AppDebug)
	appLogger.Info("=====================================================")

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// --- 3. Inicializar Banco de Dados ---
	db, err := data.InitializeDB(cfg)
	if err != nil {
		appLogger.Fatalf("Erro CRÍTICO ao inicializar banco de dados: %v", err)
	}
	defer func() {
		if err := data.CloseDB(db); err != nil {
			appLogger.Errorf("Erro ao fechar conexão com banco de dados: %v", err)
		} else {
			appLogger.Info("Conexão com banco de dados fechada.")
		}
	}()
	appLogger.Info("Banco de dados inicializado com sucesso.")

	repos := repositories.NewGormRepositories(db)

	// --- 4. Cache e trava do snapshot (opcionais) ---
	var storeOpts services.SnapshotStoreOptions
	connectCtx, cancelConnect := context.WithTimeout(sigCtx, 5*time.Second)
	redisClient, err := cache.Connect(connectCtx, cfg)
	cancelConnect()
	switch {
	case err != nil:
		appLogger.Warnf("Cache de snapshot indisponível, seguindo sem cache: %v", err)
	case redisClient != nil:
		storeOpts.Cache = cache.NewRedisSnapshotCache(redisClient, cfg.SnapshotCacheTTL)
		storeOpts.Locker = cache.NewRedisLocker(redisClient, cfg.SnapshotLockTTL)
		defer func() { _ = redisClient.Close() }()
	}

	// --- 5. Serviços e rotas ---
	clock := services.Clock(time.Now)
	svc := services.New(repos, storeOpts, cfg, clock)
	appLogger.Info("Todos os serviços foram inicializados.")

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(svc, tokens, cfg.CORSOrigins, clock),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		appLogger.Infof("Servidor HTTP ouvindo em %s", cfg.HTTPAddr)
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case <-sigCtx.Done():
		appLogger.Info("Sinal de encerramento recebido.")
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Errorf("Servidor HTTP parou inesperadamente: %v", err)
		}
	}

	// --- 6. Encerramento ---
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("Falha no encerramento gracioso do servidor: %v", err)
	}
	appLogger.Infof("%s encerrado.", cfg.AppName)
}
