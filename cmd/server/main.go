package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"educrm/internal/app"
	"educrm/internal/auth"
	"educrm/internal/config"
	"educrm/internal/db"
	"educrm/internal/jobs"
	"educrm/internal/logging"
	"educrm/internal/notify"
	"educrm/internal/observability"
	"educrm/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("логгер: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "educrm")
	if err != nil {
		lg.Sugar.Warnw("sentry не поднялся", "err", err)
	}
	defer flush()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("подключение к БД", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		lg.Sugar.Fatalw("миграции", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// На свежей базе некому логиниться: все ручки за авторизацией.
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := auth.EnsureAdmin(ctx, database, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			lg.Sugar.Fatalw("стартовый админ", "err", err)
		}
	}

	tg, err := notify.New(cfg.BotToken, cfg.AdminChatID, lg.Sugar)
	if err != nil {
		lg.Sugar.Warnw("телеграм-уведомления отключены", "err", err)
	}
	var notifier service.Notifier
	if tg != nil {
		notifier = tg
	}

	svc := service.New(database, lg.Sugar, notifier)
	authSvc := auth.New(database, cfg.JWTSecret, cfg.TokenTTL)

	runner := jobs.New(ctx)
	runner.Every(time.Hour, "group_status_roll", jobs.RollGroupStatuses(database, lg.Sugar))
	runner.Every(time.Minute, "db_ping", jobs.PingDB(database))

	srv := app.NewServer(cfg.HTTPAddr, database, svc, authSvc, lg.Sugar)
	srv.Start(ctx)
	lg.Sugar.Infow("сервер запущен", "addr", cfg.HTTPAddr, "env", cfg.Env)

	<-ctx.Done()
	lg.Sugar.Infow("остановка по сигналу")
	time.Sleep(500 * time.Millisecond) // даём серверу дописать ответы
}
