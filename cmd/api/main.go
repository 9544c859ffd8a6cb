package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"taskManagement/internal/app"
	"taskManagement/internal/config"
	"taskManagement/internal/logger"
	"taskManagement/internal/repository/task/postgres"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "api",
	Short:         "Task management API",
	Long:          "HTTP API для проектов и задач с пользователями из Keycloak.\n\nБез подкоманды запускает сервер.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP сервер",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Миграции схемы PostgreSQL",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Применить все миграции",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		return postgres.Migrate(url)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Откатить все миграции",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		return postgres.Down(url)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "путь к файлу конфигурации")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func databaseURL() (string, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return "", err
	}
	if err := logger.Init(logger.Options{Development: cfg.Logging.Development, Level: cfg.Logging.Level}); err != nil {
		return "", fmt.Errorf("инициализация логгера: %w", err)
	}
	if cfg.Database.URL == "" {
		return "", errors.New("database.url не задан")
	}
	return cfg.Database.URL, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		application.Shutdown(shutdownCtx)
		return err
	}

	return application.Run(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "ошибка:", err)
		os.Exit(1)
	}
}
