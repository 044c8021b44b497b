package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"taskboard/app/config"
	"taskboard/app/controllers"
	"taskboard/app/routes"
	"taskboard/app/services"
	"taskboard/app/store"
)

const version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Task tracking API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			slog.SetDefault(logger)

			var st store.Store
			switch cfg.Store {
			case "memory":
				st = store.NewMemoryStore()
				logger.Warn("using in-memory store; tasks are not persisted")
			default:
				driver, err := config.InitNeo4j(cmd.Context(), cfg)
				if err != nil {
					return fmt.Errorf("connect to neo4j: %w", err)
				}
				defer driver.Close(context.Background())
				st = store.NewNeo4jStore(driver)
			}

			taskService := services.NewTaskService(st)
			taskController := controllers.NewTaskController(taskService, logger)

			router := mux.NewRouter()
			routes.RegisterRoutes(router, taskController)

			cors := handlers.CORS(
				handlers.AllowedOrigins(cfg.CORSOrigins),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}),
				handlers.AllowedHeaders([]string{"Content-Type"}),
			)
			handler := handlers.LoggingHandler(os.Stdout, cors(router))

			logger.Info("server listening", "addr", cfg.ListenAddr, "store", cfg.Store)
			return http.ListenAndServe(cfg.ListenAddr, handler)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address override")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("taskboard %s\n", version)
		},
	}
}
