package main

import (
	"fmt"
	"log"
	"os"

	"peerpay_settlement/internal/conf"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "peerpay_settlement",
	Short: "PeerPay Settlement Service",
	Long:  `The main entry point for the PeerPay settlement event-delivery service.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*conf.AppConfig, error) {
	confFile, _ := cmd.Flags().GetString("config")
	appConfig, err := conf.NewConfig(confFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	port, _ := cmd.Flags().GetInt("port")
	if port > 0 {
		appConfig.Port = port
	}

	return appConfig, nil
}

var apiCmd = &cobra.Command{
	Use:   "serve:api",
	Short: "Starts the API server with the delivery worker",
	Long: `Starts the HTTP server exposing the live event feed and the debug
surface, with the outbox delivery worker running in-process so that live
fan-out reaches connected clients.`,
	Run: func(cmd *cobra.Command, args []string) {
		appConfig, err := loadConfig(cmd)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		app, cleanup, err := InitializeAPIApp(appConfig)
		if err != nil {
			log.Fatalf("failed to init api app: %v", err)
		}
		defer cleanup()

		if err := app.Run(); err != nil {
			log.Fatalf("failed to run api app: %v", err)
		}
	},
}

var workerCmd = &cobra.Command{
	Use:   "serve:worker",
	Short: "Starts a headless delivery worker",
	Long: `Starts the outbox delivery worker without the live-feed routes.
Useful for draining a backlog; live fan-out in this process has no
subscribers, so records are still marked sent and notifications still go
out over the message queue.`,
	Run: func(cmd *cobra.Command, args []string) {
		appConfig, err := loadConfig(cmd)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		app, cleanup, err := InitializeWorkerApp(appConfig)
		if err != nil {
			log.Fatalf("failed to init worker app: %v", err)
		}
		defer cleanup()

		if err := app.Run(); err != nil {
			log.Fatalf("failed to run worker app: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.PersistentFlags().IntP("port", "p", 0, "Port for the server to listen on, overrides the value in the config file")
	rootCmd.PersistentFlags().StringP("config", "c", "internal/conf/config.yaml", "path to config file")
}
