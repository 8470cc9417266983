package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/newsroom-agent/internal/config"
	"github.com/jonathan/newsroom-agent/internal/server"
)

var (
	serveAddr         string
	serveConfigPath   string
	serveArchivistURL string
	serveVerbose      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the coordinator server",
	Long:  `Start an HTTP server exposing the coordinator actions over /agent (internal shape) and /rpc (JSONRPC A2A), plus read-only story endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to JSON config file")
	serveCmd.Flags().StringVar(&serveArchivistURL, "archivist-url", "", "Base URL of the external archive agent")
	serveCmd.Flags().BoolVar(&serveVerbose, "verbose", false, "Print detailed debug information")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if serveArchivistURL != "" {
		cfg.ArchivistURL = serveArchivistURL
	}
	if serveVerbose {
		cfg.Verbose = true
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = serveAddr
	}

	room, err := buildNewsroom(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer room.close()

	// The operator token guard is enabled only when a secret is present.
	var jwtService *server.JWTService
	if jwtConfig, err := config.NewJWTConfig(); err == nil {
		jwtService = server.NewJWTService(jwtConfig)
	} else {
		log.Printf("[newsroom] operator auth disabled: %v", err)
	}

	srv := server.New(room.registry, room.orch, server.Config{
		Addr:       cfg.ListenAddr,
		JWTService: jwtService,
	})
	return srv.Start()
}
