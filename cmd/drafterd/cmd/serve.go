package cmd

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/Nukpro/DeedRecreator/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := server.LoadConfig()
	if servePort != 0 {
		cfg.Port = strconv.Itoa(servePort)
	}

	app, err := server.New(cfg)
	if err != nil {
		return err
	}

	// Shut down cleanly on SIGINT/SIGTERM.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("Shutting down")
		if err := app.Fiber.Shutdown(); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	defer app.Close()
	return app.Listen()
}
