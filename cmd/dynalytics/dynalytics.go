package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Jolieabadir/dynalytics/internal/api"
	"github.com/Jolieabadir/dynalytics/internal/config"
	"github.com/Jolieabadir/dynalytics/internal/fsutil"
	"github.com/Jolieabadir/dynalytics/internal/labeldb"
	"github.com/Jolieabadir/dynalytics/internal/version"
)

var (
	listen     = flag.String("listen", ":8080", "HTTP listen address")
	dbFile     = flag.String("db", "labels.db", "Path to the SQLite label database")
	dataDir    = flag.String("data", "", "Directory holding videos, feature CSVs, and exports (default from config)")
	configPath = flag.String("config", "", "Optional settings JSON file")
	devMode    = flag.Bool("dev", false, "Attach the admin debugging routes")
)

// Main
func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("HTTP listen address is required")
	}

	settings := config.DefaultSettings()
	if *configPath != "" {
		loaded, err := config.LoadSettings(*configPath)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		settings = settings.Merge(loaded)
	}
	dir := *dataDir
	if dir == "" {
		dir = settings.GetDataDir()
	}

	db, err := labeldb.Open(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open label database: %v", err)
	}
	defer db.Close()
	if err := db.MigrateUp(); err != nil {
		log.Fatalf("Failed to migrate label database: %v", err)
	}

	srv := api.NewServer(db, fsutil.OSFileSystem{}, dir)

	// Create a wait group for the HTTP server routine
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes in dev mode (tsweb further
		// restricts access to loopback and tailnet callers)
		if *devMode {
			db.AttachAdminRoutes(mux)
		}

		// serve video files straight off disk; they are far too large
		// to pipe through the JSON API
		videosDir := filepath.Join(dir, "videos")
		mux.Handle("/videos/", http.StripPrefix("/videos/", http.FileServer(http.Dir(videosDir))))

		// everything else goes to the labeling API, whose root handler
		// doubles as the health check
		mux.Handle("/", srv.ServeMux())

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("dynalytics %s listening on %s (db=%s, data=%s)", version.Version, *listen, *dbFile, dir)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
