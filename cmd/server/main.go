package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/peterbourgon/ff/v3"

	"github.com/kaleidohq/synergy/internal/api"
	"github.com/kaleidohq/synergy/internal/db"
	"github.com/kaleidohq/synergy/internal/middleware"
)

func main() {
	fs := flag.NewFlagSet("synergy-server", flag.ExitOnError)
	var (
		_             = fs.String("config", "", "config file (optional), json format")
		addr          = fs.String("addr", ":8080", "listen address")
		dbPath        = fs.String("db", "", "sqlite database path; empty keeps everything in memory")
		migrationsDir = fs.String("migrations", "", "migrations directory; empty uses the embedded files")
		allowedHosts  = fs.String("allowed-hosts", "", "comma-separated Host header allowlist; empty allows any")
		staticDir     = fs.String("static", "", "directory of static frontend files to serve at /")
	)
	if err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
		ff.WithEnvVarPrefix("SYNERGY"),
	); err != nil {
		log.Fatalf("parse config: %v", err)
	}

	commit := os.Getenv("SYNERGY_COMMIT")
	buildTime := os.Getenv("SYNERGY_BUILD_TIME")

	store, closeStore, err := openStore(*dbPath, *migrationsDir)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	mux := http.NewServeMux()
	api.NewRouter(store).Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "Synergy API",
			"commit":     commit,
			"build_time": buildTime,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	if *staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(*staticDir)))
	}

	handler := middleware.NoStore(middleware.CORS(middleware.SecureHeaders(middleware.WithAuth(mux))))
	if hosts := splitHosts(*allowedHosts); len(hosts) > 0 {
		handler = middleware.AllowedHosts(hosts, handler)
	}

	log.Infof("synergy server listening on %s", *addr)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore returns a sqlite-backed store when a path is configured, and the
// in-memory store otherwise.
func openStore(path, migrationsDir string) (api.Store, func(), error) {
	if path == "" {
		log.Warn("no database path configured, results will not survive a restart")
		return api.NewMemoryStore(), func() {}, nil
	}
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(conn, migrationsDir); err != nil {
		conn.Close()
		return nil, nil, err
	}
	store, err := db.NewStore(conn)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return store, func() { conn.Close() }, nil
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
