package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abrezinsky/mvpboard/internal/app"
	"github.com/abrezinsky/mvpboard/internal/auth"
	"github.com/abrezinsky/mvpboard/internal/logger"
	"github.com/abrezinsky/mvpboard/web"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

var (
	version = "dev"
)

// showLogo prints the MVPBoard banner
func showLogo() {
	logo := []string{
		`  __  ____   _____  ____                      _ `,
		` |  \/  \ \ / /  _ \| __ )  ___   __ _ _ __ __| |`,
		` | |\/| |\ V /| |_) |  _ \ / _ \ / _' | '__/ _' |`,
		` | |  | | \ / |  __/| |_) | (_) | (_| | | | (_| |`,
		` |_|  |_|  \_/|_|   |____/ \___/ \__,_|_|  \__,_|`,
	}
	fmt.Println()
	for _, line := range logo {
		fmt.Printf("%s%s%s\n", yellow, line, reset)
	}
	fmt.Println()
}

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "mvpboard.db", "SQLite database path")
	boardPw := flag.String("boardpw", "", "Board password (auto-generated if not set)")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	policy := flag.String("winner-policy", "always", "Preset winner consumption: always or preset-only")
	noLogo := flag.Bool("nologo", false, "Skip the startup banner")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `MVPBoard - Split-Flap Name Picker

Usage:
  mvpboard [options]

Options:
  -port int           HTTP server port (default 8080)
  -db string          SQLite database path (default "mvpboard.db")
  -boardpw str        Board password (auto-generated if not set)
  -loglevel str       Log level: debug, info, warn, error (default "info")
  -winner-policy str  Preset consumption: always or preset-only (default "always")
  -nologo             Skip the startup banner
  -version            Show version and exit
  -help               Show this help message

Examples:
  mvpboard                          # Run on port 8080 with mvpboard.db
  mvpboard -port 80                 # Run on port 80
  mvpboard -db /data/class.db       # Use custom database path
  mvpboard -boardpw secret123       # Use specific board password
  mvpboard -winner-policy preset-only

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("mvpboard %s\n", version)
		os.Exit(0)
	}

	if !*noLogo {
		showLogo()
	}

	// Setup board authentication
	password := *boardPw
	if password == "" {
		password = auth.GeneratePassword()
	}
	boardAuth := auth.New(password)

	// Create logger with specified level
	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))

	cfg := app.Config{
		DBPath:            *dbPath,
		Addr:              fmt.Sprintf(":%d", *port),
		ConsumptionPolicy: *policy,
	}

	a, err := app.New(appLog, cfg, web.GetTemplatesFS(), web.GetStaticFS(), boardAuth)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}
	defer a.Close()

	appLog.Info("Board password", "password", password)
	fmt.Printf("%sScan the QR at %s/qr to open the board on another device%s\n", cyan, a.BoardURL(), reset)

	if err := a.Run(); err != nil {
		log.Fatal(err)
	}
}
