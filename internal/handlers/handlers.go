package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/mvpboard/internal/auth"
	"github.com/abrezinsky/mvpboard/internal/services"
	"github.com/abrezinsky/mvpboard/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Picker       services.PickerServicer
	Class        services.ClassServicer
	Ranking      services.RankingServicer
	Stats        services.StatsServicer
	Auth         *auth.Auth
	Hub          *websocket.Hub
	Log          HTTPLogger
	BoardURL     string // absolute URL encoded into the QR code
	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	picker services.PickerServicer,
	class services.ClassServicer,
	rankingSvc services.RankingServicer,
	stats services.StatsServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	boardAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
	boardURL string,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Picker:       picker,
		Class:        class,
		Ranking:      rankingSvc,
		Stats:        stats,
		Auth:         boardAuth,
		Hub:          hub,
		Log:          log,
		BoardURL:     boardURL,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(
	picker services.PickerServicer,
	class services.ClassServicer,
	rankingSvc services.RankingServicer,
	stats services.StatsServicer,
) *Handlers {
	// Create a test auth with a known password
	testAuth := auth.New("test-password")
	return &Handlers{
		Picker:   picker,
		Class:    class,
		Ranking:  rankingSvc,
		Stats:    stats,
		Auth:     testAuth,
		Log:      NoopHTTPLogger{},
		BoardURL: "http://127.0.0.1:8080",
		// templates left nil - API endpoints don't use templates
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}

	return t, nil
}
