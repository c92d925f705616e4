package app

import (
	"context"
	"fmt"
	"io/fs"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/mvpboard/internal/audio"
	"github.com/abrezinsky/mvpboard/internal/auth"
	"github.com/abrezinsky/mvpboard/internal/dispatch"
	"github.com/abrezinsky/mvpboard/internal/engine"
	"github.com/abrezinsky/mvpboard/internal/handlers"
	"github.com/abrezinsky/mvpboard/internal/logger"
	"github.com/abrezinsky/mvpboard/internal/repository"
	"github.com/abrezinsky/mvpboard/internal/services"
	"github.com/abrezinsky/mvpboard/internal/session"
	"github.com/abrezinsky/mvpboard/internal/websocket"
)

// Config holds application settings resolved at startup
type Config struct {
	DBPath            string
	Addr              string
	ConsumptionPolicy string
}

// App holds all application dependencies
type App struct {
	log            logger.Logger
	handlers       *handlers.Handlers
	repo           *repository.Repository
	addr           string
	cancelDispatch context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg Config, templatesFS, staticFS fs.FS, boardAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sess := session.New()

	// The hub exists before the services because everything broadcasts
	// through it; the snapshot source is wired in below.
	hub := websocket.New(log)
	hub.Start()

	player := audio.NewRemote(hub)
	eng := engine.New(log, clock, rng, hub, player)

	// Initialize services
	statsService := services.NewStatsService(log, repo)
	rankingService := services.NewRankingService(log, clock, repo, sess, statsService)
	pickerService := services.NewPickerService(log, clock, repo, sess, eng, rankingService, statsService,
		services.ParseConsumptionPolicy(cfg.ConsumptionPolicy))
	classService := services.NewClassService(log, clock, repo, sess, pickerService, rankingService, statsService)

	hub.SetPicker(pickerService)
	eng.SetRecorder(pickerService)
	statsService.SetBroadcaster(hub)
	rankingService.SetBroadcaster(hub)
	pickerService.SetBroadcaster(hub)
	classService.SetBroadcaster(hub)

	// Single dispatcher applies store changes back into the session
	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := dispatch.New(log, clock, repo, sess, pickerService, classService, rankingService, statsService)
	go dispatcher.Run(ctx)

	// Create static file server
	staticServer := handlers.NewStaticServer(staticFS)

	// The QR code needs a URL reachable from other devices on the LAN
	ip := getPreferredIP(realNetworkProvider{})
	boardURL := fmt.Sprintf("http://%s%s", ip, cfg.Addr)

	h, err := handlers.New(
		pickerService,
		classService,
		rankingService,
		statsService,
		templatesFS,
		staticServer,
		boardAuth,
		hub,
		log,
		boardURL,
	)
	if err != nil {
		cancel() // Clean up dispatcher goroutine
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		log:            log,
		handlers:       h,
		repo:           repo,
		addr:           cfg.Addr,
		cancelDispatch: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelDispatch != nil {
		a.cancelDispatch()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// BoardURL returns the LAN-reachable URL encoded into the QR code
func (a *App) BoardURL() string {
	return a.handlers.BoardURL
}

// Run starts the HTTP server
func (a *App) Run() error {
	a.log.Info("Server starting", "url", a.handlers.BoardURL)
	return http.ListenAndServe(a.addr, a.Router())
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
