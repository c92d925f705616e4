package app

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/abrezinsky/mvpboard/internal/auth"
	"github.com/abrezinsky/mvpboard/internal/logger"
)

func createTestTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html": &fstest.MapFile{
			Data: []byte(`<html><body>Board</body></html>`),
		},
	}
}

func createTestApp(t *testing.T) *App {
	t.Helper()
	log := logger.New()
	boardAuth := auth.New("test-password")

	app, err := New(log, Config{DBPath: ":memory:", Addr: ":8080"}, createTestTemplatesFS(), fstest.MapFS{}, boardAuth)
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestNew_InitializesApp(t *testing.T) {
	log := logger.New()
	boardAuth := auth.New("test-password")

	app, err := New(log, Config{DBPath: ":memory:", Addr: ":8080"}, createTestTemplatesFS(), fstest.MapFS{}, boardAuth)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if app == nil {
		t.Fatal("expected app to be created")
	}
	defer app.Close()
	if app.handlers == nil {
		t.Error("expected handlers to be initialized")
	}
	if app.repo == nil {
		t.Error("expected repo to be initialized")
	}
	if app.cancelDispatch == nil {
		t.Error("expected cancelDispatch to be set")
	}
}

func TestNew_FailsWithBadDBPath(t *testing.T) {
	log := logger.New()
	boardAuth := auth.New("test-password")

	_, err := New(log, Config{DBPath: "/nonexistent/path/db.sqlite", Addr: ":8080"}, createTestTemplatesFS(), fstest.MapFS{}, boardAuth)

	if err == nil {
		t.Error("expected error for invalid db path")
	}
}

func TestNew_FailsWithMissingTemplates(t *testing.T) {
	log := logger.New()
	boardAuth := auth.New("test-password")

	_, err := New(log, Config{DBPath: ":memory:", Addr: ":8080"}, fstest.MapFS{}, fstest.MapFS{}, boardAuth)

	if err == nil {
		t.Error("expected error for missing templates")
	}
}

func TestApp_Router_ReturnsRouter(t *testing.T) {
	app := createTestApp(t)

	if app.Router() == nil {
		t.Fatal("expected router to be returned")
	}
}

func TestApp_Router_ServesRequests(t *testing.T) {
	app := createTestApp(t)
	server := httptest.NewServer(app.Router())
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /, got %d", resp.StatusCode)
	}
}

func TestApp_BoardURL(t *testing.T) {
	app := createTestApp(t)

	url := app.BoardURL()
	if url == "" {
		t.Error("expected a board URL")
	}
	if url[:7] != "http://" {
		t.Errorf("expected an http URL, got %s", url)
	}
}

func TestApp_Close_IsIdempotent(t *testing.T) {
	app := createTestApp(t)

	app.Close()
	app.Close()
}

func TestGetPreferredIP_ReturnsValidIP(t *testing.T) {
	ip := getPreferredIP(realNetworkProvider{})

	if ip == "" {
		t.Error("expected non-empty IP")
	}
	if ip != "localhost" {
		parsed := net.ParseIP(ip)
		if parsed == nil {
			t.Errorf("expected valid IP, got: %s", ip)
		}
		if parsed.To4() == nil {
			t.Errorf("expected IPv4 address, got: %s", ip)
		}
	}
}

func TestIsPrivate172(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.15.0.1", false},
		{"172.32.0.1", false},
		{"192.168.1.1", false},
		{"10.0.0.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := isPrivate172(net.ParseIP(tt.ip)); got != tt.expected {
				t.Errorf("isPrivate172(%s) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}

func TestIsPrivate172_NilIP(t *testing.T) {
	if isPrivate172(nil) {
		t.Error("isPrivate172(nil) = true, want false")
	}
}

func TestIsPrivate172_IPv6(t *testing.T) {
	if isPrivate172(net.ParseIP("::1")) {
		t.Error("isPrivate172(::1) = true, want false")
	}
	if isPrivate172(net.ParseIP("fe80::1")) {
		t.Error("isPrivate172(fe80::1) = true, want false")
	}
}

// mockInterface implements networkInterface for testing
type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (m mockInterface) Flags() net.Flags {
	return m.flags
}

func (m mockInterface) Addrs() ([]net.Addr, error) {
	return m.addrs, m.err
}

// mockNetworkProvider implements networkProvider for testing
type mockNetworkProvider struct {
	interfaces []networkInterface
	err        error
}

func (m mockNetworkProvider) Interfaces() ([]networkInterface, error) {
	return m.interfaces, m.err
}

func TestGetPreferredIP_NetworkError(t *testing.T) {
	provider := mockNetworkProvider{err: net.ErrClosed}

	if ip := getPreferredIP(provider); ip != "localhost" {
		t.Errorf("expected 'localhost' on error, got: %s", ip)
	}
}

func TestGetPreferredIP_InterfaceAddrsError(t *testing.T) {
	provider := mockNetworkProvider{
		interfaces: []networkInterface{
			mockInterface{flags: net.FlagUp, err: net.ErrClosed},
		},
	}

	if ip := getPreferredIP(provider); ip != "localhost" {
		t.Errorf("expected 'localhost' when Addrs() fails, got: %s", ip)
	}
}

func TestGetPreferredIP_PrefersPrivateAddress(t *testing.T) {
	provider := mockNetworkProvider{
		interfaces: []networkInterface{
			mockInterface{
				flags: net.FlagUp,
				addrs: []net.Addr{
					&net.IPNet{IP: net.ParseIP("8.8.8.8"), Mask: net.CIDRMask(24, 32)},
					&net.IPNet{IP: net.ParseIP("192.168.1.50"), Mask: net.CIDRMask(24, 32)},
				},
			},
		},
	}

	if ip := getPreferredIP(provider); ip != "192.168.1.50" {
		t.Errorf("expected '192.168.1.50', got: %s", ip)
	}
}

func TestGetPreferredIP_WithIPAddr(t *testing.T) {
	provider := mockNetworkProvider{
		interfaces: []networkInterface{
			mockInterface{
				flags: net.FlagUp,
				addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("192.168.1.100")}},
			},
		},
	}

	if ip := getPreferredIP(provider); ip != "192.168.1.100" {
		t.Errorf("expected '192.168.1.100', got: %s", ip)
	}
}

func TestGetPreferredIP_PublicIPFallback(t *testing.T) {
	provider := mockNetworkProvider{
		interfaces: []networkInterface{
			mockInterface{
				flags: net.FlagUp,
				addrs: []net.Addr{&net.IPNet{IP: net.ParseIP("8.8.8.8"), Mask: net.CIDRMask(24, 32)}},
			},
		},
	}

	if ip := getPreferredIP(provider); ip != "8.8.8.8" {
		t.Errorf("expected '8.8.8.8' (public IP fallback), got: %s", ip)
	}
}

func TestGetPreferredIP_SkipsLoopbackAndDownInterfaces(t *testing.T) {
	provider := mockNetworkProvider{
		interfaces: []networkInterface{
			mockInterface{
				flags: net.FlagUp | net.FlagLoopback,
				addrs: []net.Addr{&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)}},
			},
			mockInterface{
				flags: 0, // down
				addrs: []net.Addr{&net.IPNet{IP: net.ParseIP("10.0.0.5"), Mask: net.CIDRMask(24, 32)}},
			},
			mockInterface{
				flags: net.FlagUp,
				addrs: []net.Addr{
					&net.IPNet{IP: net.ParseIP("127.0.0.2"), Mask: net.CIDRMask(8, 32)},
					&net.IPNet{IP: net.ParseIP("192.168.1.50"), Mask: net.CIDRMask(24, 32)},
				},
			},
		},
	}

	if ip := getPreferredIP(provider); ip != "192.168.1.50" {
		t.Errorf("expected '192.168.1.50', got: %s", ip)
	}
}

func TestGetPreferredIP_SkipsIPv6(t *testing.T) {
	provider := mockNetworkProvider{
		interfaces: []networkInterface{
			mockInterface{
				flags: net.FlagUp,
				addrs: []net.Addr{&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)}},
			},
		},
	}

	if ip := getPreferredIP(provider); ip != "localhost" {
		t.Errorf("expected 'localhost' with only IPv6 addresses, got: %s", ip)
	}
}

func TestRealNetworkProvider_Interfaces(t *testing.T) {
	provider := realNetworkProvider{}
	ifaces, err := provider.Interfaces()
	if err != nil {
		t.Logf("net.Interfaces() failed (system-dependent): %v", err)
		return
	}

	if len(ifaces) == 0 {
		t.Error("expected at least one network interface")
	}
	for i, iface := range ifaces {
		_ = iface.Flags()
		if _, err := iface.Addrs(); err != nil {
			t.Logf("interface %d Addrs() failed: %v", i, err)
		}
	}
}
