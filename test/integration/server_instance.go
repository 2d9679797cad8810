package integration

import (
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/doodlesbykumbi/gateway-admin/pkg/config"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/endpoints"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/middleware"
)

// ServerInstance represents a running server for the test suite
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	listener      net.Listener
	serverProcess *exec.Cmd // For binary mode
	cancel        context.CancelFunc
}

// StartServer starts a server against tc's database, in-process or from
// tc.BinaryPath.
func StartServer(tc *TestContext) (*ServerInstance, error) {
	if tc.BinaryPath != "" {
		return startBinaryServerInstance(tc)
	}
	return startInlineServerInstance(tc)
}

func startInlineServerInstance(tc *TestContext) (*ServerInstance, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.AuthEnabled = true
	cfg.MetricsEnabled = true
	cfg.StrictPreferenceKeys = true

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}
	port := strconv.Itoa(listener.Addr().(*net.TCPAddr).Port)

	s, err := server.NewServer(cfg, tc.DB, tc.Cipher, "127.0.0.1", port,
		server.WithJWTAuthenticator(middleware.NewJWTAuthenticator(tc.JWTSecret, "", "")),
		server.WithRegistry(prometheus.NewRegistry()),
	)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	endpoints.RegisterAll(s)

	instance := &ServerInstance{
		Server:    s,
		ServerURL: "http://127.0.0.1:" + port,
		listener:  listener,
	}

	go func() {
		_ = s.StartWithListener(listener)
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// startBinaryServerInstance starts a server using the gatewayctl binary
func startBinaryServerInstance(tc *TestContext) (*ServerInstance, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	port := strconv.Itoa(listener.Addr().(*net.TCPAddr).Port)
	_ = listener.Close()

	ctx, cancel := context.WithCancel(context.Background())

	// Use --no-migrate since migrations already ran in the test setup
	cmd := exec.CommandContext(ctx, tc.BinaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", port)
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+tc.DatabaseURL,
		"GATEWAY_DATA_KEY="+base64.StdEncoding.EncodeToString(tc.DataKey),
		"GATEWAY_JWT_SECRET="+string(tc.JWTSecret),
		"GATEWAY_AUTH_ENABLED=true",
		"GATEWAY_STRICT_PREFERENCE_KEYS=true",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     "http://127.0.0.1:" + port,
		serverProcess: cmd,
		cancel:        cancel,
	}

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = si.Server.Shutdown(ctx)
		cancel()
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}

// waitForServer polls the server until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}
