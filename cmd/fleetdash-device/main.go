// Command fleetdash-device is a reference FleetDash device agent.
//
// The agent registers the device with the dashboard service, keeps a
// persistent WebSocket connection for data reporting and command
// delivery, and optionally simulates sensor readings.
//
// Usage:
//
//	fleetdash-device [flags]
//
// Flags:
//
//	-config string     Configuration file path (.json, .yaml)
//	-api-url string    Dashboard API base URL
//	-ws-url string     Dashboard WebSocket URL
//	-key string        Private key file path (created if missing)
//	-device-id string  Device identifier (generated if empty)
//	-state string      Agent state file, keeps identity across restarts
//	-type string       Device type reported on registration (default "sensor")
//	-name string       Human-readable device name
//	-log-file string   Event log file (CBOR)
//	-verbose           Mirror SDK events to the console
//	-simulate          Send synthetic sensor readings
//	-interval duration Interval between simulated readings (default 5s)
//	-interactive       Start the interactive command shell
//
// Examples:
//
//	# Register and stream simulated readings
//	fleetdash-device -api-url https://dash.example.com/api/v1 \
//	    -ws-url wss://dash.example.com/ws -simulate
//
//	# Use a config file and the interactive shell
//	fleetdash-device -config /etc/fleetdash/device.yaml -interactive
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetdash/fleetdash-go/cmd/fleetdash-device/interactive"
	"github.com/fleetdash/fleetdash-go/pkg/client"
	"github.com/fleetdash/fleetdash-go/pkg/config"
	"github.com/fleetdash/fleetdash-go/pkg/identity"
	"github.com/fleetdash/fleetdash-go/pkg/log"
	"github.com/fleetdash/fleetdash-go/pkg/model"
	"github.com/fleetdash/fleetdash-go/pkg/persistence"
	"github.com/fleetdash/fleetdash-go/pkg/wire"
)

// Flags holds the command-line configuration.
type Flags struct {
	ConfigFile string
	APIURL     string
	SocketURL  string
	KeyFile    string
	DeviceID   string
	StateFile  string

	DeviceType string
	DeviceName string

	LogFile     string
	Verbose     bool
	Simulate    bool
	Interval    time.Duration
	Interactive bool
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path (.json, .yaml)")
	flag.StringVar(&flags.APIURL, "api-url", "", "Dashboard API base URL")
	flag.StringVar(&flags.SocketURL, "ws-url", "", "Dashboard WebSocket URL")
	flag.StringVar(&flags.KeyFile, "key", "", "Private key file path (created if missing)")
	flag.StringVar(&flags.DeviceID, "device-id", "", "Device identifier (generated if empty)")
	flag.StringVar(&flags.StateFile, "state", "", "Agent state file, keeps identity across restarts")

	flag.StringVar(&flags.DeviceType, "type", "sensor", "Device type reported on registration")
	flag.StringVar(&flags.DeviceName, "name", "", "Human-readable device name")

	flag.StringVar(&flags.LogFile, "log-file", "", "Event log file (CBOR)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Mirror SDK events to the console")
	flag.BoolVar(&flags.Simulate, "simulate", false, "Send synthetic sensor readings")
	flag.DurationVar(&flags.Interval, "interval", 5*time.Second, "Interval between simulated readings")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Start the interactive command shell")
}

func main() {
	flag.Parse()
	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

	cfg, err := loadConfig()
	if err != nil {
		stdlog.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.KeyFile != "" {
		if err := ensureKeyFile(cfg.KeyFile); err != nil {
			stdlog.Fatalf("Failed to prepare key file: %v", err)
		}
	}

	var store *persistence.Store
	if flags.StateFile != "" {
		store = persistence.NewStore(flags.StateFile)
		state, err := store.Load()
		if err != nil {
			stdlog.Fatalf("Failed to load agent state: %v", err)
		}
		if state != nil && cfg.DeviceID == "" {
			cfg.WithDeviceID(state.DeviceID)
		}
	}

	logger, closeLogger, err := buildLogger()
	if err != nil {
		stdlog.Fatalf("Failed to open event log: %v", err)
	}
	defer closeLogger()

	commands := make(chan *wire.Envelope, 16)
	c, err := client.New(cfg, client.Options{
		Logger: logger,
		Handler: interactive.CommandSink(commands, func(env *wire.Envelope) {
			stdlog.Printf("[CMD] %s (id %s)", env.Type, env.ID)
		}),
	})
	if err != nil {
		stdlog.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	stdlog.Println("FleetDash Device Agent")
	stdlog.Println("======================")
	stdlog.Printf("Device ID: %s", c.DeviceID())
	stdlog.Printf("API URL:   %s", cfg.APIURL)
	if cfg.SocketURL != "" {
		stdlog.Printf("Socket:    %s", cfg.SocketURL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := &persistence.AgentState{DeviceID: c.DeviceID()}
	if store != nil {
		if err := store.Save(state); err != nil {
			stdlog.Printf("Warning: failed to save agent state: %v", err)
		}
	}

	// Register (idempotent on the service side for a known device).
	info := &model.DeviceInfo{
		DeviceType:      flags.DeviceType,
		Name:            deviceName(c.DeviceID()),
		FirmwareVersion: "1.0.0",
	}
	if resp, err := c.Devices().Register(ctx, c.DeviceID(), info); err != nil {
		stdlog.Printf("Warning: registration failed: %v", err)
	} else {
		stdlog.Printf("Registered (status: %s)", resp.Status)
		state.Registered = true
		state.RegisteredAt = time.Now()
		state.APIKey = resp.APIKey
		if store != nil {
			if err := store.Save(state); err != nil {
				stdlog.Printf("Warning: failed to save agent state: %v", err)
			}
		}
	}

	if cfg.SocketURL != "" {
		sock, err := c.Socket()
		if err != nil {
			stdlog.Fatalf("Socket unavailable: %v", err)
		}
		if err := sock.ReconnectWithBackoff(ctx, 5); err != nil {
			stdlog.Fatalf("Failed to connect: %v", err)
		}
		stdlog.Println("Connected")
	}

	if flags.Simulate && !flags.Interactive {
		go runSimulation(ctx, c, flags.Interval)
	}

	if flags.Interactive {
		shell, err := interactive.New(c, interactive.Config{
			Interval: flags.Interval,
			Commands: commands,
		})
		if err != nil {
			stdlog.Fatalf("Failed to start shell: %v", err)
		}
		if flags.Simulate {
			shell.StartSimulation()
		}
		shell.Run(ctx, cancel)
	} else {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		stdlog.Printf("Received signal: %v", sig)
	}

	stdlog.Println("Shutting down...")
	if err := c.Devices().SendStatus(context.Background(), c.DeviceID(), model.StatusOffline); err != nil {
		stdlog.Printf("Warning: failed to report offline status: %v", err)
	}
	if store != nil {
		state.LastStatus = model.StatusOffline
		if err := store.Save(state); err != nil {
			stdlog.Printf("Warning: failed to save agent state: %v", err)
		}
	}
}

// ensureKeyFile generates a fresh signing key at path when no key file
// exists yet.
func ensureKeyFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate signing key: %w", err)
	}
	pem, err := identity.EncodePrivateKeyPEM(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, pem, 0o600); err != nil {
		return err
	}
	stdlog.Printf("Generated new signing key at %s", path)
	return nil
}

// loadConfig merges the config file, environment and flags, in
// ascending priority.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	switch {
	case flags.ConfigFile != "":
		cfg, err = config.FromFile(flags.ConfigFile)
	case os.Getenv("FLEETDASH_API_URL") != "":
		cfg, err = config.FromEnv()
	default:
		cfg = config.New(flags.APIURL)
	}
	if err != nil {
		return nil, err
	}

	if flags.APIURL != "" {
		cfg.APIURL = flags.APIURL
	}
	if flags.SocketURL != "" {
		cfg.WithSocketURL(flags.SocketURL)
	}
	if flags.KeyFile != "" {
		cfg.WithPrivateKeyFile(flags.KeyFile)
	}
	if flags.DeviceID != "" {
		cfg.WithDeviceID(flags.DeviceID)
	}
	return cfg, cfg.Validate()
}

// buildLogger assembles the event logger from the log flags: a CBOR
// file logger, a console mirror, neither or both.
func buildLogger() (log.Logger, func(), error) {
	var loggers []log.Logger
	closeLogger := func() {}

	if flags.LogFile != "" {
		fileLogger, err := log.NewFileLogger(flags.LogFile)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fileLogger)
		closeLogger = func() { fileLogger.Close() }
	}
	if flags.Verbose {
		loggers = append(loggers, log.NewSlogAdapter(slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	switch len(loggers) {
	case 0:
		return nil, closeLogger, nil
	case 1:
		return loggers[0], closeLogger, nil
	default:
		return log.NewMultiLogger(loggers...), closeLogger, nil
	}
}

func deviceName(deviceID string) string {
	if flags.DeviceName != "" {
		return flags.DeviceName
	}
	return "FleetDash " + flags.DeviceType + " " + deviceID
}
