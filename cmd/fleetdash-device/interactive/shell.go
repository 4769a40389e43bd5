// Package interactive provides the interactive command-line shell for
// the FleetDash device agent.
package interactive

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/fleetdash/fleetdash-go/pkg/client"
	"github.com/fleetdash/fleetdash-go/pkg/model"
	"github.com/fleetdash/fleetdash-go/pkg/transport"
	"github.com/fleetdash/fleetdash-go/pkg/webhook"
	"github.com/fleetdash/fleetdash-go/pkg/wire"
)

// CommandSink builds a socket handler that forwards inbound commands
// to ch without blocking the receiver worker. Non-command envelopes
// and overflow fall through to the given function.
func CommandSink(ch chan<- *wire.Envelope, fallthru func(*wire.Envelope)) transport.Handler {
	return transport.HandlerFunc(func(env *wire.Envelope) {
		if env.Type == wire.TypeCommand {
			select {
			case ch <- env:
				return
			default:
			}
		}
		if fallthru != nil {
			fallthru(env)
		}
	})
}

// Config configures the shell.
type Config struct {
	// Interval between simulated readings.
	Interval time.Duration

	// Commands receives inbound command envelopes, typically fed by a
	// CommandSink handler. Optional.
	Commands <-chan *wire.Envelope
}

// Shell handles interactive mode for fleetdash-device.
type Shell struct {
	client *client.Client
	config Config
	rl     *readline.Instance

	// Simulation control
	simCancel  context.CancelFunc
	simRunning bool
}

// New creates a new interactive shell.
func New(c *client.Client, cfg Config) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "device> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}

	return &Shell{
		client: c,
		config: cfg,
		rl:     rl,
	}, nil
}

// Run starts the interactive command loop. It returns when the user
// quits or the context is cancelled.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer s.StopSimulation()

	if s.config.Commands != nil {
		go s.printCommands(ctx)
	}

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "status":
			s.cmdStatus()

		case "send":
			s.cmdSend(ctx, args)

		case "report":
			s.cmdReport(ctx, args)

		case "devices", "d":
			s.cmdDevices(ctx, args)

		case "webhooks", "wh":
			s.cmdWebhooks(ctx)

		case "webhook-add":
			s.cmdWebhookAdd(ctx, args)

		case "webhook-del":
			s.cmdWebhookDel(ctx, args)

		case "webhook-test":
			s.cmdWebhookTest(ctx, args)

		case "connect":
			s.cmdConnect(ctx)

		case "disconnect":
			s.cmdDisconnect()

		case "start", "sim-start":
			s.cmdStart()

		case "stop", "sim-stop":
			s.cmdStop()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
FleetDash Device Commands:
  Reporting:
    send <name> <value>   - Send one sensor reading over the socket
    report <status>       - Report device status (online, offline, maintenance, error)

  Fleet:
    devices [limit]       - List registered devices
    webhooks              - List webhooks for this device
    webhook-add <url> <events...> - Register a webhook
    webhook-del <id>      - Delete a webhook
    webhook-test <id>     - Trigger a test delivery

  Connection:
    connect               - (Re)connect the socket with backoff
    disconnect            - Close the socket connection
    status                - Show agent status

  Simulation:
    start                 - Start sending synthetic readings
    stop                  - Stop the simulation

  General:
    help                  - Show this help
    quit                  - Exit`)
}

// printCommands mirrors inbound commands to the console without
// clobbering the prompt.
func (s *Shell) printCommands(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-s.config.Commands:
			if !ok {
				return
			}
			fmt.Fprintf(s.rl.Stdout(), "[CMD] %s (id %s): %v\n", env.Type, env.ID, env.Payload)
		}
	}
}

func (s *Shell) cmdStatus() {
	out := s.rl.Stdout()
	fmt.Fprintln(out, "\nAgent Status")
	fmt.Fprintln(out, "-------------------------------------------")
	fmt.Fprintf(out, "  Device ID:  %s\n", s.client.DeviceID())
	fmt.Fprintf(out, "  Public key: %s\n", s.client.Identity().PublicKeyBase64())

	connected := "no socket configured"
	if sock, err := s.client.Socket(); err == nil {
		connected = "disconnected"
		if sock.IsConnected() {
			connected = "connected"
		}
	}
	fmt.Fprintf(out, "  Socket:     %s\n", connected)

	simStatus := "stopped"
	if s.simRunning {
		simStatus = "running"
	}
	fmt.Fprintf(out, "  Simulation: %s\n\n", simStatus)
}

func (s *Shell) cmdSend(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: send <name> <value>")
		fmt.Fprintln(s.rl.Stdout(), "  Example: send temperature 21.5")
		return
	}

	sock, err := s.client.Socket()
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}

	data := model.NewDeviceData(model.StatusOnline)
	if err := data.AddReading(args[0], parseValue(strings.Join(args[1:], " "))); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid reading: %v\n", err)
		return
	}

	if err := sock.SendData(data); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Send failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "OK")
}

func (s *Shell) cmdReport(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: report <online|offline|maintenance|error>")
		return
	}

	status := model.DeviceStatus(args[0])
	if !status.IsValid() {
		fmt.Fprintf(s.rl.Stdout(), "Unknown status: %s\n", args[0])
		return
	}

	if err := s.client.Devices().SendStatus(ctx, s.client.DeviceID(), status); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Failed to report status: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "OK")
}

func (s *Shell) cmdDevices(ctx context.Context, args []string) {
	limit := 0
	if len(args) > 0 {
		limit, _ = strconv.Atoi(args[0])
	}

	devices, err := s.client.Devices().List(ctx, limit, 0)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Failed to list devices: %v\n", err)
		return
	}
	if len(devices) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No devices registered")
		return
	}

	fmt.Fprintf(s.rl.Stdout(), "\nRegistered Devices (%d):\n", len(devices))
	fmt.Fprintln(s.rl.Stdout(), "-------------------------------------------")
	for _, d := range devices {
		fmt.Fprintf(s.rl.Stdout(), "  %-24s %-16s fw %s\n", d.Name, d.DeviceType, d.FirmwareVersion)
	}
	fmt.Fprintln(s.rl.Stdout())
}

func (s *Shell) cmdWebhooks(ctx context.Context) {
	hooks, err := s.client.Webhooks().List(ctx, s.client.DeviceID())
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Failed to list webhooks: %v\n", err)
		return
	}
	if len(hooks) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No webhooks registered")
		return
	}

	for _, h := range hooks {
		events := make([]string, len(h.Events))
		for i, e := range h.Events {
			events[i] = string(e)
		}
		fmt.Fprintf(s.rl.Stdout(), "  %s  %s  [%s]\n", h.ID, h.URL, strings.Join(events, ", "))
	}
}

func (s *Shell) cmdWebhookAdd(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: webhook-add <url> <events...>")
		fmt.Fprintln(s.rl.Stdout(), "  Events: data_update, status_change, alert, config_change")
		return
	}

	events := make([]webhook.EventType, len(args)-1)
	for i, e := range args[1:] {
		events[i] = webhook.EventType(e)
	}

	hook, err := s.client.Webhooks().Register(ctx, args[0], s.client.DeviceID(), events)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Failed to register webhook: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Registered webhook %s (secret: %s)\n", hook.ID, hook.Secret)
}

func (s *Shell) cmdWebhookDel(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: webhook-del <id>")
		return
	}
	if err := s.client.Webhooks().Delete(ctx, args[0]); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Failed to delete webhook: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "Webhook deleted")
}

func (s *Shell) cmdWebhookTest(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: webhook-test <id>")
		return
	}
	if err := s.client.Webhooks().Test(ctx, args[0]); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Webhook test failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "Test delivery triggered")
}

func (s *Shell) cmdConnect(ctx context.Context) {
	sock, err := s.client.Socket()
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if sock.IsConnected() {
		fmt.Fprintln(s.rl.Stdout(), "Already connected")
		return
	}
	if err := sock.ReconnectWithBackoff(ctx, 5); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Connect failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "Connected")
}

func (s *Shell) cmdDisconnect() {
	sock, err := s.client.Socket()
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if !sock.IsConnected() {
		fmt.Fprintln(s.rl.Stdout(), "Not connected")
		return
	}
	sock.Close()
	fmt.Fprintln(s.rl.Stdout(), "Disconnected")
}

func (s *Shell) cmdStart() {
	if s.simRunning {
		fmt.Fprintln(s.rl.Stdout(), "Simulation already running")
		return
	}
	s.StartSimulation()
	fmt.Fprintln(s.rl.Stdout(), "Simulation started")
}

func (s *Shell) cmdStop() {
	if !s.simRunning {
		fmt.Fprintln(s.rl.Stdout(), "Simulation not running")
		return
	}
	s.StopSimulation()
	fmt.Fprintln(s.rl.Stdout(), "Simulation stopped")
}

// StartSimulation starts the background simulation loop.
func (s *Shell) StartSimulation() {
	if s.simRunning {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.simCancel = cancel
	s.simRunning = true
	go s.runSimulation(ctx)
}

// StopSimulation stops the background simulation loop.
func (s *Shell) StopSimulation() {
	if !s.simRunning {
		return
	}
	if s.simCancel != nil {
		s.simCancel()
	}
	s.simRunning = false
}

// runSimulation sends a synthetic reading every interval.
func (s *Shell) runSimulation(ctx context.Context) {
	sock, err := s.client.Socket()
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Simulation disabled: %v\n", err)
		return
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for tick := 0; ; tick++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			data := model.NewDeviceData(model.StatusOnline)
			_ = data.AddReading("temperature", 20+tick%8)
			_ = data.AddReading("uptime", tick)
			if err := sock.SendData(data); err != nil {
				fmt.Fprintf(s.rl.Stdout(), "[SIM] send failed: %v\n", err)
			}
		}
	}
}

// parseValue interprets a reading value as int, float, bool or string.
func parseValue(raw string) any {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return strings.Trim(raw, "\"'")
}
