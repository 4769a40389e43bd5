package main

import (
	"context"
	stdlog "log"
	"math"
	"math/rand"
	"time"

	"github.com/fleetdash/fleetdash-go/pkg/client"
	"github.com/fleetdash/fleetdash-go/pkg/model"
)

// runSimulation periodically reports synthetic sensor readings over
// the socket until the context is cancelled.
func runSimulation(ctx context.Context, c *client.Client, interval time.Duration) {
	stdlog.Println("Simulation mode enabled")

	sock, err := c.Socket()
	if err != nil {
		stdlog.Printf("Simulation disabled: %v", err)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for tick := 0; ; tick++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			data := syntheticReading(tick)
			if err := sock.SendData(data); err != nil {
				stdlog.Printf("[SIM] send failed: %v", err)
				if err := sock.ReconnectWithBackoff(ctx, 5); err != nil {
					stdlog.Printf("[SIM] reconnect failed: %v", err)
					return
				}
				continue
			}
			stdlog.Printf("[SIM] reported %d readings", len(data.Readings))
		}
	}
}

// syntheticReading fabricates one data point: a slow temperature sine
// wave with noise plus a battery that drains over time.
func syntheticReading(tick int) *model.DeviceData {
	data := model.NewDeviceData(model.StatusOnline)

	temperature := 21.0 + 4*math.Sin(float64(tick)/20) + rand.Float64()
	battery := 100 - tick/10%100

	_ = data.AddReading("temperature", math.Round(temperature*10)/10)
	_ = data.AddReading("humidity", 40+rand.Intn(20))
	_ = data.AddReading("battery", battery)

	if battery < 15 {
		data.WithAlertLevel(model.AlertWarning)
	}
	return data
}
