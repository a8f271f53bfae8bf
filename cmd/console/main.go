package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/config"
	"github.com/star-emergency/alert-gateway/pkg/monitor"
)

// The console is the operator-facing monitor: it merges the snapshot poll and
// the push feed into one canonical alert list, sounds the alarm on new
// alerts, and forwards select/complete actions back to the gateway.

func main() {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if level, err := logrus.ParseLevel(logLevelStr); err == nil {
		logrus.SetLevel(level)
	}

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := monitor.NewHTTPNotifier(cfg.Monitor.ServerURL)
	reconciler := monitor.NewReconciler(monitor.ConsoleAlarm{}, notifier)

	fetcher := monitor.NewSnapshotFetcher(
		cfg.Monitor.ServerURL,
		time.Duration(cfg.Monitor.PollIntervalSeconds)*time.Second,
		reconciler,
	)
	listener, err := monitor.NewEventListener(
		cfg.Monitor.ServerURL,
		time.Duration(cfg.Monitor.ReconnectSeconds)*time.Second,
		reconciler,
	)
	if err != nil {
		logrus.Fatalf("Failed to create event listener: %v", err)
	}

	go fetcher.Run(ctx)
	go listener.Run(ctx)
	go commandLoop(reconciler)

	logrus.Infof("Monitoring console connected to %s", cfg.Monitor.ServerURL)
	logrus.Info("Commands: list | select <alert_id> | complete <alert_id>")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down console...")
	cancel()
}

// commandLoop reads operator actions from stdin and forwards them to the
// reconciler.
func commandLoop(reconciler *monitor.Reconciler) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "list":
			printAlerts(reconciler)
		case "select":
			if len(fields) < 2 {
				fmt.Println("usage: select <alert_id>")
				continue
			}
			reconciler.SelectAlert(fields[1])
			if alert, ok := reconciler.Selected(); ok {
				fmt.Printf("Handling alert %s: %s %s (%s), phones %s, at %.5f,%.5f\n",
					alert.AlertID, alert.FirstName, alert.LastName,
					alert.AccountName, alert.PhoneNumbers, alert.Latitude, alert.Longitude)
			}
		case "complete":
			if len(fields) < 2 {
				fmt.Println("usage: complete <alert_id>")
				continue
			}
			reconciler.CompleteAlert(fields[1])
			fmt.Printf("Alert %s completed\n", fields[1])
		default:
			fmt.Println("Commands: list | select <alert_id> | complete <alert_id>")
		}
	}
}

func printAlerts(reconciler *monitor.Reconciler) {
	alerts := reconciler.CurrentAlerts()
	if len(alerts) == 0 {
		fmt.Println("No open alerts")
		return
	}
	for _, alert := range alerts {
		fmt.Printf("%-36s  %-10s  %-8s  acct %s  %s\n",
			alert.AlertID, alert.Timestamp.Local().Format("15:04:05"),
			alert.Status, alert.AccountNumber, alert.AccountName)
	}
}
