// Command watch follows a single order until it reaches a terminal state or
// its payment window runs out, printing every transition. Useful when
// investigating a stuck order without opening the storefront.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foxgate/internal/foxpays"
	"foxgate/internal/gateway"
	"foxgate/internal/logger"
	"foxgate/internal/poller"
)

func main() {
	var (
		orderID  = flag.String("order", "", "provider order id to watch")
		baseURL  = flag.String("url", os.Getenv("FOXPAYS_BASE_URL"), "provider base URL")
		token    = flag.String("token", os.Getenv("FOXPAYS_ACCESS_TOKEN"), "provider access token")
		interval = flag.Duration("interval", poller.DefaultPollInterval, "poll interval")
	)
	flag.Parse()

	if *orderID == "" {
		log.Fatal("-order is required")
	}

	zaplog, err := logger.New("warn")
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zaplog.Sync()

	client, err := foxpays.New(foxpays.Credentials{BaseURL: *baseURL, AccessToken: *token})
	if err != nil {
		log.Fatalf("provider client: %v", err)
	}
	svc := gateway.NewService(zaplog, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := poller.New(func(ctx context.Context) (*gateway.StatusSnapshot, error) {
		return svc.OrderStatus(ctx, client, *orderID)
	}, poller.WithPollInterval(*interval), poller.WithLogger(zaplog))
	p.Start(ctx)
	defer p.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-stop:
			return
		case st := <-p.Updates():
			printState(st)
		case <-p.Done():
			st := p.Snapshot()
			printState(st)
			if st.IsExpired && !st.Terminal {
				fmt.Println("payment window expired; final outcome needs a fresh fetch")
			}
			return
		}
	}
}

func printState(st poller.State) {
	if st.LastErr != nil {
		fmt.Printf("%s  fetch error: %v (retrying)\n", time.Now().Format(time.TimeOnly), st.LastErr)
		return
	}
	fmt.Printf("%s  status=%s sub_status=%s remaining=%ds expired=%v\n",
		time.Now().Format(time.TimeOnly), st.Status, st.SubStatus, st.RemainingSeconds, st.IsExpired)
}
