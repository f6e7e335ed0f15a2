// Package main provides a dev CLI that subscribes to a bridge and prints
// every transport event it receives.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"

	"github.com/hsaj/bridge/internal/app/transport"
	"github.com/hsaj/bridge/internal/infra/logger"
)

var (
	app       = kingpin.New("bridge-tail", "Subscribe to a bridge and print transport events")
	url       = app.Flag("url", "Bridge WebSocket URL").Default("ws://localhost:8080/events").String()
	reconnect = app.Flag("reconnect", "Delay before reconnecting after a dropped connection").Default("2s").Duration()
	verbose   = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{Output: "stderr", Level: level}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		<-sigCh
		close(done)
	}()

	for {
		if err := tail(*url, done); err != nil {
			zlog.Warn().Err(err).Msgf("Connection lost, reconnecting in %s", *reconnect)
		}
		select {
		case <-done:
			return
		case <-time.After(*reconnect):
		}
	}
}

// tail reads frames from one connection until it breaks or done closes.
func tail(url string, done <-chan struct{}) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	zlog.Info().Str("url", url).Msg("Connected to bridge")

	frames := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			frames <- data
		}
	}()

	for {
		select {
		case <-done:
			return nil
		case err := <-readErr:
			return err
		case data := <-frames:
			printFrame(data)
		}
	}
}

func printFrame(data []byte) {
	var env transport.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type != transport.EnvelopeType {
		zlog.Debug().Str("frame", string(data)).Msg("Skipping non-transport frame")
		return
	}
	ev := env.Event
	switch ev.Event {
	case transport.EventTrackStart:
		fmt.Printf("%s  %s  %s — %s [%s]\n", ev.Timestamp, ev.Event, ev.Artist, ev.Title, ev.TrackID)
	default:
		fmt.Printf("%s  %s  [%s]\n", ev.Timestamp, ev.Event, ev.TrackID)
	}
}
