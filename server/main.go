package main

import (
	"checkout-flow/api"
	"checkout-flow/codec"
	"checkout-flow/config"
	"checkout-flow/logging"
	"checkout-flow/widget"

	"go.temporal.io/sdk/client"
)

func main() {
	logger := logging.NewLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err)
	}
	if cfg.GeneratedKey {
		logger.Warn("using generated encryption key; workflows started here are unreadable by a worker with a different key")
	}

	dataConverter, err := codec.NewEncryptionDataConverter(cfg.EncryptionKey)
	if err != nil {
		logger.Fatalw("failed to create encryption data converter", "error", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:      cfg.TemporalAddress,
		DataConverter: dataConverter,
		Logger:        logging.NewTemporalLogger(logger),
	})
	if err != nil {
		logger.Fatalw("unable to create Temporal client", "error", err)
	}
	defer c.Close()

	srv := api.NewServer(cfg, c, widget.UserAgentDetector{}, logger)
	if err := srv.Serve(srv.Mount()); err != nil {
		logger.Fatal(err)
	}
}
