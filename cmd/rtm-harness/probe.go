package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sbasestarter/rtm-harness/config"
	"github.com/sbasestarter/rtm-harness/internal/transport"
	"github.com/sbasestarter/rtm-harness/rtm"
	"github.com/sgostarter/i/l"
	"github.com/spf13/cobra"
)

const probeTimeout = 10 * time.Second

type probeResult struct {
	op        string
	requestID uint64
	code      rtm.ErrorCode
}

func newProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Log in to a running harness, subscribe and publish once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadClientConfig(file)
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			return probe(cmd.Context(), cfg)
		},
	}
}

func probe(ctx context.Context, cfg *config.ClientConfig) error {
	logger := cfg.Logger

	dialCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	conn, err := transport.Dial(dialCtx, cfg.ServerURL, nil, logger)
	if err != nil {
		return errors.Wrap(err, "dial")
	}

	defer conn.Close()

	results := make(chan probeResult, 16)

	handler := &rtm.HandlerFuncs{
		Message: func(event *rtm.MessageEvent) {
			logger.WithFields(l.StringField("channel", event.ChannelName), l.StringField("publisher", event.Publisher)).
				Info("Message")
		},
		LinkState: func(event *rtm.LinkStateEvent) {
			logger.WithFields(l.StringField("state", fmt.Sprint(event.CurrentState))).Debug("LinkState")
		},
		Login: func(requestID uint64, errorCode rtm.ErrorCode) {
			results <- probeResult{op: "Login", requestID: requestID, code: errorCode}
		},
		Result: func(op string, requestID uint64, errorCode rtm.ErrorCode) {
			results <- probeResult{op: op, requestID: requestID, code: errorCode}
		},
	}

	client, err := rtm.NewClient(rtm.Config{
		AppID:        cfg.AppID,
		UserID:       cfg.UserID,
		EventHandler: handler,
		Backend:      conn,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Release()
	}()

	steps := []struct {
		op   string
		call func() (uint64, error)
	}{
		{"Login", func() (uint64, error) { return client.Login(cfg.Token) }},
		{"Subscribe", func() (uint64, error) { return client.Subscribe(cfg.Channel, nil) }},
		{"Publish", func() (uint64, error) { return client.Publish(cfg.Channel, []byte("probe"), nil) }},
		{"WhoNow", func() (uint64, error) {
			return client.GetPresence().WhoNow(cfg.Channel, rtm.ChannelTypeMessage, nil)
		}},
	}

	for _, step := range steps {
		requestID, err := step.call()
		if err != nil {
			return errors.Wrap(err, step.op)
		}

		select {
		case r := <-results:
			if r.requestID != requestID {
				return errors.Errorf("%s: got result of %s #%d, want #%d", step.op, r.op, r.requestID, requestID)
			}

			if !r.code.OK() {
				return errors.Errorf("%s: %s", step.op, r.code.Reason())
			}

			logger.WithFields(l.StringField("op", r.op), l.UInt64Field("requestID", r.requestID)).Info("ProbeStepOK")
		case <-time.After(probeTimeout):
			return errors.Errorf("%s: no result", step.op)
		case <-conn.Done():
			return errors.Errorf("%s: connection closed", step.op)
		}
	}

	return nil
}
