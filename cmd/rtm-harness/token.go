package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sbasestarter/rtm-harness/config"
	"github.com/sbasestarter/rtm-harness/internal/user"
	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var channelName string

	cmd := &cobra.Command{
		Use:   "token <userID>",
		Short: "Sign a login token, or a stream channel join token with --channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(file)
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			tokenCenter := user.NewTokenCenter(cfg.AppID, cfg.AppCertificate,
				time.Duration(cfg.TokenExpireSeconds)*time.Second, nil)

			token, expiresAt, err := tokenCenter.NewToken(args[0], channelName)
			if err != nil {
				return errors.Wrap(err, "new token")
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			if expiresAt > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "expires at", time.Unix(expiresAt, 0).Format(time.RFC3339))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&channelName, "channel", "", "stream channel the token may join")

	return cmd
}
