/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/bitacora-blog/apiserver/config"
	"github.com/bitacora-blog/apiserver/internal/mq"
	"github.com/bitacora-blog/apiserver/internal/services"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect blog change events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print blog events as they are published",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := newLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("events require MQ_BACKEND=rabbitmq or pubsub")
		}
		defer broker.Close()

		log.Info("tailing blog events", slog.String("channel", cfg.MQ.EventsChannel))
		err = broker.Subscribe(ctx, cfg.MQ.EventsChannel, func(_ context.Context, msg mq.Message) error {
			event, err := services.DecodeBlogEvent(msg.Data)
			if err != nil {
				log.Warn("skipping undecodable event", slog.String("message_id", msg.ID), slog.Any("error", err))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s blog=%s actor=%s %s\n",
				event.OccurredAt.Format("2006-01-02T15:04:05Z07:00"), event.Type, event.BlogID, event.ActorID, event.Title)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
