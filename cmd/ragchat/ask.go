package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/ragchat/approach"
)

type askOptions struct {
	stream       bool
	jsonOut      bool
	temperature  float64
	conversation string
}

func newAskCmd(a *app) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Generate a search query for the latest question",
		Long: `Generate a search query for the latest question of a conversation.

The conversation is read from --conversation (.jsonl, .json or .yaml; "-" reads
JSONL from stdin). A question given as arguments is appended as a user turn.`,
		Example: `  ragchat ask "what does my plan cover?"
  ragchat ask --conversation chat.jsonl --stream`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().BoolVar(&opts.stream, "stream", false, "print the answer as it is generated")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print chat.completion envelopes as JSON (NDJSON when streaming)")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", approach.DefaultTemperature, "sampling temperature for this call")
	cmd.Flags().StringVar(&opts.conversation, "conversation", "", "conversation log file")
	return cmd
}

func (a *app) runAsk(cmd *cobra.Command, opts *askOptions, question string) error {
	ctx := cmd.Context()

	log, err := readConversation(cmd, opts.conversation, question)
	if err != nil {
		return err
	}

	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	logger := a.logger.With(
		slog.String("turn_id", uuid.NewString()),
		slog.String("provider", client.Provider()))

	limits, err := a.cfg.NewLimits(ctx, logger)
	if err != nil {
		return err
	}
	chat, err := approach.New(client, a.cfg.ApproachConfig(),
		approach.WithCounter(a.cfg.NewCounter()),
		approach.WithLimits(limits),
		approach.WithLogger(logger))
	if err != nil {
		return err
	}

	cc := a.cfg.Prompt
	if cmd.Flags().Changed("temperature") {
		cc.Temperature = approach.Float(opts.temperature)
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)

	if !opts.stream {
		result, err := chat.Run(ctx, log, &cc)
		if err != nil {
			return err
		}
		if opts.jsonOut {
			return enc.Encode(result.Envelope())
		}
		_, err = fmt.Fprintln(out, result.Content)
		return err
	}

	chunks, err := chat.RunStreaming(ctx, log, &cc)
	if err != nil {
		return err
	}
	for chunk := range chunks {
		if chunk.Err != nil {
			return chunk.Err
		}
		if opts.jsonOut {
			if err := enc.Encode(chunk.Envelope()); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprint(out, chunk.DeltaContent); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !opts.jsonOut {
		_, err = fmt.Fprintln(out)
	}
	return err
}
