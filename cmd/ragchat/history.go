package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/ragchat/approach"
	"github.com/randalmurphal/ragchat/history"
	"github.com/randalmurphal/ragchat/provider"
)

// historyReport is what `ragchat history --json` prints.
type historyReport struct {
	Model       string             `json:"model"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
	Stats       history.Stats      `json:"stats"`
	Messages    []provider.Message `json:"messages"`
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		conversation string
		question     string
		jsonOut      bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the bounded history that ask would send",
		Long:  "Show the messages ask would send for a conversation, without calling a provider.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := readConversation(cmd, conversation, question)
			if err != nil {
				return err
			}
			limits, err := a.cfg.LimitTable()
			if err != nil {
				return err
			}
			planner, err := approach.NewPlanner(a.cfg.ApproachConfig(),
				approach.WithCounter(a.cfg.NewCounter()),
				approach.WithLimits(limits),
				approach.WithLogger(a.logger))
			if err != nil {
				return err
			}
			cc := a.cfg.Prompt
			req, stats, err := planner.Plan(log, &cc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(historyReport{
					Model:       req.Model,
					Temperature: req.Temperature,
					MaxTokens:   req.MaxTokens,
					Stats:       stats,
					Messages:    req.Messages,
				})
			}
			if err := history.WriteLog(out, req.Messages); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "kept %d of %d prior turns, %d tokens of %d\n",
				stats.Included, stats.Included+stats.Dropped, stats.Tokens, stats.Ceiling)
			return err
		},
	}
	cmd.Flags().StringVar(&conversation, "conversation", "", "conversation log file (\"-\" for JSONL on stdin)")
	cmd.Flags().StringVar(&question, "question", "", "question appended as the newest user turn")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print a JSON report instead of JSONL messages")
	return cmd
}
