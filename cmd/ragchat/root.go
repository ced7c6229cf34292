package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/ragchat/config"
	"github.com/randalmurphal/ragchat/history"
	"github.com/randalmurphal/ragchat/model"
	"github.com/randalmurphal/ragchat/provider"
)

// app holds state shared by every subcommand.
type app struct {
	configPath string
	envFiles   []string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ragchat",
		Short:         "Turn a conversation into a search query",
		Long:          "ragchat fits as much of a conversation as the model allows behind a query-generation prompt and asks the model for a search query.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (.toml or .yaml); defaults to ./ragchat.toml if present")
	flags.StringSliceVar(&a.envFiles, "env-file", nil, "environment files to load (default .env)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(
		newAskCmd(a),
		newHistoryCmd(a),
		newLimitsCmd(a),
		newSchemaCmd(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(cmd.ErrOrStderr())
	return nil
}

// providerName picks a provider for the configured model when none is set.
func (a *app) providerName() (string, error) {
	if a.cfg.Provider.Provider != "" {
		return a.cfg.Provider.Provider, nil
	}
	switch model.VendorOf(a.cfg.ModelName()) {
	case model.VendorAnthropic:
		return "anthropic", nil
	case model.VendorOpenAI:
		if a.cfg.Provider.Endpoint == "" && os.Getenv("AZURE_OPENAI_ENDPOINT") == "" {
			return "openai", nil
		}
		return "azure-openai", nil
	}
	return "", fmt.Errorf("no provider configured and none known for model %q", a.cfg.ModelName())
}

func (a *app) newClient() (provider.Client, error) {
	name, err := a.providerName()
	if err != nil {
		return nil, err
	}
	pcfg := a.cfg.Provider.WithProvider(name)
	if pcfg.Model == "" {
		pcfg.Model = a.cfg.ModelName()
	}
	return provider.FromConfig(pcfg)
}

// readConversation loads the conversation file ("-" for JSONL on stdin) and
// appends question as a user turn when given.
func readConversation(cmd *cobra.Command, path, question string) ([]provider.Message, error) {
	var log []provider.Message
	var err error
	switch path {
	case "":
	case "-":
		log, err = history.ReadLog(cmd.InOrStdin())
	default:
		log, err = history.ReadLogFile(path)
	}
	if err != nil {
		return nil, err
	}
	if question != "" {
		log = append(log, provider.UserMessage(question))
	}
	return log, nil
}
