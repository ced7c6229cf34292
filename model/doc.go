// Package model resolves model identifiers to their token ceilings.
//
// A LimitTable maps model ids to the maximum number of tokens the model
// accepts. Lookups are exact first, then by normalized name, so Azure
// deployment spellings such as "gpt-35-turbo" and public names such as
// "gpt-3.5-turbo" both resolve:
//
//	limits := model.DefaultLimits()
//	n, err := limits.MaxTokens("gpt-35-turbo") // 4000
//	_, err = limits.MaxTokens("mystery")      // errors.Is(err, model.ErrUnknownModel)
//
// # Limit Files
//
// Tables can be extended from YAML, TOML or JSON files:
//
//	models:
//	  my-finetune: 16000
//
//	custom, err := model.LoadLimitsFile("limits.yaml")
//	limits := model.DefaultLimits().Merge(custom)
//
// WatchLimits keeps a file-backed table current while the process runs:
//
//	w, err := model.WatchLimits(ctx, "limits.yaml", model.DefaultLimits(), logger)
//	n, err := w.MaxTokens("my-finetune")
//
// # Names
//
// NormalizeModelName canonicalizes ids and VendorOf reports which API family
// serves a model, which callers use to pick a provider.
package model
