// Package providers registers all known completion providers.
// Import this package to make all providers available via provider.New():
//
//	import _ "github.com/randalmurphal/ragchat/providers"
package providers

import (
	_ "github.com/randalmurphal/ragchat/anthropic"
	_ "github.com/randalmurphal/ragchat/azureopenai"
)
