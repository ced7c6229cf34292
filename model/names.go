package model

import "strings"

// Vendor identifies which API family serves a model.
type Vendor string

// Known vendors.
const (
	VendorOpenAI    Vendor = "openai"
	VendorAnthropic Vendor = "anthropic"
	VendorUnknown   Vendor = ""
)

// NormalizeModelName converts a model or deployment identifier to the
// canonical public model name. Matching is case-insensitive and surrounding
// whitespace is ignored. Azure deployment spellings drop the dot in the
// version ("gpt-35-turbo"), so "gpt-35-turbo-16k" becomes "gpt-3.5-turbo-16k".
// Names that don't match a known pattern are returned lowercased.
func NormalizeModelName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if rest, ok := strings.CutPrefix(lower, "gpt-35"); ok {
		return "gpt-3.5" + rest
	}
	return lower
}

// VendorOf reports which API family a model belongs to.
// For example, "gpt-35-turbo" and "gpt-4o" are OpenAI models and
// "claude-3-5-haiku-latest" is an Anthropic model.
func VendorOf(name string) Vendor {
	lower := NormalizeModelName(name)

	switch {
	case strings.HasPrefix(lower, "claude"):
		return VendorAnthropic
	case strings.HasPrefix(lower, "gpt-"), isReasoningModel(lower):
		return VendorOpenAI
	}
	return VendorUnknown
}

// isReasoningModel matches OpenAI's o-series names ("o1", "o3-mini", ...).
func isReasoningModel(lower string) bool {
	if len(lower) < 2 || lower[0] != 'o' {
		return false
	}
	return lower[1] >= '0' && lower[1] <= '9'
}
