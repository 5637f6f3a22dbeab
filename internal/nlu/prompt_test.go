package nlu

import (
	"strings"
	"testing"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
)

// The classify prompt must offer exactly the category names the engines
// pass to NormalizeCategory; a drift between them silently turns valid
// model replies into UNKNOWN.
func TestClassifyPromptOffersKnownCategories(t *testing.T) {
	prompt := BuildClassifyPrompt("show my positions")

	for _, category := range []string{
		interfaces.IntentMarketNews,
		interfaces.IntentPlaceOrder,
		interfaces.IntentGetFunds,
		interfaces.IntentGetHoldings,
		interfaces.IntentGetPosition,
		interfaces.IntentCheckPrice,
		interfaces.IntentUnknown,
	} {
		if !strings.Contains(prompt, category+" -") {
			t.Errorf("classify prompt does not offer category %q", category)
		}
	}
}

func TestClassifyPromptCategoriesSurviveNormalization(t *testing.T) {
	known := []string{
		interfaces.IntentMarketNews,
		interfaces.IntentPlaceOrder,
		interfaces.IntentGetFunds,
		interfaces.IntentGetHoldings,
		interfaces.IntentGetPosition,
		interfaces.IntentCheckPrice,
	}

	for _, category := range known {
		if got := NormalizeCategory(category, known...); got != category {
			t.Errorf("prompt-faithful reply %q normalized to %q", category, got)
		}
	}
}
