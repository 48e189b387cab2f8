// ABOUTME: Intent classification for free-text conversational input
// ABOUTME: Pure function from message text to an enumerated intent

package menu

import (
	"regexp"
	"strings"
)

// Intent is the enumerated meaning extracted from one inbound message.
// Classification is context-free; the dispatcher's transition table decides
// which intents are meaningful in which state.
type Intent string

const (
	IntentNavigateMenu Intent = "navigate_menu" // menu / oi / ola / voltar / v
	IntentBuy          Intent = "buy"           // 1 / comprar
	IntentTable        Intent = "table"         // 2 / tabela
	IntentGroups       Intent = "groups"        // 3 / grupo
	IntentEarn         Intent = "earn"          // 4 / ganhar
	IntentAbout        Intent = "about"         // 5 / sobre
	IntentHuman        Intent = "human"         // 6 / humano
	IntentOptOut       Intent = "opt_out"       // 7 / sair
	IntentPaymentProof Intent = "payment_proof" // attachment or payment keywords
	IntentStillWaiting Intent = "still_waiting" // waiting/impatience keywords
	IntentAssistant    Intent = "assistant"     // dex
	IntentAutoMode     Intent = "auto_mode"     // auto
	IntentUnknown      Intent = "unknown"
)

var (
	navigateRe     = regexp.MustCompile(`^(menu|oi|ol(a|á)|voltar|v)`)
	paymentRe      = regexp.MustCompile(`transferi|paguei|confirmado|id de transa(ç|c)(ã|a)o|saldo`)
	stillWaitingRe = regexp.MustCompile(`aguardando|esperando|quando|demora`)
)

// prefixIntents pairs each menu option's prefixes with its intent, checked in
// order. Prefix matching mirrors the operator-facing menu: "1" and "comprar"
// are equivalent, and so on.
var prefixIntents = []struct {
	prefixes []string
	intent   Intent
}{
	{[]string{"1", "comprar"}, IntentBuy},
	{[]string{"2", "tabela"}, IntentTable},
	{[]string{"3", "grupo"}, IntentGroups},
	{[]string{"4", "ganhar"}, IntentEarn},
	{[]string{"5", "sobre"}, IntentAbout},
	{[]string{"6", "humano"}, IntentHuman},
	{[]string{"7", "sair"}, IntentOptOut},
	{[]string{"dex"}, IntentAssistant},
	{[]string{"auto"}, IntentAutoMode},
}

// Classify maps message text (plus the attachment flag) to an Intent.
// Matching is case-insensitive; text is trimmed before matching.
func Classify(text string, hasAttachment bool) Intent {
	t := strings.ToLower(strings.TrimSpace(text))

	// Navigation wins over everything: "voltar" must always mean the menu.
	if navigateRe.MatchString(t) {
		return IntentNavigateMenu
	}

	// An attachment is payment proof no matter what the caption says.
	if hasAttachment {
		return IntentPaymentProof
	}

	for _, p := range prefixIntents {
		for _, prefix := range p.prefixes {
			if strings.HasPrefix(t, prefix) {
				return p.intent
			}
		}
	}

	if paymentRe.MatchString(t) {
		return IntentPaymentProof
	}
	if stillWaitingRe.MatchString(t) {
		return IntentStillWaiting
	}

	return IntentUnknown
}
