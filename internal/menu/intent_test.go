// ABOUTME: Tests for the context-free intent classifier
// ABOUTME: Covers keyword aliases, attachments, and precedence

package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyNavigation(t *testing.T) {
	for _, text := range []string{"menu", "MENU", "oi", "ola", "olá gente", "voltar", "v", "  Voltar  "} {
		assert.Equal(t, IntentNavigateMenu, Classify(text, false), "text=%q", text)
	}
}

func TestClassifyMenuOptions(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"1", IntentBuy},
		{"comprar", IntentBuy},
		{"Comprar megas", IntentBuy},
		{"2", IntentTable},
		{"tabela", IntentTable},
		{"3", IntentGroups},
		{"grupo", IntentGroups},
		{"grupos", IntentGroups},
		{"4", IntentEarn},
		{"ganhar", IntentEarn},
		{"5", IntentAbout},
		{"sobre", IntentAbout},
		{"6", IntentHuman},
		{"humano", IntentHuman},
		{"7", IntentOptOut},
		{"sair", IntentOptOut},
		{"dex", IntentAssistant},
		{"auto", IntentAutoMode},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.text, false), "text=%q", tt.text)
	}
}

func TestClassifyNumericAliasMatchesKeyword(t *testing.T) {
	// "2" and "tabela" are the same option.
	assert.Equal(t, Classify("tabela", false), Classify("2", false))
}

func TestClassifyPaymentProof(t *testing.T) {
	assert.Equal(t, IntentPaymentProof, Classify("", true))
	assert.Equal(t, IntentPaymentProof, Classify("ja transferi o valor", false))
	assert.Equal(t, IntentPaymentProof, Classify("paguei agora", false))
	assert.Equal(t, IntentPaymentProof, Classify("confirmado", false))
	assert.Equal(t, IntentPaymentProof, Classify("segue o id de transação", false))
	assert.Equal(t, IntentPaymentProof, Classify("enviei do meu saldo", false))
}

func TestClassifyStillWaiting(t *testing.T) {
	assert.Equal(t, IntentStillWaiting, Classify("estou aguardando", false))
	assert.Equal(t, IntentStillWaiting, Classify("quando ativa?", false))
	assert.Equal(t, IntentStillWaiting, Classify("esta a demorar muito", false))
}

func TestClassifyUnknown(t *testing.T) {
	assert.Equal(t, IntentUnknown, Classify("qualquer coisa", false))
	assert.Equal(t, IntentUnknown, Classify("", false))
	assert.Equal(t, IntentUnknown, Classify("99", false))
}

func TestClassifyNavigationBeatsAttachment(t *testing.T) {
	// Navigation keywords win even when an attachment rides along.
	assert.Equal(t, IntentNavigateMenu, Classify("voltar", true))
}

func TestClassifyAttachmentBeatsCaption(t *testing.T) {
	// A non-navigation caption does not hide the attachment.
	assert.Equal(t, IntentPaymentProof, Classify("1", true))
	assert.Equal(t, IntentPaymentProof, Classify("comprovativo em anexo", true))
}
