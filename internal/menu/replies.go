// ABOUTME: Canned reply content for the support flow
// ABOUTME: All operator-visible Portuguese strings live here

package menu

import "fmt"

// Reply is one outbound message. An ImagePath, when set, asks the channel to
// attach that file; Text is used as the caption or as a plain message.
type Reply struct {
	Text      string
	ImagePath string
}

// MenuText is the main option list shown whenever a conversation returns to MENU.
const MenuText = "Como posso ajudar?\n\n" +
	"1️⃣ Quero comprar\n" +
	"2️⃣ Tabela de pacotes\n" +
	"3️⃣ Grupo de WhatsApp\n" +
	"4️⃣ Quero ganhar dinheiro\n" +
	"5️⃣ Sobre nós\n" +
	"6️⃣ Falar com humano\n" +
	"7️⃣ Sair do modo automático\n\n" +
	"Digite o número ou nome da opção"

const backHint = "\n\n*Para voltar ao menu digite*: V ou voltar"

const paymentText = "💳 *FORMAS DE PAGAMENTO*\n\n" +
	"MPESA: 856429915\n" +
	"EMOLA: 868663198\n\n" +
	"Por favor, envie:\n" +
	"1. Comprovante de pagamento (foto ou texto)\n" +
	"2. Número para ativação" + backHint

const tableCaption = "📊 *TABELA DE PACOTES MUNDO NET*" + backHint

const tableFallbackText = "📊 *TABELA DE PACOTES*\n\n" +
	"*DIÁRIOS:*\n- 1024MB → 20MT\n- 2048MB → 40MT\n- 4096MB → 80MT\n- 5120MB → 100MT\n\n" +
	"*MENSAIS:*\n- 5120MB → 160MT\n- 10240MB → 260MT\n- 20480MB → 460MT\n- 30720MB → 660MT\n\n" +
	"*ILIMITADOS:*\n- 11GB+ILIM. → 450MT\n- 20GB+ILIM. → 630MT\n- 30GB+ILIM. → 830MT" + backHint

const groupsText = "👥 *GRUPOS WHATSAPP*\n\n" +
	"1. Principal: https://chat.whatsapp.com/InEmq5uoLB8CQNW9p0FjFR\n" +
	"2. Clientes: https://chat.whatsapp.com/LdZJB4dxSoB24TyQEgVsXd" + backHint

const earnText = "🚧 *OPÇÃO EM MANUTENÇÃO*\n\n" +
	"Estamos preparando esta funcionalidade para você!\n" +
	"Volte em breve. 💖" + backHint

const aboutText = "🌐 *SOBRE A MUNDO NET*\n\n" +
	"Líder em internet, chamadas e SMS!\n\n" +
	"*Redes sociais:*\n" +
	"Facebook: MUNDO NET\n" +
	"WhatsApp: 868663198\n" +
	"Instagram: @mundo_net_mz\n\n" +
	"*Sua conexão com o mundo!* 🌟" + backHint

const humanText = "👨‍💼 *ATENDIMENTO HUMANO*\n\n" +
	"Você será atendido em até *24 horas*.\n\n" +
	"⚠️ O bot *não responderá* mensagens neste período."

const optOutText = "🔓 *Modo não-automático ativo*\n\n" +
	"Agora só responderei aos comandos:\n" +
	"• menu - Volta ao menu principal\n" +
	"• dex - Mostra mensagem do assistente\n" +
	"• auto - Reativa o modo automático\n\n" +
	"*Digite um desses comandos para interagir*"

const verifyingText = "🔄 *Pagamento em verificação!*\n\n" +
	"Estamos confirmando seu pagamento.\n" +
	"Aguarde até receber seu pacote.\n\n" +
	"Obrigado por escolher a MUNDO NET! 💖" + backHint

const reassuranceText = "⏳ *Pagamento em verificação*\n\n" +
	"Seu pagamento ainda está sendo confirmado. Por favor, aguarde." + backHint

const assistantText = `👋 Oi! Sou o Dex, seu assistente virtual! Digite "menu" para ver opções.`

const autoModeText = "✅ Modo automático reativado!"

const recoveryText = "Vamos voltar ao menu principal:"

// WelcomeReplies greets a first-contact customer and shows the menu.
func WelcomeReplies(name string) []Reply {
	welcome := fmt.Sprintf("🌟 *Bem-vindo(a) à MUNDO NET, %s!* 😊\n"+
		"Aqui é o Dex, seu assistente virtual! Como posso ajudar?", name)
	return []Reply{{Text: welcome}, {Text: MenuText}}
}

// GreetingReplies re-greets a known customer navigating back to the menu.
func GreetingReplies(name string) []Reply {
	return []Reply{
		{Text: fmt.Sprintf("👋 Oi %s! Como posso te ajudar?", name)},
		{Text: MenuText},
	}
}

// RecoveryReplies resets a conversation to the menu after a dispatch failure.
func RecoveryReplies() []Reply {
	return []Reply{{Text: recoveryText}, {Text: MenuText}}
}

func invalidOptionText(name string) string {
	return fmt.Sprintf("❌ Opção inválida, %s!%s", name, backHint)
}
