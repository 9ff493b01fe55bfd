// Package composer assembles the message list sent to the language model:
// one system prompt carrying the assistant persona and any freshly fetched
// contextual data, followed by a bounded window of conversation history.
package composer

import (
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ecerdem/stokbot/internal/session"
)

// HistoryWindow is how many of the most recent turns are forwarded to the
// model. The session keeps more; the prompt stays within token budget.
const HistoryWindow = 10

const systemPromptHead = `Sen bir otel stok yönetim sistemi asistanısın.
Türkçe konuşan otel çalışanlarına yardım ediyorsun.
Stok öğeleri, envanter durumu ve alternatif ürünler hakkında bilgi veriyorsun.
Her zaman dostça ve yardımsever ol.
Yanıtlarını Türkçe ver.

MEVCUT KATEGORİLER:
- Et Ürünleri (dana, kuzu, kırmızı et)
- Beyaz Et (tavuk, hindi, kanatlı)
- Deniz Ürünleri (balık, deniz ürünleri)
- Meyveler (taze meyveler)
- Sebzeler (taze sebzeler)
- Bakliyat & Tahıl (tahıllar, bakliyat)
- Diğer (diğer ürünler)

ÖNEMLI: Eğer kullanıcı analiz, öncelik, sipariş konularında sorular soruyorsa, daha önce sağlanan kritik stok verilerini kullanarak detaylı analiz yap.

Kritik stok analizinde şu faktörleri göz önünde bulundur:
1. Stok seviyesi (0 = acil, kritik seviye altı = önemli)
2. Ürün türü (temel gıda maddeleri öncelikli)
3. Kategori önem sırası (Et > Sebze > Diğer)
4. Stok kritik seviyesine göre aciliyet

`

const systemPromptTail = `Kullanıcının sorusuna kısa ve yararlı bir yanıt ver. Eğer özel stok verisi varsa, onu kullan.`

// BuildMessages produces the full message list for a completion call. The
// contextual data block, when present, is injected between the persona and
// the closing instruction of the system prompt.
func BuildMessages(contextData string, history []session.Turn) []openai.ChatCompletionMessage {
	var sys strings.Builder
	sys.WriteString(systemPromptHead)
	if contextData != "" {
		sys.WriteString(contextData)
		if !strings.HasSuffix(contextData, "\n") {
			sys.WriteString("\n")
		}
	}
	sys.WriteString(systemPromptTail)

	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: sys.String(),
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	return messages
}
