package providers

import (
	"context"
	"net/url"
	"strings"
)

// Phrasebook translates a fixed set of emergency phrases. Anything else is
// returned unchanged.
type Phrasebook struct {
	phrases map[string]map[string]string
}

func NewPhrasebook() *Phrasebook {
	return &Phrasebook{phrases: map[string]map[string]string{
		"Emergency! Need help!": {
			"hi": "आपातकाल! मदद चाहिए!",
			"es": "¡Emergencia! ¡Necesito ayuda!",
			"fr": "Urgence! Besoin d'aide!",
			"de": "Notfall! Brauche Hilfe!",
		},
		"Where is the nearest hospital?": {
			"hi": "निकटतम अस्पताल कहाँ है?",
			"es": "¿Dónde está el hospital más cercano?",
			"fr": "Où est l'hôpital le plus proche?",
			"de": "Wo ist das nächste Krankenhaus?",
		},
		"I need police help": {
			"hi": "मुझे पुलिस की मदद चाहिए",
			"es": "Necesito ayuda de la policía",
			"fr": "J'ai besoin de l'aide de la police",
			"de": "Ich brauche Polizeihilfe",
		},
	}}
}

// Lookup reports whether the phrasebook knows text in lang.
func (p *Phrasebook) Lookup(text, lang string) (string, bool) {
	translated, ok := p.phrases[text][strings.ToLower(lang)]
	return translated, ok
}

func (p *Phrasebook) Translate(_ context.Context, text, targetLanguage string) string {
	if translated, ok := p.Lookup(text, targetLanguage); ok {
		return translated
	}
	return text
}

// Phrases lists the phrases the phrasebook can translate.
func (p *Phrasebook) Phrases() []string {
	out := make([]string, 0, len(p.phrases))
	for phrase := range p.phrases {
		out = append(out, phrase)
	}
	return out
}

// HTTPTranslator calls GET <base>?text=&target= expecting
// {"translatedText": "..."}. When the upstream fails it answers from the
// phrasebook, which in turn returns the original text.
type HTTPTranslator struct {
	up       *upstream
	fallback *Phrasebook
}

func NewHTTPTranslator(baseURL string, phrasebook *Phrasebook, opts ...Option) *HTTPTranslator {
	if phrasebook == nil {
		phrasebook = NewPhrasebook()
	}
	return &HTTPTranslator{up: newUpstream("translate", baseURL, opts...), fallback: phrasebook}
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (p *HTTPTranslator) Translate(ctx context.Context, text, targetLanguage string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if !p.up.configured() {
		return p.fallback.Translate(ctx, text, targetLanguage)
	}

	var resp translateResponse
	query := url.Values{"text": {text}, "target": {strings.ToLower(targetLanguage)}}
	err := p.up.get(ctx, query, &resp)
	if err == nil && resp.TranslatedText == "" {
		err = NewProviderError(ErrorBadData, p.up.name, "empty translation", nil)
	}
	if err != nil {
		p.up.fallback(ctx, err)
		return p.fallback.Translate(ctx, text, targetLanguage)
	}
	return resp.TranslatedText
}
