// Package i18n provides internationalization support for the embedded daemon.
// It handles translation of user-facing messages and error messages.
package i18n

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLocale is the default language locale (English).
	DefaultLocale = "en"
	// AcceptLanguageHeader is the HTTP header name for language preference.
	AcceptLanguageHeader = "Accept-Language"
)

var (
	// defaultTranslator is the singleton translator instance.
	defaultTranslator *Translator
	translatorOnce    sync.Once
)

// Translator handles message translation for different locales.
type Translator struct {
	messages map[string]map[string]string
}

// NewTranslator creates a new translator with the default messages.
func NewTranslator() *Translator {
	return &Translator{
		messages: getDefaultMessages(),
	}
}

// GetTranslator returns the default singleton translator instance.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Translate returns the translated message for the given key and locale.
// Falls back to DefaultLocale if the locale is not found.
func (t *Translator) Translate(key, locale string) string {
	if locale == "" {
		locale = DefaultLocale
	}

	localeMessages, ok := t.messages[locale]
	if !ok {
		localeMessages = t.messages[DefaultLocale]
	}

	msg, ok := localeMessages[key]
	if !ok {
		// Fallback to default locale
		if defaultMessages := t.messages[DefaultLocale]; defaultMessages != nil {
			if fallbackMsg, exists := defaultMessages[key]; exists {
				return fallbackMsg
			}
		}
		return key
	}

	return msg
}

// GetLocale extracts the locale from the gin context.
// Checks Accept-Language header and falls back to DefaultLocale.
func GetLocale(c *gin.Context) string {
	acceptLang := c.GetHeader(AcceptLanguageHeader)
	if acceptLang == "" {
		return DefaultLocale
	}

	// Parse Accept-Language header (e.g., "en-US,en;q=0.9,pt;q=0.8")
	parts := strings.Split(acceptLang, ",")
	if len(parts) > 0 {
		lang := strings.TrimSpace(strings.Split(parts[0], ";")[0])
		// Extract base language (e.g., "en" from "en-US")
		if idx := strings.Index(lang, "-"); idx > 0 {
			lang = lang[:idx]
		}
		// Normalize to lowercase
		lang = strings.ToLower(lang)
		// Validate it's a supported locale
		if _, ok := getDefaultMessages()[lang]; ok {
			return lang
		}
	}

	return DefaultLocale
}

// getDefaultMessages returns the default message translations.
func getDefaultMessages() map[string]map[string]string {
	return map[string]map[string]string{
		"en": {
			// Error messages
			"error.invalid_request":            "Invalid request",
			"error.invalid_request_body":       "Invalid request body",
			"error.internal_error":             "An unexpected error occurred",
			"error.unauthorized":               "Unauthorized",
			"error.api_key_required":           "API key is required",
			"error.invalid_api_key":            "Invalid API key",
			"error.forbidden":                  "Forbidden",
			"error.not_found":                  "Not found",
			"error.conflict":                   "Conflict",
			"error.timeout":                    "Request timed out",
			"error.unknown_preset":             "Unknown container preset",
			"error.container_limit":            "Container limit reached, terminate one first",
			"error.container_start_failed":     "Container failed to start",
			"error.container_not_found":        "Container not found",
			"error.container_terminate_failed": "Container failed to terminate",
			"error.container_logs_failed":      "Container logs could not be read",
			"error.validation.credentials":     "password: requires username to be set",

			// Success messages
			"success.container_started": "Container started successfully",
		},
		"pt": {
			// Error messages
			"error.invalid_request":            "Requisição inválida",
			"error.invalid_request_body":       "Corpo da requisição inválido",
			"error.internal_error":             "Ocorreu um erro inesperado",
			"error.unauthorized":               "Não autorizado",
			"error.api_key_required":           "Chave de API é obrigatória",
			"error.invalid_api_key":            "Chave de API inválida",
			"error.forbidden":                  "Proibido",
			"error.not_found":                  "Não encontrado",
			"error.conflict":                   "Conflito",
			"error.timeout":                    "Tempo limite da requisição excedido",
			"error.unknown_preset":             "Preset de contêiner desconhecido",
			"error.container_limit":            "Limite de contêineres atingido, encerre um primeiro",
			"error.container_start_failed":     "Falha ao iniciar o contêiner",
			"error.container_not_found":        "Contêiner não encontrado",
			"error.container_terminate_failed": "Falha ao encerrar o contêiner",
			"error.container_logs_failed":      "Não foi possível ler os logs do contêiner",
			"error.validation.credentials":     "password: requer que username seja definido",

			// Success messages
			"success.container_started": "Contêiner iniciado com sucesso",
		},
		"nl": {
			// Error messages
			"error.invalid_request":            "Ongeldig verzoek",
			"error.invalid_request_body":       "Ongeldige aanvraag body",
			"error.internal_error":             "Er is een onverwachte fout opgetreden",
			"error.unauthorized":               "Niet geautoriseerd",
			"error.api_key_required":           "API-sleutel is vereist",
			"error.invalid_api_key":            "Ongeldige API-sleutel",
			"error.forbidden":                  "Verboden",
			"error.not_found":                  "Niet gevonden",
			"error.conflict":                   "Conflict",
			"error.timeout":                    "Verzoek time-out",
			"error.unknown_preset":             "Onbekende container preset",
			"error.container_limit":            "Containerlimiet bereikt, beëindig er eerst een",
			"error.container_start_failed":     "Container kon niet worden gestart",
			"error.container_not_found":        "Container niet gevonden",
			"error.container_terminate_failed": "Container kon niet worden beëindigd",
			"error.container_logs_failed":      "Containerlogs konden niet worden gelezen",
			"error.validation.credentials":     "password: vereist dat username is ingesteld",

			// Success messages
			"success.container_started": "Container succesvol gestart",
		},
	}
}
