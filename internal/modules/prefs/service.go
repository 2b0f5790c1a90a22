package prefs

import (
	"errors"

	"factorydesk/internal/domain"
	"factorydesk/internal/store"
)

var ErrUnknownLanguage = errors.New("unknown language")

const (
	LanguageThai    = "TH"
	LanguageEnglish = "EN"
)

// Service holds the terminal-wide preference slots: the UI language
// and an optional self-reported base URL override for QR codes.
type Service struct {
	language        *store.Slot[string]
	appURL          *store.Slot[string]
	defaultLanguage string
}

func NewService(language, appURL *store.Slot[string], defaultLanguage string) *Service {
	return &Service{language: language, appURL: appURL, defaultLanguage: defaultLanguage}
}

func (s *Service) Language() string {
	lang, ok := s.language.Get()
	if !ok || lang == "" {
		return s.defaultLanguage
	}
	return lang
}

func (s *Service) SetLanguage(actor *domain.User, lang string) error {
	if lang != LanguageThai && lang != LanguageEnglish {
		return ErrUnknownLanguage
	}
	return s.language.Set(actor.EffectiveID(), lang)
}

func (s *Service) AppURL() (string, bool) {
	url, ok := s.appURL.Get()
	if !ok || url == "" {
		return "", false
	}
	return url, true
}

func (s *Service) SetAppURL(actor *domain.User, url string) error {
	return s.appURL.Set(actor.EffectiveID(), url)
}

func (s *Service) ClearAppURL() error {
	return s.appURL.Clear()
}
