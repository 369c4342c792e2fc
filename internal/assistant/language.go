package assistant

import (
	"github.com/abadojack/whatlanggo"
)

// Language tags the script composition of a message.
type Language string

const (
	LanguageTelugu  Language = "telugu"
	LanguageEnglish Language = "english"
	LanguageMixed   Language = "mixed"
	LanguageUnknown Language = "unknown"
)

const (
	teluguBlockStart = 0x0C00
	teluguBlockEnd   = 0x0C7F
)

// DetectLanguage reports whether text contains Telugu script, Latin letters,
// both, or neither.
func DetectLanguage(text string) Language {
	var hasTelugu, hasLatin bool
	for _, r := range text {
		switch {
		case r >= teluguBlockStart && r <= teluguBlockEnd:
			hasTelugu = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLatin = true
		}
		if hasTelugu && hasLatin {
			return LanguageMixed
		}
	}

	switch {
	case hasTelugu:
		return LanguageTelugu
	case hasLatin:
		return LanguageEnglish
	default:
		return LanguageUnknown
	}
}

// NeedsAdaptation reports whether a generated reply should be rewritten
// towards Telugu before it is shown.
func (l Language) NeedsAdaptation() bool {
	return l == LanguageTelugu || l == LanguageMixed
}

// LanguageHint returns an ISO 639-1 guess for logging and analytics. It is
// never used for classification. Unreliable detections yield "".
func LanguageHint(text string) string {
	if text == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
