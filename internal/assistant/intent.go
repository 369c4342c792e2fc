package assistant

import "strings"

// Intent is the communicative purpose of a message.
type Intent string

const (
	IntentGreeting  Intent = "greeting"
	IntentHowAreYou Intent = "how_are_you"
	IntentHelp      Intent = "help"
	IntentThanks    Intent = "thanks"
	IntentDefault   Intent = "default"
)

// AllIntents is the closed set of intents, in priority order.
var AllIntents = []Intent{IntentGreeting, IntentHowAreYou, IntentHelp, IntentThanks, IntentDefault}

func (i Intent) Valid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}

// Classifier maps text to an intent by substring containment. Telugu
// records are tried first against the raw text, English records second
// against the lower-cased text; the first hit wins.
type Classifier struct {
	telugu  []Trigger
	english []Trigger
}

func NewClassifier(c *Catalog) *Classifier {
	english := c.triggersFor(ScriptEnglish)
	for i := range english {
		english[i].Phrase = strings.ToLower(english[i].Phrase)
	}
	return &Classifier{
		telugu:  c.triggersFor(ScriptTelugu),
		english: english,
	}
}

// Classify never fails; unmatched text is IntentDefault.
func (c *Classifier) Classify(text string) Intent {
	for _, t := range c.telugu {
		if strings.Contains(text, t.Phrase) {
			return t.Intent
		}
	}

	lower := strings.ToLower(text)
	for _, t := range c.english {
		if strings.Contains(lower, t.Phrase) {
			return t.Intent
		}
	}

	return IntentDefault
}
