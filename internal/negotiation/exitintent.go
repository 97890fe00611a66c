package negotiation

import "strings"

// exitKeywords signals the buyer wants to leave without hostility. Mixed
// English and Hindi/Hinglish (transliterated) phrases — this is a retail
// negotiation surface used across both audiences.
var exitKeywords = []string{
	"too expensive", "too much", "too costly", "can't afford", "forget it",
	"never mind", "no thanks", "not interested", "i'll pass", "bye",
	"leaving", "going", "somewhere else", "another shop", "no deal",
	"bohot mehenga", "bahut mehenga", "bahut zyada", "chhodo", "chodo",
	"jane do", "jaane do", "rehne do", "nahi chahiye", "nahi lena",
	"bahut hai", "itna nahi", "afford nahi", "budget nahi",
	"dusri dukaan", "kahi aur", "kahin aur",
}

// angryKeywords signal hostility and take priority over exitKeywords.
var angryKeywords = []string{
	"waste of time", "scam", "rip off", "loot", "cheating",
	"loot rahe ho", "pagal bana rahe", "mazaak", "joke",
}

// ExitIntent is the outcome of scanning a buyer message for leaving or
// hostile signals.
type ExitIntent struct {
	Leaving    bool
	Angry      bool
	Confidence float64
	Trigger    string
}

// DetectExitIntent runs keyword matching against the sanitised buyer
// message. Angry phrases win outright at confidence 0.9; otherwise exit
// phrases accumulate confidence with each additional match.
func DetectExitIntent(sanitisedMessage string) ExitIntent {
	text := strings.ToLower(strings.TrimSpace(sanitisedMessage))

	for _, kw := range angryKeywords {
		if strings.Contains(text, kw) {
			return ExitIntent{Leaving: true, Angry: true, Confidence: 0.9, Trigger: kw}
		}
	}

	var matches []string
	for _, kw := range exitKeywords {
		if strings.Contains(text, kw) {
			matches = append(matches, kw)
		}
	}
	if len(matches) > 0 {
		confidence := 0.5 + 0.15*float64(len(matches))
		if confidence > 1.0 {
			confidence = 1.0
		}
		return ExitIntent{Leaving: true, Confidence: confidence, Trigger: matches[0]}
	}

	return ExitIntent{}
}
