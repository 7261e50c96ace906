package ocr

import "unicode"

// fixedConfidence is reported for every successful extraction. The vision
// API does not expose per-token confidence, so a fixed estimate is used
// until a real signal is available.
const fixedConfidence = 0.95

// detectLanguage classifies the extraction as Arabic when any Arabic-block
// codepoint appears, English otherwise.
func detectLanguage(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Arabic, r) {
			return "ar"
		}
	}
	return "en"
}
