package gemini

// Tier-specific generation settings. Fast keeps the response short
// and deterministic, enhanced allows a longer answer for difficult
// photos.
type generationSettings struct {
	maxOutputTokens int32
	temperature     float32
	topP            float32
}

func settingsForTier(tier string) generationSettings {
	switch tier {
	case "fast":
		return generationSettings{maxOutputTokens: 150, temperature: 0.1, topP: 0.8}
	case "enhanced":
		return generationSettings{maxOutputTokens: 800, temperature: 0.3, topP: 0.95}
	default:
		return generationSettings{maxOutputTokens: 400, temperature: 0.3, topP: 0.9}
	}
}

func promptForTier(tier string) string {
	switch tier {
	case "fast":
		return fastPrompt
	case "enhanced":
		return enhancedPrompt
	default:
		return standardPrompt
	}
}

const fastPrompt = `Pokemon card identification. Output format:
TCG_SEARCH_START
{"name": "pokemon name", "original_name": "name as shown on card", "language": "en/fr/ja/de/es/etc", "set_name": "set", "number": "card#", "hp": "HP", "types": ["type"]}
TCG_SEARCH_END
Brief: Name, set, condition.`

const standardPrompt = `Identify this Pokemon card and provide search parameters.

IMPORTANT: Detect if the card is in a non-English language and preserve original names.

Format exactly:
TCG_SEARCH_START
{
  "name": "exact pokemon name",
  "original_name": "pokemon name exactly as shown on card",
  "language": "language code (en=English, fr=French, ja=Japanese, de=German, es=Spanish, etc)",
  "set_name": "set name if visible",
  "number": "card number if visible",
  "hp": "HP value if visible",
  "types": ["pokemon type(s)"]
}
TCG_SEARCH_END

Analysis:
1. Card identification
2. Language detection notes
3. Key features
4. Condition and value`

const enhancedPrompt = `Analyze this Pokemon card image carefully. If the image quality is poor, do your best to identify visible elements.

IMPORTANT: Detect the card language and preserve original names.

Required format:
TCG_SEARCH_START
{
  "name": "exact pokemon name from card",
  "original_name": "pokemon name exactly as written on the card",
  "language": "card language code (en=English, fr=French, ja=Japanese, de=German, es=Spanish, it=Italian, pt=Portuguese, ko=Korean, zh=Chinese)",
  "set_name": "full set name if visible",
  "number": "card number if visible",
  "hp": "HP value if visible",
  "types": ["pokemon type(s) like Fire, Water, Grass etc"],
  "supertype": "Pokemon"
}
TCG_SEARCH_END

Detailed analysis:
1. Card identification and confidence level
2. Language detection and translation notes
3. Visible text and symbols
4. Set identification clues
5. Condition assessment
6. Special features or variants`
