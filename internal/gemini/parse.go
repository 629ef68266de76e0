package gemini

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Oustad/kortly-pokemon-api-sub001/internal/errors"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/logger"
	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

var (
	markerRe   = regexp.MustCompile(`(?is)TCG_SEARCH_START\s*(\{.*?\})\s*TCG_SEARCH_END`)
	fencedRe   = regexp.MustCompile("(?is)```json\\s*(\\{.*?\\})\\s*```")
	rawJSONRe  = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
	nameLineRe = regexp.MustCompile(`(?im)^(?:Name|Pokemon|Card):\s*([^\n\r]+)`)
	wsRunRe    = regexp.MustCompile(`\s+`)
)

// vaguePhrases are the model's stock ways of saying it could not read
// a field. Any of them in a critical field invalidates the answer.
var vaguePhrases = []string{
	"not visible", "not fully visible", "likely", "possibly",
	"appears to be", "hard to tell", "unclear", "can't see",
	"cannot see", "difficult to see", "seems like", "looks like",
	"maybe", "unknown", "uncertain", "not sure",
}

// rawAttributes is the model's answer before cleanup; string-typed
// loosely because the model does not always respect the schema.
type rawAttributes struct {
	Name         string   `json:"name"`
	OriginalName string   `json:"original_name"`
	Language     string   `json:"language"`
	SetName      string   `json:"set_name"`
	Number       string   `json:"number"`
	HP           string   `json:"hp"`
	Types        []string `json:"types"`
	Supertype    string   `json:"supertype"`
	Rarity       string   `json:"rarity"`
}

// ParseResponse extracts structured card attributes from the model's
// free-text answer. It tries the marker block first, then a fenced
// JSON block, then the largest raw JSON object, and finally falls back
// to scraping a name line. An unusably vague answer comes back as an
// identification error.
func ParseResponse(text string) (*models.CardAttributes, error) {
	raw, ok := extractJSON(text)
	if !ok {
		if name := fallbackName(text); name != "" {
			logger.WithField("name", name).Debug("Recovered card name without structured block")
			return validate(&models.CardAttributes{Name: name})
		}
		return nil, errors.NewProcessingError("no card attributes found in model response", nil)
	}

	var parsed rawAttributes
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		if name := fallbackName(text); name != "" {
			return validate(&models.CardAttributes{Name: name})
		}
		return nil, errors.NewProcessingError("model response JSON is malformed", err)
	}

	attrs := &models.CardAttributes{
		Name:      strings.TrimSpace(parsed.Name),
		SetName:   strings.TrimSpace(parsed.SetName),
		HP:        cleanHP(parsed.HP),
		Supertype: strings.TrimSpace(parsed.Supertype),
		Rarity:    strings.TrimSpace(parsed.Rarity),
		Language:  strings.ToLower(strings.TrimSpace(parsed.Language)),
	}
	attrs.Number, attrs.SetSize = splitNumber(parsed.Number)
	for _, t := range parsed.Types {
		t = strings.TrimSpace(t)
		if t != "" {
			attrs.Types = append(attrs.Types, titleWord(t))
		}
	}
	return validate(attrs)
}

// extractJSON finds the best JSON candidate in the response text.
func extractJSON(text string) (string, bool) {
	if m := markerRe.FindStringSubmatch(text); m != nil {
		return normalizeJSON(m[1]), true
	}
	if m := fencedRe.FindStringSubmatch(text); m != nil {
		return normalizeJSON(m[1]), true
	}
	matches := rawJSONRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	largest := matches[0]
	for _, m := range matches[1:] {
		if len(m) > len(largest) {
			largest = m
		}
	}
	return normalizeJSON(largest), true
}

func normalizeJSON(s string) string {
	return wsRunRe.ReplaceAllString(s, " ")
}

// validate rejects answers whose critical fields carry uncertainty
// phrases instead of card data.
func validate(attrs *models.CardAttributes) (*models.CardAttributes, error) {
	if len(strings.TrimSpace(attrs.Name)) < 2 {
		return nil, errors.NewProcessingError("model could not read a card name", nil)
	}
	if isVague(attrs.Name) {
		return nil, errors.NewProcessingError("model was not confident about the card name", nil)
	}
	// A vague set or number is dropped rather than fatal; the search
	// strategies work without them.
	if isVague(attrs.SetName) {
		attrs.SetName = ""
	}
	if isVague(attrs.Number) {
		attrs.Number = ""
	}
	return attrs, nil
}

func isVague(value string) bool {
	if value == "" {
		return false
	}
	padded := " " + strings.ToLower(strings.TrimSpace(value)) + " "
	for _, phrase := range vaguePhrases {
		if strings.Contains(padded, " "+phrase+" ") {
			return true
		}
	}
	return false
}

// splitNumber separates "25/102" into the card number and the printed
// set total.
func splitNumber(number string) (string, int) {
	number = strings.TrimSpace(number)
	base, total, ok := strings.Cut(number, "/")
	if !ok {
		return number, 0
	}
	size := 0
	for _, r := range strings.TrimSpace(total) {
		if r < '0' || r > '9' {
			return strings.TrimSpace(base), 0
		}
		size = size*10 + int(r-'0')
	}
	return strings.TrimSpace(base), size
}

func cleanHP(hp string) string {
	hp = strings.TrimSpace(hp)
	hp = strings.TrimPrefix(strings.ToUpper(hp), "HP")
	return strings.TrimSpace(hp)
}

func titleWord(s string) string {
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}

// fallbackName scrapes a "Name: Pikachu" style line when no JSON block
// survived.
func fallbackName(text string) string {
	m := nameLineRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if idx := strings.Index(name, "("); idx >= 0 {
		name = strings.TrimSpace(name[:idx])
	}
	var b strings.Builder
	for _, r := range name {
		if r == ' ' || r == '-' || r == '\'' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	name = strings.TrimSpace(b.String())
	if len(name) <= 2 {
		return ""
	}
	return name
}
