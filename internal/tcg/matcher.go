package tcg

import (
	"regexp"
	"sort"
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/sirupsen/logrus"

	"github.com/Oustad/kortly-pokemon-api-sub001/internal/logger"
	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

// Score contributions. Set+number+name combinations dominate name-only
// matches so a confidently read number can never lose to a fuzzy name.
const (
	scoreTripleMatch      = 5000
	scoreSetNumberCombo   = 3000
	scoreSetExact         = 2000
	scoreSetPartial       = 500
	scoreSetFamily        = 800
	scoreNumberExact      = 2000
	scoreNumberPartial    = 800
	scoreNumberMismatch   = -2000
	scoreNameExact        = 1500
	scoreNameVariant      = 1400
	scoreNameNearMiss     = 1200
	scoreNamePartial      = 300
	scoreNameTagTeam      = 100
	scoreTagTeamPenalty   = -500
	scoreHPMatch          = 400
	scoreTypePerfect      = 800
	scoreTypeAIComplete   = 600
	scoreTypePartialEach  = 300
	scoreTypeMismatch     = -1500
	scoreTypeMissing      = -200
	scorePrimeMatch       = 800
	scorePrimeVsRegular   = -400
	scoreMissedPrime      = -200
	scoreShinyVault       = 300
	scoreSetSizeExact     = 300
	scoreSetSizeClose     = 100
	scoreCompleteImage    = 10
	scoreCompletePrices   = 5
	scoreCompleteSet      = 5
	nameNearMissMaxDist   = 2
	setSizeCloseTolerance = 5
)

var (
	variantSuffixRe = regexp.MustCompile(`(?i)\s+(v|vmax|vstar|ex|gx|break|prime|lv\.?\s*x?|\d+|delta|star|dark|light|shining|crystal|team\s+plasma|plasma|\([^)]+\))$`)
	variantPrefixRe = regexp.MustCompile(`(?i)^(dark|light|shining|crystal)\s+`)
	spaceRunRe      = regexp.MustCompile(`\s+`)
)

// nameVariations maps canonical Pokémon names whose punctuation gets
// read inconsistently to the forms the AI commonly produces.
var nameVariations = map[string][]string{
	"nidoran♀":   {"nidoran f", "nidoran female", "nidoran (f)"},
	"nidoran♂":   {"nidoran m", "nidoran male", "nidoran (m)"},
	"mr. mime":   {"mr mime", "mrmime"},
	"mime jr.":   {"mime jr", "mimejr"},
	"farfetch'd": {"farfetchd", "farfetch d"},
	"ho-oh":      {"ho oh", "hooh"},
	"porygon-z":  {"porygon z", "porygonz"},
	"jangmo-o":   {"jangmo o", "jangmoo"},
	"hakamo-o":   {"hakamo o", "hakamoo"},
	"kommo-o":    {"kommo o", "kommoo"},
	"tapu koko":  {"tapukoko"},
	"tapu lele":  {"tapulele"},
	"tapu bulu":  {"tapubulu"},
	"tapu fini":  {"tapufini"},
	"type: null": {"type null", "typenull"},
	"sirfetch'd": {"sirfetchd", "sirfetch d"},
	"mr. rime":   {"mr rime", "mrrime"},
}

// regionalFormRe rewrites regional form shorthand ("Vulpix Alola") to
// the adjective form the API uses ("Vulpix Alolan"), and drops bare
// "Form"/"Forme" suffixes.
var regionalFormRes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)(.+)\s+alola$`), "$1 alolan"},
	{regexp.MustCompile(`(?i)(.+)\s+galar$`), "$1 galarian"},
	{regexp.MustCompile(`(?i)(.+)\s+hisui$`), "$1 hisuian"},
	{regexp.MustCompile(`(?i)(.+)\s+paldea$`), "$1 paldean"},
	{regexp.MustCompile(`(?i)(.+)\s+forme?$`), "$1"},
}

func cleanName(name string) string {
	return spaceRunRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), " ")
}

func stripVariants(name string) string {
	prev := ""
	for name != prev {
		prev = name
		name = variantSuffixRe.ReplaceAllString(name, "")
		name = variantPrefixRe.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}

// IsVariantMatch reports whether two card names refer to the same
// Pokémon once mechanic suffixes (V, VMAX, GX, ex, Prime), color
// prefixes, punctuation variations and regional forms are stripped.
func IsVariantMatch(extracted, cardName string) bool {
	if extracted == "" || cardName == "" {
		return false
	}
	a := cleanName(extracted)
	b := cleanName(cardName)
	if a == b {
		return true
	}

	a = stripVariants(a)
	b = stripVariants(b)
	if a == b {
		return true
	}

	for canonical, variations := range nameVariations {
		aCanon := a == canonical || contains(variations, a)
		bCanon := b == canonical || contains(variations, b)
		if aCanon && bCanon {
			return true
		}
	}

	for _, f := range regionalFormRes {
		af := f.re.ReplaceAllString(a, f.repl)
		bf := f.re.ReplaceAllString(b, f.repl)
		if af == bf {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// MatchScore scores how well a candidate card fits the attributes the
// AI extracted. Higher is better; scores can go negative when hard
// facts like the card number contradict the candidate.
func MatchScore(card *models.Card, attrs *models.CardAttributes) (int, []string) {
	score := 0
	var reasons []string

	hasSet, hasNumber, hasName := false, false, false

	if attrs.SetName != "" && card.Set.Name != "" {
		extractedSet := strings.ToLower(strings.TrimSpace(attrs.SetName))
		cardSet := strings.ToLower(strings.TrimSpace(card.Set.Name))
		switch {
		case extractedSet == cardSet:
			hasSet = true
			score += scoreSetExact
			reasons = append(reasons, "exact set match")
		case strings.Contains(cardSet, extractedSet) || strings.Contains(extractedSet, cardSet):
			if IsXYFamilyMatch(extractedSet, cardSet) {
				score += scoreSetFamily
				reasons = append(reasons, "XY family set match")
			} else {
				score += scoreSetPartial
				reasons = append(reasons, "partial set match")
			}
		}
	}

	if attrs.Number != "" && card.Number != "" {
		extractedNum := strings.TrimSpace(attrs.Number)
		cardNum := strings.TrimSpace(card.Number)
		switch {
		case extractedNum == cardNum:
			hasNumber = true
			score += scoreNumberExact
			reasons = append(reasons, "exact card number match")
		case strings.Contains(cardNum, extractedNum) || strings.Contains(extractedNum, cardNum):
			score += scoreNumberPartial
			reasons = append(reasons, "partial card number match")
		default:
			score += scoreNumberMismatch
		}
	}

	if attrs.SetSize > 0 && card.Set.Total > 0 {
		diff := attrs.SetSize - card.Set.Total
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			score += scoreSetSizeExact
			reasons = append(reasons, "exact set size match")
		case diff <= setSizeCloseTolerance:
			score += scoreSetSizeClose
		}
	}

	if attrs.Name != "" && card.Name != "" {
		extracted := cleanName(attrs.Name)
		cardName := cleanName(card.Name)
		switch {
		case extracted == cardName:
			hasName = true
			score += scoreNameExact
			reasons = append(reasons, "exact name match")
		case IsVariantMatch(extracted, cardName):
			hasName = true
			score += scoreNameVariant
			reasons = append(reasons, "name variant match")
		case levenshtein.Distance(extracted, cardName) <= nameNearMissMaxDist:
			hasName = true
			score += scoreNameNearMiss
			reasons = append(reasons, "near-exact name match")
		case strings.Contains(cardName, "&") && !strings.Contains(extracted, "&"):
			if strings.Contains(cardName, extracted) {
				score += scoreNameTagTeam + scoreTagTeamPenalty
				reasons = append(reasons, "single name inside tag team card")
			}
		case strings.Contains(cardName, extracted) || strings.Contains(extracted, cardName):
			score += scoreNamePartial
			reasons = append(reasons, "partial name match")
		}

		score += primeScore(extracted, cardName, &reasons)
	}

	switch {
	case hasSet && hasNumber && hasName:
		score += scoreTripleMatch
		reasons = append(reasons, "set, number and name all match")
	case hasSet && hasNumber:
		score += scoreSetNumberCombo
		reasons = append(reasons, "set and number match")
	}

	if attrs.HP != "" && card.HP != "" &&
		strings.TrimSpace(attrs.HP) == strings.TrimSpace(card.HP) {
		score += scoreHPMatch
		reasons = append(reasons, "exact HP match")
	}

	score += typeScore(attrs.Types, card.Types, &reasons)

	if strings.HasPrefix(card.Number, "SV") && attrs.SetName == "Hidden Fates" {
		score += scoreShinyVault
		reasons = append(reasons, "shiny vault card")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "low confidence match")
	}
	return score, reasons
}

// primeScore handles HGSS-era Prime cards, where "Houndoom Prime" and
// plain "Houndoom" are different cards in the same set.
func primeScore(extracted, cardName string, reasons *[]string) int {
	extractedPrime := strings.Contains(extracted, "prime")
	cardPrime := strings.Contains(cardName, "prime")
	switch {
	case extractedPrime && cardPrime:
		*reasons = append(*reasons, "prime card match")
		return scorePrimeMatch
	case extractedPrime && !cardPrime:
		base := strings.TrimSpace(strings.ReplaceAll(extracted, " prime", ""))
		if base != "" && strings.Contains(cardName, base) {
			return scorePrimeVsRegular
		}
	case !extractedPrime && cardPrime:
		base := strings.TrimSpace(strings.ReplaceAll(cardName, " prime", ""))
		if base != "" && strings.Contains(extracted, base) {
			return scoreMissedPrime
		}
	}
	return 0
}

func titleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func typeScore(extractedTypes, cardTypes []string, reasons *[]string) int {
	if len(extractedTypes) > 0 && len(cardTypes) == 0 {
		return scoreTypeMissing
	}
	if len(extractedTypes) == 0 || len(cardTypes) == 0 {
		return 0
	}

	cardSet := make(map[string]bool, len(cardTypes))
	for _, t := range cardTypes {
		cardSet[titleCase(t)] = true
	}
	matching := 0
	for _, t := range extractedTypes {
		if cardSet[titleCase(t)] {
			matching++
		}
	}

	switch {
	case matching == 0:
		return scoreTypeMismatch
	case matching == len(extractedTypes) && matching == len(cardTypes):
		*reasons = append(*reasons, "perfect type match")
		return scoreTypePerfect
	case matching == len(extractedTypes):
		*reasons = append(*reasons, "all extracted types match")
		return scoreTypeAIComplete
	default:
		*reasons = append(*reasons, "partial type match")
		return matching * scoreTypePartialEach
	}
}

// completenessBonus breaks ties between equally scored candidates in
// favor of the one with richer data.
func completenessBonus(card *models.Card) int {
	bonus := 0
	if card.Images.Small != "" {
		bonus += scoreCompleteImage
	}
	if card.TCGPlayer != nil && len(card.TCGPlayer.Prices) > 0 {
		bonus += scoreCompletePrices
	}
	if card.Set.Name != "" {
		bonus += scoreCompleteSet
	}
	return bonus
}

// RankMatches scores every candidate against the extracted attributes
// and returns them best first.
func RankMatches(cards []models.Card, attrs *models.CardAttributes) []models.CardMatch {
	if len(cards) == 0 {
		return nil
	}

	matches := make([]models.CardMatch, 0, len(cards))
	for i := range cards {
		score, reasons := MatchScore(&cards[i], attrs)
		matches = append(matches, models.CardMatch{
			Card:    cards[i],
			Score:   score,
			Reasons: reasons,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		si := matches[i].Score + completenessBonus(&matches[i].Card)
		sj := matches[j].Score + completenessBonus(&matches[j].Card)
		return si > sj
	})
	return matches
}

// SelectBestMatch ranks the candidates and returns the winner along
// with the full ranking, or nil when there are no candidates.
func SelectBestMatch(cards []models.Card, attrs *models.CardAttributes) (*models.CardMatch, []models.CardMatch) {
	matches := RankMatches(cards, attrs)
	if len(matches) == 0 {
		return nil, nil
	}
	best := matches[0]
	logger.WithFields(logrus.Fields{
		"card_id":    best.Card.ID,
		"card_name":  best.Card.Name,
		"score":      best.Score,
		"candidates": len(matches),
	}).Debug("Selected best card match")
	return &best, matches
}
