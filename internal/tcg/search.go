package tcg

import (
	"context"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/Oustad/kortly-pokemon-api-sub001/internal/logger"
	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

// searchClient is the slice of Client the searcher needs.
type searchClient interface {
	SearchCards(ctx context.Context, filters SearchFilters) (*models.CardList, error)
}

// SearchAttempt records one executed strategy for diagnostics.
type SearchAttempt struct {
	Strategy string            `json:"strategy"`
	Query    map[string]string `json:"query"`
	Results  int               `json:"results"`
}

// Searcher runs the layered card search: precise set+number+name
// lookups first, progressively looser fallbacks only while results
// are scarce.
type Searcher struct {
	client searchClient
}

func NewSearcher(client searchClient) *Searcher {
	return &Searcher{client: client}
}

// searchState accumulates results across strategies within one search.
type searchState struct {
	results  []models.Card
	seen     map[string]bool
	attempts []SearchAttempt
}

func (st *searchState) add(cards []models.Card, limit int) int {
	added := 0
	for _, c := range cards {
		if st.seen[c.ID] {
			continue
		}
		if limit > 0 && added >= limit {
			break
		}
		st.seen[c.ID] = true
		st.results = append(st.results, c)
		added++
	}
	return added
}

func (st *searchState) record(strategy string, query map[string]string, results int) {
	st.attempts = append(st.attempts, SearchAttempt{Strategy: strategy, Query: query, Results: results})
}

// Search looks the extracted card up in the TCG database. It returns
// the deduplicated candidate cards across all strategies that ran,
// plus a per-strategy attempt log. A nil result with nil error means
// no name was extracted, so there was nothing to search for.
func (s *Searcher) Search(ctx context.Context, attrs *models.CardAttributes) ([]models.Card, []SearchAttempt, error) {
	if attrs == nil || attrs.Name == "" {
		logger.Info("Card search skipped, no name identified")
		return nil, nil, nil
	}

	prepared := prepareAttributes(attrs)
	logger.WithFields(logrus.Fields{
		"name":   prepared.Name,
		"set":    prepared.SetName,
		"number": prepared.Number,
		"hp":     prepared.HP,
	}).Info("Searching card database")

	st := &searchState{seen: make(map[string]bool)}

	if err := s.exactMatch(ctx, st, prepared); err != nil {
		return nil, st.attempts, err
	}
	if err := s.crossSetNumber(ctx, st, prepared); err != nil {
		return nil, st.attempts, err
	}
	if err := s.setFamily(ctx, st, prepared); err != nil {
		return nil, st.attempts, err
	}
	if err := s.setNameOnly(ctx, st, prepared); err != nil {
		return nil, st.attempts, err
	}
	if err := s.nameHP(ctx, st, prepared); err != nil {
		return nil, st.attempts, err
	}
	if err := s.hiddenFatesSV(ctx, st, prepared); err != nil {
		return nil, st.attempts, err
	}
	if err := s.fuzzyFallback(ctx, st, prepared); err != nil {
		return nil, st.attempts, err
	}

	logger.WithFields(logrus.Fields{
		"candidates": len(st.results),
		"strategies": len(st.attempts),
	}).Info("Card search finished")
	return st.results, st.attempts, nil
}

// prepareAttributes returns a copy with the set name fixed up from
// hard evidence: the card number's range and the printed set total.
func prepareAttributes(attrs *models.CardAttributes) *models.CardAttributes {
	prepared := *attrs

	if corrected := CorrectSetFromNumber(prepared.SetName, prepared.Number); corrected != "" && corrected != prepared.SetName {
		logger.WithFields(logrus.Fields{
			"from": prepared.SetName,
			"to":   corrected,
		}).Debug("Corrected set name from card number")
		prepared.SetName = corrected
	}

	if prepared.SetSize == 0 {
		if _, total, ok := strings.Cut(prepared.Number, "/"); ok {
			prepared.SetSize = parseSetTotal(total)
		}
	}
	prepared.Number = NormalizeCardNumber(prepared.Number)
	if prepared.SetName == "" && prepared.SetSize > 0 {
		if inferred := SetFromTotalCount(prepared.SetSize); inferred != "" {
			logger.WithField("set", inferred).Debug("Inferred set name from printed total")
			prepared.SetName = inferred
		}
	}
	return &prepared
}

func parseSetTotal(s string) int {
	total := 0
	for _, r := range strings.TrimSpace(s) {
		if !unicode.IsDigit(r) {
			return 0
		}
		total = total*10 + int(r-'0')
	}
	return total
}

// exactMatch is the highest-priority lookup: set + number + name.
func (s *Searcher) exactMatch(ctx context.Context, st *searchState, attrs *models.CardAttributes) error {
	if attrs.SetName == "" || attrs.Number == "" {
		return nil
	}
	if !isValidSetName(attrs.SetName) || !isValidCardNumber(attrs.Number) {
		logger.WithFields(logrus.Fields{
			"set":    attrs.SetName,
			"number": attrs.Number,
		}).Debug("Skipping exact match, unusable set or number")
		return nil
	}

	list, err := s.client.SearchCards(ctx, SearchFilters{
		Name:     attrs.Name,
		SetName:  attrs.SetName,
		Number:   attrs.Number,
		PageSize: 5,
	})
	if err != nil {
		return err
	}
	st.add(list.Data, 0)
	st.record("set_number_name_exact", map[string]string{
		"name": attrs.Name, "set_name": attrs.SetName, "number": attrs.Number,
	}, len(list.Data))
	return nil
}

// crossSetNumber drops the set constraint when the exact lookup came
// up empty, covering misread set symbols with a correct number.
func (s *Searcher) crossSetNumber(ctx context.Context, st *searchState, attrs *models.CardAttributes) error {
	if len(st.results) > 0 || attrs.Number == "" {
		return nil
	}
	if !isValidCardNumber(attrs.Number) {
		return nil
	}

	list, err := s.client.SearchCards(ctx, SearchFilters{
		Name:     attrs.Name,
		Number:   attrs.Number,
		PageSize: 10,
	})
	if err != nil {
		return err
	}
	added := st.add(list.Data, 0)
	if added > 0 && st.results[0].Set.Name != attrs.SetName {
		logger.WithFields(logrus.Fields{
			"extracted": attrs.SetName,
			"found":     st.results[0].Set.Name,
		}).Info("Set corrected by cross-set number lookup")
	}
	st.record("cross_set_number_name", map[string]string{
		"name": attrs.Name, "number": attrs.Number,
	}, len(list.Data))
	return nil
}

// setFamily widens a generic set name ("gym", "neo") to each concrete
// expansion it may refer to.
func (s *Searcher) setFamily(ctx context.Context, st *searchState, attrs *models.CardAttributes) error {
	if len(st.results) > 0 || attrs.SetName == "" || attrs.Number == "" {
		return nil
	}
	if !isValidCardNumber(attrs.Number) {
		return nil
	}
	family := SetFamily(attrs.SetName)
	if family == nil {
		return nil
	}

	found := 0
	for _, familySet := range family {
		list, err := s.client.SearchCards(ctx, SearchFilters{
			Name:     attrs.Name,
			SetName:  familySet,
			Number:   attrs.Number,
			PageSize: 3,
		})
		if err != nil {
			return err
		}
		found += st.add(list.Data, 0)
	}
	st.record("set_family_number_name", map[string]string{
		"name": attrs.Name, "set_family": strings.Join(family, ","), "number": attrs.Number,
	}, found)
	return nil
}

// setNameOnly searches set + name without the number constraint.
func (s *Searcher) setNameOnly(ctx context.Context, st *searchState, attrs *models.CardAttributes) error {
	if attrs.SetName == "" || !isValidSetName(attrs.SetName) {
		return nil
	}

	list, err := s.client.SearchCards(ctx, SearchFilters{
		Name:     attrs.Name,
		SetName:  attrs.SetName,
		PageSize: 10,
	})
	if err != nil {
		return err
	}
	st.add(list.Data, 0)
	st.record("set_name_only", map[string]string{
		"name": attrs.Name, "set_name": attrs.SetName,
	}, len(list.Data))
	return nil
}

// nameHP cross-checks by printed HP when few candidates exist.
func (s *Searcher) nameHP(ctx context.Context, st *searchState, attrs *models.CardAttributes) error {
	if attrs.HP == "" || len(st.results) >= 5 {
		return nil
	}

	list, err := s.client.SearchCards(ctx, SearchFilters{
		Name:     attrs.Name,
		HP:       attrs.HP,
		PageSize: 10,
	})
	if err != nil {
		return err
	}
	st.add(list.Data, 0)
	st.record("name_hp_cross_set", map[string]string{
		"name": attrs.Name, "hp": attrs.HP,
	}, len(list.Data))
	return nil
}

// hiddenFatesSV retries Hidden Fates lookups with the Shiny Vault
// number prefix, which the AI never reads off the card.
func (s *Searcher) hiddenFatesSV(ctx context.Context, st *searchState, attrs *models.CardAttributes) error {
	if attrs.SetName != "Hidden Fates" || attrs.Number == "" || len(st.results) >= 3 {
		return nil
	}

	svNumber := "SV" + attrs.Number
	list, err := s.client.SearchCards(ctx, SearchFilters{
		Name:     attrs.Name,
		SetName:  attrs.SetName,
		Number:   svNumber,
		PageSize: 5,
	})
	if err != nil {
		return err
	}
	st.add(list.Data, 0)
	st.record("hidden_fates_sv_prefix", map[string]string{
		"name": attrs.Name, "set_name": attrs.SetName, "number": svNumber,
	}, len(list.Data))
	return nil
}

// fuzzyFallback is the last resort: wildcard name search, capped so
// loose matches cannot swamp the candidate list.
func (s *Searcher) fuzzyFallback(ctx context.Context, st *searchState, attrs *models.CardAttributes) error {
	if len(st.results) >= 5 {
		return nil
	}

	list, err := s.client.SearchCards(ctx, SearchFilters{
		Name:     attrs.Name,
		PageSize: 15,
		Fuzzy:    true,
	})
	if err != nil {
		return err
	}
	st.add(list.Data, 10)
	st.record("fuzzy_name_only_fallback", map[string]string{
		"name": attrs.Name,
	}, len(list.Data))
	return nil
}

// invalidSetPhrases are tells that the AI described its uncertainty
// instead of naming a set.
var invalidSetPhrases = []string{
	"not visible", "likely", "but", "era", "possibly", "unknown",
	"can't see", "cannot see", "unclear", "maybe", "appears to be",
	"looks like", "seems like", "hard to tell", "difficult to see",
}

func isValidSetName(setName string) bool {
	if setName == "" {
		return false
	}
	lower := strings.ToLower(setName)
	for _, phrase := range invalidSetPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	if len(setName) > 50 {
		return false
	}
	return !strings.Contains(setName, ",")
}

var invalidNumberPhrases = []string{
	"not visible", "unknown", "unclear", "can't see", "cannot see",
	"hard to tell", "difficult", "n/a", "none", "not found",
}

func isValidCardNumber(number string) bool {
	number = strings.TrimSpace(number)
	if number == "" {
		return false
	}
	lower := strings.ToLower(number)
	for _, phrase := range invalidNumberPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	if strings.Contains(number, " ") {
		return false
	}
	if !validNumberRe.MatchString(number) {
		return false
	}
	for _, r := range number {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
