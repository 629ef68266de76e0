package tcg

import (
	"testing"

	"github.com/Oustad/kortly-pokemon-api-sub001/pkg/models"
)

func makeCard(id, name, setName, number string) models.Card {
	return models.Card{
		ID:     id,
		Name:   name,
		Number: number,
		Set:    models.CardSet{ID: "set-" + id, Name: setName, Total: 214},
	}
}

func TestMatchScoreTripleMatch(t *testing.T) {
	card := makeCard("sm8-1", "Celebi", "Lost Thunder", "1")
	attrs := &models.CardAttributes{Name: "Celebi", SetName: "Lost Thunder", Number: "1"}

	score, reasons := MatchScore(&card, attrs)

	// Exact set, number and name each score individually, plus the
	// triple-combination bonus on top.
	want := scoreSetExact + scoreNumberExact + scoreNameExact + scoreTripleMatch
	if score != want {
		t.Errorf("score = %d, want %d", score, want)
	}
	if len(reasons) == 0 {
		t.Error("expected match reasons")
	}
}

func TestMatchScoreNumberMismatchPenalty(t *testing.T) {
	card := makeCard("sm8-50", "Celebi", "Lost Thunder", "50")
	attrs := &models.CardAttributes{Name: "Celebi", Number: "1"}

	score, _ := MatchScore(&card, attrs)
	exact := &models.CardAttributes{Name: "Celebi", Number: "50"}
	exactScore, _ := MatchScore(&card, exact)

	if score >= exactScore {
		t.Errorf("mismatched number scored %d, exact scored %d; mismatch must rank lower", score, exactScore)
	}
	if score >= scoreNameExact {
		t.Errorf("score = %d, mismatch penalty should outweigh the name match", score)
	}
}

func TestMatchScoreVariantName(t *testing.T) {
	card := makeCard("swsh1-1", "Celebi V", "Sword & Shield", "1")
	attrs := &models.CardAttributes{Name: "Celebi"}

	score, _ := MatchScore(&card, attrs)
	if score != scoreNameVariant {
		t.Errorf("score = %d, want variant score %d", score, scoreNameVariant)
	}
}

func TestMatchScoreNearMissName(t *testing.T) {
	card := makeCard("sm8-1", "Celebi", "Lost Thunder", "")
	attrs := &models.CardAttributes{Name: "Celebbi"}

	score, reasons := MatchScore(&card, attrs)
	if score != scoreNameNearMiss {
		t.Errorf("score = %d, want near-miss score %d", score, scoreNameNearMiss)
	}
	found := false
	for _, r := range reasons {
		if r == "near-exact name match" {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons = %v, want near-exact name match", reasons)
	}
}

func TestMatchScoreTagTeamPenalty(t *testing.T) {
	card := makeCard("sm9-1", "Celebi & Venusaur-GX", "Team Up", "1")
	attrs := &models.CardAttributes{Name: "Celebi"}

	score, _ := MatchScore(&card, attrs)
	want := scoreNameTagTeam + scoreTagTeamPenalty
	if score != want {
		t.Errorf("score = %d, want %d", score, want)
	}
}

func TestMatchScorePrime(t *testing.T) {
	prime := makeCard("hgss2-h1", "Houndoom Prime", "HS—Unleashed", "")
	regular := makeCard("hgss2-5", "Houndoom", "HS—Unleashed", "")

	primeAttrs := &models.CardAttributes{Name: "Houndoom Prime"}
	regularAttrs := &models.CardAttributes{Name: "Houndoom"}

	primeScore, _ := MatchScore(&prime, primeAttrs)
	crossScore, _ := MatchScore(&regular, primeAttrs)
	if primeScore <= crossScore {
		t.Errorf("prime card scored %d against prime attrs, regular scored %d; prime must win", primeScore, crossScore)
	}

	missedScore, _ := MatchScore(&prime, regularAttrs)
	regularScore, _ := MatchScore(&regular, regularAttrs)
	if regularScore <= missedScore {
		t.Errorf("regular card scored %d against plain attrs, prime scored %d; regular must win", regularScore, missedScore)
	}
}

func TestMatchScoreTypes(t *testing.T) {
	card := makeCard("sm8-1", "Celebi", "Lost Thunder", "1")
	card.Types = []string{"Grass"}

	perfect := &models.CardAttributes{Name: "Celebi", Types: []string{"grass"}}
	score, _ := MatchScore(&card, perfect)
	if score != scoreNameExact+scoreTypePerfect {
		t.Errorf("perfect type score = %d, want %d", score, scoreNameExact+scoreTypePerfect)
	}

	wrong := &models.CardAttributes{Name: "Celebi", Types: []string{"Fire"}}
	score, _ = MatchScore(&card, wrong)
	if score != scoreNameExact+scoreTypeMismatch {
		t.Errorf("wrong type score = %d, want %d", score, scoreNameExact+scoreTypeMismatch)
	}
}

func TestMatchScoreShinyVault(t *testing.T) {
	card := makeCard("sma-SV1", "Celebi", "Hidden Fates Shiny Vault", "SV1")
	attrs := &models.CardAttributes{Name: "Celebi", SetName: "Hidden Fates", Number: "SV1"}

	_, reasons := MatchScore(&card, attrs)
	found := false
	for _, r := range reasons {
		if r == "shiny vault card" {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons = %v, want shiny vault card", reasons)
	}
}

func TestMatchScoreSetSize(t *testing.T) {
	card := makeCard("base1-4", "Charizard", "Base", "4")
	card.Set.Total = 102

	exact := &models.CardAttributes{Name: "Charizard", SetSize: 102}
	near := &models.CardAttributes{Name: "Charizard", SetSize: 105}
	off := &models.CardAttributes{Name: "Charizard", SetSize: 130}

	exactScore, _ := MatchScore(&card, exact)
	closeScore, _ := MatchScore(&card, near)
	offScore, _ := MatchScore(&card, off)

	if exactScore != scoreNameExact+scoreSetSizeExact {
		t.Errorf("exact set size score = %d, want %d", exactScore, scoreNameExact+scoreSetSizeExact)
	}
	if closeScore != scoreNameExact+scoreSetSizeClose {
		t.Errorf("close set size score = %d, want %d", closeScore, scoreNameExact+scoreSetSizeClose)
	}
	if offScore != scoreNameExact {
		t.Errorf("distant set size score = %d, want %d", offScore, scoreNameExact)
	}
}

func TestIsVariantMatch(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"identical", "Pikachu", "Pikachu", true},
		{"case and spacing", "  pikachu ", "Pikachu", true},
		{"vmax suffix", "Charizard", "Charizard VMAX", true},
		{"gx suffix", "Espeon GX", "Espeon", true},
		{"dark prefix", "Dark Blastoise", "Blastoise", true},
		{"punctuation variation", "Mr Mime", "Mr. Mime", true},
		{"regional form", "Vulpix Alola", "Vulpix Alolan", true},
		{"different pokemon", "Pikachu", "Raichu", false},
		{"empty", "", "Pikachu", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVariantMatch(tt.a, tt.b); got != tt.expected {
				t.Errorf("IsVariantMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestSelectBestMatch(t *testing.T) {
	cards := []models.Card{
		makeCard("sm8-1", "Celebi", "Lost Thunder", "1"),
		makeCard("sm9-1", "Celebi & Venusaur-GX", "Team Up", "1"),
		makeCard("xy4-5", "Celebi-EX", "Phantom Forces", "5"),
	}
	attrs := &models.CardAttributes{Name: "Celebi", SetName: "Lost Thunder", Number: "1"}

	best, matches := SelectBestMatch(cards, attrs)
	if best == nil {
		t.Fatal("expected a best match")
	}
	if best.Card.ID != "sm8-1" {
		t.Errorf("best match = %q, want sm8-1", best.Card.ID)
	}
	if len(matches) != 3 {
		t.Errorf("got %d ranked matches, want 3", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches out of order at %d: %d > %d", i, matches[i].Score, matches[i-1].Score)
		}
	}
}

func TestSelectBestMatchEmpty(t *testing.T) {
	best, matches := SelectBestMatch(nil, &models.CardAttributes{Name: "Celebi"})
	if best != nil || matches != nil {
		t.Error("expected nil results for no candidates")
	}
}

func TestCompletenessTiebreak(t *testing.T) {
	bare := makeCard("a-1", "Celebi", "", "")
	rich := makeCard("b-1", "Celebi", "Lost Thunder", "")
	rich.Images = models.CardImages{Small: "https://img.example/b-1.png"}

	attrs := &models.CardAttributes{Name: "Celebi"}
	best, _ := SelectBestMatch([]models.Card{bare, rich}, attrs)
	if best == nil || best.Card.ID != "b-1" {
		t.Errorf("expected the richer card to win the tiebreak, got %+v", best)
	}
}
