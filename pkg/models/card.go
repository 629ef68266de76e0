package models

// Card mirrors the Pokemon TCG API card object, limited to the fields
// the matcher and callers actually consume.
type Card struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Number    string     `json:"number,omitempty"`
	Supertype string     `json:"supertype,omitempty"`
	Subtypes  []string   `json:"subtypes,omitempty"`
	HP        string     `json:"hp,omitempty"`
	Types     []string   `json:"types,omitempty"`
	Rarity    string     `json:"rarity,omitempty"`
	Set       CardSet    `json:"set"`
	Images    CardImages `json:"images"`
	TCGPlayer *Pricing   `json:"tcgplayer,omitempty"`
}

// CardSet is the set block nested inside each card response.
type CardSet struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Series       string `json:"series,omitempty"`
	PrintedTotal int    `json:"printedTotal,omitempty"`
	Total        int    `json:"total,omitempty"`
	ReleaseDate  string `json:"releaseDate,omitempty"`
}

// CardImages holds the hosted image URLs for a card.
type CardImages struct {
	Small string `json:"small,omitempty"`
	Large string `json:"large,omitempty"`
}

// Pricing is the tcgplayer block; only presence matters for match
// completeness scoring, so prices stay loosely typed.
type Pricing struct {
	URL       string                 `json:"url,omitempty"`
	UpdatedAt string                 `json:"updatedAt,omitempty"`
	Prices    map[string]PriceSpread `json:"prices,omitempty"`
}

// PriceSpread is one market segment (normal, holofoil, ...) of pricing.
type PriceSpread struct {
	Low    float64 `json:"low,omitempty"`
	Mid    float64 `json:"mid,omitempty"`
	High   float64 `json:"high,omitempty"`
	Market float64 `json:"market,omitempty"`
}

// CardList is the paginated envelope the API wraps list responses in.
type CardList struct {
	Data       []Card `json:"data"`
	Page       int    `json:"page,omitempty"`
	PageSize   int    `json:"pageSize,omitempty"`
	Count      int    `json:"count,omitempty"`
	TotalCount int    `json:"totalCount,omitempty"`
}

// CardMatch pairs a candidate card with the score the matcher assigned
// it against the AI-extracted attributes.
type CardMatch struct {
	Card    Card     `json:"card"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
}
