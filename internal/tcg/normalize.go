package tcg

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// setNameMappings folds AI-extracted set names into the card API's
// controlled vocabulary. This is a maintained fact table, not logic;
// unmapped names pass through unchanged.
var setNameMappings = map[string]string{
	"Hidden Fates":      "Hidden Fates Shiny Vault",
	"Shining Legends":   "Shining Legends",
	"Dragon Majesty":    "Dragon Majesty",
	"Detective Pikachu": "Detective Pikachu",
	"Team Up":           "Team Up",
	"Unbroken Bonds":    "Unbroken Bonds",
	"Unified Minds":     "Unified Minds",
	"Cosmic Eclipse":    "Cosmic Eclipse",
	"Sword & Shield":    "Sword & Shield",
	"Rebel Clash":       "Rebel Clash",
	"Darkness Ablaze":   "Darkness Ablaze",
	"Champions Path":    "Champion's Path",
	"Vivid Voltage":     "Vivid Voltage",
	"Shining Fates":     "Shining Fates",
	"Battle Styles":     "Battle Styles",
	"Chilling Reign":    "Chilling Reign",
	"Evolving Skies":    "Evolving Skies",
	"Celebrations":      "Celebrations",
	"Fusion Strike":     "Fusion Strike",
	"Brilliant Stars":   "Brilliant Stars",
	"Astral Radiance":   "Astral Radiance",
	"Pokemon Go":        "Pokémon GO",
	"Lost Origin":       "Lost Origin",
	"Silver Tempest":    "Silver Tempest",
	"Crown Zenith":      "Crown Zenith",
	// Base era
	"Base Set":      "Base",
	"Base Set 2":    "Base Set 2",
	"Jungle":        "Jungle",
	"Fossil":        "Fossil",
	"Team Rocket":   "Team Rocket",
	"Gym Heroes":    "Gym Heroes",
	"Gym Challenge": "Gym Challenge",
	// Sun & Moon series
	"Sun & Moon":       "Sun & Moon",
	"Guardians Rising": "Guardians Rising",
	"Burning Shadows":  "Burning Shadows",
	"Crimson Invasion": "Crimson Invasion",
	"Ultra Prism":      "Ultra Prism",
	"Forbidden Light":  "Forbidden Light",
	"Celestial Storm":  "Celestial Storm",
	"Lost Thunder":     "Lost Thunder",
	// XY series
	"XY":              "XY",
	"Flashfire":       "Flashfire",
	"Furious Fists":   "Furious Fists",
	"Phantom Forces":  "Phantom Forces",
	"Primal Clash":    "Primal Clash",
	"Roaring Skies":   "Roaring Skies",
	"Ancient Origins": "Ancient Origins",
	"BREAKthrough":    "BREAKthrough",
	"BREAKpoint":      "BREAKpoint",
	"Fates Collide":   "Fates Collide",
	"Steam Siege":     "Steam Siege",
	"Evolutions":      "Evolutions",
	// HeartGold/SoulSilver series
	"HeartGold & SoulSilver": "HeartGold & SoulSilver",
	"HS—Unleashed":           "HS—Unleashed",
	"HS—Undaunted":           "HS—Undaunted",
	"HS—Triumphant":          "HS—Triumphant",
	"Unleashed":              "HS—Unleashed",
	"Undaunted":              "HS—Undaunted",
	"Triumphant":             "HS—Triumphant",
}

// nameTranslations resolves foreign-language species names the AI
// occasionally outputs into their English canonical forms.
var nameTranslations = map[string]string{
	// French
	"Goupix":     "Vulpix",
	"Reptincel":  "Charmeleon",
	"Dracaufeu":  "Charizard",
	"Carapuce":   "Squirtle",
	"Carabaffe":  "Wartortle",
	"Tortank":    "Blastoise",
	"Chenipan":   "Caterpie",
	"Chrysacier": "Metapod",
	"Papilusion": "Butterfree",
	"Aspicot":    "Weedle",
	"Coconfort":  "Kakuna",
	"Dardargnan": "Beedrill",
	"Roucool":    "Pidgey",
	"Roucoups":   "Pidgeotto",
	"Roucarnage": "Pidgeot",
	"Rattatac":   "Raticate",
	"Piafabec":   "Spearow",
	"Rapasdepic": "Fearow",
	"Abo":        "Ekans",
	// Japanese
	"フシギダネ":  "Bulbasaur",
	"フシギソウ":  "Ivysaur",
	"フシギバナ":  "Venusaur",
	"ヒトカゲ":   "Charmander",
	"リザード":   "Charmeleon",
	"リザードン":  "Charizard",
	"ゼニガメ":   "Squirtle",
	"カメール":   "Wartortle",
	"カメックス":  "Blastoise",
	"ピカチュウ":  "Pikachu",
	"ライチュウ":  "Raichu",
}

// pokemonApostrophes restores dropped apostrophes in species names.
var pokemonApostrophes = map[string]string{
	"farfetchd":  "Farfetch'd",
	"farfetch d": "Farfetch'd",
	"sirfetchd":  "Sirfetch'd",
	"sirfetch d": "Sirfetch'd",
}

// trainerPossessives restores apostrophes in trainer-owned card names.
var trainerPossessives = map[string]string{
	"team rockets":          "Team Rocket's",
	"team rocket s":         "Team Rocket's",
	"brocks":                "Brock's",
	"brock s":               "Brock's",
	"mistys":                "Misty's",
	"misty s":               "Misty's",
	"giovannis":             "Giovanni's",
	"giovanni s":            "Giovanni's",
	"lt surges":             "Lt. Surge's",
	"lt surge s":            "Lt. Surge's",
	"lieutenant surges":     "Lt. Surge's",
	"erikas":                "Erika's",
	"erika s":               "Erika's",
	"kogas":                 "Koga's",
	"koga s":                "Koga's",
	"sabrinas":              "Sabrina's",
	"sabrina s":             "Sabrina's",
	"blaines":               "Blaine's",
	"blaine s":              "Blaine's",
	"blues":                 "Blue's",
	"blue s":                "Blue's",
	"reds":                  "Red's",
	"red s":                 "Red's",
	"greens":                "Green's",
	"green s":               "Green's",
	"bills":                 "Bill's",
	"bill s":                "Bill's",
	"professor oaks":        "Professor Oak's",
	"professor oak s":       "Professor Oak's",
	"professor elms":        "Professor Elm's",
	"professor elm s":       "Professor Elm's",
	"professor birches":     "Professor Birch's",
	"professor birch s":     "Professor Birch's",
	"professor rowans":      "Professor Rowan's",
	"professor rowan s":     "Professor Rowan's",
	"professor junipers":    "Professor Juniper's",
	"professor juniper s":   "Professor Juniper's",
	"professor sycamores":   "Professor Sycamore's",
	"professor sycamore s":  "Professor Sycamore's",
	"professor kukuis":      "Professor Kukui's",
	"professor kukui s":     "Professor Kukui's",
	"professor magnolias":   "Professor Magnolia's",
	"professor magnolia s":  "Professor Magnolia's",
	"lysandres":             "Lysandre's",
	"lysandre s":            "Lysandre's",
	"flannery s":            "Flannery's",
	"winona s":              "Winona's",
	"norman s":              "Norman's",
	"watson s":              "Wattson's",
	"roxanne s":             "Roxanne's",
}

// energySymbols maps elemental pictograms to the spelled-out energy
// type words the database indexes.
var energySymbols = map[string]string{
	"⚡":  "Lightning",
	"🔥":  "Fire",
	"💧":  "Water",
	"🍃":  "Grass",
	"🔮":  "Psychic",
	"👊":  "Fighting",
	"☠️": "Darkness",
	"⚙️": "Metal",
	"🌈":  "Rainbow",
	"💥":  "Lightning",
	"🌿":  "Grass",
	"💀":  "Darkness",
	"🔩":  "Metal",
}

var (
	apostropheVariantRe = regexp.MustCompile("[’‘`]")
	possessiveRe        = regexp.MustCompile(`\b([A-Z][a-z]+?)s\s+([A-Z][a-z]+)`)
	splitPossessiveRe   = regexp.MustCompile(`\b([A-Z][a-z]+?)\s+s\s+([A-Z][a-z]+)`)
	cardNumberRe        = regexp.MustCompile(`^(\d+)([a-zA-Z]?)$`)
	validNumberRe       = regexp.MustCompile(`^[A-Za-z0-9\-]+$`)
)

// MapSetName maps an AI-extracted set name to the card database's set
// name. Direct match first, then case-insensitive; unmapped names
// pass through unchanged. Empty input stays empty.
func MapSetName(setName string) string {
	if setName == "" {
		return setName
	}
	if mapped, ok := setNameMappings[setName]; ok {
		return mapped
	}
	lower := strings.ToLower(setName)
	for alias, mapped := range setNameMappings {
		if strings.ToLower(alias) == lower {
			return mapped
		}
	}
	return setName
}

// NormalizePokemonName folds the AI's free-text card name into the
// database's naming convention: translation variants, apostrophe
// restoration, possessive fixes, energy pictograms, and GX/EX
// hyphenation. V and VMAX suffixes stay space-separated because the
// database does not hyphenate those.
func NormalizePokemonName(name string) string {
	if name == "" {
		return name
	}

	if translated, ok := nameTranslations[name]; ok {
		name = translated
	}

	name = apostropheVariantRe.ReplaceAllString(name, "'")

	name = replaceFirstFold(name, pokemonApostrophes)
	name = replaceFirstFold(name, trainerPossessives)

	// "Brocks Scouting" -> "Brock's Scouting", "Brock s Scouting" too
	name = possessiveRe.ReplaceAllString(name, "${1}'s ${2}")
	name = splitPossessiveRe.ReplaceAllString(name, "${1}'s ${2}")

	name = normalizeEnergySymbols(name)

	if strings.Contains(name, " GX") {
		name = strings.ReplaceAll(name, " GX", "-GX")
	}
	if strings.Contains(name, " EX") {
		name = strings.ReplaceAll(name, " EX", "-EX")
	}
	return name
}

// replaceFirstFold applies the first case-insensitive whole-phrase
// replacement whose key occurs in the name. Keys are tried longest
// first so the most specific phrase wins deterministically when two
// keys could match.
func replaceFirstFold(name string, fixes map[string]string) string {
	keys := make([]string, 0, len(fixes))
	for incorrect := range fixes {
		keys = append(keys, incorrect)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	lower := strings.ToLower(name)
	for _, incorrect := range keys {
		if strings.Contains(lower, incorrect) {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(incorrect) + `\b`)
			return re.ReplaceAllString(name, fixes[incorrect])
		}
	}
	return name
}

// normalizeEnergySymbols substitutes elemental pictograms with their
// spelled-out energy type words, preserving the "Basic X Energy"
// phrasing.
func normalizeEnergySymbols(name string) string {
	for symbol, energyType := range energySymbols {
		if !strings.Contains(name, symbol) {
			continue
		}
		quoted := regexp.QuoteMeta(symbol)
		name = regexp.MustCompile(`Basic\s*`+quoted+`\s*Energy`).ReplaceAllString(name, "Basic "+energyType+" Energy")
		name = regexp.MustCompile(quoted+`\s*Energy`).ReplaceAllString(name, energyType+" Energy")
		name = strings.ReplaceAll(name, symbol, energyType)
	}
	return name
}

// NormalizeCardNumber strips a "/totalInSet" suffix and leading zeros
// while preserving alphabetic variant suffixes ("060b" -> "60b").
// Unrecognized patterns pass through unchanged.
func NormalizeCardNumber(number string) string {
	if number == "" {
		return number
	}

	if idx := strings.Index(number, "/"); idx >= 0 {
		number = number[:idx]
	}

	if m := cardNumberRe.FindStringSubmatch(strings.TrimSpace(number)); m != nil {
		base, _ := strconv.Atoi(m[1])
		return strconv.Itoa(base) + m[2]
	}
	return number
}
