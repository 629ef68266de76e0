package tcg

import (
	"regexp"
	"strconv"
	"strings"
)

// setFamilies expands generic set names into the concrete expansions
// they may refer to, for family-widened searches ("gym" could be
// either Gym set).
var setFamilies = map[string][]string{
	"base":             {"Base Set", "Base", "Base Set 2"},
	"base set":         {"Base Set", "Base", "Base Set 2"},
	"gym":              {"Gym Heroes", "Gym Challenge"},
	"neo":              {"Neo Genesis", "Neo Discovery", "Neo Destiny", "Neo Revelation"},
	"ruby":             {"Ruby & Sapphire"},
	"sapphire":         {"Ruby & Sapphire"},
	"ruby & sapphire":  {"Ruby & Sapphire"},
	"team magma":       {"Team Magma vs Team Aqua"},
	"team aqua":        {"Team Magma vs Team Aqua"},
	"firered":          {"FireRed & LeafGreen"},
	"leafgreen":        {"FireRed & LeafGreen"},
	"team rocket":      {"Team Rocket Returns"},
	"diamond":          {"Diamond & Pearl"},
	"pearl":            {"Diamond & Pearl"},
	"diamond & pearl":  {"Diamond & Pearl"},
	"heartgold":        {"HeartGold & SoulSilver"},
	"soulsilver":       {"HeartGold & SoulSilver"},
	"black":            {"Black & White"},
	"white":            {"Black & White"},
	"black & white":    {"Black & White"},
	"sun":              {"Sun & Moon"},
	"moon":             {"Sun & Moon"},
	"sun & moon":       {"Sun & Moon"},
	"sword":            {"Sword & Shield"},
	"shield":           {"Sword & Shield"},
	"sword & shield":   {"Sword & Shield"},
	"scarlet":          {"Scarlet & Violet"},
	"violet":           {"Scarlet & Violet"},
	"scarlet & violet": {"Scarlet & Violet"},
	"expedition":       {"Expedition", "Expedition Base Set"},
	"champions path":   {"Champion's Path"},
	"pokemon go":       {"Pokémon GO"},
}

// SetFamily returns the expansions a generic set name may refer to,
// or nil when the name needs no widening.
func SetFamily(setName string) []string {
	if setName == "" {
		return nil
	}
	return setFamilies[strings.ToLower(setName)]
}

// xySets are the XY-era expansions whose similar symbols the AI tends
// to confuse with each other.
var xySets = map[string]bool{
	"xy": true, "xy base": true, "xy base set": true, "kalos starter set": true,
	"flashfire": true, "furious fists": true, "phantom forces": true, "primal clash": true,
	"roaring skies": true, "ancient origins": true, "breakthrough": true, "breakpoint": true,
	"generations": true, "fates collide": true, "steam siege": true, "evolutions": true,
}

// IsXYFamilyMatch reports whether both set names belong to the XY
// family, where near-miss identification is common.
func IsXYFamilyMatch(extractedSet, cardSet string) bool {
	if extractedSet == "" || cardSet == "" {
		return false
	}
	return xySets[strings.ToLower(strings.TrimSpace(extractedSet))] &&
		xySets[strings.ToLower(strings.TrimSpace(cardSet))]
}

// setTotalCounts maps a set's printed card count to its name, for
// inferring the set from a "N/total" card number. Only counts unique
// to one set are listed.
var setTotalCounts = map[int]string{
	102: "Base Set",
	111: "Neo Genesis",
	75:  "Neo Discovery",
	105: "Neo Destiny",
	165: "Expedition",
	147: "Aquapolis",
	144: "Skyridge",
	109: "Ruby & Sapphire",
	97:  "Dragon",
	95:  "Team Magma vs Team Aqua",
	116: "FireRed & LeafGreen",
	107: "Deoxys",
	115: "Unseen Forces",
	113: "Delta Species",
	92:  "Legend Maker",
	127: "Platinum",
	153: "Supreme Victors",
	99:  "Arceus",
	123: "HeartGold & SoulSilver",
	90:  "Undaunted",
	114: "Black & White",
	98:  "Emerging Powers",
	124: "Dragons Exalted",
	149: "Boundaries Crossed",
	135: "Plasma Storm",
	140: "Legendary Treasures",
	146: "XY",
	119: "Phantom Forces",
	160: "Primal Clash",
	162: "BREAKthrough",
	122: "BREAKpoint",
	145: "Guardians Rising",
	78:  "Shining Legends",
	156: "Ultra Prism",
	131: "Forbidden Light",
	168: "Celestial Storm",
	70:  "Dragon Majesty",
	214: "Lost Thunder",
	181: "Team Up",
	26:  "Detective Pikachu",
	196: "Unbroken Bonds",
	236: "Unified Minds",
	68:  "Hidden Fates",
	271: "Cosmic Eclipse",
	202: "Sword & Shield",
	192: "Rebel Clash",
	189: "Darkness Ablaze",
	73:  "Champion's Path",
	185: "Vivid Voltage",
	72:  "Shining Fates",
	163: "Battle Styles",
	198: "Chilling Reign",
	203: "Evolving Skies",
	25:  "Celebrations",
	264: "Fusion Strike",
	174: "Brilliant Stars",
	71:  "Pokémon GO",
	195: "Silver Tempest",
	159: "Crown Zenith",
	193: "Paldea Evolved",
	197: "Obsidian Flames",
	207: "151",
	182: "Paradox Rift",
	91:  "Paldean Fates",
	167: "Twilight Masquerade",
	64:  "Shrouded Fable",
	142: "Stellar Crown",
	191: "Surging Sparks",
}

// SetFromTotalCount infers the set from the total cards printed in
// it, or "" when the count is ambiguous or unknown.
func SetFromTotalCount(totalCount int) string {
	return setTotalCounts[totalCount]
}

var leadingDigitsRe = regexp.MustCompile(`(\d+)`)

// numberRangeCorrection is one set-name correction rule keyed on the
// card number falling inside a range.
type numberRangeCorrection struct {
	set       string
	min, max  int
	corrected string
}

// numberCorrections fixes set names that contradict the card number,
// e.g. a "Base Set" card numbered above 102 is really Base Set 2.
var numberCorrections = []numberRangeCorrection{
	{"base set", 103, 1 << 30, "Base Set 2"},
	{"base set 2", 0, 102, "Base Set"},
	{"xy", 107, 146, "XY"},
	{"flashfire", 1, 106, "Flashfire"},
	{"furious fists", 1, 111, "Furious Fists"},
	{"phantom forces", 1, 119, "Phantom Forces"},
	{"primal clash", 1, 160, "Primal Clash"},
	{"roaring skies", 1, 108, "Roaring Skies"},
	{"ancient origins", 1, 98, "Ancient Origins"},
	{"breakthrough", 1, 162, "BREAKthrough"},
	{"breakpoint", 1, 122, "BREAKpoint"},
	{"fates collide", 1, 124, "Fates Collide"},
	{"steam siege", 1, 114, "Steam Siege"},
	{"evolutions", 1, 108, "Evolutions"},
	{"sun & moon", 1, 149, "Sun & Moon"},
	{"guardians rising", 1, 145, "Guardians Rising"},
	{"burning shadows", 1, 147, "Burning Shadows"},
	{"crimson invasion", 1, 111, "Crimson Invasion"},
	{"ultra prism", 1, 156, "Ultra Prism"},
	{"forbidden light", 1, 131, "Forbidden Light"},
	{"celestial storm", 1, 168, "Celestial Storm"},
	{"lost thunder", 1, 214, "Lost Thunder"},
	{"sword & shield", 1, 202, "Sword & Shield"},
	{"rebel clash", 1, 192, "Rebel Clash"},
	{"darkness ablaze", 1, 189, "Darkness Ablaze"},
	{"vivid voltage", 1, 185, "Vivid Voltage"},
	{"battle styles", 1, 163, "Battle Styles"},
	{"chilling reign", 1, 198, "Chilling Reign"},
	{"evolving skies", 1, 203, "Evolving Skies"},
	{"fusion strike", 1, 264, "Fusion Strike"},
	{"brilliant stars", 1, 174, "Brilliant Stars"},
	{"astral radiance", 1, 189, "Astral Radiance"},
	{"lost origin", 1, 196, "Lost Origin"},
	{"silver tempest", 1, 195, "Silver Tempest"},
	{"scarlet & violet", 1, 198, "Scarlet & Violet"},
	{"paldea evolved", 1, 193, "Paldea Evolved"},
	{"obsidian flames", 1, 197, "Obsidian Flames"},
	{"paradox rift", 1, 182, "Paradox Rift"},
	{"temporal forces", 1, 162, "Temporal Forces"},
	{"twilight masquerade", 1, 167, "Twilight Masquerade"},
	{"stellar crown", 1, 142, "Stellar Crown"},
	{"surging sparks", 1, 191, "Surging Sparks"},
}

// CorrectSetFromNumber returns a corrected set name when the card
// number contradicts or normalizes the extracted set name, or ""
// when no correction applies.
func CorrectSetFromNumber(setName, cardNumber string) string {
	if setName == "" || cardNumber == "" {
		return ""
	}
	m := leadingDigitsRe.FindString(cardNumber)
	if m == "" {
		return ""
	}
	number, err := strconv.Atoi(m)
	if err != nil {
		return ""
	}

	setLower := strings.ToLower(setName)
	for _, c := range numberCorrections {
		if setLower == c.set && number >= c.min && number <= c.max {
			return c.corrected
		}
	}
	return ""
}
