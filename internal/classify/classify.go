// Package classify assigns a news category to an article from keywords in
// its title and description. It backs category views for feeds that carry no
// category of their own.
package classify

import (
	"fmt"
	"strings"
	"unicode"
)

// Category is one of the headline categories.
type Category string

const (
	General       Category = "general"
	Business      Category = "business"
	Entertainment Category = "entertainment"
	Health        Category = "health"
	Science       Category = "science"
	Sports        Category = "sports"
	Technology    Category = "technology"
)

// AllCategories returns every category in display order, General first.
func AllCategories() []Category {
	return []Category{General, Business, Entertainment, Health, Science, Sports, Technology}
}

// General has no keywords: it is what an article falls back to.
var categoryKeywords = map[Category][]string{
	Business: {
		"economy", "economic", "market", "stocks", "shares", "investor", "inflation",
		"interest rate", "central bank", "earnings", "profit", "revenue", "merger",
		"acquisition", "bank", "trade", "tariff", "startup", "ceo", "company",
		"wall street", "recession", "gdp", "jobs report", "oil price",
	},
	Entertainment: {
		"film", "movie", "cinema", "actor", "actress", "celebrity", "music",
		"album", "singer", "concert", "festival", "television", "tv series",
		"netflix", "hollywood", "box office", "oscar", "grammy", "emmy",
		"premiere", "streaming", "theatre", "theater",
	},
	Health: {
		"health", "hospital", "doctor", "nurse", "patient", "disease", "virus",
		"vaccine", "outbreak", "pandemic", "cancer", "medical", "medicine",
		"drug", "mental health", "obesity", "diabetes", "nhs", "surgery",
	},
	Science: {
		"science", "scientist", "research", "researchers", "study", "nasa",
		"space", "planet", "astronomer", "telescope", "climate", "species",
		"fossil", "physics", "chemistry", "biology", "genome", "ocean",
		"earthquake", "volcano", "mars", "moon",
	},
	Sports: {
		"football", "soccer", "basketball", "baseball", "tennis", "cricket",
		"rugby", "golf", "olympic", "championship", "league", "tournament",
		"world cup", "match", "coach", "goal", "score", "season", "nba", "nfl",
		"fifa", "grand prix", "formula 1", "transfer",
	},
	Technology: {
		"tech", "software", "apps", "smartphone", "iphone",
		"android", "google", "apple", "microsoft", "artificial intelligence",
		"ai", "chatbot", "robot", "cyber", "hacker", "data breach", "chip",
		"semiconductor", "internet", "social media", "crypto", "bitcoin",
	},
}

// Aliases maps short CLI names to categories.
var Aliases = map[string]Category{
	"biz":     Business,
	"ent":     Entertainment,
	"sci":     Science,
	"sport":   Sports,
	"tech":    Technology,
	"top":     General,
	"general": General,
}

// Resolve maps an alias or a full category name to a Category.
func Resolve(alias string) (Category, error) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if cat, ok := Aliases[alias]; ok {
		return cat, nil
	}
	for _, cat := range AllCategories() {
		if string(cat) == alias {
			return cat, nil
		}
	}
	valid := make([]string, 0, len(AllCategories()))
	for _, c := range AllCategories() {
		valid = append(valid, string(c))
	}
	return "", fmt.Errorf("unknown category %q (valid: %s)", alias, strings.Join(valid, ", "))
}

// Classify picks the best matching category for an article. Title keywords
// count double. Ties go to the category listed first; no match is General.
func Classify(title, description string) Category {
	titleTokens := tokenize(title)
	descTokens := tokenize(description)
	titleLower := strings.ToLower(title)
	descLower := strings.ToLower(description)

	bestCat := General
	bestScore := 0

	for _, cat := range AllCategories() {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if !strings.Contains(kw, " ") {
				for _, t := range titleTokens {
					if matches(t, kw) {
						score += 2
					}
				}
				for _, t := range descTokens {
					if matches(t, kw) {
						score++
					}
				}
				continue
			}
			if strings.Contains(titleLower, kw) {
				score += 2
			}
			if strings.Contains(descLower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestCat = cat
		}
	}
	return bestCat
}

// matches compares a token with a single-word keyword. Short keywords such as
// "ai" or "nba" must match whole; longer ones match as a prefix, so "market"
// catches "markets".
func matches(token, kw string) bool {
	if len(kw) <= 3 {
		return token == kw
	}
	return strings.HasPrefix(token, kw)
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
