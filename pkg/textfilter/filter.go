package textfilter

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jwebster45206/word-dungeon/pkg/story"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// English words kids are likely to type or models to slip in, with
// child-safe replacements. Matched on word boundaries, plural forms included.
var englishReplacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"dick":         "jerk",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"bullshit":     "baloney",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"stupid":       "silly",
	"idiot":        "goof",
}

// Korean slurs are matched as substrings since particles attach directly
// to the word. Words with innocent uses (새끼 고양이, 시발점) stay out.
var koreanReplacements = map[string]string{
	"씨발":  "이런",
	"ㅅㅂ":  "이런",
	"개새끼": "녀석",
	"병신":  "바보",
	"ㅂㅅ":  "바보",
	"존나":  "정말",
	"닥쳐":  "조용히 해",
	"미친놈": "이상한 녀석",
}

type rule struct {
	re          *regexp.Regexp
	replacement string
	english     bool
}

// ProfanityFilter handles filtering and replacement of profanity
type ProfanityFilter struct {
	rules []rule
}

// NewProfanityFilter creates a new profanity filter
func NewProfanityFilter() *ProfanityFilter {
	pf := &ProfanityFilter{}

	// Longest words first so "asshole" wins over "ass".
	for _, word := range sortedKeys(englishReplacements) {
		pf.rules = append(pf.rules, rule{
			re:          regexp.MustCompile(`(?i)\b(` + regexp.QuoteMeta(word) + `)(e?s)?\b`),
			replacement: englishReplacements[word],
			english:     true,
		})
	}
	for _, word := range sortedKeys(koreanReplacements) {
		pf.rules = append(pf.rules, rule{
			re:          regexp.MustCompile(regexp.QuoteMeta(word)),
			replacement: koreanReplacements[word],
		})
	}
	return pf
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b); la != lb {
			return lb - la
		}
		return strings.Compare(a, b)
	})
	return keys
}

// FilterText replaces profanity in the input text with child-safe alternatives
func (pf *ProfanityFilter) FilterText(text string) string {
	result := text
	for _, r := range pf.rules {
		if !r.english {
			result = r.re.ReplaceAllString(result, r.replacement)
			continue
		}
		result = r.re.ReplaceAllStringFunc(result, func(match string) string {
			sub := r.re.FindStringSubmatch(match)
			word, suffix := sub[1], sub[2]
			replaced := preserveCase(word, r.replacement)
			if suffix != "" {
				replaced += preserveCase(suffix, "s")
			}
			return replaced
		})
	}
	return result
}

// FilterContent filters every player-visible string of a chapter in place.
func (pf *ProfanityFilter) FilterContent(c *story.GeneratedContent) {
	if c == nil {
		return
	}
	c.Title = pf.FilterText(c.Title)
	c.Story = pf.FilterText(c.Story)
	for i := range c.Quizzes {
		q := &c.Quizzes[i]
		q.Question = pf.FilterText(q.Question)
		for j := range q.Options {
			q.Options[j] = pf.FilterText(q.Options[j])
		}
	}
}

// preserveCase applies the case pattern of the original word to the replacement
func preserveCase(original, replacement string) string {
	if len(original) == 0 {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: copy the pattern character by character
	result := []rune(replacement)
	originalRunes := []rune(original)
	for i := range result {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result[i] = unicode.ToUpper(result[i])
		} else {
			result[i] = unicode.ToLower(result[i])
		}
	}
	return string(result)
}

// ContainsProfanity checks if the text contains any profanity
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	for _, r := range pf.rules {
		if r.re.MatchString(text) {
			return true
		}
	}
	return false
}
