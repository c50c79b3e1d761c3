package recommend

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lexio-app/lexio/internal/content"
)

type category struct {
	primary   []string
	secondary []string
	context   []string
}

var categories = []category{
	{ // trade
		primary:   []string{"trade network", "trading route", "silk road", "commercial network", "trade route"},
		secondary: []string{"trade", "trading", "commerce", "commercial", "merchant", "goods", "exchange", "market"},
		context:   []string{"facilitated", "enabled", "spread", "connected", "linked"},
	},
	{ // technology
		primary:   []string{"technological innovation", "technology transfer", "technological advancement", "innovation spread"},
		secondary: []string{"technology", "innovation", "invention", "technical", "advancement", "development"},
		context:   []string{"facilitated", "enabled", "spread", "transferred", "adopted", "diffused"},
	},
	{ // mongol
		primary:   []string{"mongol empire", "pax mongolica", "mongol expansion", "genghis khan"},
		secondary: []string{"mongol", "mongols", "khan", "yuan dynasty"},
		context:   []string{"conquered", "united", "controlled", "expanded"},
	},
	{ // islamic
		primary:   []string{"islamic expansion", "dar al-islam", "islamic golden age", "abbasid caliphate"},
		secondary: []string{"islam", "islamic", "muslim", "caliphate", "sultanate"},
		context:   []string{"expansion", "spread", "influence", "culture"},
	},
	{ // environment
		primary:   []string{"black death", "bubonic plague", "demographic crisis", "climate change"},
		secondary: []string{"plague", "disease", "epidemic", "climate", "environment", "weather"},
		context:   []string{"devastated", "affected", "spread", "killed", "changed"},
	},
}

var (
	everything   = regexp.MustCompile(`\b(everything|all|complete|full|entire|whole)\b`)
	summaryWords = []string{"summary", "overview", "brief", "summarize", "main points", "key points"}
)

var concepts = []struct {
	concept string
	related []string
}{
	{"trade networks", []string{"economic exchange", "commercial routes", "merchant activity", "goods flow"}},
	{"technological innovation", []string{"new technology", "inventions", "technical advancement", "knowledge transfer"}},
	{"facilitated", []string{"enabled", "promoted", "encouraged", "supported", "helped spread"}},
	{"during this period", []string{"at this time", "in this era", "throughout this period", "during these years"}},
}

var negatives = []struct {
	user    []string
	section []string
	penalty int
}{
	{[]string{"trade", "network"}, []string{"religion", "spiritual", "prayer"}, -15},
	{[]string{"technology", "innovation"}, []string{"political", "governance", "administration"}, -10},
	{[]string{"economic"}, []string{"warfare", "military", "battle"}, -8},
}

const (
	keepScore    = 10
	minKeepScore = 15
	fallbackMin  = 5
	maxPicks     = 3
)

// Local scores candidates against query with keyword tables and returns at
// most three strong matches, or the single best weak match.
func Local(query string, candidates []content.Candidate) Result {
	msg := strings.ToLower(query)
	includeSummary := containsAny(msg, summaryWords)

	if everything.MatchString(msg) {
		r := Result{
			IncludeSummary: true,
			Explanation:    "User requested all available content",
			Source:         SourceLocal,
		}
		for _, c := range candidates {
			r.Indices = append(r.Indices, c.Index)
			r.Titles = append(r.Titles, c.Title)
		}
		r.Text = fmt.Sprintf("Perfect! I've added all available content to your queue (%d sections + summary). You'll get the complete learning experience about this topic!", len(candidates))
		return r
	}

	type scored struct {
		c     content.Candidate
		score int
	}
	var kept []scored
	for _, c := range candidates {
		if s := Score(msg, c); s > keepScore {
			kept = append(kept, scored{c, s})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })

	r := Result{IncludeSummary: includeSummary, Source: SourceLocal}
	if len(kept) > 0 {
		minScore := max(float64(kept[0].score)*0.6, minKeepScore)
		for _, k := range kept {
			if len(r.Indices) < maxPicks && float64(k.score) >= minScore {
				r.Indices = append(r.Indices, k.c.Index)
				r.Titles = append(r.Titles, k.c.Title)
			}
		}
		if len(r.Indices) == 0 && kept[0].score > fallbackMin {
			r.Indices = append(r.Indices, kept[0].c.Index)
			r.Titles = append(r.Titles, kept[0].c.Title)
		}
	}

	switch len(r.Indices) {
	case 0:
		r.Text = "I couldn't find content that closely matches your specific request. Try being more specific with key terms, or say 'everything' to explore all available content."
	case 1:
		r.Text = fmt.Sprintf("Great! I found 1 highly relevant section: %q. This content directly relates to your question.", r.Titles[0])
	default:
		r.Text = fmt.Sprintf("Perfect! I found %d sections that are highly relevant to your request: %s. These focus specifically on what you asked about.", len(r.Indices), strings.Join(r.Titles, ", "))
	}
	if includeSummary {
		r.Text += " I've also included the summary to give you a good overview."
	}
	r.Explanation = fmt.Sprintf("Enhanced contextual analysis with relevance scoring (%d sections matched)", len(r.Indices))
	return r
}

// Score rates how well candidate c answers msg, which must be lower case.
func Score(msg string, c content.Candidate) int {
	text := strings.ToLower(c.Title + " " + c.Content)
	words := longWords(msg)
	score := 0

	for i := 0; i+1 < len(words); i++ {
		if strings.Contains(text, words[i]+" "+words[i+1]) {
			score += 15
		}
	}

	for _, cm := range concepts {
		if !strings.Contains(msg, cm.concept) {
			continue
		}
		for _, term := range cm.related {
			if strings.Contains(text, term) {
				score += 10
			}
		}
	}

	for _, cat := range categories {
		userPrimary := containsAny(msg, cat.primary)
		textPrimary := containsAny(text, cat.primary)
		userSecondary := containsAny(msg, cat.secondary)
		textSecondary := containsAny(text, cat.secondary)

		if userPrimary && textPrimary {
			score += 25
		}
		if userSecondary && textSecondary {
			score += 15
		}
		if (userPrimary || userSecondary) && (textPrimary || textSecondary) &&
			containsAny(msg, cat.context) && containsAny(text, cat.context) {
			score += 10
		}
	}

	titleWords := strings.Fields(strings.ToLower(c.Title))
	for _, w := range words {
		for _, tw := range titleWords {
			if strings.Contains(tw, w) || strings.Contains(w, tw) {
				score += 8
				break
			}
		}
	}

	for _, n := range negatives {
		if containsAny(msg, n.user) && containsAny(text, n.section) {
			score += n.penalty
		}
	}
	return score
}

// longWords returns the words of s longer than three characters.
func longWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if utf8.RuneCountInString(w) > 3 {
			out = append(out, w)
		}
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
