package recommend

import (
	"sort"
	"strings"

	"github.com/lexio-app/lexio/internal/content"
)

var defaultSuggestions = []string{"Recommend something", "Show summary", "Everything"}

var topics = []struct {
	keywords   []string
	suggestion string
}{
	{[]string{"action", "reasoning", "model", "ai", "artificial intelligence"}, "AI models"},
	{[]string{"robot", "robotics", "embodiment", "manipulation"}, "Robotics"},
	{[]string{"vision", "language", "multimodal", "perception"}, "Vision-language models"},
	{[]string{"3d", "space", "spatial", "geometry", "depth"}, "Spatial reasoning"},
	{[]string{"training", "dataset", "performance", "evaluation"}, "Model training"},
	{[]string{"open source", "open model", "research"}, "Open research"},
	{[]string{"trade", "network", "trading", "commerce", "economic"}, "Trade networks"},
	{[]string{"mongol", "empire", "expansion", "conquest"}, "Mongol Empire"},
	{[]string{"islamic", "islam", "muslim", "caliphate"}, "Islamic expansion"},
	{[]string{"technology", "innovation", "invention", "technical"}, "Technology innovations"},
	{[]string{"disease", "plague", "black death", "pandemic"}, "Disease impact"},
	{[]string{"climate", "environment", "environmental"}, "Environmental factors"},
	{[]string{"culture", "cultural", "exchange", "diffusion"}, "Cultural exchange"},
	{[]string{"political", "politics", "government", "power"}, "Political systems"},
	{[]string{"social", "society", "class", "hierarchy"}, "Social structures"},
	{[]string{"military", "warfare", "conflict", "battle"}, "Military history"},
}

const maxSuggestions = 6

// Suggestions proposes up to six requests: the three topics that occur most
// often in the candidates, then the generic prompts.
func Suggestions(candidates []content.Candidate) []string {
	var b strings.Builder
	for _, c := range candidates {
		b.WriteString(strings.ToLower(c.Title + " " + c.Content))
		b.WriteByte(' ')
	}
	text := b.String()

	type hit struct {
		suggestion string
		count      int
	}
	var hits []hit
	for _, t := range topics {
		n := 0
		for _, k := range t.keywords {
			n += strings.Count(text, k)
		}
		if n > 0 {
			hits = append(hits, hit{t.suggestion, n})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].count > hits[j].count })
	if len(hits) > 3 {
		hits = hits[:3]
	}

	out := make([]string, 0, maxSuggestions)
	for _, h := range hits {
		out = append(out, h.suggestion)
	}
	out = append(out, defaultSuggestions...)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
