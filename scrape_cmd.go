package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lexio-app/lexio/internal/content"
	"github.com/lexio-app/lexio/internal/queue"
	"github.com/lexio-app/lexio/internal/timing"
)

var (
	scrapePlain bool
	scrapeCopy  bool
	scrapeNoLLM bool

	scrapeCmd = &cobra.Command{
		Use:     "scrape URL",
		Short:   "Print the sections of a page",
		Long:    paragraph(fmt.Sprintf("\n%s a web page and print the sections lexio would offer for listening.", keyword("Scrape"))),
		Example: paragraph("lexio scrape https://example.com/article\nlexio scrape --plain --copy https://example.com/article"),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg, creds, needScraper)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			doc, err := a.scrape(cmd.Context(), args[0], cfg.LLMExtraction && !scrapeNoLLM)
			if err != nil {
				return err
			}

			md := documentMarkdown(doc)
			if scrapeCopy {
				if err := clipboard.WriteAll(doc.CleanText); err != nil {
					log.Warn("Unable to copy to clipboard", "error", err)
				} else {
					fmt.Fprintln(os.Stderr, dim("Copied "+humanize.Bytes(uint64(len(doc.CleanText)))+" of speakable text."))
				}
			}
			if scrapePlain {
				_, err := io.WriteString(cmd.OutOrStdout(), md)
				return err //nolint:wrapcheck
			}
			return renderMarkdown(cmd.OutOrStdout(), md)
		},
	}

	askCmd = &cobra.Command{
		Use:     "ask URL REQUEST",
		Short:   "Ask which sections of a page match a request",
		Long:    paragraph(fmt.Sprintf("\n%s which sections of a page match a request, the same way %s does.", keyword("Ask"), keyword("lexio listen --ask"))),
		Example: paragraph("lexio ask https://example.com/history \"how did trade spread technology\""),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, creds, needScraper)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			doc, err := a.scrape(ctx, args[0], cfg.LLMExtraction)
			if err != nil {
				return err
			}
			r, err := a.recommender.Recommend(ctx, args[1], doc.Candidates(func(string) bool { return false }))
			if err != nil {
				return err //nolint:wrapcheck
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, paragraph(r.Text))
			fmt.Fprintln(w)
			for n, title := range r.Titles {
				fmt.Fprintf(w, "  %s %s\n", keyword(fmt.Sprintf("%d.", n+1)), title)
			}
			if r.IncludeSummary {
				fmt.Fprintf(w, "  %s Summary\n", keyword("+"))
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, dim(fmt.Sprintf("  %s (%s)", r.Explanation, r.Source)))
			return nil
		},
	}
)

func init() {
	scrapeCmd.Flags().BoolVarP(&scrapePlain, "plain", "p", false, "print markdown without rendering")
	scrapeCmd.Flags().BoolVarP(&scrapeCopy, "copy", "c", false, "copy the speakable text to the clipboard")
	scrapeCmd.Flags().BoolVar(&scrapeNoLLM, "no-llm", false, "skip LLM extraction")
}

// documentMarkdown lists the sections of doc with their estimated speaking
// time at the configured speed.
func documentMarkdown(doc content.Document) string {
	var b strings.Builder
	title := doc.Title
	if title == "" {
		title = doc.URL
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_%s · %d sections_\n\n", doc.URL, len(doc.Sections))

	summary := doc.SummaryItem()
	fmt.Fprintf(&b, "## Summary (%s)\n\n%s\n\n", speakingTime(summary), content.Summary(summary.Content, content.DefaultSummaryLength))

	for i := range doc.Sections {
		item, _ := doc.SectionItem(i)
		fmt.Fprintf(&b, "## %d. %s (%s)\n\n%s\n\n", i+1, item.Title, speakingTime(item), content.Summary(item.Content, content.DefaultSummaryLength))
	}
	return b.String()
}

func speakingTime(item queue.Item) string {
	words := timing.Words(content.SanitizeForSpeech(item.Content))
	schedule := timing.EstimateWith(words, cfg.Speed, timing.Params{BaseWPM: cfg.Sync.BaseWPM})
	return formatSeconds(schedule.Total())
}

func formatSeconds(s float64) string {
	total := int(s + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func renderMarkdown(w io.Writer, md string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		glamourStyle(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}
	if _, err := fmt.Fprint(w, out); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	return nil
}

func glamourStyle(style string) glamour.TermRendererOption {
	if style == styles.AutoStyle {
		return glamour.WithAutoStyle()
	}
	if _, ok := styles.DefaultStyles[style]; ok {
		return glamour.WithStandardStyle(style)
	}
	return glamour.WithStylePath(style)
}
