package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/lexio-app/lexio/internal/apperr"
	"github.com/lexio-app/lexio/internal/provider/elevenlabs"
)

var (
	voicesCmd = &cobra.Command{
		Use:   "voices",
		Short: "List the available voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, creds, needPrefs)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			current, _ := a.voice(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), voiceTable(a.voices(ctx), current))
			return nil
		},
	}

	voiceCmd = &cobra.Command{
		Use:   "voice [ID|NAME]",
		Short: "Show or set the voice used for listening",
		Long: paragraph(fmt.Sprintf("\n%s the voice lexio speaks with. Without an argument, print the current voice. Names are matched fuzzily, so %s selects Stuart.",
			keyword("Show or set"), keyword("stu"))),
		Example: paragraph("lexio voice\nlexio voice archer\nlexio voice HDA9tsk27wYi3uq0fPcK"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, creds, needPrefs)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			voices := a.voices(ctx)
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				id, source := a.voice(ctx)
				fmt.Fprintf(w, "%s (%s)\n", voiceLabel(voices, id), dim(source))
				return nil
			}

			v, err := resolveVoice(voices, args[0])
			if err != nil {
				return err
			}
			if err := saveVoice(ctx, a, v.ID); err != nil {
				return err
			}
			fmt.Fprintf(w, "Voice set to %s\n", keyword(v.Name))
			if cfg.Voice != "" && cfg.Voice != v.ID {
				fmt.Fprintln(w, dim("Note: the voice setting in your config file takes precedence."))
			}
			return nil
		},
	}
)

func saveVoice(ctx context.Context, a *app, id string) error {
	if err := a.prefs.SetVoice(ctx, id); err != nil {
		return fmt.Errorf("unable to save voice: %w", err)
	}
	return nil
}

type voiceNames []elevenlabs.Voice

func (v voiceNames) String(i int) string { return v[i].Name }
func (v voiceNames) Len() int            { return len(v) }

// resolveVoice finds a voice by exact id, then by case-insensitive name,
// then by the best fuzzy name match.
func resolveVoice(voices []elevenlabs.Voice, query string) (elevenlabs.Voice, error) {
	if v, ok := elevenlabs.FindVoice(voices, query); ok {
		return v, nil
	}
	for _, v := range voices {
		if strings.EqualFold(v.Name, query) {
			return v, nil
		}
	}
	matches := fuzzy.FindFrom(query, voiceNames(voices))
	if len(matches) == 0 {
		return elevenlabs.Voice{}, apperr.Validation(fmt.Sprintf("Unknown voice %q. Run 'lexio voices' to list them.", query))
	}
	return voices[matches[0].Index], nil
}

func voiceLabel(voices []elevenlabs.Voice, id string) string {
	if v, ok := elevenlabs.FindVoice(voices, id); ok {
		return fmt.Sprintf("%s %s", keyword(v.Name), dim(v.ID))
	}
	return id
}

var (
	voiceHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	voiceCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	voiceActiveStyle = voiceCellStyle.Foreground(lipgloss.Color("#04B575"))
)

func voiceTable(voices []elevenlabs.Voice, current string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"})).
		Headers("", "NAME", "ACCENT", "DESCRIPTION", "ID").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return voiceHeaderStyle
			case row >= 0 && row < len(voices) && voices[row].ID == current:
				return voiceActiveStyle
			default:
				return voiceCellStyle
			}
		})
	for _, v := range voices {
		marker := ""
		if v.ID == current {
			marker = "●"
		}
		t.Row(marker, v.Name, v.Accent, v.Description, v.ID)
	}
	return t.String()
}
