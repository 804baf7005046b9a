package main

import (
	"fmt"

	"github.com/franz/music-notebook/internal/prompt"
	"github.com/franz/music-notebook/internal/util"
	"github.com/spf13/cobra"
)

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the style prompt derived from the builder",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			style := prompt.StylePrompt(s.notes.State().Builder)
			s.printf("%s\n", style)

			if record, _ := cmd.Flags().GetBool("record"); record {
				path := s.notes.Selected()
				if path.VersionID == "" {
					return fmt.Errorf("no version selected to record on: %w", util.ErrNoSelection)
				}
				if err := s.notes.RecordPrompt(path, style); err != nil {
					return fmt.Errorf("failed to save prompt history: %w", err)
				}
				util.InfoLog("Recorded prompt on version %s", shortID(path.VersionID))
			}
			if copyOut, _ := cmd.Flags().GetBool("copy"); copyOut {
				s.copy("style prompt", style)
			}
			return nil
		}),
	}
	cmd.Flags().Bool("copy", false, "copy the prompt to the clipboard")
	cmd.Flags().Bool("record", false, "append the prompt to the selected version's history")
	return cmd
}

func newOutlineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Print the lyric outline of the builder's sections",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			b := s.notes.State().Builder
			outline := prompt.LyricOutline(b.Sections)
			what := "lyric outline"
			if tags, _ := cmd.Flags().GetBool("tags"); tags {
				outline = prompt.LyricSheet(b.MetaTags, b.Sections)
				what = "lyric sheet"
			}
			s.printf("%s\n", outline)

			if copyOut, _ := cmd.Flags().GetBool("copy"); copyOut {
				s.copy(what, outline)
			}
			return nil
		}),
	}
	cmd.Flags().Bool("copy", false, "copy the outline to the clipboard")
	cmd.Flags().Bool("tags", false, "put the builder's meta tags above the outline")
	return cmd
}

// copy puts text on the clipboard and reports the outcome
func (s *session) copy(what, text string) {
	ok := s.clip.Copy(text)
	s.logEvent(s.events.LogCopy(what, ok))
	if ok {
		util.SuccessLog("Copied %s to the clipboard", what)
	} else {
		util.WarnLog("Could not copy %s: no clipboard available (tried %v)", what, s.clip.Methods())
	}
}
