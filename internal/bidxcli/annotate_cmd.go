package bidxcli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bibleidx/internal/core/ref"
	"bibleidx/internal/core/verse"
)

// splitReference takes the shortest run of leading args that parses as a
// reference and returns it with the remaining args.
func splitReference(args []string) (string, []string, error) {
	err := fmt.Errorf("reference is required")
	for k := 1; k <= len(args); k++ {
		s := strings.Join(args[:k], " ")
		if _, err = ref.Parse(s); err == nil {
			return s, args[k:], nil
		}
	}
	return "", nil, err
}

func newHighlightCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "highlight <reference> <color|none>",
		Short: "Highlight verses in a colour, or clear with none",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			color, err := verse.ParseHighlightColor(args[len(args)-1])
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			addrs, err := s.Resolve(strings.Join(args[:len(args)-1], " "))
			if err != nil {
				return err
			}
			s.Annotations.SetHighlight(cmd.Context(), color, addrs...)
			if err := s.err(); err != nil {
				return err
			}
			emit(cmd, fmt.Sprintf("%s: %s\n", verse.FormatRange(addrs), color.DisplayName()))
			return nil
		},
	}
}

func newBookmarkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark <reference>",
		Short: "Toggle the bookmark on verses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			addrs, err := s.Resolve(strings.Join(args, " "))
			if err != nil {
				return err
			}
			s.Annotations.ToggleBookmark(cmd.Context(), addrs...)
			if err := s.err(); err != nil {
				return err
			}
			state := "removed"
			if r, ok := s.Annotations.Get(cmd.Context(), addrs[0]); ok && r.Bookmarked {
				state = "bookmarked"
			}
			emit(cmd, fmt.Sprintf("%s: %s\n", verse.FormatRange(addrs), state))
			return nil
		},
	}
}

func newBookmarksCommand() *cobra.Command {
	var removeRef string
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "List bookmarked verses in canonical order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if strings.TrimSpace(removeRef) != "" {
				addrs, err := s.Resolve(removeRef)
				if err != nil {
					return err
				}
				for _, a := range addrs {
					s.Annotations.RemoveBookmark(cmd.Context(), a)
				}
				return s.err()
			}

			recs := s.Annotations.Bookmarks(cmd.Context())
			if jsonl(cmd) {
				emit(cmd, RenderJSONL(recs))
				return nil
			}
			emit(cmd, RenderRecords(recs))
			return s.err()
		},
	}
	cmd.Flags().StringVar(&removeRef, "remove", "", "remove the bookmark from these verses instead of listing")
	return cmd
}

func newNoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "note <reference> [text]",
		Short: "Attach a note to one verse; no text clears it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, rest, err := splitReference(args)
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			addrs, err := s.Resolve(reference)
			if err != nil {
				return err
			}
			if len(addrs) != 1 {
				return fmt.Errorf("a note belongs to one verse, %q names %d", reference, len(addrs))
			}
			s.Annotations.SetNote(cmd.Context(), strings.Join(rest, " "), addrs[0])
			return s.err()
		},
	}
}

func newNotesCommand() *cobra.Command {
	var clearRef string
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List verses with notes in canonical order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if strings.TrimSpace(clearRef) != "" {
				addrs, err := s.Resolve(clearRef)
				if err != nil {
					return err
				}
				for _, a := range addrs {
					s.Annotations.ClearNote(cmd.Context(), a)
				}
				return s.err()
			}

			recs := s.Annotations.Notes(cmd.Context())
			if jsonl(cmd) {
				emit(cmd, RenderJSONL(recs))
				return nil
			}
			emit(cmd, RenderRecords(recs))
			return s.err()
		},
	}
	cmd.Flags().StringVar(&clearRef, "clear", "", "clear the notes on these verses instead of listing")
	return cmd
}
