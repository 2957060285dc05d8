package bidxcli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bibleidx/internal/core/group"
	"bibleidx/internal/core/ref"
)

func newBooksCommand() *cobra.Command {
	var groupName string
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the books of the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := group.Parse(groupName)
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.Corpus.BookNames()
			if err != nil {
				return err
			}
			names = group.FilterBooks(g, names)
			if jsonl(cmd) {
				emit(cmd, RenderJSONL(names))
				return nil
			}
			emit(cmd, RenderLines(names))
			return nil
		},
	}
	cmd.Flags().StringVarP(&groupName, "group", "g", "", "only books of this group (e.g. gospels, old-testament)")
	return cmd
}

func newReadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read <reference>",
		Short: "Print a chapter or verse span with its annotations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ref.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ch, err := s.Corpus.Chapter(r.Book, r.Chapter)
			if err != nil {
				return err
			}
			items := ChapterItems(r.Book, ch, s.Annotations.ForChapter(cmd.Context(), r.Book, r.Chapter), r.Contains)
			if len(items) == 0 {
				return fmt.Errorf("no verses in %s", r)
			}
			if jsonl(cmd) {
				emit(cmd, RenderJSONL(items))
				return nil
			}
			emit(cmd, RenderChapter(r.String(), items))
			return nil
		},
	}
}
