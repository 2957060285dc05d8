package bidxcli

import (
	"strings"

	"github.com/spf13/cobra"

	"bibleidx/internal/core/group"
	"bibleidx/internal/core/search"
)

func newSearchCommand() *cobra.Command {
	var (
		groupName string
		mode      string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find verses containing a phrase or words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := group.Parse(groupName)
			if err != nil {
				return err
			}
			opts := optionsFrom(cmd)
			if strings.TrimSpace(mode) == "" {
				mode = opts.Config.Search.Mode
			}
			m, err := search.ParseMode(mode)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = opts.Config.Search.Limit
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			results := s.Engine.Search(cmd.Context(), search.Request{
				Query: strings.Join(args, " "),
				Group: g,
				Mode:  m,
				Limit: limit,
			})
			if jsonl(cmd) {
				emit(cmd, RenderJSONL(results))
				return nil
			}
			emit(cmd, RenderResults(results))
			return nil
		},
	}
	cmd.Flags().StringVarP(&groupName, "group", "g", "", "search scope (default: all books)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "match mode: phrase|all-words|indexed")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (0: no limit)")
	return cmd
}
