package bidxcli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bibleidx/internal/index/backend"
	"bibleidx/internal/index/sqlite"
	"bibleidx/internal/index/store"
)

var infoPragmas = []string{"journal_mode", "foreign_keys", "page_count", "page_size"}

func newDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Annotation database maintenance",
	}
	cmd.AddCommand(newDBInfoCommand())
	return cmd
}

func newDBInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the annotation store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()

			type field struct{ key, value string }
			fields := []field{{"backend", s.Store.Backend()}}
			if s.Store.Backend() == backend.SQLite {
				fields = append(fields,
					field{"database", s.Config.Database},
					field{"driver", sqlite.Driver()},
				)
			}
			if pr, ok := s.Store.(store.PragmaReader); ok {
				vals, err := pr.Pragmas(ctx, infoPragmas...)
				if err != nil {
					return err
				}
				for _, name := range infoPragmas {
					fields = append(fields, field{name, vals[name]})
				}
			}
			list, err := s.Presentations.List(ctx)
			if err != nil {
				return err
			}
			fields = append(fields,
				field{"bookmarks", fmt.Sprint(len(s.Annotations.Bookmarks(ctx)))},
				field{"notes", fmt.Sprint(len(s.Annotations.Notes(ctx)))},
				field{"presentations", fmt.Sprint(len(list))},
			)

			if jsonl(cmd) {
				obj := make(map[string]string, len(fields))
				for _, f := range fields {
					obj[f.key] = f.value
				}
				emit(cmd, RenderJSONL([]map[string]string{obj}))
				return nil
			}
			var b strings.Builder
			for _, f := range fields {
				_, _ = fmt.Fprintf(&b, "%s: %s\n", f.key, f.value)
			}
			emit(cmd, b.String())
			return s.err()
		},
	}
}
