package bidxcli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Word index management",
	}

	cmd.AddCommand(newIndexBuildCommand())
	return cmd
}

func newIndexBuildCommand() *cobra.Command {
	var (
		workers int
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build (or bring up to date) the whole-word verse index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.BuildIndex(cmd.Context(), force, workers)
			if err != nil {
				return err
			}
			if jsonl(cmd) {
				emit(cmd, RenderJSONL([]any{st}))
				return nil
			}
			emit(cmd, fmt.Sprintf("books=%d indexed=%d skipped=%d removed=%d verses=%d\n",
				st.Books, st.Indexed, st.Skipped, st.Removed, st.Verses))
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "number of parallel document readers (default: GOMAXPROCS)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "reindex every book even when unchanged")
	return cmd
}
