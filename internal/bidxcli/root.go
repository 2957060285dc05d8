package bidxcli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bibleidx/internal/app"
	"bibleidx/internal/logging"
	"bibleidx/internal/version"
)

func NewRootCommand() *cobra.Command {
	opts := newDefaultOptions()
	cmd := &cobra.Command{
		Use:          "bidx",
		Short:        "Read, search and annotate a local Bible corpus",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.Version = version.String()
	cmd.InitDefaultVersionFlag()
	if f := cmd.Flags().Lookup("version"); f != nil {
		f.Shorthand = "v"
	}

	withOptionsContext(cmd, opts)
	bindFlags(cmd, opts)

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if opts := optionsFrom(cmd); opts != nil {
			return opts.Prepare()
		}
		return nil
	}

	cmd.AddCommand(newBooksCommand())
	cmd.AddCommand(newReadCommand())
	cmd.AddCommand(newSearchCommand())
	cmd.AddCommand(newHighlightCommand())
	cmd.AddCommand(newBookmarkCommand())
	cmd.AddCommand(newBookmarksCommand())
	cmd.AddCommand(newNoteCommand())
	cmd.AddCommand(newNotesCommand())
	cmd.AddCommand(newIndexCommand())
	cmd.AddCommand(newPresentCommand())
	cmd.AddCommand(newDBCommand())
	return cmd
}

// session is an opened App plus the annotation failures reported while a
// command ran.
type session struct {
	*app.App
	failed error
}

// err returns the annotation failures seen so far.
func (s *session) err() error { return s.failed }

func openSession(cmd *cobra.Command) (*session, error) {
	opts := optionsFrom(cmd)
	if opts == nil {
		return nil, fmt.Errorf("options missing")
	}
	log, err := logging.New(logging.Options{
		Level:  opts.Config.Log.Level,
		Format: opts.Config.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	s := &session{}
	a, err := app.Open(opts.Config, log, app.WithAnnotationErrors(func(op string, err error) {
		s.failed = errors.Join(s.failed, fmt.Errorf("%s: %w", op, err))
	}))
	if err != nil {
		return nil, err
	}
	s.App = a
	return s, nil
}

func jsonl(cmd *cobra.Command) bool {
	opts := optionsFrom(cmd)
	return opts != nil && opts.Jsonl
}

func emit(cmd *cobra.Command, s string) {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), s)
}
