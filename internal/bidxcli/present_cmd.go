package bidxcli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bibleidx/internal/presentation"
)

func newPresentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "present",
		Aliases: []string{"presentation"},
		Short:   "Manage verse presentations",
	}
	cmd.AddCommand(
		newPresentListCommand(),
		newPresentCreateCommand(),
		newPresentDeleteCommand(),
		newPresentShowCommand(),
		newPresentAddCommand(),
		newPresentRemoveCommand(),
		newPresentMoveCommand(),
		newPresentSeedCommand(),
	)
	return cmd
}

func newPresentListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List presentations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := s.Presentations.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonl(cmd) {
				emit(cmd, RenderJSONL(list))
				return nil
			}
			emit(cmd, RenderPresentations(list))
			return nil
		},
	}
}

func newPresentCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty presentation and print its id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.Presentations.Create(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if jsonl(cmd) {
				emit(cmd, RenderJSONL([]any{p}))
				return nil
			}
			emit(cmd, p.ID+"\n")
			return nil
		},
	}
}

func newPresentDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a presentation and its slides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Presentations.Delete(cmd.Context(), args[0])
		},
	}
}

func newPresentShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the slides of a presentation in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			slides, err := s.Presentations.Slides(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonl(cmd) {
				emit(cmd, RenderJSONL(slides))
				return nil
			}
			emit(cmd, RenderSlides(slides))
			return nil
		},
	}
}

func newPresentAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <reference>",
		Short: "Append one slide per verse of reference",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			addrs, err := s.Resolve(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			verses := make([]presentation.SlideVerse, 0, len(addrs))
			for _, a := range addrs {
				text, err := s.VerseText(a)
				if err != nil {
					return err
				}
				verses = append(verses, presentation.SlideVerse{Address: a, Text: text})
			}
			slides, err := s.Presentations.AddSlides(cmd.Context(), args[0], verses)
			if err != nil {
				return err
			}
			if jsonl(cmd) {
				emit(cmd, RenderJSONL(slides))
				return nil
			}
			emit(cmd, fmt.Sprintf("added %d slide(s)\n", len(slides)))
			return nil
		},
	}
}

func newPresentRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <slide-id>",
		Short: "Remove one slide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Presentations.DeleteSlide(cmd.Context(), args[0])
		},
	}
}

func newPresentMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <from> <to>",
		Short: "Move a slide; positions count from 1 as show prints them",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := position(args[1])
			if err != nil {
				return err
			}
			to, err := position(args[2])
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			slides, err := s.Presentations.MoveSlide(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			if jsonl(cmd) {
				emit(cmd, RenderJSONL(slides))
				return nil
			}
			emit(cmd, RenderSlides(slides))
			return nil
		},
	}
}

func position(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid slide position %q (expected 1 or more)", s)
	}
	return n - 1, nil
}

func newPresentSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the " + presentation.RoadName + " presentation when none exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			seeded, err := s.Presentations.SeedRomanRoad(cmd.Context())
			if err != nil {
				return err
			}
			if seeded {
				emit(cmd, "seeded "+presentation.RoadName+"\n")
			} else {
				emit(cmd, "presentations exist, nothing seeded\n")
			}
			return nil
		},
	}
}
