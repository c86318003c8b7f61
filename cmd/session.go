package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizarcade/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or change the stored session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := d.manager().Load(cmd.Context())
		if err != nil {
			return err
		}
		if s == nil {
			fmt.Println("No active session. Run `quizarcade generate <file>` or upload a document in the play view.")
			return nil
		}
		printSession(s)
		return nil
	},
}

var sessionGoToCmd = &cobra.Command{
	Use:   "goto <n>",
	Short: "Move to question n (1-based, clamped to the session)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid question number %q: %w", args[0], err)
		}

		d, err := openDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := d.manager().GoTo(cmd.Context(), n-1)
		if err != nil {
			return err
		}
		fmt.Printf("Question %d of %d\n", s.Index+1, s.Len())
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.manager().Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Session cleared.")
		return nil
	},
}

func printSession(s *session.Session) {
	fmt.Printf("Session:   %s\n", s.ID)
	fmt.Printf("Created:   %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Position:  Question %d of %d\n\n", s.Index+1, s.Len())
	for i, inst := range s.Instances {
		marker := " "
		if i == s.Index {
			marker = "▸"
		}
		fmt.Printf("%s %2d. %-10s  %-20s  %s\n",
			marker, i+1, inst.Question.Type, truncate(inst.Template.Name, 20), inst.Question.Prompt)
	}
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionGoToCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}
