package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizarcade/internal/quiz"
	"github.com/abhisek/quizarcade/internal/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage game templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		list, err := d.store.TemplateRepo().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No templates. Run `quizarcade templates seed` to add the built-in ones.")
			return nil
		}

		fmt.Printf("%-36s  %-10s  %-24s  %8s  %s\n", "ID", "Type", "Name", "Bytes", "Controls")
		fmt.Println(strings.Repeat("─", 96))
		for _, t := range list {
			fmt.Printf("%-36s  %-10s  %-24s  %8d  %d\n",
				t.ID, t.SupportedType, truncate(t.Name, 24), len(t.Code), len(t.Controls))
		}
		return nil
	},
}

var templatesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the built-in templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		for _, t := range templates.Seed() {
			if err := d.store.TemplateRepo().Upsert(cmd.Context(), t); err != nil {
				return fmt.Errorf("seed %s: %w", t.ID, err)
			}
			fmt.Printf("Installed %s (%s)\n", t.Name, t.SupportedType)
		}
		return nil
	},
}

var templatesImportCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Add a template from an HTML document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		qt := quiz.QuestionType(typ)
		if !qt.Valid() {
			return fmt.Errorf("invalid --type %q (want mcq or true_false)", typ)
		}

		code, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			id = uuid.NewString()
		}
		instructions, _ := cmd.Flags().GetString("instructions")
		controls, _ := cmd.Flags().GetString("controls")

		t := templates.Template{
			ID:            id,
			Name:          name,
			Code:          string(code),
			Controls:      templates.NormalizeControls(controls),
			Instructions:  instructions,
			SupportedType: qt,
		}

		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.store.TemplateRepo().Upsert(cmd.Context(), t); err != nil {
			return fmt.Errorf("save template: %w", err)
		}
		fmt.Printf("Imported %s as %s (%d controls)\n", name, id, len(t.Controls))
		return nil
	},
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.store.TemplateRepo().Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete template: %w", err)
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	templatesImportCmd.Flags().String("type", "", "Supported question type: mcq or true_false")
	templatesImportCmd.Flags().String("name", "", "Display name (default: file name)")
	templatesImportCmd.Flags().String("id", "", "Template ID (default: random UUID)")
	templatesImportCmd.Flags().String("instructions", "", "How to play")
	templatesImportCmd.Flags().String("controls", "", `Controls as JSON, e.g. '[{"keys":["Space"],"description":"Jump"}]'`)
	templatesImportCmd.MarkFlagRequired("type")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesSeedCmd)
	templatesCmd.AddCommand(templatesImportCmd)
	templatesCmd.AddCommand(templatesDeleteCmd)
}
