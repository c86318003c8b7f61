package cmd

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizarcade/internal/extract"
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Extract questions from a document and create a new session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		d, err := openDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		ext, err := d.extractor(ctx)
		if err != nil {
			return fmt.Errorf("configure extractor: %w", err)
		}

		if key, err := d.archive(ctx).Put(ctx, doc.Name, doc.ContentType, doc.Data); err != nil {
			fmt.Fprintf(os.Stderr, "warning: archive upload: %v\n", err)
		} else if key != "" {
			fmt.Printf("Archived as %s\n", key)
		}

		fmt.Printf("Extracting questions from %s...\n", doc.Name)
		questions, err := ext.Extract(ctx, doc)
		if err != nil {
			return err
		}

		s, err := d.manager().Create(ctx, questions)
		if err != nil {
			return err
		}

		fmt.Printf("Session created: %d games.\n", s.Len())
		for i, inst := range s.Instances {
			fmt.Printf("  %2d. [%s] %s\n", i+1, inst.Template.Name, inst.Question.Prompt)
		}
		fmt.Printf("Open http://%s/play to start.\n", resolveAddr(cmd, d.cfg))
		return nil
	},
}

func readDocument(path string) (extract.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Document{}, fmt.Errorf("read document: %w", err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return extract.Document{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}
