package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/schemafix/pkg/semantic"
)

// generateLexiconDocs generates the built-in lexicon reference.
func generateLexiconDocs(outDir string) error {
	log.Printf("Generating lexicon docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	lex, err := semantic.DefaultLexicon()
	if err != nil {
		return err
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Lexicon", "Concepts the semantic matcher knows")
	w.GeneratedMarker()

	w.Header(1, "Lexicon")
	w.Paragraph(fmt.Sprintf("The built-in lexicon has %d concepts. Names that map to the same concept are "+
		"equivalent; a name whose concept is a descendant of another's is narrower.", lex.Len()))
	w.Paragraph("Extend it with " + InlineCode("--lexicon extra.yaml") + " or " + InlineCode("matcher.lexicon") + ":")
	w.CodeBlock("yaml", `concepts:
  - id: warehouse
    lemmas: [depot, storehouse]`)

	var rows [][]string
	for _, c := range lex.Concepts() {
		parent := "-"
		if c.Parent != "" {
			parent = InlineCode(c.Parent)
		}
		rows = append(rows, []string{InlineCode(c.ID), strings.Join(c.Lemmas, ", "), parent})
	}
	w.Header(2, "Concepts")
	w.Table([]string{"Concept", "Lemmas", "Parent"}, rows)

	filename := filepath.Join(outDir, "lexicon.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated lexicon.md")
	return nil
}
