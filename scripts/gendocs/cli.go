package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/schemafix/internal/cli"
	"github.com/leapstack-labs/schemafix/internal/cli/commands"
	"github.com/leapstack-labs/schemafix/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// commandDoc is what one reference page shows about a command.
type commandDoc struct {
	Name    string
	Summary string
	Body    string
	Usage   string
	Flags   [][]string
	Example string
}

// collectCommands returns the documented subcommands of root in cobra's
// order. Hidden and help commands are left out.
func collectCommands(root *cobra.Command) []commandDoc {
	var docs []commandDoc
	for _, cmd := range root.Commands() {
		if !cmd.IsAvailableCommand() || cmd.Name() == "help" {
			continue
		}
		body := cmd.Long
		if body == "" {
			body = cmd.Short
		}
		docs = append(docs, commandDoc{
			Name:    cmd.Name(),
			Summary: cleanDescription(cmd.Short),
			Body:    body,
			Usage:   cmd.UseLine(),
			Flags:   flagRows(cmd.LocalNonPersistentFlags()),
			Example: dedent(cmd.Example),
		})
	}
	return docs
}

// generateCLIDocs writes index.md plus one page per command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	docs := collectCommands(root)

	if err := writePage(outDir, "index.md", renderCLIIndex(root, docs)); err != nil {
		return err
	}
	for _, d := range docs {
		if err := writePage(outDir, d.Name+".md", renderCommandPage(d)); err != nil {
			return err
		}
	}
	return nil
}

func writePage(outDir, name string, content []byte) error {
	if err := os.WriteFile(filepath.Join(outDir, name), content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	log.Printf("  Generated %s", name)
	return nil
}

func renderCLIIndex(root *cobra.Command, docs []commandDoc) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for schemafix")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)

	var rows [][]string
	for _, d := range docs {
		rows = append(rows, []string{fmt.Sprintf("[%s](%s.md)", InlineCode(d.Name), d.Name), d.Summary})
	}
	w.Header(2, "Commands")
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Table(flagHeaders, flagRows(root.PersistentFlags()))

	w.Header(2, "Environment Variables")
	w.Paragraph("Each configuration key has a " + InlineCode(config.EnvPrefix) +
		" variable. Flags override variables, which override " + InlineCode(config.ConfigFileName) + ".")
	w.Table([]string{"Variable", "Key"}, envRows(getConfigSchema()))

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Every name resolved or already existed"},
		{InlineCode(fmt.Sprint(commands.ExitCodeResolution)), "A name had no candidate or more than one plausible candidate"},
		{InlineCode("1"), "Anything else: configuration, connection, parse or I/O errors"},
	})

	return w.Bytes()
}

func renderCommandPage(d commandDoc) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(d.Name, d.Summary)
	w.GeneratedMarker()

	w.Header(1, d.Name)
	w.Paragraph(d.Body)
	w.CodeBlock("bash", d.Usage)

	if len(d.Flags) > 0 {
		w.Header(2, "Options")
		w.Table(flagHeaders, d.Flags)
		w.Paragraph("Global options are listed in the [CLI reference](index.md).")
	}
	if d.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", d.Example)
	}
	return w.Bytes()
}

var flagHeaders = []string{"Option", "Default", "Description"}

// flagRows renders visible flags as "-s, --name" with non-zero defaults.
func flagRows(flags *pflag.FlagSet) [][]string {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		def := "-"
		switch f.DefValue {
		case "", "false", "0", "[]":
		default:
			def = InlineCode(f.DefValue)
		}
		rows = append(rows, []string{InlineCode(name), def, cleanDescription(f.Usage)})
	})
	return rows
}

// envRows maps configuration fields onto their environment variables.
func envRows(fields []ConfigField) [][]string {
	var rows [][]string
	for _, f := range fields {
		key := f.Name
		if f.Category != "general" {
			key = f.Category + "." + f.Name
		}
		if f.Type == "map[string]string" || f.Type == "map[string]any" {
			continue
		}
		env := config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
		rows = append(rows, []string{InlineCode(env), InlineCode(key)})
	}
	return rows
}

// dedent strips the indentation shared by every non-blank line.
func dedent(text string) string {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		lines[i] = line[min(max(indent, 0), len(line)):]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
