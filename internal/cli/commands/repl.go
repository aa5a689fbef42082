package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/schemafix/internal/cli/output"
	"github.com/leapstack-labs/schemafix/internal/sqlident"
	"github.com/leapstack-labs/schemafix/pkg/catalog"
	"github.com/leapstack-labs/schemafix/pkg/semantic"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "schemafix> "
	replContPrompt = "      ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Resolve queries interactively",
		Long: `Start an interactive shell that resolves each SQL statement against the
catalog. Statements end with a semicolon and may span lines.

Type .help for the dot-commands.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return err
	}
	factory, err := cmdCtx.NewFactory()
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newCatalogCompleter(cat),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schemafix REPL (%d tables)\n", cat.Len())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	s := &replSession{cat: cat, factory: factory, r: cmdCtx.Renderer, cmdCtx: cmdCtx}
	return s.loop(rl)
}

// lineReader is the part of *readline.Instance the loop uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(string)
}

// replSession evaluates REPL input against one catalog.
type replSession struct {
	cat     *catalog.Catalog
	factory *semantic.Factory
	r       *output.Renderer
	cmdCtx  *CommandContext
	buf     strings.Builder
}

func (s *replSession) loop(rl lineReader) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if quit := s.handleLine(line); quit {
			return nil
		}
		if s.buf.Len() > 0 {
			rl.SetPrompt(replContPrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

// handleLine evaluates one input line and reports whether to quit.
func (s *replSession) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.handleDotCommand(line)
	}

	// Accumulate multi-line SQL until semicolon
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString(" ")
		return false
	}
	query := strings.TrimSuffix(s.buf.String(), ";")
	s.buf.Reset()

	if err := s.resolve(query); err != nil {
		s.r.Error(err.Error())
	}
	s.r.Println()
	return false
}

func (s *replSession) resolve(query string) error {
	ids, err := sqlident.Extract(query)
	if err != nil {
		return err
	}
	res, err := resolveIdentifiers(ids, s.cat, s.factory, s.cmdCtx.Logger)
	if err != nil {
		return err
	}
	return renderResolution(s.r, ids, res)
}

func (s *replSession) handleDotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.r.Writer())

	case ".tables":
		rows := make([][]string, 0, s.cat.Len())
		for _, name := range s.cat.TableNames() {
			rows = append(rows, []string{name})
		}
		s.r.Table([]string{"Table"}, rows, "No tables.")

	case ".columns":
		if len(parts) < 2 {
			s.r.Error("Usage: .columns <table>")
			return false
		}
		t, ok := s.cat.Table(parts[1])
		if !ok {
			s.r.Error(fmt.Sprintf("table %q not found", parts[1]))
			return false
		}
		rows := make([][]string, 0)
		for _, col := range t.ColumnNames() {
			rows = append(rows, []string{col, t.ColumnType(col)})
		}
		s.r.Table([]string{"Column", "Type"}, rows, "No columns.")

	case ".match":
		if len(parts) < 2 {
			s.r.Error("Usage: .match <name> [table]")
			return false
		}
		vocab := s.cat.TableNames()
		if len(parts) > 2 {
			t, ok := s.cat.Table(parts[2])
			if !ok {
				s.r.Error(fmt.Sprintf("table %q not found", parts[2]))
				return false
			}
			vocab = t.ColumnNames()
		}
		s.match(parts[1], vocab)

	default:
		s.r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", command))
	}
	return false
}

func (s *replSession) match(name string, vocab []string) {
	m, err := s.factory.Build(vocab)
	if err != nil {
		s.r.Error(err.Error())
		return
	}
	ranked, err := m.Rank(name)
	if err != nil {
		s.r.Error(err.Error())
		return
	}
	out := matchOutput{Name: name}
	for _, c := range ranked.Top(5) {
		out.Candidates = append(out.Candidates, candidateOutput{
			Name: c.Name, Score: c.Score, Relation: c.Relation.String(), Depth: c.Depth,
		})
	}
	matched, err := m.Match(name)
	if err != nil {
		out.Error = err.Error()
	} else {
		out.Match = matched
	}
	_ = renderMatch(s.r, out, true)
	if out.Error != "" {
		s.r.Error(out.Error)
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help                  Show this help message
  .tables                List catalog tables
  .columns <table>       List a table's columns
  .match <name> [table]  Rank table names, or a table's columns, against name
  .quit / .exit          Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for dot-commands and table names
`
	_, _ = fmt.Fprintln(w, help)
}

// historyFile returns the REPL history path, or "" to disable history.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".schemafix_history")
}

// newCatalogCompleter creates a readline completer for dot-commands and table names.
func newCatalogCompleter(cat *catalog.Catalog) *readline.PrefixCompleter {
	tables := make([]readline.PrefixCompleterInterface, 0, cat.Len())
	for _, name := range cat.TableNames() {
		tables = append(tables, readline.PcItem(name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".columns", tables...),
		readline.PcItem(".match"),
		readline.PcItem(".quit"),
	)
}
