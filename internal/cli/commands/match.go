package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/schemafix/internal/cli/output"
	"github.com/spf13/cobra"
)

// MatchOptions holds options for the match command.
type MatchOptions struct {
	Vocab   []string
	Table   string
	Explain bool
}

// NewMatchCommand creates the match command.
func NewMatchCommand() *cobra.Command {
	opts := &MatchOptions{}

	cmd := &cobra.Command{
		Use:   "match <name>",
		Short: "Match one name against a vocabulary",
		Long: `Run the semantic matcher for a single name.

The vocabulary is --vocab when given, otherwise the columns of --table, otherwise
the catalog's table names. --explain lists every candidate with its score and
relation to the name.`,
		Example: `  # Which column of people is closest to "surname"?
  schemafix match surname --table people --explain

  # Match against an ad-hoc vocabulary, no catalog needed
  schemafix match surname --vocab name,lastname,username`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Vocab, "vocab", nil, "Comma-separated vocabulary to match against")
	cmd.Flags().StringVar(&opts.Table, "table", "", "Match against this table's columns")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "Show ranked candidates with scores")

	return cmd
}

// matchOutput is the structured form of a match.
type matchOutput struct {
	Name       string            `json:"name" yaml:"name"`
	Match      string            `json:"match,omitempty" yaml:"match,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
	Candidates []candidateOutput `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

type candidateOutput struct {
	Name     string  `json:"name" yaml:"name"`
	Score    float64 `json:"score" yaml:"score"`
	Relation string  `json:"relation" yaml:"relation"`
	Depth    int     `json:"depth,omitempty" yaml:"depth,omitempty"`
}

func runMatch(cmd *cobra.Command, name string, opts *MatchOptions) error {
	if len(opts.Vocab) > 0 && opts.Table != "" {
		return fmt.Errorf("use either --vocab or --table, not both")
	}

	cmdCtx := NewCommandContext(cmd)
	vocab, err := matchVocabulary(cmd, cmdCtx, opts)
	if err != nil {
		return err
	}

	factory, err := cmdCtx.NewFactory()
	if err != nil {
		return err
	}
	m, err := factory.Build(vocab)
	if err != nil {
		return err
	}

	out := matchOutput{Name: name}
	if opts.Explain {
		ranked, err := m.Rank(name)
		if err != nil {
			return err
		}
		for _, c := range ranked {
			out.Candidates = append(out.Candidates, candidateOutput{
				Name:     c.Name,
				Score:    c.Score,
				Relation: c.Relation.String(),
				Depth:    c.Depth,
			})
		}
	}

	matched, matchErr := m.Match(name)
	if matchErr != nil {
		out.Error = matchErr.Error()
	} else {
		out.Match = matched
	}

	if err := renderMatch(cmdCtx.Renderer, out, opts.Explain); err != nil {
		return err
	}
	return resolutionError(matchErr)
}

func matchVocabulary(cmd *cobra.Command, cmdCtx *CommandContext, opts *MatchOptions) ([]string, error) {
	if len(opts.Vocab) > 0 {
		return opts.Vocab, nil
	}

	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return nil, err
	}
	if opts.Table == "" {
		return cat.TableNames(), nil
	}
	t, ok := cat.Table(opts.Table)
	if !ok {
		return nil, fmt.Errorf("table %q not found in catalog", opts.Table)
	}
	return t.ColumnNames(), nil
}

func renderMatch(r *output.Renderer, out matchOutput, explain bool) error {
	if ok, err := r.Data(out); ok {
		return err
	}

	if explain {
		r.Header(2, fmt.Sprintf("Candidates for %s", out.Name))
		rows := make([][]string, 0, len(out.Candidates))
		for _, c := range out.Candidates {
			rel := c.Relation
			if c.Depth > 1 {
				rel = fmt.Sprintf("%s/%d", rel, c.Depth)
			}
			rows = append(rows, []string{c.Name, strconv.FormatFloat(c.Score, 'f', 2, 64), rel})
		}
		r.Table([]string{"Candidate", "Score", "Relation"}, rows, "Empty vocabulary.")
		r.Println()
	}

	if out.Error != "" {
		// reported by the caller
		return nil
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue(out.Name, out.Match))
		return nil
	}
	r.Printf("%s → %s\n", out.Name, r.Styles().Success.Render(out.Match))
	return nil
}
