package main

import (
	"fmt"
	"sort"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/alaa-eddine/tokenloom"
)

// newTagsCommand lists the configured recognized-tag set, optionally
// fuzzy-filtered — the same fuzzy matching glow's stash file finder uses,
// here applied to tag names instead of file names.
func newTagsCommand(cfgFile *string) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the configured recognized tag names",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCfg, err := loadCLIConfig(*cfgFile)
			if err != nil {
				return err
			}
			parserCfg, err := cliCfg.toParserConfig()
			if err != nil {
				return err
			}

			p, err := tokenloom.New(parserCfg, nil)
			if err != nil {
				return err
			}
			names := p.Tags()
			sort.Strings(names)

			if filter == "" {
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			}

			matches := fuzzy.Find(filter, names)
			sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
			for _, m := range matches {
				fmt.Fprintln(cmd.OutOrStdout(), m.Str)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "fuzzy-filter the listed tag names")
	return cmd
}
