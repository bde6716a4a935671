package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arcanaland/spellbook/internal/card"
	"github.com/arcanaland/spellbook/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// maxSuggestions is the number of similar names offered after a failed lookup.
const maxSuggestions = 3

// cardFlags are the card fields settable from the command line.
type cardFlags struct {
	name     string
	ccm      string
	color    string
	keywords []string
	typ      string
	text     string
	legality []string
}

func (f *cardFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.name, "name", "", "Card name")
	flags.StringVar(&f.ccm, "ccm", "", "Converted mana cost, e.g. 2WW")
	flags.StringVar(&f.color, "color", "", "Card color")
	flags.StringSliceVar(&f.keywords, "keyword", nil, "Keyword (repeatable)")
	flags.StringVar(&f.typ, "type", "", "Card type line")
	flags.StringVar(&f.text, "text", "", "Rules text")
	flags.StringSliceVar(&f.legality, "legality", nil, "Format the card is legal in (repeatable)")
}

// apply copies the flags given on the command line onto cd.
func (f *cardFlags) apply(flags *pflag.FlagSet, cd *card.Card) {
	if flags.Changed("name") {
		cd.Name = f.name
	}
	if flags.Changed("ccm") {
		cd.ConvertedManaCost = f.ccm
	}
	if flags.Changed("color") {
		cd.Color = f.color
	}
	if flags.Changed("keyword") {
		cd.Keywords = f.keywords
	}
	if flags.Changed("type") {
		cd.Type = f.typ
	}
	if flags.Changed("text") {
		cd.Text = f.text
	}
	if flags.Changed("legality") {
		cd.Legality = append([]string{}, f.legality...)
	}
}

func newCardsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage the cards in your catalog",
		Long:  `Commands for listing, adding, editing and removing cards in the card document.`,
	}
	cmd.AddCommand(newCardsListCmd(a))
	cmd.AddCommand(newCardsAddCmd(a))
	cmd.AddCommand(newCardsEditCmd(a))
	cmd.AddCommand(newCardsRemoveCmd(a))
	cmd.AddCommand(newCardsSearchCmd(a))
	return cmd
}

func newCardsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List the cards in your catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			cards, err := s.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cards) == 0 {
				fmt.Fprintf(out, "No cards found in %s.\n", s.Path())
				fmt.Fprintln(out, "Run 'spellbook cards add' to add one.")
				return nil
			}
			printCards(out, cards)
			return nil
		},
	}
}

func newCardsAddCmd(a *app) *cobra.Command {
	var (
		flags cardFlags
		from  string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a card to your catalog",
		Long: `Add a new card, either from flags or from a JSON file. Flags override the
fields read from the file. Adding a card whose name is taken fails.

Examples:
  spellbook cards add --name Bolt --ccm 1 --color Red --type Instant --text "Deal 3 damage."
  spellbook cards add --from bolt.json --legality Modern --legality Legacy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cd card.Card
			if from != "" {
				var err error
				if cd, err = readCardFile(cmd.InOrStdin(), from); err != nil {
					return err
				}
			}
			flags.apply(cmd.Flags(), &cd)

			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.Insert(cd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added card: %s\n", cd.Name)
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&from, "from", "f", "", "Read the card from a JSON file ('-' for stdin)")
	return cmd
}

func newCardsEditCmd(a *app) *cobra.Command {
	var flags cardFlags
	cmd := &cobra.Command{
		Use:   "edit [card_name]",
		Short: "Change fields of a card",
		Long: `Edit replaces the given fields of an existing card and keeps the rest.
The name cannot be changed; remove the card and add it again instead.

Examples:
  spellbook cards edit Bolt --text "Deal 3 damage to any target."
  spellbook cards edit "Llanowar Elves" --legality Legacy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			cd, err := s.Get(args[0])
			if err != nil {
				return withSuggestions(s, args[0], err)
			}
			flags.apply(cmd.Flags(), &cd)
			if cd.Name != args[0] {
				return fmt.Errorf("cannot rename card '%s' to '%s'", args[0], cd.Name)
			}
			if _, err := s.Replace(cd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated card: %s\n", cd.Name)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newCardsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [card_name]",
		Short: "Remove a card from your catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.Remove(args[0]); err != nil {
				return withSuggestions(s, args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed card: %s\n", args[0])
			return nil
		},
	}
}

func newCardsSearchCmd(a *app) *cobra.Command {
	var f store.Filter
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find cards by name, type, color or keyword",
		Long: `Search lists the cards matching every given filter. The name filter
matches part of a name; the others match whole values. Case is ignored.

Examples:
  spellbook cards search --color green --keyword flying
  spellbook cards search --name elves`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			cards, err := s.Search(f)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching cards.")
				return nil
			}
			printCards(cmd.OutOrStdout(), cards)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "Part of the card name")
	cmd.Flags().StringVar(&f.Type, "type", "", "Card type line")
	cmd.Flags().StringVar(&f.Color, "color", "", "Card color")
	cmd.Flags().StringVar(&f.Keyword, "keyword", "", "Card keyword")
	return cmd
}

func printCards(w io.Writer, cards []card.Card) {
	for _, cd := range cards {
		details := []string{}
		for _, s := range []string{cd.ConvertedManaCost, cd.Color, cd.Type} {
			if s != "" {
				details = append(details, s)
			}
		}
		if len(details) == 0 {
			fmt.Fprintf(w, "  %s\n", cd.Name)
			continue
		}
		fmt.Fprintf(w, "  %s (%s)\n", cd.Name, strings.Join(details, ", "))
	}
}

// readCardFile decodes a single card in any accepted shape. The name must be
// set in the file or with --name.
func readCardFile(stdin io.Reader, path string) (card.Card, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return card.Card{}, fmt.Errorf("error reading card file: %w", err)
	}
	var cd card.Card
	if err := json.Unmarshal(data, &cd); err != nil {
		return card.Card{}, fmt.Errorf("error parsing card file: %w", err)
	}
	return cd, nil
}

// withSuggestions adds similar card names to a not-found error.
func withSuggestions(s *store.Store, name string, err error) error {
	if !store.IsKind(err, store.KindNotFound) {
		return err
	}
	suggestions := s.Suggest(name, maxSuggestions)
	if len(suggestions) == 0 {
		return err
	}
	return fmt.Errorf("%w (did you mean: %s?)", err, strings.Join(suggestions, ", "))
}
