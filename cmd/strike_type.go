package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/db"
)

var strikeTypeCmd = &cobra.Command{
	Use:     "strike-type",
	Aliases: []string{"strike-types"},
	Short:   "Manage the coach's strike taxonomy",
	Long: `Strike types are stored per coach in the database. A coach with no stored
types works with the built-in list; 'strike-type seed' copies it in for editing.`,
}

var strikeTypeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List strike types in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		var tx annotate.Taxonomy
		source := "built-in"
		store, err := openStore()
		if err == nil {
			defer store.Close()
			stored, err := store.StrikeTypes(cmd.Context(), coachFlag(cmd))
			if err != nil {
				return fmt.Errorf("failed to list strike types: %w", err)
			}
			if len(stored) > 0 {
				tx, source = stored, "stored"
			}
		}
		if tx == nil {
			tx = annotate.DefaultTaxonomy()
		}

		w := newTable()
		fmt.Fprintln(w, "Key\tID\tName\tCategory\tSide")
		fmt.Fprintln(w, "---\t--\t----\t--------\t----")
		for i, t := range tx {
			key := "-"
			if i < 9 {
				key = fmt.Sprint(i + 1)
			}
			side := string(t.Side)
			if side == "" {
				side = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", key, t.ID, t.Name, t.Category, side)
		}
		w.Flush()
		fmt.Printf("\n%d %s strike type(s) found.\n", len(tx), source)
		return nil
	},
}

var strikeTypeAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add or update a strike type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		categoryFlag, _ := cmd.Flags().GetString("category")
		sideFlag, _ := cmd.Flags().GetString("side")

		category, err := annotate.ParseCategory(categoryFlag)
		if err != nil {
			return err
		}
		side, err := annotate.ParseSide(sideFlag)
		if err != nil {
			return err
		}
		if name == "" {
			name = args[0]
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		t := annotate.StrikeType{ID: args[0], Name: name, Category: category, Side: side}
		if err := store.SaveStrikeType(cmd.Context(), coachFlag(cmd), t); err != nil {
			return fmt.Errorf("failed to save strike type: %w", err)
		}
		fmt.Printf("Strike type %s saved: %s\n", t.ID, t.Label())
		return nil
	},
}

var strikeTypeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a strike type",
	Long:  `Delete a strike type. Strikes already recorded keep their category and side.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ok, err := store.DeleteStrikeType(cmd.Context(), coachFlag(cmd), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete strike type: %w", err)
		}
		if !ok {
			return fmt.Errorf("no strike type %q", args[0])
		}
		fmt.Printf("Strike type %s deleted.\n", args[0])
		return nil
	},
}

var strikeTypeSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store the built-in strike types for the coach",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.SeedStrikeTypes(cmd.Context(), coachFlag(cmd))
		if err != nil {
			return fmt.Errorf("failed to seed strike types: %w", err)
		}
		if n == 0 {
			fmt.Println("The coach already has strike types; nothing seeded.")
			return nil
		}
		fmt.Printf("%d strike type(s) seeded.\n", n)
		return nil
	},
}

func coachFlag(cmd *cobra.Command) string {
	if c, _ := cmd.Flags().GetString("coach"); c != "" {
		return c
	}
	if cfg.Coach != "" {
		return cfg.Coach
	}
	return db.DefaultCoach
}

func init() {
	strikeTypeCmd.PersistentFlags().String("coach", "", "coach whose taxonomy to use (default from config)")
	strikeTypeAddCmd.Flags().String("name", "", "display name")
	strikeTypeAddCmd.Flags().String("category", "", "punch, kick, knee, elbow or combo")
	strikeTypeAddCmd.Flags().String("side", "", "left, right, both or empty")
	_ = strikeTypeAddCmd.MarkFlagRequired("category")

	strikeTypeCmd.AddCommand(strikeTypeListCmd, strikeTypeAddCmd, strikeTypeDeleteCmd, strikeTypeSeedCmd)
	rootCmd.AddCommand(strikeTypeCmd)
}
