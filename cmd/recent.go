package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fitcheck/internal/logger"
	"github.com/spigell/fitcheck/internal/recent"
)

const (
	PromptBack    = "back"
	PromptCompare = "Compare roles"

	promptRole = "role"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently assessed roles",
	Run: func(cmd *cobra.Command, _ []string) {
		showRecent(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recentCmd)

	recentCmd.Flags().BoolP("compare", "c", false, "print a comparison summary of recent roles")
	recentCmd.Flags().BoolP("interactive", "i", false, "pick a role to see its full assessment")
	recentCmd.Flags().Bool("demo", false, "hide job titles behind role numbers")
}

func showRecent(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, closer, err := newRecentStore(config.Recent)
	if err != nil {
		logger.Fatal("opening recent roles", zap.Error(err))
	}
	if closer != nil {
		defer closer()
	}

	roles, err := store.List(ctx)
	if err != nil {
		logger.Fatal("listing recent roles", zap.Error(err))
	}

	if len(roles) == 0 {
		logger.Info("exiting", zap.String("reason", "no recent roles yet"))
		return
	}

	flags := cmd.Flags()
	demo, _ := flags.GetBool("demo")

	if interactive, _ := flags.GetBool("interactive"); interactive {
		if err := browseRecent(roles, demo); err != nil && !errors.Is(err, promptui.ErrInterrupt) {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for i, role := range roles {
		fmt.Fprintf(os.Stdout, "%d. %s [%s] %s\n", i+1, recent.DisplayLabel(role, i, demo), levelName(role), role.CreatedAt.Format("2006-01-02 15:04"))
	}

	if compare, _ := flags.GetBool("compare"); compare {
		fmt.Fprintf(os.Stdout, "\n%s\n", recent.Compare(roles).String())
	}
}

func browseRecent(roles []recent.Role, demo bool) error {
	items := make([]string, 0, len(roles)+2)
	for i, role := range roles {
		items = append(items, recent.DisplayLabel(role, i, demo))
	}
	items = append(items, PromptCompare, PromptBack)

	for {
		rolePrompt := promptui.Select{
			Label: "Choose a role and press ENTER",
			Items: items,
			Size:  len(items),
		}

		index, _, err := rolePrompt.Run()
		if err != nil {
			return err
		}

		switch selectionFor(index, len(roles)) {
		case PromptBack:
			return nil
		case PromptCompare:
			fmt.Fprintf(os.Stdout, "%s\n\n", recent.Compare(roles).String())
		default:
			role := roles[index]
			fmt.Fprintf(os.Stdout, "%s (assessed %s)\n\n", role.Label, role.CreatedAt.Format("2006-01-02 15:04"))
			if role.Fit == nil {
				fmt.Fprintln(os.Stdout, "No assessment stored for this role.")
				continue
			}
			fmt.Fprintln(os.Stdout, renderResult(role.Fit))
		}
	}
}

// selectionFor maps a prompt index onto an action. Roles come first, so a
// role label never collides with the trailing menu items.
func selectionFor(index, roles int) string {
	switch {
	case index < roles:
		return promptRole
	case index == roles:
		return PromptCompare
	default:
		return PromptBack
	}
}

func levelName(role recent.Role) string {
	if role.Fit == nil || role.Fit.Fit == "" {
		return "unknown"
	}
	return string(role.Fit.Fit)
}
