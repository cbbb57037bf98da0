package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fitcheck/internal/logger"
	"github.com/spigell/fitcheck/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Work with candidate profile files",
}

var profileCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Validate a profile and print the facts derived from it",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		checkProfile(args[0])
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Print a profile wrapped in the versioned export envelope",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		exportProfile(args[0])
	},
}

func init() {
	profileCmd.AddCommand(profileCheckCmd, profileExportCmd)
	rootCmd.AddCommand(profileCmd)
}

func checkProfile(path string) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	p, err := profile.Load(path)
	if err != nil {
		logger.Fatal("loading candidate profile", zap.String("path", path), zap.Error(err))
	}

	facts := profile.DeriveFacts(p)
	logger.Info("profile is valid",
		zap.String("name", p.Name),
		zap.Int("experience", len(p.Experience)),
		zap.Int("facts", len(facts)),
	)

	fmt.Fprint(os.Stdout, describeProfile(p, facts))
}

func describeProfile(p *profile.Profile, facts []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s\n", p.Name, p.Headline)
	if len(p.Experience) > 0 {
		b.WriteString("\nExperience:\n")
		for _, e := range p.Experience {
			end := e.End
			if e.Ongoing() {
				end = "present"
			}
			fmt.Fprintf(&b, "  %s (%s - %s)\n", e.Key(), e.Start, end)
		}
	}

	if len(facts) > 0 {
		b.WriteString("\nDerived facts:\n")
		for _, fact := range facts {
			fmt.Fprintf(&b, "  - %s\n", fact)
		}
	}
	return b.String()
}

func exportProfile(path string) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	p, err := profile.Load(path)
	if err != nil {
		logger.Fatal("loading candidate profile", zap.String("path", path), zap.Error(err))
	}

	data, err := profile.MarshalExport(p, time.Now())
	if err != nil {
		logger.Fatal("encoding profile export", zap.Error(err))
	}
	fmt.Fprintln(os.Stdout, string(data))
}
