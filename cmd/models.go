package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/ai/registry"
	"github.com/spigell/fitcheck/internal/logger"
)

const modelsTimeout = 30 * time.Second

var modelsCmd = &cobra.Command{
	Use:   "models [provider]",
	Short: "List the models available for LLM providers",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		models(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().Bool("all", false, "list every known provider")
	modelsCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
}

func models(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), modelsTimeout)
	defer cancel()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	reg := registry.New(registryConfig(config.LLM), logger)
	all, _ := cmd.Flags().GetBool("all")
	output, _ := cmd.Flags().GetString("output")

	var listings []registry.ModelListing
	if all || len(args) == 0 {
		listings, err = reg.ListAllModels(ctx)
		if err != nil {
			logger.Fatal("listing models", zap.Error(err))
		}
	} else {
		name := ai.ProviderName(strings.ToLower(strings.TrimSpace(args[0])))
		if !ai.IsKnownProvider(name) {
			logger.Fatal("unknown provider", zap.String("provider", args[0]), zap.Any("known", ai.KnownProviders))
		}
		found, err := reg.ListModels(ctx, name)
		if err != nil {
			logger.Fatal("listing models", zap.String("provider", string(name)), zap.Error(err))
		}
		listings = []registry.ModelListing{{Provider: name, Models: found}}
	}

	if err := writeListings(os.Stdout, listings, output); err != nil {
		logger.Fatal("writing models", zap.Error(err))
	}
}

func writeListings(w io.Writer, listings []registry.ModelListing, output string) error {
	if output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}

	for _, l := range listings {
		switch {
		case l.Error != "":
			fmt.Fprintf(w, "%s: unavailable (%s)\n", l.Provider, l.Error)
		case len(l.Models) == 0:
			fmt.Fprintf(w, "%s: no models reported\n", l.Provider)
		default:
			fmt.Fprintf(w, "%s: %s\n", l.Provider, strings.Join(l.Models, ", "))
		}
	}
	return nil
}
