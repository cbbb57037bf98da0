package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/fit"
	"github.com/spigell/fitcheck/internal/jobdesc"
	"github.com/spigell/fitcheck/internal/logger"
	"github.com/spigell/fitcheck/internal/profile"
	"github.com/spigell/fitcheck/internal/recent"
)

const (
	outputText = "text"
	outputJSON = "json"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess how well a candidate profile fits a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		assess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringP("profile", "p", "", "candidate profile file (JSON or YAML)")
	assessCmd.Flags().StringP("job", "J", "", "job description: file path, http(s) URL or - for stdin")
	assessCmd.Flags().String("provider", "", "primary LLM provider (mock, openai, ollama, cursor, gemini)")
	assessCmd.Flags().String("fallback", "", "comma separated fallback providers")
	assessCmd.Flags().String("model", "", "model override")
	assessCmd.Flags().Float64("temperature", ai.DefaultTemperature, "sampling temperature")
	assessCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	assessCmd.Flags().Bool("debug-raw", false, "include raw model output in the result")
	assessCmd.Flags().Bool("no-save", false, "do not record the role in recent roles")

	assessCmd.MarkFlagRequired("profile")
	assessCmd.MarkFlagRequired("job")
}

func assess(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	flags := cmd.Flags()
	profilePath, _ := flags.GetString("profile")
	jobSource, _ := flags.GetString("job")
	output, _ := flags.GetString("output")

	if output != outputText && output != outputJSON {
		logger.Fatal("unsupported output format", zap.String("output", output))
	}

	candidate, err := profile.Load(profilePath)
	if err != nil {
		logger.Fatal("loading candidate profile", zap.String("path", profilePath), zap.Error(err))
	}

	jd, err := jobdesc.NewLoader().Load(ctx, jobSource)
	if err != nil {
		logger.Fatal("loading job description", zap.String("source", jobSource), zap.Error(err))
	}

	application, err := newApplication(config, nil, logger)
	if err != nil {
		logger.Fatal("initializing", zap.Error(err))
	}
	defer application.Close()

	settings := settingsFromFlags(cmd)
	logger.Info("assessing fit",
		zap.String("candidate", candidate.Name),
		zap.Int("job_description_length", len(jd)),
	)

	result, err := application.assessor.Assess(ctx, fit.Input{
		JobDescription: jd,
		Profile:        candidate,
		Settings:       settings,
	})
	if err != nil {
		logger.Fatal("assessment failed",
			zap.String("kind", string(fit.Classify(err))),
			zap.String("hint", fit.FriendlyMessage(err)),
			zap.Error(err),
		)
	}

	if noSave, _ := flags.GetBool("no-save"); !noSave {
		role, err := application.recent.Add(ctx, recent.Entry{JobDescription: jd, Fit: result})
		if err != nil {
			logger.Warn("saving recent role", zap.Error(err))
		} else {
			logger.Debug("saved recent role", zap.String("id", role.ID), zap.String("label", role.Label))
		}
	}

	if err := writeResult(os.Stdout, result, output); err != nil {
		logger.Fatal("writing result", zap.Error(err))
	}
}

func settingsFromFlags(cmd *cobra.Command) *ai.Settings {
	flags := cmd.Flags()
	settings := &ai.Settings{}

	if provider, _ := flags.GetString("provider"); strings.TrimSpace(provider) != "" {
		settings.Provider = ai.ParseProviderName(provider)
	}
	if flags.Changed("fallback") {
		fallback, _ := flags.GetString("fallback")
		settings.FallbackProviders = ai.ParseProviderNames(fallback)
	}
	settings.Model, _ = flags.GetString("model")
	if flags.Changed("temperature") {
		temperature, _ := flags.GetFloat64("temperature")
		settings.Temperature = &temperature
	}
	settings.Debug, _ = flags.GetBool("debug-raw")

	return settings
}

func writeResult(w io.Writer, result *fit.Result, output string) error {
	if output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	_, err := io.WriteString(w, renderResult(result))
	return err
}

func renderResult(result *fit.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Fit: %s\n\n%s\n", strings.ToUpper(string(result.Fit)), result.Summary)

	writeList(&b, "Strengths", result.Strengths)
	writeList(&b, "Gaps", result.Gaps)

	fmt.Fprintf(&b, "\nVerdict: %s\n", result.Verdict)

	if len(result.Requirements) > 0 {
		b.WriteString("\nRequirements:\n")
		for _, req := range result.Requirements {
			fmt.Fprintf(&b, "  [%s/%s] %s\n", req.Importance, req.EvidenceLevel, req.Text)
			if req.Evidence != "" {
				fmt.Fprintf(&b, "      evidence: %s\n", req.Evidence)
			}
		}
	}

	if result.Debug != nil {
		fmt.Fprintf(&b, "\nRaw model output (%s parse):\n%s\n", result.Debug.ParseStage, result.Debug.RawFirstResponse)
	}

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
