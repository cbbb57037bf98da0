package fit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/logger"
	"github.com/spigell/fitcheck/internal/profile"
	"go.uber.org/zap"
)

// Pipeline stage names used in logs and StageError.
const (
	StageFacts     = "facts"
	StageGateway   = "gateway"
	StageExtract   = "extract"
	StageNormalize = "normalize"
	StageCorrect   = "correct"
	StageScore     = "score"
)

// ChainResolver builds the provider chain for a call.
type ChainResolver interface {
	Resolve(ctx context.Context, settings *ai.Settings) (ai.Chain, error)
	Defaults() ai.Defaults
}

// TextGenerator sends a request through a provider chain.
type TextGenerator interface {
	Generate(ctx context.Context, chain ai.Chain, req ai.Request) (string, error)
}

// Input is one assessment request.
type Input struct {
	JobDescription string
	Profile        *profile.Profile
	Settings       *ai.Settings
}

// Assessor runs the assessment pipeline. It holds no per-call state.
type Assessor struct {
	resolver  ChainResolver
	gateway   TextGenerator
	corrector *Corrector
	logger    *zap.Logger
}

// NewAssessor wires the pipeline. A nil corrector uses the default term lists.
func NewAssessor(resolver ChainResolver, gateway TextGenerator, corrector *Corrector, l *zap.Logger) *Assessor {
	if corrector == nil {
		corrector = NewCorrector(nil, nil)
	}
	return &Assessor{
		resolver:  resolver,
		gateway:   gateway,
		corrector: corrector,
		logger:    logger.OrNop(l),
	}
}

// Assess maps the job description against the profile and scores the result.
func (a *Assessor) Assess(ctx context.Context, in Input) (*Result, error) {
	jobDescription := strings.TrimSpace(in.JobDescription)
	if utf8.RuneCountInString(jobDescription) < MinJobDescriptionLength {
		return nil, &InputError{Message: msgShortJobDescription}
	}
	if err := profile.Validate(in.Profile); err != nil {
		return nil, &InputError{Message: "The candidate profile is incomplete", Err: err}
	}

	facts := profile.DeriveFacts(in.Profile)
	logger.WithStage(a.logger, StageFacts).Debug("derived profile facts", zap.Int("facts", len(facts)))

	system, user := BuildPrompts(in.JobDescription, in.Profile, facts)

	chain, err := a.resolver.Resolve(ctx, in.Settings)
	if err != nil {
		return nil, err
	}
	req := ai.BuildRequest(system, user, in.Settings, a.resolver.Defaults())

	l := logger.WithCommonFields(a.logger, strings.Join(chain.Names(), ","), req.Model)

	raw, err := a.gateway.Generate(ctx, chain, req)
	if err != nil {
		return nil, err
	}
	logger.WithStage(l, StageGateway).Debug("received model output", zap.Int("length", utf8.RuneCountInString(raw)))

	value, ok := ai.ExtractJSON(raw)
	if !ok {
		logger.WithStage(l, StageExtract).Warn("model output contained no JSON")
		return nil, &StageError{Stage: StageExtract, Err: fmt.Errorf("%w: no JSON value found in model output", ErrInvalidRequirements)}
	}

	reqs, stats, err := normalizeRequirements(value)
	logger.WithStage(l, StageNormalize).Info("normalized requirements",
		zap.Int("returned", stats.Returned),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped", stats.Dropped),
	)
	if err != nil {
		if !errors.Is(err, ErrInvalidRequirements) {
			err = fmt.Errorf("%w: %v", ErrInvalidRequirements, err)
		}
		return nil, &StageError{Stage: StageNormalize, Err: err}
	}

	corrected, downgraded := a.corrector.Apply(reqs, profile.Text(in.Profile))
	logger.WithStage(l, StageCorrect).Info("applied literal evidence rules", zap.Int("downgraded", downgraded))

	result := ComputeFit(corrected, in.Profile.Name)
	logger.WithStage(l, StageScore).Info("scored fit",
		zap.String("fit", string(result.Fit)),
		zap.Int("strengths", len(result.Strengths)),
		zap.Int("gaps", len(result.Gaps)),
	)

	if in.Settings != nil && in.Settings.Debug {
		result.Debug = &Debug{ParseStage: ParseStageFirst, RawFirstResponse: raw}
	}
	return result, nil
}
