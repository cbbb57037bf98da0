package profile

import (
	"regexp"
	"strings"
)

type factCheck struct {
	fact string
	// skill matches skill values; nil skips the skill check.
	skill *regexp.Regexp
	// buckets restricts the skill check; empty means every bucket.
	buckets []string
	// experience matches "domain role stack highlights" of any position.
	experience *regexp.Regexp
}

var factChecks = []factCheck{
	{
		fact:       "Candidate has significant experience building SPAs with React.",
		skill:      regexp.MustCompile(`(?i)react`),
		buckets:    []string{BucketFrontend},
		experience: regexp.MustCompile(`(?i)\breact\b`),
	},
	{
		fact:       "Candidate is comfortable using TypeScript in production.",
		skill:      regexp.MustCompile(`(?i)typescript`),
		buckets:    []string{BucketFrontend},
		experience: regexp.MustCompile(`(?i)\btypescript|\bts\b`),
	},
	{
		fact:       "Candidate has experience with Next.js and/or SSR rendering patterns.",
		skill:      regexp.MustCompile(`(?i)next\.?js|ssr|server[- ]side rendering`),
		buckets:    []string{BucketFrontend},
		experience: regexp.MustCompile(`(?i)next\.?js|ssr|server[- ]side rendering`),
	},
	{
		fact:       "Candidate has hands-on experience with design systems and component libraries.",
		skill:      regexp.MustCompile(`(?i)design system|component librar`),
		buckets:    []string{BucketDesignSystems},
		experience: regexp.MustCompile(`(?i)design system|component librar`),
	},
	{
		fact:       "Candidate has worked on B2B SaaS products.",
		experience: regexp.MustCompile(`(?i)\bb2b saas\b`),
	},
	{
		fact:       "Candidate has written tests with Jest.",
		skill:      regexp.MustCompile(`(?i)jest`),
		buckets:    []string{BucketTesting},
		experience: regexp.MustCompile(`(?i)\bjest\b`),
	},
	{
		fact:       "Candidate has written end-to-end tests (for example Cypress or Playwright).",
		skill:      regexp.MustCompile(`(?i)cypress|playwright`),
		buckets:    []string{BucketTesting},
		experience: regexp.MustCompile(`(?i)\bcypress\b|\bplaywright\b`),
	},
	{
		fact:       "Candidate has used Storybook or similar tooling for UI development.",
		skill:      regexp.MustCompile(`(?i)storybook`),
		buckets:    []string{BucketDesignSystems, BucketFrontend},
		experience: regexp.MustCompile(`(?i)storybook`),
	},
	{
		fact:       "Candidate has applied accessibility practices in frontend work.",
		skill:      regexp.MustCompile(`(?i)accessibility|a11y|wcag`),
		buckets:    []string{BucketFrontend},
		experience: regexp.MustCompile(`(?i)accessibility|a11y|wcag`),
	},
	{
		fact:  "Candidate has experience with mentoring or technical leadership responsibilities.",
		skill: regexp.MustCompile(`(?i)mentor|lead|leadership`),
		// Experience text is matched case-sensitively here.
		experience: regexp.MustCompile(`mentor|mentoring|lead|leadership`),
	},
	{
		fact:       "Candidate regularly uses AI tools (for example Cursor and LLM assistants) as part of the development workflow.",
		skill:      regexp.MustCompile(`(?i)cursor|chatgpt|claude|llm|ai`),
		buckets:    []string{BucketAITools},
		experience: regexp.MustCompile(`(?i)cursor|chatgpt|claude|llm|ai`),
	},
}

// DeriveFacts runs the fixed battery of keyword checks over the profile and
// returns the matching fact sentences in battery order.
func DeriveFacts(p *Profile) []string {
	facts := make([]string, 0, len(factChecks))
	if p == nil {
		return facts
	}

	experienceTexts := make([]string, 0, len(p.Experience))
	for _, exp := range p.Experience {
		experienceTexts = append(experienceTexts, strings.Join([]string{
			exp.Domain,
			exp.Role,
			strings.Join(exp.Stack, " "),
			strings.Join(exp.Highlights, " "),
		}, " "))
	}

	for _, check := range factChecks {
		if (check.skill != nil && hasSkill(p.Skills, check.skill, check.buckets)) ||
			matchesAny(experienceTexts, check.experience) {
			facts = append(facts, check.fact)
		}
	}
	return facts
}

func hasSkill(skills map[string][]string, pattern *regexp.Regexp, buckets []string) bool {
	if len(buckets) == 0 {
		for _, values := range skills {
			if matchesAny(values, pattern) {
				return true
			}
		}
		return false
	}

	for _, bucket := range buckets {
		if matchesAny(skills[bucket], pattern) {
			return true
		}
	}
	return false
}

func matchesAny(values []string, pattern *regexp.Regexp) bool {
	for _, v := range values {
		if pattern.MatchString(v) {
			return true
		}
	}
	return false
}
