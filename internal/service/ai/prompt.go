package ai

import (
	"fmt"

	"github.com/socialtwin/trainer/internal/model/twin"
)

// Prompt templates — data only, no logic. Each one ends with an explicit
// bare-JSON instruction; the parser's fence-stripping covers the cases
// where the model ignores it.

// DefaultPlanContext is the simulation context used when a session has no
// stored plan.
const DefaultPlanContext = "casual hangout"

// matchPrompt args: A name, personality, interests, style; B likewise.
const matchPrompt = `You are a social-dynamics expert. Analyse compatibility between two people.

Person A – %s:
  Personality: %s
  Interests: %s
  Communication style: %s

Person B – %s:
  Personality: %s
  Interests: %s
  Communication style: %s

Return JSON with keys: compatibility_score (0-100), strengths (list), challenges (list), tip (string).
Only return valid JSON, no markdown.`

// planPrompt args: goal; A name, personality, interests; B likewise.
const planPrompt = `You are a date-planning AI. Create a step-by-step date plan.

Goal: %s

Person A – %s: %s, likes %s
Person B – %s: %s, likes %s

Return JSON with keys:
  title (string), steps (list of {order, activity, duration_min, vibe}), tips (list of strings).
Only return valid JSON, no markdown.`

// simPrompt args: plan context; A name, personality, style; B likewise; rounds.
const simPrompt = `Simulate a conversation between two people on a date.

Context/Plan: %s

Person A – %s: personality=%s, style=%s
Person B – %s: personality=%s, style=%s

Generate exactly %d exchanges (A speaks, then B responds = 1 exchange).
Return JSON with keys:
  exchanges (list of {round, speaker, message, mood, engagement_score}),
  overall_score (0-100),
  summary (string).
Only return valid JSON, no markdown.`

// BuildMatchPrompt renders the compatibility-analysis prompt for a twin pair.
func BuildMatchPrompt(a, b twin.Twin) string {
	return fmt.Sprintf(matchPrompt,
		a.Name, a.Personality, a.Interests, a.CommunicationStyle,
		b.Name, b.Personality, b.Interests, b.CommunicationStyle,
	)
}

// BuildPlanPrompt renders the date-plan prompt for a twin pair and goal.
func BuildPlanPrompt(a, b twin.Twin, goal string) string {
	return fmt.Sprintf(planPrompt,
		goal,
		a.Name, a.Personality, a.Interests,
		b.Name, b.Personality, b.Interests,
	)
}

// BuildSimPrompt renders the conversation-simulation prompt. planContext is
// the session's stored plan, or DefaultPlanContext when none exists.
func BuildSimPrompt(a, b twin.Twin, planContext string, rounds int) string {
	return fmt.Sprintf(simPrompt,
		planContext,
		a.Name, a.Personality, a.CommunicationStyle,
		b.Name, b.Personality, b.CommunicationStyle,
		rounds,
	)
}
