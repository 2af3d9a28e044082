package match

import (
	"context"
	"fmt"

	"github.com/socialtwin/trainer/internal/model/match"
	"github.com/socialtwin/trainer/internal/model/twin"
	"github.com/socialtwin/trainer/internal/service/ai"
)

// DefaultRounds is the number of exchanges simulated when the caller does
// not ask for a specific count.
const DefaultRounds = 6

// Generator produces model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service orchestrates the match, plan, and simulate flows: read profiles,
// render a prompt, call the model, decode the reply, persist what the flow
// keeps. Concurrent calls on the same session are not coordinated; the
// storage layer's last write wins.
type Service struct {
	twins    twin.Store
	sessions match.Store
	gen      Generator
}

// NewService wires the orchestrator to its stores and model client.
func NewService(twins twin.Store, sessions match.Store, gen Generator) *Service {
	return &Service{twins: twins, sessions: sessions, gen: gen}
}

// MatchResult carries the new session id and the compatibility analysis.
// The analysis is returned to the caller only — it is never written to the
// session record, unlike plans and simulations.
type MatchResult struct {
	SessionID string    `json:"session_id"`
	Analysis  ai.Result `json:"analysis"`
}

// PlanResult carries the stored plan for a session.
type PlanResult struct {
	SessionID string    `json:"session_id"`
	Plan      ai.Result `json:"plan"`
}

// SimResult carries the stored simulation for a session.
type SimResult struct {
	SessionID  string    `json:"session_id"`
	Simulation ai.Result `json:"simulation"`
}

// Match analyses compatibility between two twins and opens a session for
// the pair.
func (s *Service) Match(ctx context.Context, twinAID, twinBID string) (MatchResult, error) {
	a, err := s.twins.Get(ctx, twinAID)
	if err != nil {
		return MatchResult{}, err
	}
	b, err := s.twins.Get(ctx, twinBID)
	if err != nil {
		return MatchResult{}, err
	}

	raw, err := s.gen.Generate(ctx, ai.BuildMatchPrompt(a, b))
	if err != nil {
		return MatchResult{}, err
	}

	sess, err := s.sessions.CreateSession(ctx, a.ID, b.ID)
	if err != nil {
		return MatchResult{}, err
	}

	return MatchResult{SessionID: sess.ID, Analysis: ai.Decode(raw)}, nil
}

// Plan generates a date plan for the session's twin pair and persists it,
// overwriting any prior plan.
func (s *Service) Plan(ctx context.Context, sessionID, goal string) (PlanResult, error) {
	sess, a, b, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return PlanResult{}, err
	}

	raw, err := s.gen.Generate(ctx, ai.BuildPlanPrompt(a, b, goal))
	if err != nil {
		return PlanResult{}, err
	}

	plan := ai.Decode(raw)
	buf, err := plan.MarshalJSON()
	if err != nil {
		return PlanResult{}, fmt.Errorf("match: encode plan: %w", err)
	}
	if err := s.sessions.UpdateSessionPlan(ctx, sess.ID, buf); err != nil {
		return PlanResult{}, err
	}

	return PlanResult{SessionID: sess.ID, Plan: plan}, nil
}

// Simulate runs a turn-based conversation between the session's twins and
// persists the log plus its overall score, overwriting any prior run. The
// stored plan feeds the prompt as context when one exists.
func (s *Service) Simulate(ctx context.Context, sessionID string, rounds int) (SimResult, error) {
	if rounds <= 0 {
		rounds = DefaultRounds
	}

	sess, a, b, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return SimResult{}, err
	}

	planContext := ai.DefaultPlanContext
	if len(sess.Plan) > 0 {
		planContext = string(sess.Plan)
	}

	raw, err := s.gen.Generate(ctx, ai.BuildSimPrompt(a, b, planContext, rounds))
	if err != nil {
		return SimResult{}, err
	}

	sim := ai.Decode(raw)
	var score *float64
	if v, ok := sim.Float("overall_score"); ok {
		score = &v
	}

	buf, err := sim.MarshalJSON()
	if err != nil {
		return SimResult{}, fmt.Errorf("match: encode simulation: %w", err)
	}
	if err := s.sessions.UpdateSessionSimulation(ctx, sess.ID, buf, score); err != nil {
		return SimResult{}, err
	}

	return SimResult{SessionID: sess.ID, Simulation: sim}, nil
}

// loadSession fetches a session and both referenced twins. A twin deleted
// after the session was created surfaces here as a not-found, which aborts
// the operation before any write.
func (s *Service) loadSession(ctx context.Context, sessionID string) (match.Session, twin.Twin, twin.Twin, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return match.Session{}, twin.Twin{}, twin.Twin{}, err
	}
	a, err := s.twins.Get(ctx, sess.TwinA)
	if err != nil {
		return match.Session{}, twin.Twin{}, twin.Twin{}, err
	}
	b, err := s.twins.Get(ctx, sess.TwinB)
	if err != nil {
		return match.Session{}, twin.Twin{}, twin.Twin{}, err
	}
	return sess, a, b, nil
}
