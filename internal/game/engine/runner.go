package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/arena/internal/game/domain"
	"github.com/louisbranch/arena/internal/game/event"
	"github.com/louisbranch/arena/internal/oracle"
	"github.com/louisbranch/arena/internal/platform/id"
)

// maxConsecutiveFailures aborts a game after this many turns in a row
// in which no action applied successfully, not even the default. A
// successfully applied default counts as progress; the valve only
// catches a phase machine that cannot advance at all.
const maxConsecutiveFailures = 5

// oracleAttempts bounds re-prompting before the default action is
// substituted.
const oracleAttempts = 2

// Options carries the runner's injectable collaborators. Zero values
// select sensible defaults.
type Options struct {
	Sinks       []event.Sink
	Logger      logrus.FieldLogger
	Now         func() time.Time
	IDGenerator func() (string, error)
}

// Runner drives one game from setup to a terminal outcome. Each runner
// owns its Game exclusively; a single state mutation is in flight at a
// time even when oracle calls for a simultaneous phase run in parallel.
type Runner struct {
	cfg      domain.Config
	game     Game
	decider  oracle.Oracle
	sinks    []event.Sink
	log      logrus.FieldLogger
	now      func() time.Time
	tracer   trace.Tracer
	gameID   string
	names    map[string]string
	seq      uint64
	failures int
}

// NewRunner validates the config and builds a runner for the given game
// engine and decision oracle.
func NewRunner(cfg domain.Config, game Game, decider oracle.Oracle, opts Options) (*Runner, error) {
	cfg, err := domain.NormalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, errors.New("game engine is required")
	}
	if decider == nil {
		return nil, errors.New("decision oracle is required")
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = id.NewID
	}
	if opts.Logger == nil {
		logger := logrus.New()
		if !cfg.Verbose {
			logger.SetOutput(io.Discard)
		}
		opts.Logger = logger
	}
	gameID, err := opts.IDGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate game id: %w", err)
	}
	names := make(map[string]string, len(cfg.Participants))
	for _, p := range cfg.Participants {
		names[p.ID] = p.Name
	}
	return &Runner{
		cfg:     cfg,
		game:    game,
		decider: decider,
		sinks:   opts.Sinks,
		log:     opts.Logger.WithFields(logrus.Fields{"game_id": gameID, "game_type": cfg.GameType}),
		now:     opts.Now,
		tracer:  otel.Tracer("arena/engine"),
		gameID:  gameID,
		names:   names,
	}, nil
}

// GameID returns the identifier assigned to this game instance.
func (r *Runner) GameID() string {
	return r.gameID
}

// Run plays the game to completion and returns its canonical outcome.
// Cancellation is honored at phase boundaries only and surfaces as an
// explicit aborted outcome, never a silently discarded game.
func (r *Runner) Run(ctx context.Context) (domain.Outcome, error) {
	ctx, span := r.tracer.Start(ctx, "game.run", trace.WithAttributes(
		attribute.String("game.id", r.gameID),
		attribute.String("game.type", r.cfg.GameType),
	))
	defer span.End()

	if err := r.game.Setup(); err != nil {
		return domain.Outcome{}, fmt.Errorf("setup %s: %w", r.cfg.GameType, err)
	}

	participants := make([]participantPayload, 0, len(r.cfg.Participants))
	for _, p := range r.cfg.Participants {
		participants = append(participants, participantPayload{ID: p.ID, Name: p.Name, Model: p.Model})
	}
	r.emit(ctx, event.TypeGameStarted, "", startedPayload{
		GameType:     r.cfg.GameType,
		Participants: participants,
		Seed:         r.cfg.Seed,
		MaxRounds:    r.cfg.MaxRounds,
	})
	r.log.Info("game started")

	for {
		if ctx.Err() != nil {
			return r.finish(ctx, r.abortOutcome("cancelled"))
		}

		phase, err := r.game.NextPhase()
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("next phase: %w", err)
		}
		r.emit(ctx, event.TypePhaseChanged, "", phasePayload{
			Kind:        phase.Kind,
			Label:       phase.Label,
			Round:       phase.Round,
			Description: phase.Description,
			ActiveIDs:   phase.ActiveIDs,
		})
		r.log.WithFields(logrus.Fields{"phase": phase.Kind, "label": phase.Label, "round": phase.Round}).Info(phase.Description)

		if phase.Terminal() {
			break
		}
		if len(phase.ActiveIDs) == 0 {
			// Resolution-only step; the engine already applied its
			// effects while computing the phase.
			if outcome, done := r.game.Terminal(); done {
				return r.finish(ctx, outcome)
			}
			continue
		}

		phaseCtx, phaseSpan := r.tracer.Start(ctx, "game.phase", trace.WithAttributes(
			attribute.String("phase.kind", string(phase.Kind)),
			attribute.Int("phase.round", phase.Round),
		))
		var terminal bool
		if phase.Kind != domain.PhaseDiscussion && len(phase.ActiveIDs) > 1 {
			terminal, err = r.runSimultaneous(phaseCtx, phase)
		} else {
			terminal, err = r.runSequential(phaseCtx, phase)
		}
		phaseSpan.End()
		if err != nil {
			return domain.Outcome{}, err
		}
		if terminal {
			if outcome, done := r.game.Terminal(); done {
				return r.finish(ctx, outcome)
			}
		}
		if r.failures >= maxConsecutiveFailures {
			r.log.Warn("aborting after repeated failed turns")
			return r.finish(ctx, r.abortOutcome("stuck"))
		}
	}

	outcome, done := r.game.Terminal()
	if !done {
		return domain.Outcome{}, fmt.Errorf("%w: terminal phase without outcome", domain.ErrInvariantViolation)
	}
	return r.finish(ctx, outcome)
}

// runSequential queries one actor at a time. Each actor's view is
// computed fresh, and within discussion phases the statements of prior
// actors in the same phase instance are passed along.
func (r *Runner) runSequential(ctx context.Context, phase domain.Phase) (terminal bool, err error) {
	var discussion []string
	for _, actorID := range phase.ActiveIDs {
		action, decideErr := r.decide(ctx, phase, actorID, r.game.View(actorID), discussion)
		outcome, err := r.applyDecided(ctx, phase, actorID, action, decideErr)
		if err != nil {
			return false, err
		}
		if phase.Kind == domain.PhaseDiscussion && outcome.Success {
			discussion = append(discussion, fmt.Sprintf("%s: %s", r.names[actorID], outcome.Result))
		}
		if _, done := r.game.Terminal(); done {
			return true, nil
		}
	}
	return false, nil
}

// runSimultaneous snapshots every actor's view before any action is
// applied, gathers decisions concurrently, then applies them in the
// phase's fixed actor order. No actor can observe another's pending
// action; iteration order is not semantically observable.
func (r *Runner) runSimultaneous(ctx context.Context, phase domain.Phase) (terminal bool, err error) {
	views := make(map[string]string, len(phase.ActiveIDs))
	for _, actorID := range phase.ActiveIDs {
		views[actorID] = r.game.View(actorID)
	}

	actions := make(map[string]domain.Action, len(phase.ActiveIDs))
	decideErrs := make(map[string]error, len(phase.ActiveIDs))
	g, gctx := errgroup.WithContext(ctx)
	results := make(chan struct {
		actorID string
		action  domain.Action
		err     error
	}, len(phase.ActiveIDs))
	for _, actorID := range phase.ActiveIDs {
		actorID := actorID
		g.Go(func() error {
			action, err := r.decide(gctx, phase, actorID, views[actorID], nil)
			results <- struct {
				actorID string
				action  domain.Action
				err     error
			}{actorID, action, err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	close(results)
	for res := range results {
		actions[res.actorID] = res.action
		decideErrs[res.actorID] = res.err
	}

	for _, actorID := range phase.ActiveIDs {
		if _, err := r.applyDecided(ctx, phase, actorID, actions[actorID], decideErrs[actorID]); err != nil {
			return false, err
		}
	}
	if _, done := r.game.Terminal(); done {
		return true, nil
	}
	return false, nil
}

// decide consults the oracle with bounded retries. A nil error means
// the action already validated against the phase's legal grammar.
func (r *Runner) decide(ctx context.Context, phase domain.Phase, actorID, view string, discussion []string) (domain.Action, error) {
	schemas := r.game.LegalActions(actorID, phase)
	req := oracle.Request{
		GameID:        r.gameID,
		GameType:      r.cfg.GameType,
		ParticipantID: actorID,
		Model:         r.modelFor(actorID),
		Phase:         phase,
		View:          view,
		Discussion:    discussion,
		Schemas:       schemas,
	}

	var action domain.Action
	var err error
	for attempt := 0; attempt < oracleAttempts; attempt++ {
		action, err = r.decider.Decide(ctx, req)
		if err != nil {
			continue
		}
		if err = action.ValidateAgainst(schemas); err == nil {
			return action, nil
		}
	}
	return domain.Action{}, err
}

// applyDecided applies the decided action, substituting the game's
// default action when the decision failed or the engine rejects it.
func (r *Runner) applyDecided(ctx context.Context, phase domain.Phase, actorID string, action domain.Action, decideErr error) (domain.ActionOutcome, error) {
	defaulted := false
	if decideErr != nil {
		r.log.WithField("actor", actorID).WithError(decideErr).Warn("substituting default action")
		action = r.game.DefaultAction(actorID, phase)
		defaulted = true
	}

	outcome, err := r.game.Apply(actorID, action)
	if err != nil && recoverable(err) && !defaulted {
		r.log.WithField("actor", actorID).WithError(err).Warn("substituting default action")
		action = r.game.DefaultAction(actorID, phase)
		defaulted = true
		outcome, err = r.game.Apply(actorID, action)
	}
	if err != nil {
		if !recoverable(err) {
			return domain.ActionOutcome{}, fmt.Errorf("apply %s for %s: %w", action.Name, actorID, err)
		}
		outcome = domain.ActionOutcome{
			ActorID: actorID,
			Name:    action.Name,
			Args:    action.Args,
			Result:  err.Error(),
			Success: false,
		}
	}

	if outcome.Success {
		r.failures = 0
	} else {
		r.failures++
	}

	code := domain.Code("")
	switch {
	case err != nil && errors.Is(err, domain.ErrMalformedAction):
		code = domain.CodeActionMalformed
	case err != nil:
		code = domain.CodeActionIllegal
	case defaulted:
		code = domain.CodeActionDefaulted
	}
	r.emit(ctx, event.TypeActionApplied, actorID, actionPayload{
		Action:    outcome.Name,
		Args:      outcome.Args,
		Result:    outcome.Result,
		Success:   outcome.Success,
		Defaulted: defaulted,
		Code:      code,
		VisibleTo: outcome.VisibleTo,
	})
	r.log.WithFields(logrus.Fields{"actor": actorID, "action": outcome.Name, "success": outcome.Success}).Info(outcome.Result)
	return outcome, nil
}

func (r *Runner) finish(ctx context.Context, outcome domain.Outcome) (domain.Outcome, error) {
	outcome.GameID = r.gameID
	outcome.GameType = r.cfg.GameType
	if outcome.Timestamp.IsZero() {
		outcome.Timestamp = r.now()
	}
	code := domain.Code("")
	switch outcome.Metadata[domain.MetadataTermination] {
	case string(domain.TerminationAborted), string(domain.TerminationRoundCap):
		code = domain.CodeSafetyValve
	}
	r.emit(ctx, event.TypeGameEnded, "", endedPayload{
		WinnerIDs: outcome.WinnerIDs,
		LoserIDs:  outcome.LoserIDs,
		Ranking:   outcome.Ranking,
		Metadata:  outcome.Metadata,
		Code:      code,
	})
	r.log.WithFields(logrus.Fields{"winners": outcome.WinnerIDs, "losers": outcome.LoserIDs}).Info("game ended")
	return outcome, nil
}

// abortOutcome builds the forced terminal outcome for cancelled or
// stuck games. Everyone loses; the metadata marks the termination as
// aborted so rating consumers can discount it.
func (r *Runner) abortOutcome(reason string) domain.Outcome {
	losers := make([]string, 0, len(r.cfg.Participants))
	for _, p := range r.cfg.Participants {
		losers = append(losers, p.ID)
	}
	return domain.Outcome{
		LoserIDs: losers,
		Metadata: map[string]any{
			domain.MetadataTermination: string(domain.TerminationAborted),
			"reason":                   reason,
		},
		Timestamp: r.now(),
	}
}

func (r *Runner) modelFor(actorID string) string {
	for _, p := range r.cfg.Participants {
		if p.ID == actorID {
			return p.Model
		}
	}
	return ""
}

func (r *Runner) emit(ctx context.Context, typ event.Type, actorID string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		r.log.WithError(err).Error("marshal event payload")
		return
	}
	r.seq++
	evt := event.Event{
		GameID:      r.gameID,
		Seq:         r.seq,
		Timestamp:   r.now(),
		Type:        typ,
		ActorID:     actorID,
		PayloadJSON: raw,
	}
	for _, sink := range r.sinks {
		if err := sink.HandleEvent(ctx, evt); err != nil {
			r.log.WithError(err).Warn("event sink failed")
		}
	}
}

// recoverable reports whether an apply error is a participant fault
// rather than an engine bug.
func recoverable(err error) bool {
	return errors.Is(err, domain.ErrIllegalAction) || errors.Is(err, domain.ErrMalformedAction)
}
