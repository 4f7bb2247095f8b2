// Package chess implements the two-player chess game family. Board
// state, move legality and draw detection are delegated to the
// notnil/chess library; this package supplies the phase structure,
// views and outcome mapping.
package chess

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	chesslib "github.com/notnil/chess"

	"github.com/louisbranch/arena/internal/game/domain"
	"github.com/louisbranch/arena/internal/game/engine"
)

// GameType identifies this family in the registry.
const GameType = "chess"

// maxHalfMoves caps the game length; reaching it is a draw.
const maxHalfMoves = 200

// ErrPlayerCount indicates a config without exactly two participants.
var ErrPlayerCount = errors.New("chess requires exactly 2 participants")

// New builds a chess engine. The first configured participant plays
// White. Chess has no hidden information, so rng is unused.
func New(cfg domain.Config, _ *rand.Rand) (engine.Game, error) {
	if len(cfg.Participants) != 2 {
		return nil, fmt.Errorf("%w, got %d", ErrPlayerCount, len(cfg.Participants))
	}
	return &game{
		cfg:     cfg,
		whiteID: cfg.Participants[0].ID,
		blackID: cfg.Participants[1].ID,
	}, nil
}

type game struct {
	cfg     domain.Config
	board   *chesslib.Game
	whiteID string
	blackID string
	history []string
	check   bool
}

func (g *game) Setup() error {
	g.board = chesslib.NewGame()
	g.history = nil
	g.check = false
	return nil
}

func (g *game) NextPhase() (domain.Phase, error) {
	if g.over() {
		return domain.Phase{
			Kind:        domain.PhaseGameOver,
			Round:       g.fullMove(),
			Description: "The game is over.",
		}, nil
	}

	activeID := g.whiteID
	color := "White"
	if g.board.Position().Turn() == chesslib.Black {
		activeID = g.blackID
		color = "Black"
	}
	description := fmt.Sprintf("Move %d: %s to play", g.fullMove(), color)
	if g.check {
		description += " (in check)"
	}
	return domain.Phase{
		Kind:        domain.PhaseAction,
		Round:       g.fullMove(),
		Description: description,
		ActiveIDs:   []string{activeID},
	}, nil
}

func (g *game) LegalActions(string, domain.Phase) []domain.ActionSchema {
	return []domain.ActionSchema{{
		Name:        "move",
		Description: "Make a chess move in UCI notation (e.g. e2e4, g1f3, e7e8q).",
		Params: []domain.ParamSchema{{
			Name:        "uci",
			Type:        "string",
			Description: "Source square followed by destination square, with optional promotion piece.",
		}},
	}}
}

func (g *game) Apply(participantID string, action domain.Action) (domain.ActionOutcome, error) {
	if participantID != g.turnID() {
		return domain.ActionOutcome{}, fmt.Errorf("%w: not %s's turn", domain.ErrIllegalAction, participantID)
	}
	if action.Name != "move" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: unknown action %q", domain.ErrIllegalAction, action.Name)
	}
	uci := strings.ToLower(action.StringArg("uci"))
	if uci == "" {
		return domain.ActionOutcome{}, fmt.Errorf("%w: uci argument is required", domain.ErrMalformedAction)
	}

	pos := g.board.Position()
	move, err := chesslib.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return domain.ActionOutcome{}, fmt.Errorf("%w: invalid move %q: use format like e2e4", domain.ErrIllegalAction, uci)
	}
	legal := false
	for _, m := range pos.ValidMoves() {
		if m.String() == move.String() {
			legal = true
			break
		}
	}
	if !legal {
		return domain.ActionOutcome{}, fmt.Errorf("%w: %q is not legal here; legal moves: %s",
			domain.ErrIllegalAction, uci, g.legalMoveList())
	}

	san := chesslib.AlgebraicNotation{}.Encode(pos, move)
	if err := g.board.Move(move); err != nil {
		return domain.ActionOutcome{}, fmt.Errorf("apply move %s: %w", uci, err)
	}
	g.history = append(g.history, san)
	g.check = move.HasTag(chesslib.Check)
	g.claimEligibleDraw()

	parts := []string{fmt.Sprintf("Move played: %s (%s)", san, uci)}
	switch {
	case g.board.Method() == chesslib.Checkmate:
		parts = append(parts, "Checkmate!")
	case g.check:
		parts = append(parts, "Check!")
	case g.board.Method() == chesslib.Stalemate:
		parts = append(parts, "Stalemate, the game is drawn.")
	}

	return domain.ActionOutcome{
		ActorID: participantID,
		Name:    "move",
		Args:    map[string]any{"uci": uci, "san": san},
		Result:  strings.Join(parts, " "),
		Success: true,
	}, nil
}

func (g *game) View(participantID string) string {
	color := "White"
	if participantID == g.blackID {
		color = "Black"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are playing chess as %s.\n\n", color)
	fmt.Fprintf(&b, "Current position (FEN): %s\n\n", g.fen())
	b.WriteString(g.board.Position().Board().Draw())
	if len(g.history) > 0 {
		fmt.Fprintf(&b, "\nMoves so far: %s\n", strings.Join(g.history, " "))
	}
	if participantID == g.turnID() {
		fmt.Fprintf(&b, "\nIt is your move. Legal moves: %s\n", g.legalMoveList())
	}
	return b.String()
}

// DefaultAction returns an empty move. Chess has no harmless legal
// default, so a failing oracle runs into the stuck-game valve instead
// of having moves invented on its behalf.
func (g *game) DefaultAction(string, domain.Phase) domain.Action {
	return domain.Action{Name: "move", Args: map[string]any{"uci": ""}}
}

func (g *game) Terminal() (domain.Outcome, bool) {
	if !g.over() {
		return domain.Outcome{}, false
	}

	metadata := map[string]any{
		"total_moves":  len(g.history),
		"final_fen":    g.fen(),
		"move_history": append([]string(nil), g.history...),
	}

	var winners, losers []string
	switch g.board.Outcome() {
	case chesslib.WhiteWon:
		winners, losers = []string{g.whiteID}, []string{g.blackID}
	case chesslib.BlackWon:
		winners, losers = []string{g.blackID}, []string{g.whiteID}
	}

	switch {
	case g.board.Method() == chesslib.Checkmate:
		metadata[domain.MetadataTermination] = "checkmate"
	case g.board.Method() == chesslib.Stalemate:
		metadata[domain.MetadataTermination] = "stalemate"
	case g.board.Method() == chesslib.InsufficientMaterial:
		metadata[domain.MetadataTermination] = "insufficient_material"
	case g.board.Method() == chesslib.FiftyMoveRule:
		metadata[domain.MetadataTermination] = "fifty_move_rule"
	case g.board.Method() == chesslib.ThreefoldRepetition:
		metadata[domain.MetadataTermination] = "threefold_repetition"
	case len(g.history) >= maxHalfMoves:
		metadata[domain.MetadataTermination] = "max_moves_reached"
	default:
		metadata[domain.MetadataTermination] = "draw"
	}

	var ranking []string
	if len(winners) > 0 {
		ranking = append(append([]string(nil), winners...), losers...)
	}
	return domain.Outcome{
		GameType:  GameType,
		WinnerIDs: winners,
		LoserIDs:  losers,
		Ranking:   ranking,
		Metadata:  metadata,
	}, true
}

func (g *game) over() bool {
	return g.board.Outcome() != chesslib.NoOutcome || len(g.history) >= maxHalfMoves
}

// claimEligibleDraw ends the game when an automatic draw rule applies.
// The library treats threefold repetition and the fifty-move rule as
// claimable rather than automatic; here both sides are engines, so the
// draw is always claimed.
func (g *game) claimEligibleDraw() {
	for _, method := range g.board.EligibleDraws() {
		if method == chesslib.ThreefoldRepetition || method == chesslib.FiftyMoveRule {
			_ = g.board.Draw(method)
			return
		}
	}
}

func (g *game) turnID() string {
	if g.board.Position().Turn() == chesslib.White {
		return g.whiteID
	}
	return g.blackID
}

func (g *game) fullMove() int {
	return len(g.history)/2 + 1
}

func (g *game) fen() string {
	return g.board.Position().String()
}

func (g *game) legalMoveList() string {
	moves := g.board.Position().ValidMoves()
	ucis := make([]string, 0, len(moves))
	for _, m := range moves {
		ucis = append(ucis, m.String())
	}
	return strings.Join(ucis, ", ")
}
