package feed

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
	"github.com/shopspring/decimal"
)

// ErrMalformedMessage marks payloads that can never be processed.
var ErrMalformedMessage = errors.New("feed: malformed score message")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ScoreMessage is the wire form of one score batch, shared by the AMQP feed and
// the internal HTTP intake. Counters are cumulative for the match so far.
type ScoreMessage struct {
	MatchID    string         `json:"matchId"`
	Correction bool           `json:"correction"`
	Updates    []PlayerUpdate `json:"updates" validate:"required,min=1,dive"`
}

type PlayerUpdate struct {
	PlayerID     string          `json:"playerId" validate:"required"`
	Runs         int             `json:"runs"`
	BallsFaced   int             `json:"ballsFaced"`
	Fours        int             `json:"fours"`
	Sixes        int             `json:"sixes"`
	Wickets      int             `json:"wickets"`
	OversBowled  decimal.Decimal `json:"oversBowled"`
	RunsConceded int             `json:"runsConceded"`
	Maidens      int             `json:"maidens"`
	Catches      int             `json:"catches"`
	Stumpings    int             `json:"stumpings"`
	RunOuts      int             `json:"runOuts"`
}

// DecodeScoreMessage parses and shape-checks a payload. matchID, when set,
// overrides the payload's matchId (the HTTP path carries it). Counter rules
// are enforced by ingestion, not here.
func DecodeScoreMessage(body []byte, matchID string) (usecase.ScoreBatch, error) {
	var msg ScoreMessage
	if err := sonic.Unmarshal(body, &msg); err != nil {
		return usecase.ScoreBatch{}, errors.Mark(errors.Wrap(err, "decode score message"), ErrMalformedMessage)
	}
	if matchID = strings.TrimSpace(matchID); matchID != "" {
		msg.MatchID = matchID
	}
	msg.MatchID = strings.TrimSpace(msg.MatchID)
	if msg.MatchID == "" {
		return usecase.ScoreBatch{}, errors.Mark(errors.New("score message has no matchId"), ErrMalformedMessage)
	}
	if err := validate.Struct(msg); err != nil {
		return usecase.ScoreBatch{}, errors.Mark(errors.Wrap(err, "validate score message"), ErrMalformedMessage)
	}
	return msg.toBatch(), nil
}

func (m ScoreMessage) toBatch() usecase.ScoreBatch {
	updates := make([]playerstats.Update, 0, len(m.Updates))
	for _, u := range m.Updates {
		updates = append(updates, playerstats.Update{
			PlayerID: strings.TrimSpace(u.PlayerID),
			Counters: playerstats.Counters{
				Runs:         u.Runs,
				BallsFaced:   u.BallsFaced,
				Fours:        u.Fours,
				Sixes:        u.Sixes,
				Wickets:      u.Wickets,
				OversBowled:  u.OversBowled,
				RunsConceded: u.RunsConceded,
				Maidens:      u.Maidens,
				Catches:      u.Catches,
				Stumpings:    u.Stumpings,
				RunOuts:      u.RunOuts,
			},
		})
	}
	return usecase.ScoreBatch{MatchID: m.MatchID, Updates: updates, Correction: m.Correction}
}
