package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
	"github.com/shopspring/decimal"
)

const (
	settleMatchJobPath = usecase.SettleMatchJobPath
	maxRequestBodySize = 1 << 20
)

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSONBody rejects unknown fields and bodies over maxRequestBodySize.
// An empty body leaves dst untouched.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}

	decoder := jsoniter.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type submitTeamRequest struct {
	DisplayName   string   `json:"display_name" validate:"omitempty,max=100"`
	PlayerIDs     []string `json:"player_ids" validate:"required,len=11,dive,required"`
	CaptainID     string   `json:"captain_id" validate:"required"`
	ViceCaptainID string   `json:"vice_captain_id" validate:"required,nefield=CaptainID"`
}

type prizeSlotRequest struct {
	Rank   int             `json:"rank" validate:"required,min=1"`
	Amount decimal.Decimal `json:"amount"`
}

type createContestRequest struct {
	MatchID    string              `json:"match_id" validate:"required"`
	Name       string              `json:"name" validate:"required,max=120"`
	EntryFee   decimal.Decimal     `json:"entry_fee"`
	MaxEntries int                 `json:"max_entries" validate:"required,min=2"`
	Rake       decimal.NullDecimal `json:"rake"`
	RulesID    string              `json:"rules_id" validate:"omitempty,max=64"`
	PrizeTable []prizeSlotRequest  `json:"prize_table" validate:"omitempty,dive"`
}

type completeMatchRequest struct {
	Result string `json:"result" validate:"omitempty,max=255"`
}

type healthDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type prizeSlotDTO struct {
	Rank   int             `json:"rank"`
	Amount decimal.Decimal `json:"amount"`
}

type contestDTO struct {
	ID         string          `json:"id"`
	MatchID    string          `json:"matchId"`
	Name       string          `json:"name"`
	EntryFee   decimal.Decimal `json:"entryFee"`
	MaxEntries int             `json:"maxEntries"`
	Rake       decimal.Decimal `json:"rake"`
	RulesID    string          `json:"rulesId"`
	PrizePool  decimal.Decimal `json:"prizePool"`
	PrizeTable []prizeSlotDTO  `json:"prizeTable"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	SettledAt  *time.Time      `json:"settledAt,omitempty"`
}

type teamDTO struct {
	ID            string          `json:"id"`
	ContestID     string          `json:"contestId"`
	UserID        string          `json:"userId"`
	DisplayName   string          `json:"displayName"`
	PlayerIDs     []string        `json:"playerIds"`
	CaptainID     string          `json:"captainId"`
	ViceCaptainID string          `json:"viceCaptainId"`
	TotalPoints   decimal.Decimal `json:"totalPoints"`
	SubmittedAt   time.Time       `json:"submittedAt"`
}

type transactionDTO struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	ContestID string          `json:"contestId,omitempty"`
	Position  int             `json:"position,omitempty"`
	Rank      int             `json:"rank,omitempty"`
	Points    decimal.Decimal `json:"points"`
	CreatedAt time.Time       `json:"createdAt"`
}

type walletDTO struct {
	UserID          string           `json:"userId"`
	CashBalance     decimal.Decimal  `json:"cashBalance"`
	TotalWinnings   decimal.Decimal  `json:"totalWinnings"`
	BalanceMismatch bool             `json:"balanceMismatch,omitempty"`
	Transactions    []transactionDTO `json:"transactions"`
}

func (req createContestRequest) toInput() usecase.CreateContestInput {
	table := make([]contest.PrizeSlot, 0, len(req.PrizeTable))
	for _, slot := range req.PrizeTable {
		table = append(table, contest.PrizeSlot{Rank: slot.Rank, Amount: slot.Amount})
	}
	return usecase.CreateContestInput{
		MatchID:    req.MatchID,
		Name:       req.Name,
		EntryFee:   req.EntryFee,
		MaxEntries: req.MaxEntries,
		Rake:       req.Rake,
		RulesID:    req.RulesID,
		PrizeTable: table,
	}
}

func contestToDTO(item contest.Contest) contestDTO {
	table := make([]prizeSlotDTO, 0, len(item.PrizeTable))
	for _, slot := range item.PrizeTable {
		table = append(table, prizeSlotDTO{Rank: slot.Rank, Amount: slot.Amount})
	}
	return contestDTO{
		ID:         item.ID,
		MatchID:    item.MatchID,
		Name:       item.Name,
		EntryFee:   item.EntryFee,
		MaxEntries: item.MaxEntries,
		Rake:       item.Rake,
		RulesID:    item.RulesID,
		PrizePool:  contest.TotalPrize(item.PrizeTable),
		PrizeTable: table,
		Status:     string(item.Status),
		CreatedAt:  item.CreatedAt,
		SettledAt:  item.SettledAt,
	}
}

func teamToDTO(item fantasyteam.Team) teamDTO {
	return teamDTO{
		ID:            item.ID,
		ContestID:     item.ContestID,
		UserID:        item.UserID,
		DisplayName:   item.DisplayName,
		PlayerIDs:     item.PlayerIDs,
		CaptainID:     item.CaptainID,
		ViceCaptainID: item.ViceCaptainID,
		TotalPoints:   item.TotalPoints,
		SubmittedAt:   item.SubmittedAt,
	}
}

func walletToDTO(view usecase.WalletView) walletDTO {
	txs := make([]transactionDTO, 0, len(view.Transactions))
	for _, tx := range view.Transactions {
		txs = append(txs, transactionDTO{
			ID:        tx.ID,
			Type:      string(tx.Type),
			Amount:    tx.Amount,
			ContestID: tx.ContestID,
			Position:  tx.Position,
			Rank:      tx.Rank,
			Points:    tx.Points,
			CreatedAt: tx.CreatedAt,
		})
	}
	return walletDTO{
		UserID:          view.Wallet.UserID,
		CashBalance:     view.Wallet.CashBalance,
		TotalWinnings:   view.Wallet.TotalWinnings,
		BalanceMismatch: view.BalanceMismatch,
		Transactions:    txs,
	}
}
