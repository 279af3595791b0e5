package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"nestegg/internal/amqp"
	"nestegg/internal/core"
)

type savingsAddRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// handleSavingsAdd records a contribution, snapshotting the CAD/CNY rates
// active right now so the row can be converted later without consulting
// current rates.
func (s *Server) handleSavingsAdd(w http.ResponseWriter, r *http.Request) error {
	var req savingsAddRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if err := requirePositive("amount", req.Amount); err != nil {
		return err
	}

	ctx := r.Context()
	pair, err := s.store.GetRates(ctx)
	if err != nil {
		return err
	}

	id, err := s.store.AddSavingsRecord(ctx, core.SavingsRecord{
		Amount:    req.Amount,
		CreatedAt: time.Now(),
		RateCAD:   pair.CAD.Rate,
		RateCNY:   pair.CNY.Rate,
	})
	if err != nil {
		return err
	}

	s.publishLedgerEvent(r, amqp.EventSavingsAdded, id, req.Amount, core.USD)
	writeSuccess(w)
	return nil
}

type savingsUpdateGoalRequest struct {
	Goal decimal.Decimal `json:"goal"`
}

func (s *Server) handleSavingsUpdateGoal(w http.ResponseWriter, r *http.Request) error {
	var req savingsUpdateGoalRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if err := requireNonNegative("goal", req.Goal); err != nil {
		return err
	}

	if err := s.store.SetSavingsGoal(r.Context(), req.Goal); err != nil {
		return err
	}
	writeSuccess(w)
	return nil
}

type savingsUpdateRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

func (s *Server) handleSavingsUpdateRate(w http.ResponseWriter, r *http.Request) error {
	var req savingsUpdateRateRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if err := requireNonNegative("rate", req.Rate); err != nil {
		return err
	}

	if err := s.store.SetSavingsRate(r.Context(), req.Rate); err != nil {
		return err
	}
	writeSuccess(w)
	return nil
}

type deleteRequest struct {
	ID int64 `json:"id"`
}

// handleSavingsDelete removes a contribution. No balance reversal is needed:
// the savings total is derived by summation, so the next read simply no
// longer includes this row.
func (s *Server) handleSavingsDelete(w http.ResponseWriter, r *http.Request) error {
	var req deleteRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	if err := s.store.DeleteSavingsRecord(r.Context(), req.ID); err != nil {
		return err
	}

	s.publishLedgerEvent(r, amqp.EventSavingsDeleted, req.ID, decimal.Zero, core.USD)
	writeSuccess(w)
	return nil
}

// publishLedgerEvent notifies downstream consumers when a broker is
// configured. Failures are logged and never affect the response.
func (s *Server) publishLedgerEvent(r *http.Request, kind string, recordID int64, amount decimal.Decimal, currency core.Currency) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(r.Context(), kind, recordID, amount, currency); err != nil {
		slog.WarnContext(r.Context(), "Failed to publish ledger event",
			"kind", kind, "record_id", recordID, "error", err)
	}
}
