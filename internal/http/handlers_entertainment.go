package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"nestegg/internal/amqp"
	"nestegg/internal/core"
)

type rechargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// handleEntertainmentRecharge adds USD to the entertainment balance. Record
// insert and balance update are two sequential statements with no wrapping
// transaction, matching the rest of the ledger's multi-statement handlers.
func (s *Server) handleEntertainmentRecharge(w http.ResponseWriter, r *http.Request) error {
	var req rechargeRequest
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

	rec := core.EntertainmentRecord{
		Amount:    req.Amount, // positive: recharge
		Currency:  core.USD,
		CreatedAt: time.Now(),
		RateCAD:   pair.CAD.Rate,
		RateCNY:   pair.CNY.Rate,
	}
	id, err := s.store.AddEntertainmentRecord(ctx, rec)
	if err != nil {
		return err
	}
	if _, err := s.store.AdjustEntertainmentBalance(ctx, req.Amount); err != nil {
		return err
	}

	s.publishLedgerEvent(r, amqp.EventEntertainmentAdded, id, req.Amount, core.USD)
	writeSuccess(w)
	return nil
}

type expenseRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Note     string          `json:"note"`
}

// handleEntertainmentExpense debits the balance by the USD equivalent of the
// spent amount, converting with the rate active right now and snapshotting
// that rate on the record so deletion can reverse the exact same value.
func (s *Server) handleEntertainmentExpense(w http.ResponseWriter, r *http.Request) error {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if err := requirePositive("amount", req.Amount); err != nil {
		return err
	}
	currency, err := core.ParseCurrency(req.Currency)
	if err != nil {
		return err
	}

	ctx := r.Context()
	pair, err := s.store.GetRates(ctx)
	if err != nil {
		return err
	}

	rec := core.EntertainmentRecord{
		Amount:    req.Amount.Neg(), // negative: expense
		Currency:  currency,
		Note:      req.Note,
		CreatedAt: time.Now(),
		RateCAD:   pair.CAD.Rate,
		RateCNY:   pair.CNY.Rate,
	}
	usdDelta, err := rec.USDAmount()
	if err != nil {
		return core.BadRequest("no %s exchange rate available yet", currency)
	}

	id, err := s.store.AddEntertainmentRecord(ctx, rec)
	if err != nil {
		return err
	}
	if _, err := s.store.AdjustEntertainmentBalance(ctx, usdDelta); err != nil {
		return err
	}

	s.publishLedgerEvent(r, amqp.EventEntertainmentAdded, id, rec.Amount, currency)
	writeSuccess(w)
	return nil
}

// handleEntertainmentDelete removes a record and reverses its balance effect
// using the record's own stored rate, never the current one: deleting a
// recharge subtracts what it added, deleting an expense restores what it
// debited.
func (s *Server) handleEntertainmentDelete(w http.ResponseWriter, r *http.Request) error {
	var req deleteRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	ctx := r.Context()
	rec, err := s.store.GetEntertainmentRecord(ctx, req.ID)
	if err != nil {
		return err
	}

	usdEffect, err := rec.USDAmount()
	if err != nil {
		return err
	}

	if _, err := s.store.AdjustEntertainmentBalance(ctx, usdEffect.Neg()); err != nil {
		return err
	}
	if err := s.store.DeleteEntertainmentRecord(ctx, req.ID); err != nil {
		return err
	}

	s.publishLedgerEvent(r, amqp.EventEntertainmentDeleted, req.ID, rec.Amount, rec.Currency)
	writeSuccess(w)
	return nil
}
