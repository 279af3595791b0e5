package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return core.BadRequest("username and password are required")
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		return err
	}

	slog.InfoContext(r.Context(), "Login succeeded", "username", req.Username)
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token})
	return nil
}

type savingsRecordJSON struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	RateToCAD decimal.Decimal `json:"rateToCAD"`
	RateToCNY decimal.Decimal `json:"rateToCNY"`
}

type entertainmentRecordJSON struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Note      string          `json:"note"`
	Date      time.Time       `json:"date"`
	RateToCAD decimal.Decimal `json:"rateToCAD"`
	RateToCNY decimal.Decimal `json:"rateToCNY"`
}

type ratesJSON struct {
	CAD       decimal.Decimal `json:"CAD"`
	CNY       decimal.Decimal `json:"CNY"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

type dataResponse struct {
	Savings struct {
		Goal         decimal.Decimal     `json:"goal"`
		Current      decimal.Decimal     `json:"current"`
		InterestRate decimal.Decimal     `json:"interestRate"`
		Records      []savingsRecordJSON `json:"records"`
	} `json:"savings"`
	Entertainment struct {
		Balance decimal.Decimal           `json:"balance"`
		Records []entertainmentRecordJSON `json:"records"`
	} `json:"entertainment"`
	Rates ratesJSON `json:"rates"`
}

// handleData assembles the full dashboard snapshot. The savings total is
// recomputed from the rows on every call; the entertainment balance is read
// from its incrementally-maintained singleton.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	cfg, err := s.store.GetSavingsConfig(ctx)
	if err != nil {
		return err
	}
	total, err := s.store.SavingsTotal(ctx)
	if err != nil {
		return err
	}
	savingsRecords, err := s.store.ListSavingsRecords(ctx)
	if err != nil {
		return err
	}
	balance, err := s.store.GetEntertainmentBalance(ctx)
	if err != nil {
		return err
	}
	entRecords, err := s.store.ListEntertainmentRecords(ctx)
	if err != nil {
		return err
	}
	pair, err := s.store.GetRates(ctx)
	if err != nil {
		return err
	}

	var resp dataResponse
	resp.Savings.Goal = cfg.Goal
	resp.Savings.Current = total
	resp.Savings.InterestRate = cfg.InterestRate
	resp.Savings.Records = make([]savingsRecordJSON, 0, len(savingsRecords))
	for _, rec := range savingsRecords {
		resp.Savings.Records = append(resp.Savings.Records, savingsRecordJSON{
			ID:        rec.ID,
			Amount:    rec.Amount,
			Date:      rec.CreatedAt,
			RateToCAD: rec.RateCAD,
			RateToCNY: rec.RateCNY,
		})
	}

	resp.Entertainment.Balance = balance
	resp.Entertainment.Records = make([]entertainmentRecordJSON, 0, len(entRecords))
	for _, rec := range entRecords {
		resp.Entertainment.Records = append(resp.Entertainment.Records, entertainmentRecordJSON{
			ID:        rec.ID,
			Amount:    rec.Amount,
			Currency:  string(rec.Currency),
			Note:      rec.Note,
			Date:      rec.CreatedAt,
			RateToCAD: rec.RateCAD,
			RateToCNY: rec.RateCNY,
		})
	}

	resp.Rates.CAD = pair.CAD.Rate
	resp.Rates.CNY = pair.CNY.Rate
	if !pair.CAD.UpdatedAt.IsZero() {
		resp.Rates.UpdatedAt = &pair.CAD.UpdatedAt
	}

	writeJSON(w, http.StatusOK, resp)
	return nil
}

type ratesUpdateResponse struct {
	Success bool `json:"success"`
	Rates   struct {
		CAD decimal.Decimal `json:"CAD"`
		CNY decimal.Decimal `json:"CNY"`
	} `json:"rates"`
}

// handleRatesUpdate is the synchronous refresh path: provider failures
// surface as 500 envelopes and the stored rates stay untouched.
func (s *Server) handleRatesUpdate(w http.ResponseWriter, r *http.Request) error {
	pair, err := s.refresher.Refresh(r.Context())
	if err != nil {
		return err
	}

	var resp ratesUpdateResponse
	resp.Success = true
	resp.Rates.CAD = pair.CAD.Rate
	resp.Rates.CNY = pair.CNY.Rate
	writeJSON(w, http.StatusOK, resp)
	return nil
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
