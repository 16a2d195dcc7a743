package apistub

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/salesaice/aice-go/billing"
)

// DeclinedCardNumber is rejected by the stub tokenizer, for exercising the
// phase-1 failure path.
const DeclinedCardNumber = "4000000000000002"

// Tokenizer returns an in-process fake card tokenizer wired to this stub:
// references it mints resolve to the original card details when added
// through the backend, the way a real provider's dashboard shows the
// attached card.
func (s *Stub) Tokenizer() billing.Tokenizer {
	return billing.TokenizerFunc(func(ctx context.Context, card billing.CardDetails) (string, error) {
		return s.tokenize(card)
	})
}

func (s *Stub) tokenize(card billing.CardDetails) (string, error) {
	if card.Number == "" || card.CVC == "" {
		return "", &billing.TokenizeError{Reason: "invalid card details"}
	}
	if card.Number == DeclinedCardNumber {
		return "", &billing.TokenizeError{Reason: "card declined"}
	}
	now := time.Now()
	if card.ExpYear < now.Year() || (card.ExpYear == now.Year() && card.ExpMonth < int(now.Month())) {
		return "", &billing.TokenizeError{Reason: "card expired"}
	}

	token := "pm_" + uuid.NewString()
	s.mu.Lock()
	s.cards[token] = card
	s.mu.Unlock()
	return token, nil
}

type tokenizeRequest struct {
	Number   string `json:"number"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	CVC      string `json:"cvc"`
}

// tokenizeCard handles POST /provider/tokenize/, the HTTP face of the fake
// provider used by the CLI.
func (s *Stub) tokenizeCard(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[tokenizeRequest](w, r)
	if !ok {
		return
	}
	token, err := s.tokenize(billing.CardDetails{
		Number:   req.Number,
		ExpMonth: req.ExpMonth,
		ExpYear:  req.ExpYear,
		CVC:      req.CVC,
	})
	if err != nil {
		var tokErr *billing.TokenizeError
		reason := "card rejected"
		if errors.As(err, &tokErr) {
			reason = tokErr.Reason
		}
		writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": reason})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": token})
}
