package apistub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/salesaice/aice-go/billing"
	"github.com/salesaice/aice-go/dashboard"
	"github.com/salesaice/aice-go/internal/util"
)

type contextKey string

const emailKey contextKey = "email"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return v, false
	}
	return v, true
}

func (s *Stub) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		s.mu.Lock()
		email, ok := s.accessTokens[token]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			return
		}
		ctx := context.WithValue(r.Context(), emailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func emailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Stub) login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[loginRequest](w, r)
	if !ok {
		return
	}
	email := util.NormalizeEmail(req.Email)

	s.mu.Lock()
	acct, found := s.accounts[email]
	if !found || acct.password != req.Password {
		s.mu.Unlock()
		s.logger.Info("login rejected", "email", email)
		// Bad credentials are signaled with a status marker, not an HTTP
		// error, matching the backend contract.
		writeJSON(w, http.StatusOK, map[string]string{"status": "402"})
		return
	}
	access := "acc-" + uuid.NewString()
	refresh := "ref-" + uuid.NewString()
	s.accessTokens[access] = email
	s.refreshTokens[refresh] = email
	s.mu.Unlock()

	s.logger.Info("login", "email", email, "role", acct.user.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    acct.user,
		"tokens":  map[string]string{"access": access, "refresh": refresh},
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (s *Stub) logout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[refreshRequest](w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	_, known := s.refreshTokens[req.Refresh]
	delete(s.refreshTokens, req.Refresh)
	s.mu.Unlock()
	if !known {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Stub) refresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	req, ok := decodeJSON[refreshRequest](w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	email, known := s.refreshTokens[req.Refresh]
	if s.failRefresh || !known {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}
	access := "acc-" + uuid.NewString()
	s.accessTokens[access] = email
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Stub) userData(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	s.mu.Lock()
	acct := s.accounts[email]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, acct.user)
}

func (s *Stub) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	s.mu.Lock()
	methods := append([]billing.PaymentMethod(nil), s.paymentMethods[email]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         fmt.Sprintf("Found %d payment methods", len(methods)),
		"payment_methods": methods,
		"total_methods":   len(methods),
	})
}

type addPaymentMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
	SetAsDefault    bool   `json:"set_as_default"`
}

func (s *Stub) addPaymentMethod(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	req, ok := decodeJSON[addPaymentMethodRequest](w, r)
	if !ok {
		return
	}
	if req.PaymentMethodID == "" {
		writeError(w, http.StatusBadRequest, "payment_method_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pm := range s.paymentMethods[email] {
		if pm.ID == req.PaymentMethodID {
			writeError(w, http.StatusBadRequest, "Payment method already exists")
			return
		}
	}

	card, known := s.cards[req.PaymentMethodID]
	if !known {
		// References the stub's tokenizer never minted resolve to a
		// generic test card, so AddToken works with arbitrary tokens.
		card = billing.CardDetails{Number: "4242424242424242", ExpMonth: 12, ExpYear: 2030}
	}
	brand := cardBrand(card.Number)
	lastFour := card.Number
	if len(lastFour) > 4 {
		lastFour = lastFour[len(lastFour)-4:]
	}
	pm := billing.PaymentMethod{
		ID:          req.PaymentMethodID,
		DisplayName: fmt.Sprintf("%s •••• %s", titleCase(brand), lastFour),
		CardType:    brand,
		LastFour:    lastFour,
		ExpMonth:    card.ExpMonth,
		ExpYear:     card.ExpYear,
		Expires:     fmt.Sprintf("%02d/%d", card.ExpMonth, card.ExpYear),
		IsDefault:   req.SetAsDefault || len(s.paymentMethods[email]) == 0,
	}
	if pm.IsDefault {
		s.clearDefaultLocked(email)
	}
	s.paymentMethods[email] = append(s.paymentMethods[email], pm)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":        true,
		"message":        "Payment method added successfully",
		"payment_method": pm,
		"set_as_default": pm.IsDefault,
	})
}

type updatePaymentMethodRequest struct {
	SetAsDefault bool `json:"set_as_default"`
}

func (s *Stub) updatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	id := chi.URLParam(r, "id")
	req, ok := decodeJSON[updatePaymentMethodRequest](w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(email, id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Payment method not found")
		return
	}
	if req.SetAsDefault {
		s.clearDefaultLocked(email)
		s.paymentMethods[email][idx].IsDefault = true
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "Payment method updated successfully",
		"payment_method": s.paymentMethods[email][idx],
	})
}

func (s *Stub) removePaymentMethod(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(email, id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Payment method not found")
		return
	}
	methods := s.paymentMethods[email]
	if len(methods) == 1 {
		writeError(w, http.StatusBadRequest, "Cannot remove the last payment method. Add another payment method first.")
		return
	}
	if methods[idx].IsDefault {
		writeError(w, http.StatusBadRequest, "Cannot remove default payment method. Set another payment method as default first.")
		return
	}
	s.paymentMethods[email] = append(methods[:idx], methods[idx+1:]...)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Payment method removed successfully",
	})
}

func (s *Stub) findLocked(email, id string) int {
	for i, pm := range s.paymentMethods[email] {
		if pm.ID == id {
			return i
		}
	}
	return -1
}

func (s *Stub) clearDefaultLocked(email string) {
	for i := range s.paymentMethods[email] {
		s.paymentMethods[email][i].IsDefault = false
	}
}

func (s *Stub) listInvoices(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	s.mu.Lock()
	invoices := append([]billing.Invoice(nil), s.invoices[email]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, invoices)
}

func (s *Stub) defaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	s.mu.Lock()
	var def *billing.PaymentMethod
	for _, pm := range s.paymentMethods[email] {
		if pm.IsDefault {
			d := pm
			def = &d
			break
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, def)
}

func (s *Stub) currentPlan(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	s.mu.Lock()
	plan := s.plans[email]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, plan)
}

func (s *Stub) dashboardStats(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	s.mu.Lock()
	stats := s.stats[email]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Stub) listAgents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	agents := append([]dashboard.Agent(nil), s.agents...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, agents)
}

func (s *Stub) listCalls(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	status := r.URL.Query().Get("status")
	s.mu.Lock()
	var calls []dashboard.CallRecord
	for _, c := range s.calls[email] {
		if status == "" || c.Status == status {
			calls = append(calls, c)
		}
	}
	s.mu.Unlock()
	if calls == nil {
		calls = []dashboard.CallRecord{}
	}
	writeJSON(w, http.StatusOK, calls)
}

func cardBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "5"):
		return "mastercard"
	case strings.HasPrefix(number, "3"):
		return "amex"
	default:
		return "card"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
