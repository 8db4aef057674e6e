package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gm-rewards/access"
	"gm-rewards/bank"
	"gm-rewards/cycles"
	"gm-rewards/errs"
	"gm-rewards/journal"
	"gm-rewards/leveling"
	"gm-rewards/logger"
	"gm-rewards/registry"
	"gm-rewards/rewards"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CallerHeader carries the address of the account issuing a request
const CallerHeader = "X-Account"

// Handler contains the HTTP handlers for the leveling and rewards API endpoints
type Handler struct {
	Engine   *leveling.Engine
	Ledger   *rewards.Ledger
	Registry *registry.Registry
	Cycles   *cycles.Oracle
	Bank     *bank.Bank
	Access   *access.Access
	Journal  *journal.Journal
}

// NewHandler creates and returns a new Handler instance
func NewHandler(
	engine *leveling.Engine,
	ledger *rewards.Ledger,
	reg *registry.Registry,
	oracle *cycles.Oracle,
	b *bank.Bank,
	acl *access.Access,
	j *journal.Journal,
) *Handler {
	return &Handler{
		Engine:   engine,
		Ledger:   ledger,
		Registry: reg,
		Cycles:   oracle,
		Bank:     b,
		Access:   acl,
		Journal:  j,
	}
}

func caller(r *http.Request) string {
	return r.Header.Get(CallerHeader)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Logger.Warn("Failed to encode response", zap.Error(err))
	}
}

// statusFor maps a domain error kind to an HTTP status
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindUnauthorized, errs.KindNotEligible:
		return http.StatusForbidden
	case errs.KindInvalidState, errs.KindCycleNotEnded:
		return http.StatusConflict
	case errs.KindInvalidArgument:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInsufficientFunds:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Logger.Error(msg, zap.Error(err))
	} else {
		logger.Logger.Info(msg, zap.String("code", errs.CodeOf(err)), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errs.CodeOf(err),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Logger.Info("Failed to decode request", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid request payload",
		})
		return false
	}
	return true
}

// uintVar parses a numeric path variable, answering 400 when it is malformed
func uintVar(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid " + name,
		})
		return 0, false
	}
	return v, true
}
