package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gm-rewards/access"
	"gm-rewards/bank"
	"gm-rewards/config"
	"gm-rewards/cycles"
	"gm-rewards/db"
	"gm-rewards/handlers"
	"gm-rewards/journal"
	"gm-rewards/leveling"
	"gm-rewards/logger"
	"gm-rewards/migrate"
	"gm-rewards/models"
	"gm-rewards/registry"
	"gm-rewards/repository"
	"gm-rewards/rewards"
	"gm-rewards/routers"
)

const (
	admin     = "0x00000000000000000000000000000000000000ad"
	registrar = "0x00000000000000000000000000000000000000b1"
	alice     = "0x00000000000000000000000000000000000000a1"
	bob       = "0x00000000000000000000000000000000000000b0"
)

func testServer(t *testing.T) *mux.Router {
	t.Helper()
	logger.Logger = zap.NewNop()

	ldb, err := db.NewMemLevelDB()
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	t.Cleanup(func() { ldb.Close() })
	j, err := journal.Open("")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })

	store := repository.NewStore(ldb)
	store.OnCommit(j.Record)
	cfg := &config.Config{
		Admin:          config.AdminConfig{Address: admin},
		VoteRegistrars: []string{registrar},
		Leveling: config.LevelingConfig{
			Collector:  "0x00000000000000000000000000000000000000c0",
			MaxLevel:   3,
			Thresholds: []string{"10000", "25000"},
			NodeBonus:  map[string]int{"1": 2},
		},
		Rewards: config.RewardsConfig{
			Vault:       "0x00000000000000000000000000000000000000f0",
			Multipliers: map[string]string{"1": "1000000000000000000"},
		},
	}
	if _, err := migrate.Run(store, cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	b := bank.New(store)
	reg := registry.New(store)
	oracle := cycles.New(store, b, cfg.Rewards.Vault)
	engine := leveling.NewEngine(store, reg, b, leveling.ParticipationRecord{}, leveling.Config{
		Collector:            cfg.Leveling.Collector,
		RequireParticipation: true,
	})
	ledger := rewards.NewLedger(store, engine, oracle, b, oracle.Vault())
	handler := handlers.NewHandler(engine, ledger, reg, oracle, b, access.New(store), j)

	router := mux.NewRouter()
	routers.RegisterRoutes(router, handler)
	return router
}

func do(router *mux.Router, method, path, account string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		bodyJSON, _ := json.Marshal(body)
		buf.Write(bodyJSON)
	}
	req := httptest.NewRequest(method, path, &buf)
	if account != "" {
		req.Header.Set(handlers.CallerHeader, account)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func expect(t *testing.T, res *httptest.ResponseRecorder, code int) {
	t.Helper()
	if res.Code != code {
		t.Fatalf("expected status %d, got %d, body: %s", code, res.Code, res.Body.String())
	}
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(res.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, res.Body.String())
	}
}

func vote(router *mux.Router, cycleID uint64, voter string, raw string) *httptest.ResponseRecorder {
	return do(router, http.MethodPost, "/votes", registrar, map[string]interface{}{
		"cycle_id":  cycleID,
		"voter":     voter,
		"raw_votes": raw,
		"ballot":    "proposal",
		"item_id":   "p1",
	})
}

func TestMint_RequiresParticipation(t *testing.T) {
	router := testServer(t)

	res := do(router, http.MethodPost, "/tokens", alice, nil)
	expect(t, res, http.StatusForbidden)

	var body map[string]string
	decodeBody(t, res, &body)
	if body["code"] != "not_eligible" {
		t.Fatalf("expected code not_eligible, got %q", body["code"])
	}
}

func TestMalformedAddresses(t *testing.T) {
	router := testServer(t)

	res := do(router, http.MethodPost, "/tokens", "alice", nil)
	expect(t, res, http.StatusBadRequest)
	var body map[string]string
	decodeBody(t, res, &body)
	if body["code"] != "invalid_address" {
		t.Fatalf("expected code invalid_address, got %q", body["code"])
	}

	res = do(router, http.MethodPost, "/admin/credit", admin, map[string]string{"to": "0xa1:role", "amount": "1"})
	expect(t, res, http.StatusBadRequest)
}

func TestVoteMintAndClaim(t *testing.T) {
	router := testServer(t)

	expect(t, do(router, http.MethodPost, "/admin/credit", admin, map[string]string{"to": admin, "amount": "100"}), http.StatusOK)
	expect(t, do(router, http.MethodPost, "/admin/cycles", admin, map[string]string{"generic_pool": "60", "gm_pool": "40"}), http.StatusCreated)

	// a vote makes alice eligible to mint
	res := vote(router, 1, alice, "0")
	expect(t, res, http.StatusCreated)
	res = do(router, http.MethodPost, "/tokens", alice, nil)
	expect(t, res, http.StatusCreated)

	res = vote(router, 1, alice, "100")
	expect(t, res, http.StatusCreated)
	var receipt models.VoteReceipt
	decodeBody(t, res, &receipt)
	if receipt.TokenID != 1 || receipt.Level != 1 {
		t.Fatalf("expected token 1 at level 1, got %+v", receipt)
	}
	if receipt.RewardWeight.String() != "10000000000" {
		t.Fatalf("expected quadratic weight 10000000000, got %s", receipt.RewardWeight)
	}

	res = do(router, http.MethodPost, "/cycles/1/claims/"+alice, "", nil)
	expect(t, res, http.StatusConflict)

	expect(t, do(router, http.MethodPost, "/admin/cycles", admin, map[string]string{"generic_pool": "0", "gm_pool": "0"}), http.StatusCreated)

	res = do(router, http.MethodPost, "/cycles/1/claims/"+alice, "", nil)
	expect(t, res, http.StatusOK)
	var reward models.Reward
	decodeBody(t, res, &reward)
	if reward.Total.String() != "100" {
		t.Fatalf("expected total reward 100, got %s", reward.Total)
	}

	res = do(router, http.MethodPost, "/cycles/1/claims/"+alice, "", nil)
	expect(t, res, http.StatusConflict)

	res = do(router, http.MethodGet, "/balances/"+alice, "", nil)
	expect(t, res, http.StatusOK)
	var bal struct {
		Balance string `json:"balance"`
	}
	decodeBody(t, res, &bal)
	if bal.Balance != "100" {
		t.Fatalf("expected balance 100, got %s", bal.Balance)
	}
}

func TestRegisterVote_Unauthorized(t *testing.T) {
	router := testServer(t)

	res := do(router, http.MethodPost, "/votes", alice, map[string]interface{}{
		"cycle_id":  1,
		"voter":     alice,
		"raw_votes": "1",
		"ballot":    "proposal",
	})
	expect(t, res, http.StatusForbidden)
}

func TestRegisterVote_InvalidPayload(t *testing.T) {
	router := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/votes", bytes.NewReader([]byte("{not json")))
	req.Header.Set(handlers.CallerHeader, registrar)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	expect(t, res, http.StatusBadRequest)
}

func TestNodeAttachFlow(t *testing.T) {
	router := testServer(t)

	expect(t, do(router, http.MethodPost, "/admin/cycles", admin, map[string]string{"generic_pool": "0", "gm_pool": "0"}), http.StatusCreated)
	expect(t, vote(router, 1, alice, "0"), http.StatusCreated)
	expect(t, do(router, http.MethodPost, "/tokens", alice, nil), http.StatusCreated)

	res := do(router, http.MethodPost, "/nodes", alice, map[string]interface{}{"id": 5, "owner": alice, "tier": 1})
	expect(t, res, http.StatusForbidden)
	res = do(router, http.MethodPost, "/nodes", admin, map[string]interface{}{"id": 5, "owner": alice, "tier": 1})
	expect(t, res, http.StatusCreated)
	res = do(router, http.MethodPost, "/nodes", admin, map[string]interface{}{"id": 5, "owner": alice, "tier": 1})
	expect(t, res, http.StatusBadRequest)

	res = do(router, http.MethodPost, "/tokens/1/attach", alice, map[string]uint64{"node_id": 5})
	expect(t, res, http.StatusOK)

	res = do(router, http.MethodGet, "/tokens/1", "", nil)
	expect(t, res, http.StatusOK)
	var view models.TokenView
	decodeBody(t, res, &view)
	if view.Level != 2 || !view.NodeValid {
		t.Fatalf("expected boosted level 2, got %+v", view)
	}

	res = do(router, http.MethodPost, "/tokens/1/transfer", alice, map[string]string{"to": bob})
	expect(t, res, http.StatusConflict)

	res = do(router, http.MethodPost, "/nodes/5/transfer", alice, map[string]string{"to": bob})
	expect(t, res, http.StatusOK)

	res = do(router, http.MethodGet, "/tokens/1", "", nil)
	expect(t, res, http.StatusOK)
	decodeBody(t, res, &view)
	if view.Level != 1 || view.NodeValid {
		t.Fatalf("expected level 1 after node transfer, got %+v", view)
	}

	res = do(router, http.MethodPost, "/tokens/1/detach", bob, map[string]uint64{"node_id": 5})
	expect(t, res, http.StatusOK)
}

func TestGetToken_NotFound(t *testing.T) {
	router := testServer(t)

	res := do(router, http.MethodGet, "/tokens/42", "", nil)
	expect(t, res, http.StatusNotFound)

	res = do(router, http.MethodGet, "/tokens/abc", "", nil)
	expect(t, res, http.StatusNotFound)
}

func TestSelectionQueries(t *testing.T) {
	router := testServer(t)

	expect(t, do(router, http.MethodPost, "/admin/cycles", admin, map[string]string{"generic_pool": "0", "gm_pool": "0"}), http.StatusCreated)
	expect(t, vote(router, 1, alice, "0"), http.StatusCreated)
	expect(t, do(router, http.MethodPost, "/tokens", alice, nil), http.StatusCreated)
	expect(t, do(router, http.MethodPost, "/tokens", alice, nil), http.StatusCreated)
	expect(t, do(router, http.MethodPost, "/tokens/2/select", alice, nil), http.StatusOK)

	res := do(router, http.MethodGet, "/accounts/"+alice, "", nil)
	expect(t, res, http.StatusOK)
	var acct models.Account
	decodeBody(t, res, &acct)
	if acct.Selected != 2 || len(acct.Tokens) != 2 {
		t.Fatalf("unexpected account %+v", acct)
	}

	res = do(router, http.MethodGet, "/accounts/"+alice+"/selection", "", nil)
	expect(t, res, http.StatusOK)
	var history struct {
		History []models.Checkpoint `json:"history"`
	}
	decodeBody(t, res, &history)
	if len(history.History) != 2 {
		t.Fatalf("expected 2 selection changes, got %+v", history.History)
	}

	first := history.History[0]
	res = do(router, http.MethodGet, fmt.Sprintf("/accounts/%s/selection?block=%d", alice, first.Block), "", nil)
	expect(t, res, http.StatusOK)
	var point struct {
		TokenID uint64 `json:"token_id"`
	}
	decodeBody(t, res, &point)
	if point.TokenID != 1 {
		t.Fatalf("expected token 1 at block %d, got %d", first.Block, point.TokenID)
	}

	res = do(router, http.MethodGet, "/accounts/"+alice+"/selection?block=99999", "", nil)
	expect(t, res, http.StatusBadRequest)

	res = do(router, http.MethodGet, "/accounts/"+alice+"/selection?block=x", "", nil)
	expect(t, res, http.StatusBadRequest)
}

func TestAdminRoutes(t *testing.T) {
	router := testServer(t)

	expect(t, do(router, http.MethodPost, "/admin/quadratic", alice, map[string]bool{"disabled": true}), http.StatusForbidden)
	expect(t, do(router, http.MethodPost, "/admin/quadratic", admin, map[string]bool{"disabled": true}), http.StatusOK)
	expect(t, do(router, http.MethodPost, "/admin/multipliers", admin, map[string]interface{}{"level": 2, "factor": "1500000000000000000"}), http.StatusOK)
	expect(t, do(router, http.MethodPost, "/admin/max-level", admin, map[string]int{"max_level": 5}), http.StatusBadRequest)
	expect(t, do(router, http.MethodPost, "/admin/node-bonus", admin, map[string]int{"tier": 2, "level": 3}), http.StatusOK)
	expect(t, do(router, http.MethodPost, "/admin/roles", admin, map[string]string{"role": "vote_registrar", "address": bob}), http.StatusOK)
	expect(t, do(router, http.MethodPost, "/admin/roles", admin, map[string]string{"role": "root", "address": bob}), http.StatusBadRequest)

	res := do(router, http.MethodGet, "/admin/params", "", nil)
	expect(t, res, http.StatusOK)
	var params struct {
		Leveling          models.LevelParams `json:"leveling"`
		QuadraticDisabled bool               `json:"quadratic_disabled"`
	}
	decodeBody(t, res, &params)
	if !params.QuadraticDisabled {
		t.Fatalf("expected quadratic rewarding disabled")
	}
	if params.Leveling.NodeBonus[2] != 3 {
		t.Fatalf("expected tier 2 bonus 3, got %+v", params.Leveling.NodeBonus)
	}

	res = do(router, http.MethodGet, "/events?type=RoleGranted", "", nil)
	expect(t, res, http.StatusOK)
	var events struct {
		Events []models.Event `json:"events"`
	}
	decodeBody(t, res, &events)
	// admin and registrar from migrations, then bob
	if len(events.Events) != 3 || events.Events[0].Account != bob {
		t.Fatalf("unexpected role events %+v", events.Events)
	}
}
