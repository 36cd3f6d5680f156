package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

func TestCatalogHandler_Capabilities(t *testing.T) {
	h := NewCatalogHandler()

	c, rec := newJSONContext(http.MethodGet, "/v1/capabilities", "", &domain.Session{ID: "g1", Tier: domain.TierGuest})
	if err := h.Capabilities(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp capabilitiesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Tier != domain.TierGuest || len(resp.Capabilities) != 1 || resp.Capabilities[0] != domain.CapViewSample {
		t.Fatalf("unexpected guest capabilities: %+v", resp)
	}
	if len(resp.Matrix) != len(domain.Tiers) {
		t.Fatalf("matrix must list every tier, got %d", len(resp.Matrix))
	}
	if len(resp.Matrix[domain.TierPro]) != len(resp.Matrix[domain.TierMember]) {
		t.Fatalf("pro and member must grant the same capabilities")
	}
}

func TestCatalogHandler_Options(t *testing.T) {
	h := NewCatalogHandler()

	c, rec := newJSONContext(http.MethodGet, "/v1/options", "", nil)
	if err := h.Options(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp optionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Timeframes) != 6 || len(resp.Indicators) != 6 || len(resp.Targets) != 3 {
		t.Fatalf("unexpected options: %+v", resp)
	}
}
