package mongodb

import (
	"testing"

	"trustvest-backend/internal/models"
)

func TestApplyDefaultsFillsLegacyRecords(t *testing.T) {
	repo := &MongoUserRepository{}

	u := &models.User{Username: "alice", Email: "alice@example.com"}
	repo.applyDefaults(u)

	if u.Name != "alice" {
		t.Errorf("name: got %q want username fallback", u.Name)
	}
	if u.RiskScore != models.DefaultRiskScore {
		t.Errorf("riskScore: got %d", u.RiskScore)
	}
	if u.WalletBalance != models.DefaultWalletBalance {
		t.Errorf("walletBalance: got %v", u.WalletBalance)
	}
	if u.EmotionalScore != models.DefaultEmotionalScore {
		t.Errorf("emotionalScore: got %d", u.EmotionalScore)
	}
	if len(u.BehaviorTags) != 1 || u.BehaviorTags[0] != "New Investor" {
		t.Errorf("behaviorTags: got %v", u.BehaviorTags)
	}
}

func TestApplyDefaultsKeepsExistingValues(t *testing.T) {
	repo := &MongoUserRepository{}

	u := &models.User{
		Username:       "alice",
		Name:           "Alice Smith",
		RiskScore:      55,
		WalletBalance:  42.5,
		EmotionalScore: 12,
		BehaviorTags:   []string{"Day Trader"},
	}
	repo.applyDefaults(u)

	if u.Name != "Alice Smith" {
		t.Errorf("name overwritten: got %q", u.Name)
	}
	if u.RiskScore != 55 || u.WalletBalance != 42.5 || u.EmotionalScore != 12 {
		t.Errorf("scores overwritten: %d %v %d", u.RiskScore, u.WalletBalance, u.EmotionalScore)
	}
	if len(u.BehaviorTags) != 1 || u.BehaviorTags[0] != "Day Trader" {
		t.Errorf("behaviorTags overwritten: got %v", u.BehaviorTags)
	}
}
