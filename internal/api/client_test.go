package api

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Error("NewClient() error = nil, want error without an API key")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewClient() error = %v, want nil", err)
	}
	if client.Model() != anthropic.ModelClaudeHaiku4_5_20251001 {
		t.Errorf("Model() = %q, want default haiku model", client.Model())
	}
	if client.retries != 2 {
		t.Errorf("retries = %d, want default 2", client.retries)
	}
	if client.IsBedrock() {
		t.Error("IsBedrock() = true, want false for direct API client")
	}
}

func TestNewClient_NegativeRetriesDisables(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "sk-test", MaxRetries: -1})
	if err != nil {
		t.Fatalf("NewClient() error = %v, want nil", err)
	}
	if client.retries != 0 {
		t.Errorf("retries = %d, want 0 when disabled", client.retries)
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	got := translateModelForBedrock(anthropic.ModelClaudeHaiku4_5_20251001)
	want := anthropic.Model("us.anthropic.claude-haiku-4-5-20251001-v1:0")
	if got != want {
		t.Errorf("translateModelForBedrock() = %q, want %q", got, want)
	}

	custom := anthropic.Model("custom-model")
	if got := translateModelForBedrock(custom); got != custom {
		t.Errorf("translateModelForBedrock(custom) = %q, want passthrough", got)
	}
}

func TestTokenTracker(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(1000, 500)
	tracker.Add(2000, 1000)

	input, output := tracker.Total()
	if input != 3000 || output != 1500 {
		t.Errorf("Total() = (%d, %d), want (3000, 1500)", input, output)
	}
	if tracker.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", tracker.Calls())
	}

	tracker.Reset()
	input, output = tracker.Total()
	if input != 0 || output != 0 || tracker.Calls() != 0 {
		t.Errorf("after Reset: Total() = (%d, %d), Calls() = %d, want zeros", input, output, tracker.Calls())
	}
}

func TestTokenTracker_Cost(t *testing.T) {
	tracker := NewTokenTracker()
	tracker.Add(1_000_000, 1_000_000)

	if got := tracker.Cost(); got != 6.0 {
		t.Errorf("Cost() = %v, want 6.0", got)
	}
}
