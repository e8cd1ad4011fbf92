package health

import "testing"

func TestStatusReportsCredential(t *testing.T) {
	if got := NewService(false).Status(); got.Status != "ok" || got.Message != "API is working" || got.OpenAIConfigured {
		t.Fatalf("unexpected status without credential: %+v", got)
	}
	if got := NewService(true).Status(); !got.OpenAIConfigured {
		t.Fatalf("expected openai_configured true, got %+v", got)
	}
}
