package models

import "testing"

func TestTextSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *TextSearchRequest
		wantErr bool
	}{
		{"empty queries", &TextSearchRequest{}, true},
		{"blank query", &TextSearchRequest{QueryTexts: []string{"a", ""}}, true},
		{"valid", &TextSearchRequest{QueryTexts: []string{"a cat on a sofa"}}, false},
		{"sets default limit", &TextSearchRequest{QueryTexts: []string{"x"}, Limit: 0}, false},
		{"caps limit", &TextSearchRequest{QueryTexts: []string{"x"}, Limit: 5000}, false},
		{"negative threshold", &TextSearchRequest{QueryTexts: []string{"x"}, ScoreThreshold: -0.1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(500, 1000)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.req.Limit <= 0 {
				t.Error("expected default limit to be set")
			}
			if tt.req.Limit > 1000 {
				t.Errorf("expected limit capped at 1000, got %d", tt.req.Limit)
			}
		})
	}
}

func TestImageSearchRequest_Validate(t *testing.T) {
	if err := (&ImageSearchRequest{}).Validate(500, 1000); err == nil {
		t.Error("expected error for missing image")
	}
	req := &ImageSearchRequest{ImageBase64: "aGVsbG8=", Limit: 9999}
	if err := req.Validate(500, 1000); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if req.Limit != 1000 {
		t.Errorf("expected limit capped at 1000, got %d", req.Limit)
	}
}

func TestOriginalID(t *testing.T) {
	if got := OriginalID("L21_V001", 3); got != "L21_V001_003" {
		t.Errorf("OriginalID() = %q", got)
	}
	if got := OriginalID("L21_V001", 123); got != "L21_V001_123" {
		t.Errorf("OriginalID() = %q", got)
	}
}
