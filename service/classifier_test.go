package service

import "testing"

func TestKeywordClassifier(t *testing.T) {
	classifier := NewKeywordClassifier()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "breach notification",
			text: "The Processor shall notify the Controller of any data breach without undue delay and in any event within 72 hours of becoming aware of the incident.",
			want: "Breach Notification",
		},
		{
			name: "data transfer",
			text: "Any transfer of personal data to a third country shall be subject to standard contractual clauses or another approved transfer mechanism.",
			want: "Data Transfer",
		},
		{
			name: "security safeguards",
			text: "The parties shall implement appropriate technical and organizational measures, including encryption and pseudonymization, to protect the confidentiality, integrity and availability of the data.",
			want: "Security Safeguards",
		},
		{
			name: "data subject rights",
			text: "The vendor shall assist with any data subject access request, including requests for rectification, erasure and portability, and honor the right to be forgotten.",
			want: "Data Subject Rights",
		},
		{
			name: "subprocessor authorization",
			text: "The supplier shall not engage any sub-processor without the prior written authorization of the customer and shall give notification of any intended changes.",
			want: "Sub-processor Authorization",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, confidence := classifier.Classify(tt.text)
			if got != tt.want {
				t.Errorf("Classify() = %q (%.2f), want %q", got, confidence, tt.want)
			}
			if confidence <= 0 || confidence > 1 {
				t.Errorf("confidence = %.2f, want a value in (0,1]", confidence)
			}
		})
	}
}

func TestKeywordClassifierNoMatch(t *testing.T) {
	classifier := NewKeywordClassifier()

	got, confidence := classifier.Classify("The quick brown fox jumps over the lazy dog.")
	if got != "" {
		t.Errorf("Classify() = %q, want empty type", got)
	}
	if confidence != 0 {
		t.Errorf("confidence = %.2f, want 0", confidence)
	}
}

func TestKeywordClassifierExactPhraseBonus(t *testing.T) {
	classifier := NewKeywordClassifier()

	// Same category, but standalone phrases should score higher than
	// keywords buried inside longer tokens
	looseType, loose := classifier.Classify("all transfers are covered")
	exactType, exact := classifier.Classify("transfer to a third country under standard contractual clauses")

	if looseType != "Data Transfer" || exactType != "Data Transfer" {
		t.Fatalf("classified as %q and %q, want Data Transfer for both", looseType, exactType)
	}

	if exact <= loose {
		t.Errorf("exact phrase confidence %.3f not above loose text %.3f", exact, loose)
	}
}
