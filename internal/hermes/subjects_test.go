package hermes

import "testing"

func TestSubjects(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{SubjectRecordScored("bert-base-uncased"), "appraise.record.bert-base-uncased.scored"},
		{SubjectRecordScored("Llama-3.1-8B"), "appraise.record.Llama-3_1-8B.scored"},
		{SubjectOutcomeFailed("org/model"), "appraise.outcome.org/model.failed"},
		{SubjectBatchCompleted("b1"), "appraise.batch.b1.completed"},
		{SubjectOutcomeFailed(""), "appraise.outcome._.failed"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTokenStripsWildcards(t *testing.T) {
	if got := Token("a.b *>c"); got != "a_b___c" {
		t.Errorf("got %q", got)
	}
}
