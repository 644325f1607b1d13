package interpret

import (
	"strings"
	"testing"
)

// --- ExtractScore Tests ---

func TestExtractScore_ExplicitPatterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"score prefix", "Overall score: 82 out of 100", 82},
		{"rating prefix", "Rating: 7", 7},
		{"percent", "The document is 85% compliant", 85},
		{"out of 100", "Final assessment 90/100", 90},
		{"score wins over keyword", "Excellent work. Score: 40", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractScore(tt.text)
			if got != tt.want {
				t.Errorf("ExtractScore(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractScore_KeywordFallback(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"excellent", "Excellent compliance posture overall", 95},
		{"fully compliant", "The contract is fully compliant", 95},
		{"good", "Good coverage of requirements", 85},
		{"mostly compliant", "Mostly compliant with FREC rules", 85},
		{"fair", "Fair, with notable gaps", 70},
		{"partially compliant", "Partially compliant submission", 70},
		{"no signal", "Nothing conclusive here", 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractScore(tt.text)
			if got != tt.want {
				t.Errorf("ExtractScore(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractScore_RejectsOutOfRange(t *testing.T) {
	// 300% не является валидной оценкой — должен сработать фолбэк
	got := ExtractScore("inflation of 300% expected, otherwise good")
	if got != 85 {
		t.Errorf("expected keyword fallback 85, got %d", got)
	}
}

// --- QualificationScore Tests ---

func TestQualificationScore(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"The candidate is highly qualified for the role", 85},
		{"The candidate is qualified", 75},
		{"Only partially qualified at this point", 60},
		{"No relevant experience found", 45},
	}

	for _, tt := range tests {
		got := QualificationScore(tt.text)
		if got != tt.want {
			t.Errorf("QualificationScore(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

// --- Issue extraction Tests ---

func TestExtractIssues(t *testing.T) {
	text := `Assessment summary.
# Issues header should be skipped
- Missing seller signature on page 4
- Earnest money deposit not documented (violation)
All other sections look fine.`

	issues := ExtractIssues(text)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0], "Missing seller signature") {
		t.Errorf("unexpected first issue: %s", issues[0])
	}
}

func TestExtractIssues_Bounded(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("issue number found on this line\n")
	}

	issues := ExtractIssues(sb.String())
	if len(issues) != 10 {
		t.Errorf("expected cap of 10 issues, got %d", len(issues))
	}
}

func TestExtractRecommendations(t *testing.T) {
	text := `Plan:
We recommend expanding LinkedIn outreach.
You should prioritize referral channels.
Nothing else.`

	recs := ExtractRecommendations(text)
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d: %v", len(recs), recs)
	}
}

func TestExtractRecommendations_Bounded(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		sb.WriteString("you should follow up with each candidate\n")
	}

	recs := ExtractRecommendations(sb.String())
	if len(recs) != 5 {
		t.Errorf("expected cap of 5 recommendations, got %d", len(recs))
	}
}

func TestExtractActionItems_SkipsShortLines(t *testing.T) {
	text := "act\nThe broker must countersign the addendum before closing\n"

	items := ExtractActionItems(text)
	if len(items) != 1 {
		t.Fatalf("expected 1 action item, got %d: %v", len(items), items)
	}
}

// --- Severity Tests ---

func TestSeverityIssues(t *testing.T) {
	text := `Critical: missing flood zone disclosure
Major: incomplete HOA paperwork
Minor issue with date formatting`

	issues := SeverityIssues(text)
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(issues))
	}
	if issues[0].Severity != "critical" {
		t.Errorf("expected critical, got %s", issues[0].Severity)
	}
	if issues[1].Severity != "major" {
		t.Errorf("expected major, got %s", issues[1].Severity)
	}
	if issues[2].Severity != "minor" {
		t.Errorf("expected minor, got %s", issues[2].Severity)
	}
}

func TestWeightedScore(t *testing.T) {
	issues := []Issue{
		{Severity: "critical"}, // -15
		{Severity: "major"},    // -10
		{Severity: "minor"},    // -5
	}

	if got := WeightedScore(issues); got != 70 {
		t.Errorf("expected 70, got %d", got)
	}

	if got := WeightedScore(nil); got != 100 {
		t.Errorf("expected 100 for no issues, got %d", got)
	}
}

func TestWeightedScore_FloorsAtZero(t *testing.T) {
	issues := make([]Issue, 10)
	for i := range issues {
		issues[i] = Issue{Severity: "critical"}
	}

	if got := WeightedScore(issues); got != 0 {
		t.Errorf("expected floor of 0, got %d", got)
	}
}

// --- IndicatorScore Tests ---

func TestIndicatorScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"all positive", "compliant and complete and correct", 100},
		// "incomplete" содержит "complete", поэтому даёт и позитивное,
		// и негативное срабатывание: 1/(1+3)
		{"mostly negative", "missing, incomplete, violation", 25},
		{"mixed", "compliant but missing one disclosure", 50},
		{"no indicators", "plain narrative text", 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IndicatorScore(tt.text)
			if got != tt.want {
				t.Errorf("IndicatorScore(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}
