package interpret

import (
	"regexp"
	"strconv"
	"strings"
)

// Лимиты на количество извлекаемых элементов.
const (
	maxIssues          = 10
	maxRecommendations = 5
	maxActionItems     = 10
)

// scorePatterns — явные числовые паттерны оценки.
// Проверяются до keyword-фолбэка.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`score[:\s]+(\d+)`),
	regexp.MustCompile(`rating[:\s]+(\d+)`),
	regexp.MustCompile(`(\d+)%`),
	regexp.MustCompile(`(\d+)/100`),
}

// scoreKeywords — порядковая шкала keyword → score.
// Порядок важен: более сильные формулировки проверяются первыми.
var scoreKeywords = []struct {
	keywords []string
	score    int
}{
	{[]string{"excellent", "fully compliant"}, 95},
	{[]string{"good", "mostly compliant"}, 85},
	{[]string{"fair", "partially compliant"}, 70},
}

// ExtractScore извлекает числовую оценку из свободного текста.
//
// Сначала ищутся явные числовые паттерны ("score: 82", "rating: 7",
// "85%", "90/100"); если их нет — применяется фиксированная шкала
// ключевых слов. Дефолт без совпадений: 60.
func ExtractScore(text string) int {
	lower := strings.ToLower(text)

	for _, p := range scorePatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n >= 0 && n <= 100 {
				return n
			}
		}
	}

	for _, kw := range scoreKeywords {
		for _, k := range kw.keywords {
			if strings.Contains(lower, k) {
				return kw.score
			}
		}
	}

	return 60
}

// QualificationScore оценивает текст квалификации кандидата.
//
// Шкала из исходной модели найма: "highly qualified" сильнее, чем
// просто "qualified", поэтому проверяется первой.
func QualificationScore(text string) int {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "highly qualified"):
		return 85
	case strings.Contains(lower, "partially qualified"):
		return 60
	case strings.Contains(lower, "qualified"):
		return 75
	default:
		return 45
	}
}

// issueKeywords — маркеры проблем в тексте.
var issueKeywords = []string{"issue", "problem", "missing", "required", "violation"}

// ExtractIssues извлекает строки с проблемами из текста.
//
// Построчный скан с keyword-фильтром; заголовки markdown пропускаются.
// Результат ограничен maxIssues записями.
func ExtractIssues(text string) []string {
	return scanLines(text, issueKeywords, maxIssues, func(line string) bool {
		return !strings.HasPrefix(line, "#")
	})
}

// recommendationKeywords — маркеры рекомендаций.
var recommendationKeywords = []string{"recommend", "suggest", "should", "action"}

// ExtractRecommendations извлекает рекомендации из текста.
// Результат ограничен maxRecommendations записями.
func ExtractRecommendations(text string) []string {
	return scanLines(text, recommendationKeywords, maxRecommendations, nil)
}

// actionKeywords — маркеры action items.
var actionKeywords = []string{"action", "recommend", "should", "must", "need"}

// ExtractActionItems извлекает action items из текста аудита.
// Слишком короткие строки отбрасываются. Лимит: maxActionItems.
func ExtractActionItems(text string) []string {
	return scanLines(text, actionKeywords, maxActionItems, func(line string) bool {
		return len(line) > 10
	})
}

// scanLines — общий построчный keyword-скан.
func scanLines(text string, keywords []string, limit int, accept func(string) bool) []string {
	var out []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if accept != nil && !accept(line) {
			continue
		}

		lower := strings.ToLower(line)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				out = append(out, line)
				break
			}
		}

		if len(out) >= limit {
			break
		}
	}

	return out
}

// Issue — проблема с категорией серьёзности.
type Issue struct {
	Description string `json:"description"`
	Severity    string `json:"severity"` // critical, major, minor
}

// SeverityIssues извлекает проблемы с оценкой серьёзности.
// Лимит: 15 записей.
func SeverityIssues(text string) []Issue {
	var issues []Issue

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if !containsAny(lower, []string{"critical", "major", "minor", "issue"}) {
			continue
		}

		severity := "minor"
		if strings.Contains(lower, "critical") {
			severity = "critical"
		} else if strings.Contains(lower, "major") {
			severity = "major"
		}

		issues = append(issues, Issue{Description: line, Severity: severity})
		if len(issues) >= 15 {
			break
		}
	}

	return issues
}

// WeightedScore считает оценку от 100 вниз по серьёзности проблем:
// critical −15, major −10, minor −5. Не опускается ниже нуля.
func WeightedScore(issues []Issue) int {
	score := 100
	for _, issue := range issues {
		switch issue.Severity {
		case "critical":
			score -= 15
		case "major":
			score -= 10
		default:
			score -= 5
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

// positiveIndicators и negativeIndicators — словари для IndicatorScore.
var (
	positiveIndicators = []string{"compliant", "complete", "proper", "correct", "valid"}
	negativeIndicators = []string{"missing", "incomplete", "violation", "issue", "problem"}
)

// IndicatorScore оценивает текст по соотношению позитивных
// и негативных индикаторов. Без индикаторов возвращает 75.
func IndicatorScore(text string) int {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range positiveIndicators {
		pos += strings.Count(lower, w)
	}
	for _, w := range negativeIndicators {
		neg += strings.Count(lower, w)
	}

	if pos+neg == 0 {
		return 75
	}
	return pos * 100 / (pos + neg)
}

// containsAny проверяет вхождение любого из ключевых слов.
func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
