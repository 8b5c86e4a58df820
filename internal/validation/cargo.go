package validation

import "strings"

// CargoTestClassifier classifies cargo test output: per-check lines of the
// form "test path::name ... ok" terminated by a "test result:" summary line.
// Token sets are exported so a differently-shaped test runner can be driven
// through configuration alone.
type CargoTestClassifier struct {
	PassTokens     []string
	FailTokens     []string
	SummaryPrefix  string
	MaxDetailLines int
}

// NewCargoTestClassifier returns a classifier with cargo's default tokens.
func NewCargoTestClassifier() *CargoTestClassifier {
	return &CargoTestClassifier{
		PassTokens:     []string{"ok"},
		FailTokens:     []string{"FAILED"},
		SummaryPrefix:  "test result:",
		MaxDetailLines: 40,
	}
}

// Classify scans output line by line, classifying each check line by its
// trailing status token. Failure detail is everything from the "failures:"
// block onward, capped at MaxDetailLines.
func (c *CargoTestClassifier) Classify(output string) TestReport {
	var report TestReport
	var detail []string
	inFailures := false

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, c.SummaryPrefix) {
			report.Summary = line
			inFailures = false
			continue
		}

		if inFailures {
			if len(detail) < c.MaxDetailLines {
				detail = append(detail, raw)
			}
			continue
		}
		if line == "failures:" {
			inFailures = true
			continue
		}

		name, token, ok := splitCheckLine(line)
		if !ok {
			continue
		}
		switch {
		case contains(c.PassTokens, token):
			report.Passed++
		case contains(c.FailTokens, token):
			report.Failed++
			report.FailingChecks = append(report.FailingChecks, name)
		}
	}

	report.Detail = strings.TrimRight(strings.Join(detail, "\n"), "\n")
	return report
}

// splitCheckLine splits "test NAME ... TOKEN" into name and token.
func splitCheckLine(line string) (name, token string, ok bool) {
	if !strings.HasPrefix(line, "test ") {
		return "", "", false
	}
	rest := strings.TrimPrefix(line, "test ")
	idx := strings.LastIndex(rest, " ... ")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+5:]), true
}

// CargoLintClassifier classifies clippy/rustc diagnostics by their leading
// severity token.
type CargoLintClassifier struct {
	WarningTokens   []string
	ErrorTokens     []string
	MaxExcerptLines int
}

// NewCargoLintClassifier returns a classifier with clippy's default tokens.
func NewCargoLintClassifier() *CargoLintClassifier {
	return &CargoLintClassifier{
		WarningTokens:   []string{"warning:", "warning["},
		ErrorTokens:     []string{"error:", "error["},
		MaxExcerptLines: 20,
	}
}

// Classify counts diagnostic lines and keeps the first MaxExcerptLines of
// them as the excerpt.
func (c *CargoLintClassifier) Classify(output string) LintReport {
	var report LintReport
	var excerpt []string

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		var matched bool
		switch {
		case hasAnyPrefix(line, c.ErrorTokens):
			report.Errors++
			matched = true
		case hasAnyPrefix(line, c.WarningTokens):
			report.Warnings++
			matched = true
		}
		if matched && len(excerpt) < c.MaxExcerptLines {
			excerpt = append(excerpt, line)
		}
	}

	report.Excerpt = strings.Join(excerpt, "\n")
	return report
}

func contains(set []string, s string) bool {
	for _, t := range set {
		if t == s {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
