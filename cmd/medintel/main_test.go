package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Skufu/MedIntel/internal/analysis"
	"github.com/Skufu/MedIntel/internal/knowledge"
)

const tinyKB = `
version: "cli-test"
conditions:
  - id: cold
    name: "Cold"
    severity: low
    emergency: false
    symptoms: ["runny nose", "sneezing"]
    weights:
      "runny nose": 7
    prevention: ["Wash hands"]
    recommendations: ["Rest"]
synonyms:
  "runny nose": ["runny nose", "nasal discharge"]
  "sneezing": ["sneezing"]
emergency:
  critical: ["not breathing"]
  urgent: ["high fever"]
stop_words: ["and", "the"]
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeKB(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kb.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write kb: %v", err)
	}
	return path
}

func TestAnalyzeJSON(t *testing.T) {
	out, err := run(t, "", "analyze", "chest", "pain", "and", "sweating")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var res analysis.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	top, ok := res.Top()
	if !ok || top.ConditionID != "heart_attack" || top.Score != 32 {
		t.Fatalf("unexpected top condition: %+v", res.RiskAssessment)
	}
	if res.InputAnalysis.EmergencyLevel != analysis.EmergencyCritical {
		t.Fatalf("expected critical, got %s", res.InputAnalysis.EmergencyLevel)
	}
}

func TestAnalyzeReadsStdin(t *testing.T) {
	out, err := run(t, "runny nose and sneezing\n", "analyze", "--summary")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "1. Common Cold  35% (moderate)") {
		t.Fatalf("expected ranked summary, got:\n%s", out)
	}
	if !strings.Contains(out, analysis.Disclaimer) {
		t.Fatalf("summary should end with the disclaimer:\n%s", out)
	}
}

func TestAnalyzeSummaryNoMatch(t *testing.T) {
	out, err := run(t, "", "analyze", "--summary", "xyz", "abc")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if strings.Contains(out, "Conditions:") {
		t.Fatalf("no-match summary should not list conditions:\n%s", out)
	}
	if !strings.Contains(out, "Next steps:") {
		t.Fatalf("expected next steps:\n%s", out)
	}
}

func TestAnalyzeWithCustomKnowledgeBase(t *testing.T) {
	path := writeKB(t, tinyKB)
	out, err := run(t, "", "analyze", "--kb", path, "nasal discharge")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var res analysis.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	top, ok := res.Top()
	if !ok || top.ConditionID != "cold" || top.Score != 58 || top.Severity != knowledge.SeverityHigh {
		t.Fatalf("unexpected result: %+v", res.RiskAssessment)
	}
}

func TestConditions(t *testing.T) {
	out, err := run(t, "", "conditions")
	if err != nil {
		t.Fatalf("conditions: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 16 {
		t.Fatalf("expected header plus 15 rows, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "heart_attack") || !strings.Contains(lines[1], "critical") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}

func TestValidate(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		out, err := run(t, "", "validate")
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if !strings.Contains(out, "15 conditions") {
			t.Fatalf("unexpected output %q", out)
		}
	})

	t.Run("file", func(t *testing.T) {
		out, err := run(t, "", "validate", "--kb", writeKB(t, tinyKB))
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if !strings.Contains(out, "cli-test ok: 1 conditions, 2 synonym groups") {
			t.Fatalf("unexpected output %q", out)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		broken := strings.Replace(tinyKB, "severity: low", "severity: dire", 1)
		_, err := run(t, "", "validate", "--kb", writeKB(t, broken))
		if !errors.Is(err, knowledge.ErrInvalidKnowledgeBase) {
			t.Fatalf("expected invalid knowledge base error, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := run(t, "", "validate", "--kb", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
