package rules

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func instant(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return parsed
}

func TestValidateRule(t *testing.T) {
	existing := []Rule{
		{ID: "rule-1", Priority: 1, OverrideValue: NumberValue(300)},
		{ID: "rule-2", Priority: 10, OverrideValue: NumberValue(400)},
	}

	tests := []struct {
		name      string
		candidate RuleCandidate
		dt        DataType
		wantErr   error
	}{
		{
			name:      "valid minimal",
			candidate: RuleCandidate{Priority: 5, OverrideValue: json.RawMessage(`200`)},
			dt:        TypeNumber,
		},
		{
			name: "valid fully conditioned",
			candidate: RuleCandidate{
				Priority:      5,
				OverrideValue: json.RawMessage(`200`),
				Platform:      strPtr("iOS"),
				Country:       strPtr("DE"),
				Version:       &VersionCondition{Operator: OpGreaterOrEqual, Value: "3.5.0"},
				ActiveBetween: &DateWindow{
					Start: instant(t, "2026-02-01T00:00:00Z"),
					End:   instant(t, "2026-02-14T23:59:59Z"),
				},
			},
			dt: TypeNumber,
		},
		{
			name:      "type mismatch",
			candidate: RuleCandidate{Priority: 5, OverrideValue: json.RawMessage(`"free_gems"`)},
			dt:        TypeNumber,
			wantErr:   ErrTypeMismatch,
		},
		{
			name:      "duplicate priority on create",
			candidate: RuleCandidate{Priority: 10, OverrideValue: json.RawMessage(`200`)},
			dt:        TypeNumber,
			wantErr:   ErrDuplicatePriority,
		},
		{
			name:      "own priority allowed on update",
			candidate: RuleCandidate{ID: "rule-2", Priority: 10, OverrideValue: json.RawMessage(`200`)},
			dt:        TypeNumber,
		},
		{
			name:      "other rule priority rejected on update",
			candidate: RuleCandidate{ID: "rule-2", Priority: 1, OverrideValue: json.RawMessage(`200`)},
			dt:        TypeNumber,
			wantErr:   ErrDuplicatePriority,
		},
		{
			name: "three letter country",
			candidate: RuleCandidate{
				Priority: 5, OverrideValue: json.RawMessage(`200`),
				Country: strPtr("USA"),
			},
			dt:      TypeNumber,
			wantErr: ErrInvalidCountryCode,
		},
		{
			name: "lowercase country",
			candidate: RuleCandidate{
				Priority: 5, OverrideValue: json.RawMessage(`200`),
				Country: strPtr("de"),
			},
			dt:      TypeNumber,
			wantErr: ErrInvalidCountryCode,
		},
		{
			name: "unassigned country code",
			candidate: RuleCandidate{
				Priority: 5, OverrideValue: json.RawMessage(`200`),
				Country: strPtr("XX"),
			},
			dt:      TypeNumber,
			wantErr: ErrInvalidCountryCode,
		},
		{
			name: "end before start",
			candidate: RuleCandidate{
				Priority: 5, OverrideValue: json.RawMessage(`200`),
				ActiveBetween: &DateWindow{
					Start: instant(t, "2026-02-14T00:00:00Z"),
					End:   instant(t, "2026-02-01T00:00:00Z"),
				},
			},
			dt:      TypeNumber,
			wantErr: ErrInvalidDateRange,
		},
		{
			name: "end equal to start",
			candidate: RuleCandidate{
				Priority: 5, OverrideValue: json.RawMessage(`200`),
				ActiveBetween: &DateWindow{
					Start: instant(t, "2026-02-01T00:00:00Z"),
					End:   instant(t, "2026-02-01T00:00:00Z"),
				},
			},
			dt:      TypeNumber,
			wantErr: ErrInvalidDateRange,
		},
		{
			name: "two component version",
			candidate: RuleCandidate{
				Priority: 5, OverrideValue: json.RawMessage(`200`),
				Version: &VersionCondition{Operator: OpEqual, Value: "3.5"},
			},
			dt:      TypeNumber,
			wantErr: ErrInvalidVersionFormat,
		},
		{
			name: "prerelease version rejected",
			candidate: RuleCandidate{
				Priority: 5, OverrideValue: json.RawMessage(`200`),
				Version: &VersionCondition{Operator: OpEqual, Value: "1.0.0-beta.1"},
			},
			dt:      TypeNumber,
			wantErr: ErrInvalidVersionFormat,
		},
		{
			name: "unknown version operator",
			candidate: RuleCandidate{
				Priority: 5, OverrideValue: json.RawMessage(`200`),
				Version: &VersionCondition{Operator: VersionOperator("gte"), Value: "1.0.0"},
			},
			dt:      TypeNumber,
			wantErr: ErrInvalidVersionFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateRule(tt.candidate, existing, tt.dt)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateRule() failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateRule() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// First-failure policy: a candidate violating several invariants reports the
// earliest check in the fixed order (type before priority before country).
func TestValidateRule_FirstFailureWins(t *testing.T) {
	existing := []Rule{{ID: "rule-1", Priority: 1}}

	candidate := RuleCandidate{
		Priority:      1,                            // duplicate
		OverrideValue: json.RawMessage(`"not-num"`), // mismatch
		Country:       strPtr("USA"),                // invalid
	}
	_, err := ValidateRule(candidate, existing, TypeNumber)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("error = %v, want ErrTypeMismatch first", err)
	}

	candidate.OverrideValue = json.RawMessage(`200`)
	_, err = ValidateRule(candidate, existing, TypeNumber)
	if !errors.Is(err, ErrDuplicatePriority) {
		t.Fatalf("error = %v, want ErrDuplicatePriority second", err)
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b    string
		want    int
		wantErr bool
	}{
		{a: "2.0.0", b: "1.9.9", want: 1},
		{a: "1.9.9", b: "2.0.0", want: -1},
		{a: "3.5.0", b: "3.5.0", want: 0},
		{a: "10.0.0", b: "9.9.9", want: 1},
		{a: "1.2", b: "1.2.3", wantErr: true},
		{a: "1.2.3", b: "abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := CompareVersions(tt.a, tt.b)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidVersionFormat) {
				t.Errorf("CompareVersions(%q, %q) error = %v, want ErrInvalidVersionFormat", tt.a, tt.b, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("CompareVersions(%q, %q) failed: %v", tt.a, tt.b, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValidCountryCode(t *testing.T) {
	valid := []string{"US", "DE", "GB", "JP", "BR"}
	for _, code := range valid {
		if !ValidCountryCode(code) {
			t.Errorf("ValidCountryCode(%q) = false, want true", code)
		}
	}

	invalid := []string{"", "U", "USA", "us", "D1", "ZZ"}
	for _, code := range invalid {
		if ValidCountryCode(code) {
			t.Errorf("ValidCountryCode(%q) = true, want false", code)
		}
	}
}
