package threshold

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		thresholds Thresholds
		want       Status
	}{
		{
			name:       "pass at boundary",
			value:      44,
			thresholds: Thresholds{Pass: ">=44", Fail: "<42"},
			want:       StatusPass,
		},
		{
			name:       "warning range match",
			value:      42,
			thresholds: Thresholds{Pass: ">=44", Warning: "42-43", Fail: "<42"},
			want:       StatusLikelyIssue,
		},
		{
			name:       "fail match without warning",
			value:      41,
			thresholds: Thresholds{Pass: ">=44", Fail: "<42"},
			want:       StatusLikelyIssue,
		},
		{
			name:       "no thresholds",
			value:      43,
			thresholds: Thresholds{},
			want:       StatusUnknown,
		},
		{
			name:       "gap between pass and fail",
			value:      43,
			thresholds: Thresholds{Pass: ">=44", Fail: "<42"},
			want:       StatusUnknown,
		},
		{
			name:       "pass wins over overlapping fail",
			value:      50,
			thresholds: Thresholds{Pass: ">=44", Fail: ">40"},
			want:       StatusPass,
		},
		{
			name:       "fail wins over overlapping warning",
			value:      42.5,
			thresholds: Thresholds{Warning: "42-43", Fail: "<43"},
			want:       StatusLikelyIssue,
		},
		{
			name:       "malformed pass falls through to fail",
			value:      10,
			thresholds: Thresholds{Pass: "about 44", Fail: "<42"},
			want:       StatusLikelyIssue,
		},
		{
			name:       "all malformed",
			value:      10,
			thresholds: Thresholds{Pass: "lots", Warning: "some", Fail: "few"},
			want:       StatusUnknown,
		},
		{
			name:       "whitespace tolerated",
			value:      7,
			thresholds: Thresholds{Pass: " <= 7 "},
			want:       StatusPass,
		},
		{
			name:       "strict greater than excludes boundary",
			value:      10,
			thresholds: Thresholds{Pass: "> 10"},
			want:       StatusUnknown,
		},
		{
			name:       "decimal range",
			value:      0.5,
			thresholds: Thresholds{Pass: "0.25-0.75"},
			want:       StatusPass,
		},
		{
			name:       "NaN input",
			value:      math.NaN(),
			thresholds: Thresholds{Pass: ">=0"},
			want:       StatusUnknown,
		},
		{
			name:       "infinite input",
			value:      math.Inf(1),
			thresholds: Thresholds{Pass: ">=0"},
			want:       StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.value, tt.thresholds))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		inside  []float64
		outside []float64
		wantErr bool
	}{
		{name: "inclusive range", expr: "42-43", inside: []float64{42, 42.5, 43}, outside: []float64{41.9, 43.1}},
		{name: "negative lower bound", expr: "-5-5", inside: []float64{-5, 0, 5}, outside: []float64{-6, 6}},
		{name: "spaced range", expr: " 1 - 2 ", inside: []float64{1, 2}, outside: []float64{3}},
		{name: "greater or equal", expr: ">=44", inside: []float64{44, 100}, outside: []float64{43.99}},
		{name: "less or equal", expr: "<= 3", inside: []float64{3, -1}, outside: []float64{3.01}},
		{name: "greater", expr: ">0", inside: []float64{0.1}, outside: []float64{0}},
		{name: "less", expr: "< 42", inside: []float64{41}, outside: []float64{42}},
		{name: "empty", expr: "", wantErr: true},
		{name: "bare number", expr: "44", wantErr: true},
		{name: "operator without number", expr: ">=", wantErr: true},
		{name: "inverted range", expr: "10-5", wantErr: true},
		{name: "text", expr: "wide enough", wantErr: true},
		{name: "equality not supported", expr: "=44", wantErr: true},
		{name: "infinite bound", expr: "> Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.expr)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedExpression)
				return
			}
			require.NoError(t, err)
			for _, v := range tt.inside {
				assert.True(t, e.Matches(v), "expected %v to match %q", v, tt.expr)
			}
			for _, v := range tt.outside {
				assert.False(t, e.Matches(v), "expected %v not to match %q", v, tt.expr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Thresholds{}))
	assert.NoError(t, Validate(Thresholds{Pass: ">=44", Warning: "42-43", Fail: "<42"}))

	err := Validate(Thresholds{Pass: ">=44", Warning: "nearly", Fail: "tiny"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedExpression)
	assert.Contains(t, err.Error(), "warning")
	assert.Contains(t, err.Error(), "fail")
	assert.NotContains(t, err.Error(), "pass:")
}

func TestThresholdsIsEmpty(t *testing.T) {
	assert.True(t, Thresholds{}.IsEmpty())
	assert.True(t, Thresholds{Pass: "  "}.IsEmpty())
	assert.False(t, Thresholds{Fail: "<1"}.IsEmpty())
}
