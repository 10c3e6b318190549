package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDate(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"2025-08-01", true},
		{"2025-13-40", true}, // shape only
		{"2025-02-30", true},
		{"2025-8-1", false},
		{"01/08/2025", false},
		{"2025-08-01 ", false},
		{" 2025-08-01", false},
		{"20250801", false},
		{"2025-08-0a", false},
		{"", false},
		{"２０２５-08-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateDate(tt.in)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.in, got)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, CodeBadDateFormat, ve.Code)
		})
	}
}

func TestValidateCalendarDate(t *testing.T) {
	d, err := ValidateCalendarDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	for _, s := range []string{"2025-02-30", "2025-13-40", "2025-00-10"} {
		_, err := ValidateCalendarDate(s)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, s)
		assert.Equal(t, CodeBadCalendar, ve.Code)
	}

	_, err = ValidateCalendarDate("tomorrow")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeBadDateFormat, ve.Code)
}

func TestValidateCount(t *testing.T) {
	for n := 1; n <= 9; n++ {
		s := string(rune('0' + n))
		got, err := ValidateCount(s, 1, 9)
		require.NoError(t, err, s)
		assert.Equal(t, n, got)
	}

	for _, s := range []string{"0", "10", "-1", "+3", "3.0", " 3", "three", "", "٣"} {
		_, err := ValidateCount(s, 1, 9)
		assert.Error(t, err, "%q should be rejected", s)
	}

	got, err := ValidateCount("07", 1, 9)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestValidateChildAges(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"8,5", []int{8, 5}},
		{"0", []int{}},
		{" 0 ", []int{}},
		{"a,3,", []int{3}},
		{"yok", []int{}},
		{"", []int{}},
		{"5, 8 ,12", []int{5, 8, 12}},
		{"0,5", []int{0, 5}},
		{"12,3", []int{12, 3}},
		{"-2,4", []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateChildAges(tt.in))
		})
	}
}
