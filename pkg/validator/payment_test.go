package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUTR(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{"UPI reference", "412345678901", "412345678901", nil},
		{"NEFT reference lower case", " hdfcr52024061512345 ", "HDFCR52024061512345", nil},
		{"Empty", "  ", "", ErrEmptyUTR},
		{"Too short", "12345", "", ErrInvalidUTR},
		{"Punctuation", "4123-4567-8901", "", ErrInvalidUTR},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			utr, err := ValidateUTR(tc.input)
			assert.Equal(t, tc.err, err)
			assert.Equal(t, tc.expected, utr)
		})
	}
}

func TestValidateOptionalUTR(t *testing.T) {
	utr, err := ValidateOptionalUTR("")
	require.NoError(t, err)
	assert.Empty(t, utr)

	_, err = ValidateOptionalUTR("abc")
	assert.Equal(t, ErrInvalidUTR, err)
}

func TestValidateUPIID(t *testing.T) {
	id, err := ValidateUPIID(" Landlord.Rao@OkAxis ")
	require.NoError(t, err)
	assert.Equal(t, "landlord.rao@okaxis", id)

	for _, bad := range []string{"", "no-at-sign", "x@1", "@bank"} {
		_, err := ValidateUPIID(bad)
		assert.Equal(t, ErrInvalidUPIID, err, bad)
	}
}

func TestValidateIFSC(t *testing.T) {
	code, err := ValidateIFSC("hdfc0001234")
	require.NoError(t, err)
	assert.Equal(t, "HDFC0001234", code)

	_, err = ValidateIFSC("HDFC1001234")
	assert.Equal(t, ErrInvalidIFSC, err)
}

func TestValidateAccountNumber(t *testing.T) {
	number, err := ValidateAccountNumber("1234 5678 9012")
	require.NoError(t, err)
	assert.Equal(t, "123456789012", number)

	_, err = ValidateAccountNumber("12345")
	assert.Equal(t, ErrInvalidAccount, err)
}

func TestValidatePeriod(t *testing.T) {
	period, err := ValidatePeriod("2026-10")
	require.NoError(t, err)
	assert.Equal(t, "2026-10", period)

	_, err = ValidatePeriod("")
	assert.Equal(t, ErrEmptyPeriod, err)

	for _, bad := range []string{"2026-13", "2026-1", "10-2026", "2026/10"} {
		_, err := ValidatePeriod(bad)
		assert.Equal(t, ErrInvalidPeriod, err, bad)
	}
}

func TestCurrentPeriod(t *testing.T) {
	assert.Equal(t, "2026-02", CurrentPeriod(time.Date(2026, time.February, 28, 23, 0, 0, 0, time.UTC)))
}
