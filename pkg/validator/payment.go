package validator

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrEmptyUTR       = errors.New("UTR is required")
	ErrInvalidUTR     = errors.New("UTR must be 12 to 22 letters or digits")
	ErrInvalidUPIID   = errors.New("UPI ID must look like name@bank")
	ErrInvalidIFSC    = errors.New("IFSC must be 4 letters, a zero, then 6 letters or digits")
	ErrInvalidAccount = errors.New("account number must be 9 to 18 digits")
	ErrInvalidPeriod  = errors.New("period must be in YYYY-MM format")
	ErrEmptyPeriod    = errors.New("period is required")
)

var (
	utrRegex     = regexp.MustCompile(`^[A-Za-z0-9]{12,22}$`)
	upiIDRegex   = regexp.MustCompile(`^[A-Za-z0-9.\-_]{2,256}@[A-Za-z]{2,64}$`)
	ifscRegex    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	accountRegex = regexp.MustCompile(`^\d{9,18}$`)
)

// PeriodLayout is the reference layout of a rent period (YYYY-MM)
const PeriodLayout = "2006-01"

// ValidateUTR trims and checks a bank Unique Transaction Reference
func ValidateUTR(utr string) (string, error) {
	utr = strings.TrimSpace(utr)
	if utr == "" {
		return "", ErrEmptyUTR
	}
	if !utrRegex.MatchString(utr) {
		return "", ErrInvalidUTR
	}
	return strings.ToUpper(utr), nil
}

// ValidateOptionalUTR accepts an empty UTR, otherwise validates it
func ValidateOptionalUTR(utr string) (string, error) {
	if strings.TrimSpace(utr) == "" {
		return "", nil
	}
	return ValidateUTR(utr)
}

// ValidateUPIID checks a virtual payment address such as tenant@okbank
func ValidateUPIID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if !upiIDRegex.MatchString(id) {
		return "", ErrInvalidUPIID
	}
	return strings.ToLower(id), nil
}

// ValidateIFSC normalizes to upper case and checks the bank branch code
func ValidateIFSC(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !ifscRegex.MatchString(code) {
		return "", ErrInvalidIFSC
	}
	return code, nil
}

// ValidateAccountNumber strips spaces and checks the digit count
func ValidateAccountNumber(number string) (string, error) {
	number = strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	if !accountRegex.MatchString(number) {
		return "", ErrInvalidAccount
	}
	return number, nil
}

// ValidatePeriod checks a YYYY-MM rent period
func ValidatePeriod(period string) (string, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return "", ErrEmptyPeriod
	}
	if len(period) != len(PeriodLayout) {
		return "", ErrInvalidPeriod
	}
	if _, err := time.Parse(PeriodLayout, period); err != nil {
		return "", ErrInvalidPeriod
	}
	return period, nil
}

// CurrentPeriod returns the YYYY-MM period containing t
func CurrentPeriod(t time.Time) string {
	return t.Format(PeriodLayout)
}
