package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

func validHouse() models.HouseInput {
	return models.HouseInput{
		Title:         "2BHK near metro",
		Description:   "Sunny flat",
		Address:       "12 MG Road",
		City:          "Bengaluru",
		State:         "Karnataka",
		Pincode:       "560001",
		Rent:          decimal.NewFromInt(25000),
		Deposit:       decimal.Zero,
		BookingAmount: decimal.NewFromInt(5000),
		Beds:          2,
		Baths:         2,
		Area:          950,
		Type:          "apartment",
		Furnished:     "semi-furnished",
		AvailableFrom: "2026-11-01",
	}
}

func TestStruct_HouseInput(t *testing.T) {
	v := New()

	t.Run("Valid listing", func(t *testing.T) {
		require.NoError(t, v.Struct(validHouse()))
	})

	t.Run("Missing required fields and bad amounts", func(t *testing.T) {
		in := validHouse()
		in.Title = ""
		in.Rent = decimal.Zero
		in.Deposit = decimal.NewFromInt(-1)
		in.BookingAmount = decimal.NewFromInt(-100)
		in.AvailableFrom = "01/11/2026"

		err := v.Struct(in)
		verrs, ok := AsErrors(err)
		require.True(t, ok)

		assert.Equal(t, "This field is required", verrs["title"])
		assert.Equal(t, "Must be a number greater than 0", verrs["rent"])
		assert.Equal(t, "Must be a number greater than 0", verrs["bookingAmount"])
		assert.Equal(t, "Must be a number, 0 or more", verrs["deposit"])
		assert.Contains(t, verrs, "availableFrom")
	})
}

func TestStruct_PayoutAccount(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		input  models.PayoutAccountInput
		fields []string
	}{
		{
			name:  "Valid without UPI",
			input: models.PayoutAccountInput{AccountHolderName: "Asha Rao", AccountNumber: "123456789012", IFSC: "HDFC0001234"},
		},
		{
			name:  "Valid with UPI",
			input: models.PayoutAccountInput{AccountHolderName: "Asha Rao", AccountNumber: "123456789012", IFSC: "HDFC0001234", UPIID: "asha@okhdfc"},
		},
		{
			name:   "Bad account and IFSC",
			input:  models.PayoutAccountInput{AccountHolderName: "Asha Rao", AccountNumber: "12ab", IFSC: "HDFC1234"},
			fields: []string{"accountNumber", "ifsc"},
		},
		{
			name:   "Bad UPI id",
			input:  models.PayoutAccountInput{AccountHolderName: "Asha Rao", AccountNumber: "123456789012", IFSC: "HDFC0001234", UPIID: "asha"},
			fields: []string{"upiId"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			verrs, ok := AsErrors(err)
			require.True(t, ok)
			for _, f := range tt.fields {
				assert.Contains(t, verrs, f)
			}
			assert.Len(t, verrs, len(tt.fields))
		})
	}
}

func TestStruct_Register(t *testing.T) {
	v := New()

	err := v.Struct(models.RegisterRequest{
		Name:     "Ravi",
		Email:    "not-an-email",
		Phone:    "12345",
		Password: "secret1",
		Role:     models.RoleAdmin,
	})

	verrs, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Enter a valid email address", verrs["email"])
	assert.Equal(t, "Enter a valid 10-digit mobile number", verrs["phone"])
	assert.Equal(t, "Must be one of: tenant, landlord", verrs["role"])
}

func TestErrors(t *testing.T) {
	e := Errors{}
	assert.NoError(t, e.Err())

	e.Add("utr", "UTR is required")
	e.Add("utr", "ignored")
	e.Add("amount", "Must be a number greater than 0")

	assert.Equal(t, "UTR is required", e["utr"])
	assert.Equal(t, "validation failed: amount: Must be a number greater than 0; utr: UTR is required", e.Err().Error())
}
