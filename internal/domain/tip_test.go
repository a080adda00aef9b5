package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSplitAmount(t *testing.T) {
	feeRate := d("0.05")

	tests := []struct {
		name        string
		amount      string
		wantFee     string
		wantCreator string
	}{
		{"round amount", "1000", "50.00", "950.00"},
		{"fee needs rounding", "333.33", "16.67", "316.66"},
		{"small tip", "10", "0.50", "9.50"},
		{"one cent", "0.01", "0.00", "0.01"},
		{"repeating fraction", "99.99", "5.00", "94.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, creator := SplitAmount(d(tt.amount), feeRate)

			assert.True(t, fee.Equal(d(tt.wantFee)), "fee = %s, want %s", fee, tt.wantFee)
			assert.True(t, creator.Equal(d(tt.wantCreator)), "creator = %s, want %s", creator, tt.wantCreator)

			// fee + creator must reconstruct the amount exactly
			assert.True(t, fee.Add(creator).Equal(d(tt.amount)))
		})
	}
}

func TestSendTipRequest_Validate(t *testing.T) {
	msg := "asante sana"

	valid := func() SendTipRequest {
		return SendTipRequest{
			ToCreatorID: "creator-123",
			Amount:      d("500"),
			Message:     &msg,
			TipperPhone: "+254712345678",
		}
	}

	t.Run("valid request", func(t *testing.T) {
		req := valid()
		require.NoError(t, req.Validate())
	})

	t.Run("valid with 1-prefix number", func(t *testing.T) {
		req := valid()
		req.TipperPhone = "+254110000000"
		require.NoError(t, req.Validate())
	})

	t.Run("message is optional", func(t *testing.T) {
		req := valid()
		req.Message = nil
		require.NoError(t, req.Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*SendTipRequest)
		wantErr string
	}{
		{"empty creator id", func(r *SendTipRequest) { r.ToCreatorID = "" }, "to_creator_id"},
		{"zero amount", func(r *SendTipRequest) { r.Amount = d("0") }, "amount must be greater than 0"},
		{"negative amount", func(r *SendTipRequest) { r.Amount = d("-5") }, "amount must be greater than 0"},
		{"missing phone", func(r *SendTipRequest) { r.TipperPhone = "" }, "tipper_phone_number is required"},
		{"phone without country code", func(r *SendTipRequest) { r.TipperPhone = "0712345678" }, "+254"},
		{"phone with bad leading digit", func(r *SendTipRequest) { r.TipperPhone = "+254212345678" }, "+254"},
		{"phone too short", func(r *SendTipRequest) { r.TipperPhone = "+25471234567" }, "+254"},
		{"phone too long", func(r *SendTipRequest) { r.TipperPhone = "+2547123456789" }, "+254"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			err := req.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTipStatus_IsTerminal(t *testing.T) {
	assert.False(t, TipStatusInitiated.IsTerminal())
	assert.False(t, TipStatusAwaitingProvider.IsTerminal())
	assert.True(t, TipStatusSettled.IsTerminal())
	assert.True(t, TipStatusFailedInitiation.IsTerminal())
	assert.True(t, TipStatusErrorInitiation.IsTerminal())
}

func TestNewTxRef(t *testing.T) {
	ref := NewTxRef()
	assert.Contains(t, ref, "tipkesho-tip-")

	// references must be unique across calls
	assert.NotEqual(t, ref, NewTxRef())
}

func TestFallbackHandle(t *testing.T) {
	assert.Equal(t, "creator-a1b2c3d4", FallbackHandle("a1b2c3d4e5f6"))
	assert.Equal(t, "creator-abc", FallbackHandle("abc"))

	// deterministic
	assert.Equal(t, FallbackHandle("a1b2c3d4e5f6"), FallbackHandle("a1b2c3d4e5f6"))
}
