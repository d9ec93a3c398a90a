package renew

import (
	"encoding/json"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountpro/cli/internal/catalog"
)

func TestNewReference_Format(t *testing.T) {
	re := regexp.MustCompile(`^PRO\d{6}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, re, NewReference())
	}
}

func TestQRCodeURL(t *testing.T) {
	u := QRCodeURL(DefaultBank, 180000, "PRO123456")

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "qr.sepay.vn", parsed.Host)
	assert.Equal(t, "/img", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "0849331080", q.Get("acc"))
	assert.Equal(t, "VPB", q.Get("bank"))
	assert.Equal(t, "180000", q.Get("amount"))
	assert.Equal(t, "PRO123456", q.Get("des"))
	assert.Equal(t, "compact2", q.Get("template"))
}

func TestNewIntent(t *testing.T) {
	pkg := catalog.RenewalPackage{Title: "1 month", Days: 30, Price: 100000}
	coupon := &catalog.Coupon{Code: "SAVE10", Percent: 10, Status: true}
	q, err := BuildQuote(pkg, 2, coupon)
	require.NoError(t, err)

	intent := NewIntent(q, "user-1", "tool-1")
	assert.Equal(t, "user-1", intent.UserID)
	assert.Equal(t, "tool-1", intent.ToolID)
	assert.Equal(t, 2, intent.DeviceCount)
	assert.Equal(t, float64(200000), intent.OriginalPrice)
	assert.Equal(t, float64(180000), intent.Amount)
	assert.Equal(t, float64(20000), intent.Discount)
	assert.Equal(t, "SAVE10", intent.CouponCode)
	assert.Equal(t, "transfer", intent.Method)
	assert.Regexp(t, `^PRO\d{6}$`, intent.Reference)
	assert.Contains(t, intent.QRCodeURL, "des="+intent.Reference)
}

func TestPaymentIntent_JSONShape(t *testing.T) {
	pkg := catalog.RenewalPackage{Days: 30, Price: 100000}
	q, err := BuildQuote(pkg, 1, nil)
	require.NoError(t, err)

	out, err := json.Marshal(NewIntent(q, "user-1", "tool-1"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	for _, key := range []string{"userId", "toolId", "package", "deviceCount", "originalPrice", "amount", "discount", "couponCode", "contentPayment", "method"} {
		assert.Contains(t, m, key)
	}
	// Bank constants and the QR link are presentation, not payload.
	assert.NotContains(t, m, "QRCodeURL")
	assert.NotContains(t, m, "Bank")
}
