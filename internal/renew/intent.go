package renew

import (
	"crypto/rand"
	"math/big"
	"net/url"
	"strconv"

	"github.com/accountpro/cli/internal/catalog"
)

// BankInfo identifies the receiving bank account encoded into the payment QR.
type BankInfo struct {
	AccountNo     string
	AccountName   string
	BankName      string
	BankShortName string
	Template      string
}

// DefaultBank is the receiving account for manual transfers.
var DefaultBank = BankInfo{
	AccountNo:     "0849331080",
	AccountName:   "NGUYEN GIA TRUNG",
	BankName:      "VPBank",
	BankShortName: "VPB",
	Template:      "compact2",
}

const qrBaseURL = "https://qr.sepay.vn/img"

// PaymentIntent is the client-side record of a renewal purchase: the amount,
// a human-readable transaction reference the payer must keep in the transfer
// note, and a static QR image deep link. Confirmation is delegated to the
// external payment webhook system.
type PaymentIntent struct {
	UserID        string                 `json:"userId"`
	ToolID        string                 `json:"toolId"`
	Package       catalog.RenewalPackage `json:"package"`
	DeviceCount   int                    `json:"deviceCount"`
	OriginalPrice float64                `json:"originalPrice"`
	Amount        float64                `json:"amount"`
	Discount      float64                `json:"discount"`
	CouponCode    string                 `json:"couponCode"`
	Reference     string                 `json:"contentPayment"`
	Method        string                 `json:"method"`
	QRCodeURL     string                 `json:"-"`
	Bank          BankInfo               `json:"-"`
}

// NewReference generates a transaction reference of the form PRO123456.
func NewReference() string {
	// 100000..999999, always six digits.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand failing means the platform RNG is broken; there is no
		// sensible fallback for a payment reference.
		panic(err)
	}
	return "PRO" + strconv.FormatInt(n.Int64()+100000, 10)
}

// NewIntent builds a payment intent for the quoted renewal.
func NewIntent(q *Quote, userID, toolID string) *PaymentIntent {
	couponCode := ""
	if q.Coupon != nil {
		couponCode = q.Coupon.Code
	}
	ref := NewReference()
	return &PaymentIntent{
		UserID:        userID,
		ToolID:        toolID,
		Package:       q.Package,
		DeviceCount:   q.DeviceCount,
		OriginalPrice: q.OriginalPrice,
		Amount:        q.FinalPrice,
		Discount:      q.OriginalPrice - q.FinalPrice,
		CouponCode:    couponCode,
		Reference:     ref,
		Method:        "transfer",
		QRCodeURL:     QRCodeURL(DefaultBank, q.FinalPrice, ref),
		Bank:          DefaultBank,
	}
}

// QRCodeURL builds the static QR-image deep link for a transfer.
func QRCodeURL(bank BankInfo, amount float64, reference string) string {
	params := url.Values{}
	params.Set("acc", bank.AccountNo)
	params.Set("bank", bank.BankShortName)
	params.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	params.Set("des", reference)
	params.Set("template", bank.Template)
	return qrBaseURL + "?" + params.Encode()
}
