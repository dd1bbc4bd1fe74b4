package payments

import domain "github.com/laundryhub/api/internal/domain"

// Payment method ids.
const (
	MethodCard       = "card"
	MethodUPI        = "upi"
	MethodNetBanking = "netbanking"
	MethodWallet     = "wallet"
	MethodCash       = "cash"
)

// DefaultMethods returns the storefront's payment options.
func DefaultMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{ID: MethodCard, Name: "Credit/Debit Card", Description: "Pay with Visa, Mastercard, or RuPay"},
		{ID: MethodUPI, Name: "UPI Payment", Description: "Pay with PhonePe, Google Pay, Paytm"},
		{ID: MethodNetBanking, Name: "Net Banking", Description: "Pay directly from your bank account"},
		{ID: MethodWallet, Name: "Digital Wallet", Description: "Pay with Paytm, PhonePe, or other wallets"},
		{ID: MethodCash, Name: "Cash on Delivery", Description: "Pay when your order is delivered"},
	}
}
