package phoenixd

import (
	"github.com/go-errors/errors"
)

// Balance is the wallet balance as reported by phoenixd. Fee credit is
// spendable, so Total is what the wallet shows as its balance.
type Balance struct {
	BalanceSat   int64 `json:"balanceSat"`
	FeeCreditSat int64 `json:"feeCreditSat"`
}

// Total returns the spendable balance in satoshis.
func (b *Balance) Total() int64 {
	return b.BalanceSat + b.FeeCreditSat
}

// Pair returns the confirmed balance and the fee credit separately.
func (b *Balance) Pair() (int64, int64) {
	return b.BalanceSat, b.FeeCreditSat
}

type balanceResponse struct {
	BalanceSat   *int64 `json:"balanceSat"`
	FeeCreditSat *int64 `json:"feeCreditSat"`
}

func (r balanceResponse) validate() error {
	if r.BalanceSat == nil {
		return errors.New("missing balanceSat")
	}

	if r.FeeCreditSat == nil {
		return errors.New("missing feeCreditSat")
	}

	return nil
}

type Channel struct {
	State               string `json:"state"`
	ChannelId           string `json:"channelId"`
	BalanceSat          int64  `json:"balanceSat"`
	InboundLiquiditySat int64  `json:"inboundLiquiditySat"`
	CapacitySat         int64  `json:"capacitySat"`
	FundingTxId         string `json:"fundingTxId"`
}

type NodeInfo struct {
	NodeId      string    `json:"nodeId"`
	Channels    []Channel `json:"channels"`
	Chain       string    `json:"chain"`
	BlockHeight int64     `json:"blockHeight"`
	Version     string    `json:"version"`
}

func (i NodeInfo) validate() error {
	if i.NodeId == "" {
		return errors.New("missing nodeId")
	}

	return nil
}

type IncomingPayment struct {
	PaymentHash string `json:"paymentHash"`
	Preimage    string `json:"preimage"`
	ExternalId  string `json:"externalId,omitempty"`
	Description string `json:"description"`
	Invoice     string `json:"invoice"`
	IsPaid      bool   `json:"isPaid"`
	ReceivedSat int64  `json:"receivedSat"`
	Fees        int64  `json:"fees"`
	CompletedAt int64  `json:"completedAt,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

func (p IncomingPayment) validate() error {
	if p.PaymentHash == "" {
		return errors.New("missing paymentHash")
	}

	return nil
}

type incomingPayments []IncomingPayment

func (l incomingPayments) validate() error {
	for i, p := range l {
		if err := p.validate(); err != nil {
			return errors.Errorf("payment %d: %v", i, err)
		}
	}

	return nil
}

type OutgoingPayment struct {
	PaymentId   string `json:"paymentId"`
	PaymentHash string `json:"paymentHash,omitempty"`
	Preimage    string `json:"preimage,omitempty"`
	IsPaid      bool   `json:"isPaid"`
	Sent        int64  `json:"sent"`
	Fees        int64  `json:"fees"`
	Invoice     string `json:"invoice,omitempty"`
	CompletedAt int64  `json:"completedAt,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

func (p OutgoingPayment) validate() error {
	if p.PaymentId == "" {
		return errors.New("missing paymentId")
	}

	return nil
}

type outgoingPayments []OutgoingPayment

func (l outgoingPayments) validate() error {
	for i, p := range l {
		if err := p.validate(); err != nil {
			return errors.Errorf("payment %d: %v", i, err)
		}
	}

	return nil
}

// Invoice is a freshly created bolt11 invoice.
type Invoice struct {
	AmountSat   int64  `json:"amountSat"`
	PaymentHash string `json:"paymentHash"`
	Serialized  string `json:"serialized"`
}

func (i Invoice) validate() error {
	if i.PaymentHash == "" {
		return errors.New("missing paymentHash")
	}

	if i.Serialized == "" {
		return errors.New("missing serialized")
	}

	return nil
}

// DecodedInvoice carries the fields phoenixd extracts from a bolt11 invoice.
// Amount is in millisatoshis.
type DecodedInvoice struct {
	Chain                   string `json:"chain"`
	Amount                  int64  `json:"amount,omitempty"`
	PaymentHash             string `json:"paymentHash"`
	Description             string `json:"description,omitempty"`
	DescriptionHash         string `json:"descriptionHash,omitempty"`
	MinFinalCltvExpiryDelta int64  `json:"minFinalCltvExpiryDelta"`
	PaymentSecret           string `json:"paymentSecret"`
	TimestampSeconds        int64  `json:"timestampSeconds"`
}

func (i DecodedInvoice) validate() error {
	if i.PaymentHash == "" {
		return errors.New("missing paymentHash")
	}

	return nil
}

// DecodedOffer carries the fields phoenixd extracts from a bolt12 offer.
// Amount is in millisatoshis.
type DecodedOffer struct {
	Chain       string `json:"chain"`
	Amount      int64  `json:"amount,omitempty"`
	Description string `json:"description,omitempty"`
	Issuer      string `json:"issuer,omitempty"`
	NodeId      string `json:"nodeId,omitempty"`
	Expiry      int64  `json:"expiry,omitempty"`
}

// PaymentResult is returned by the lightning pay operations.
type PaymentResult struct {
	RecipientAmountSat int64  `json:"recipientAmountSat"`
	RoutingFeeSat      int64  `json:"routingFeeSat"`
	PaymentId          string `json:"paymentId"`
	PaymentHash        string `json:"paymentHash"`
	PaymentPreimage    string `json:"paymentPreimage"`
}

func (r PaymentResult) validate() error {
	if r.PaymentId == "" {
		return errors.New("missing paymentId")
	}

	return nil
}

// OnchainResult is returned by SendToAddress.
type OnchainResult struct {
	TxId string `json:"txId"`
}

func (r OnchainResult) validate() error {
	if r.TxId == "" {
		return errors.New("missing txId")
	}

	return nil
}
