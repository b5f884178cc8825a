package phoenixd

import (
	"fmt"
	"net/http"
)

// Operation names a daemon capability, carried by failures so callers can
// tell which call went wrong.
type Operation string

const (
	OpGetBalance         Operation = "get_balance"
	OpGetInfo            Operation = "get_info"
	OpListIncoming       Operation = "list_incoming_payments"
	OpListOutgoing       Operation = "list_outgoing_payments"
	OpCreateInvoice      Operation = "create_invoice"
	OpGetOffer           Operation = "get_offer"
	OpGetIncomingPayment Operation = "get_incoming_payment"
	OpGetOutgoingPayment Operation = "get_outgoing_payment"
	OpDecodeInvoice      Operation = "decode_invoice"
	OpDecodeOffer        Operation = "decode_offer"
	OpPayInvoice         Operation = "pay_invoice"
	OpPayOffer           Operation = "pay_offer"
	OpPayLnAddress       Operation = "pay_ln_address"
	OpSendToAddress      Operation = "send_to_address"
	OpSubscribePayments  Operation = "subscribe_payments"
)

// RequestFailed is returned when phoenixd answers with a non-2xx status.
// The response body is not read.
type RequestFailed struct {
	Operation Operation
	Status    int
}

func (e *RequestFailed) Error() string {
	return fmt.Sprintf("phoenixd %v failed with status %d %v",
		e.Operation, e.Status, http.StatusText(e.Status))
}

// DecodeFailed is returned when a successful response does not have the
// shape the operation expects.
type DecodeFailed struct {
	Operation Operation
	Err       error
}

func (e *DecodeFailed) Error() string {
	return fmt.Sprintf("phoenixd %v returned an unexpected payload: %v", e.Operation, e.Err)
}

func (e *DecodeFailed) Unwrap() error {
	return e.Err
}

// ConnectionFailed is returned when the payment event stream could not be
// established.
type ConnectionFailed struct {
	Cause error
}

func (e *ConnectionFailed) Error() string {
	return fmt.Sprintf("could not connect to phoenixd websocket: %v", e.Cause)
}

func (e *ConnectionFailed) Unwrap() error {
	return e.Cause
}
