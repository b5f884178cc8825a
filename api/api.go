package api

import (
	"context"
	"net"
	"net/http"

	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/the-lightning-land/resurrection/phoenixd"
	"github.com/the-lightning-land/resurrection/walletdb"
)

// Node is the part of the phoenixd client the api exposes.
type Node interface {
	GetBalance(ctx context.Context) (*phoenixd.Balance, error)
	GetInfo(ctx context.Context) (*phoenixd.NodeInfo, error)
	ListIncomingPayments(ctx context.Context) ([]phoenixd.IncomingPayment, error)
	ListOutgoingPayments(ctx context.Context) ([]phoenixd.OutgoingPayment, error)
	GetIncomingPayment(ctx context.Context, paymentHash string) (*phoenixd.IncomingPayment, error)
	GetOutgoingPayment(ctx context.Context, paymentId string) (*phoenixd.OutgoingPayment, error)
	CreateInvoice(ctx context.Context, req *phoenixd.CreateInvoiceRequest) (*phoenixd.Invoice, error)
	GetOffer(ctx context.Context) (string, error)
	DecodeInvoice(ctx context.Context, invoice string) (*phoenixd.DecodedInvoice, error)
	DecodeOffer(ctx context.Context, offer string) (*phoenixd.DecodedOffer, error)
	PayInvoice(ctx context.Context, req *phoenixd.PayInvoiceRequest) (*phoenixd.PaymentResult, error)
	PayOffer(ctx context.Context, req *phoenixd.PayOfferRequest) (*phoenixd.PaymentResult, error)
	PayLnAddress(ctx context.Context, req *phoenixd.PayLnAddressRequest) (*phoenixd.PaymentResult, error)
	SendToAddress(ctx context.Context, req *phoenixd.SendToAddressRequest) (*phoenixd.OnchainResult, error)
	SubscribePayments(ctx context.Context) (*phoenixd.PaymentsClient, error)
}

// Rates converts bitcoin amounts to fiat.
type Rates interface {
	Convert(ctx context.Context, amount decimal.Decimal, code string, sats bool, decimals int32) (string, error)
	ClearCache()
}

// SetupStore persists the wallet setup.
type SetupStore interface {
	GetSetup() (*walletdb.Setup, error)
	SetSetup(setup *walletdb.Setup) error
}

type Config struct {
	Node  Node
	Rates Rates
	DB    SetupStore
	Log   Logger
	Relay *RelayConfig
}

// Api serves the wallet to a local frontend.
type Api struct {
	node   Node
	rates  Rates
	db     SetupStore
	router *mux.Router
	relay  *relay
	log    Logger
}

func New(config *Config) *Api {
	api := &Api{
		node:   config.Node,
		rates:  config.Rates,
		db:     config.DB,
		router: mux.NewRouter(),
	}

	if config.Log != nil {
		api.log = config.Log
	} else {
		api.log = noopLogger{}
	}

	relayConfig := config.Relay
	if relayConfig == nil {
		relayConfig = &RelayConfig{}
	}

	api.relay = newRelay(config.Node, relayConfig, api.log)

	v1 := api.router.PathPrefix("/api/v1").Subrouter()

	v1.Handle("/balance", api.handleGetBalance()).Methods(http.MethodGet)
	v1.Handle("/info", api.handleGetInfo()).Methods(http.MethodGet)

	v1.Handle("/payments/incoming", api.handleListIncoming()).Methods(http.MethodGet)
	v1.Handle("/payments/incoming/{hash}", api.handleGetIncoming()).Methods(http.MethodGet)
	v1.Handle("/payments/outgoing", api.handleListOutgoing()).Methods(http.MethodGet)
	v1.Handle("/payments/outgoing/{id}", api.handleGetOutgoing()).Methods(http.MethodGet)
	v1.Handle("/payments/events", api.handleGetPaymentEvents()).Methods(http.MethodGet)
	v1.Handle("/payments", api.handlePostPayment()).Methods(http.MethodPost)

	v1.Handle("/invoices", api.handlePostInvoice()).Methods(http.MethodPost)
	v1.Handle("/offer", api.handleGetOffer()).Methods(http.MethodGet)
	v1.Handle("/decode", api.handlePostDecode()).Methods(http.MethodPost)

	v1.Handle("/fiat/{code}", api.handleGetFiat()).Methods(http.MethodGet)
	v1.Handle("/fiat", api.handleDeleteFiat()).Methods(http.MethodDelete)

	v1.Handle("/setup", api.handleGetSetup()).Methods(http.MethodGet)
	v1.Handle("/setup", api.handlePutSetup()).Methods(http.MethodPut)

	return api
}

// Run relays phoenixd payment events to websocket clients until ctx is done.
func (a *Api) Run(ctx context.Context) {
	a.relay.run(ctx)
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *Api) Serve(l net.Listener) error {
	err := http.Serve(l, a.router)
	if err != nil {
		return errors.Errorf("Unable to serve api: %v", err)
	}

	return nil
}
