package phoenixd

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/resurrection/credential"
)

type fakeCredentials struct {
	secret        string
	err           error
	resolves      int32
	invalidations int32
}

func (f *fakeCredentials) Resolve(ctx context.Context) (string, error) {
	atomic.AddInt32(&f.resolves, 1)
	return f.secret, f.err
}

func (f *fakeCredentials) Invalidate() {
	atomic.AddInt32(&f.invalidations, 1)
}

type recordedRequest struct {
	method   string
	path     string
	rawPath  string
	form     url.Values
	password string
	hasAuth  bool
}

type fakeDaemon struct {
	*httptest.Server
	mtx      sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeDaemon(t *testing.T, status int, body string) *fakeDaemon {
	d := &fakeDaemon{status: status, body: body}

	d.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(raw))
		_, password, ok := r.BasicAuth()

		d.mtx.Lock()
		d.requests = append(d.requests, recordedRequest{
			method:   r.Method,
			path:     r.URL.Path,
			rawPath:  r.URL.EscapedPath(),
			form:     form,
			password: password,
			hasAuth:  ok,
		})
		status, body := d.status, d.body
		d.mtx.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))

	t.Cleanup(d.Close)

	return d
}

func (d *fakeDaemon) last(t *testing.T) recordedRequest {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	require.NotEmpty(t, d.requests)
	return d.requests[len(d.requests)-1]
}

func (d *fakeDaemon) respond(body string) {
	d.mtx.Lock()
	d.body = body
	d.mtx.Unlock()
}

func (d *fakeDaemon) count() int {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return len(d.requests)
}

func newTestClient(t *testing.T, server *httptest.Server, creds CredentialResolver) *Client {
	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return NewClient(&Config{
		Host:        host,
		Port:        port,
		Credentials: creds,
		HTTPClient:  server.Client(),
	})
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(&Config{Credentials: &fakeCredentials{}})

	assert.Equal(t, "http://127.0.0.1:9740/getinfo", c.url("http", "/getinfo"))
	assert.Equal(t, "ws://127.0.0.1:9740/websocket", c.url("ws", "/websocket"))
}

func TestGetBalance(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `{"balanceSat": 1000, "feeCreditSat": 50}`)
	creds := &fakeCredentials{secret: "s3cret"}
	c := newTestClient(t, d.Server, creds)

	balance, err := c.GetBalance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1050), balance.Total())

	confirmed, feeCredit := balance.Pair()
	assert.Equal(t, int64(1000), confirmed)
	assert.Equal(t, int64(50), feeCredit)

	total, err := c.GetBalanceSat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1050), total)

	req := d.last(t)
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/getbalance", req.path)
	assert.True(t, req.hasAuth)
	assert.Equal(t, "s3cret", req.password)
}

func TestGetBalanceUnexpectedShape(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `{"balance": 1000}`)
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})

	_, err := c.GetBalance(context.Background())

	var decodeErr *DecodeFailed
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, OpGetBalance, decodeErr.Operation)
}

func TestNonSuccessStatus(t *testing.T) {
	// the body is not JSON, a RequestFailed proves it was never parsed
	d := newFakeDaemon(t, http.StatusInternalServerError, `<html>oops</html>`)
	creds := &fakeCredentials{secret: "x"}
	c := newTestClient(t, d.Server, creds)
	ctx := context.Background()

	tests := []struct {
		op   Operation
		call func() error
	}{
		{OpGetBalance, func() error {
			_, err := c.GetBalance(ctx)
			return err
		}},
		{OpGetInfo, func() error {
			_, err := c.GetInfo(ctx)
			return err
		}},
		{OpListIncoming, func() error {
			_, err := c.ListIncomingPayments(ctx)
			return err
		}},
		{OpListOutgoing, func() error {
			_, err := c.ListOutgoingPayments(ctx)
			return err
		}},
		{OpCreateInvoice, func() error {
			_, err := c.CreateInvoice(ctx, &CreateInvoiceRequest{Description: "d", AmountSat: 1})
			return err
		}},
		{OpGetOffer, func() error {
			_, err := c.GetOffer(ctx)
			return err
		}},
		{OpGetIncomingPayment, func() error {
			_, err := c.GetIncomingPayment(ctx, "hash")
			return err
		}},
		{OpGetOutgoingPayment, func() error {
			_, err := c.GetOutgoingPayment(ctx, "id")
			return err
		}},
		{OpDecodeInvoice, func() error {
			_, err := c.DecodeInvoice(ctx, "lnbc1")
			return err
		}},
		{OpDecodeOffer, func() error {
			_, err := c.DecodeOffer(ctx, "lno1")
			return err
		}},
		{OpPayInvoice, func() error {
			_, err := c.PayInvoice(ctx, &PayInvoiceRequest{Invoice: "lnbc1"})
			return err
		}},
		{OpPayOffer, func() error {
			_, err := c.PayOffer(ctx, &PayOfferRequest{Offer: "lno1", AmountSat: 1})
			return err
		}},
		{OpPayLnAddress, func() error {
			_, err := c.PayLnAddress(ctx, &PayLnAddressRequest{Address: "a@b.c", AmountSat: 1})
			return err
		}},
		{OpSendToAddress, func() error {
			_, err := c.SendToAddress(ctx, &SendToAddressRequest{Address: "bc1q", AmountSat: 1})
			return err
		}},
	}

	for _, test := range tests {
		t.Run(string(test.op), func(t *testing.T) {
			err := test.call()

			var failed *RequestFailed
			require.True(t, errors.As(err, &failed))
			assert.Equal(t, test.op, failed.Operation)
			assert.Equal(t, http.StatusInternalServerError, failed.Status)
		})
	}

	assert.Equal(t, len(tests), d.count())
	assert.Equal(t, int32(0), atomic.LoadInt32(&creds.invalidations))
}

func TestUnauthorizedInvalidatesCredential(t *testing.T) {
	d := newFakeDaemon(t, http.StatusUnauthorized, ``)
	creds := &fakeCredentials{secret: "rotated"}
	c := newTestClient(t, d.Server, creds)

	_, err := c.GetInfo(context.Background())

	var failed *RequestFailed
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, http.StatusUnauthorized, failed.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&creds.invalidations))
}

func TestMissingConfigurationSkipsRequest(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `{}`)
	resolver := credential.NewResolver(&credential.Config{
		Path: filepath.Join(t.TempDir(), "phoenix.conf"),
	})
	c := newTestClient(t, d.Server, resolver)

	_, err := c.GetBalance(context.Background())
	assert.True(t, errors.Is(err, credential.ErrConfigurationMissing))

	_, err = c.CreateInvoice(context.Background(), &CreateInvoiceRequest{Description: "coffee"})
	assert.True(t, errors.Is(err, credential.ErrConfigurationMissing))

	_, err = c.SubscribePayments(context.Background())
	assert.True(t, errors.Is(err, credential.ErrConfigurationMissing))

	assert.Equal(t, 0, d.count())
}

func TestGetInfo(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `{
		"nodeId": "03abc",
		"channels": [{"state": "Normal", "channelId": "c1", "balanceSat": 100, "inboundLiquiditySat": 900, "capacitySat": 1000, "fundingTxId": "f1"}],
		"chain": "mainnet",
		"blockHeight": 850000,
		"version": "0.3.2"
	}`)
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})

	info, err := c.GetInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "03abc", info.NodeId)
	require.Len(t, info.Channels, 1)
	assert.Equal(t, int64(900), info.Channels[0].InboundLiquiditySat)
	assert.Equal(t, "/getinfo", d.last(t).path)
}

func TestListPayments(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `[{"paymentHash": "h1", "isPaid": true, "receivedSat": 21}, {"paymentHash": "h2"}]`)
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})

	incoming, err := c.ListIncomingPayments(context.Background())
	require.NoError(t, err)
	require.Len(t, incoming, 2)
	assert.Equal(t, int64(21), incoming[0].ReceivedSat)
	assert.Equal(t, "/payments/incoming", d.last(t).path)

	d.respond(`[{"paymentId": "p1", "sent": 10, "fees": 1}]`)

	outgoing, err := c.ListOutgoingPayments(context.Background())
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, "p1", outgoing[0].PaymentId)
	assert.Equal(t, "/payments/outgoing", d.last(t).path)
}

func TestListPaymentsRejectsEntriesWithoutHash(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `[{"paymentHash": "h1"}, {"receivedSat": 5}]`)
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})

	_, err := c.ListIncomingPayments(context.Background())

	var decodeErr *DecodeFailed
	assert.True(t, errors.As(err, &decodeErr))
}

func TestGetIncomingPayment(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `{"paymentHash": "ab/cd", "isPaid": false}`)
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})

	payment, err := c.GetIncomingPayment(context.Background(), "ab/cd")
	require.NoError(t, err)
	assert.False(t, payment.IsPaid)
	assert.Equal(t, "/payments/incoming/ab%2Fcd", d.last(t).rawPath)

	_, err = c.GetIncomingPayment(context.Background(), "")
	assert.Error(t, err)
	assert.Equal(t, 1, d.count())
}

func TestGetOutgoingPayment(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `{"paymentId": "p1", "isPaid": true}`)
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})

	payment, err := c.GetOutgoingPayment(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, payment.IsPaid)
	assert.Equal(t, "/payments/outgoing/p1", d.last(t).path)
}

func TestCreateInvoiceOmitsEmptyOptionals(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `{"amountSat": 0, "paymentHash": "h", "serialized": "lnbc1"}`)
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})

	invoice, err := c.CreateInvoice(context.Background(), &CreateInvoiceRequest{Description: "coffee"})
	require.NoError(t, err)
	assert.Equal(t, "lnbc1", invoice.Serialized)

	req := d.last(t)
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/createinvoice", req.path)
	assert.Equal(t, url.Values{"description": {"coffee"}}, req.form)

	_, err = c.CreateInvoice(context.Background(), &CreateInvoiceRequest{Description: "tea", AmountSat: 2100})
	require.NoError(t, err)
	assert.Equal(t, url.Values{"description": {"tea"}, "amountSat": {"2100"}}, d.last(t).form)
}

func TestGetOffer(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, "lno1qgsqvgnwgcg35z6ee2h3yczraddm72xrfua9uve2rlrm9deu7xyfzrc\n")
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})

	offer, err := c.GetOffer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "lno1qgsqvgnwgcg35z6ee2h3yczraddm72xrfua9uve2rlrm9deu7xyfzrc", offer)
	assert.Equal(t, http.MethodGet, d.last(t).method)
	assert.Equal(t, "/getoffer", d.last(t).path)
}

func TestDecode(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `{"chain": "mainnet", "amount": 100000, "paymentHash": "h"}`)
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})

	invoice, err := c.DecodeInvoice(context.Background(), "lnbc1")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), invoice.Amount)
	assert.Equal(t, "/decodeinvoice", d.last(t).path)
	assert.Equal(t, url.Values{"invoice": {"lnbc1"}}, d.last(t).form)

	d.respond(`{"chain": "mainnet", "description": "donations"}`)

	offer, err := c.DecodeOffer(context.Background(), "lno1")
	require.NoError(t, err)
	assert.Equal(t, "donations", offer.Description)
	assert.Equal(t, "/decodeoffer", d.last(t).path)
	assert.Equal(t, url.Values{"offer": {"lno1"}}, d.last(t).form)
}

func TestPayOperations(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, `{"recipientAmountSat": 10, "routingFeeSat": 1, "paymentId": "p", "paymentHash": "h", "paymentPreimage": "pre"}`)
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})
	ctx := context.Background()

	_, err := c.PayInvoice(ctx, &PayInvoiceRequest{Invoice: "lnbc1"})
	require.NoError(t, err)
	assert.Equal(t, "/payinvoice", d.last(t).path)
	assert.Equal(t, url.Values{"invoice": {"lnbc1"}}, d.last(t).form)

	_, err = c.PayOffer(ctx, &PayOfferRequest{Offer: "lno1", AmountSat: 10})
	require.NoError(t, err)
	assert.Equal(t, "/payoffer", d.last(t).path)
	assert.Equal(t, url.Values{"offer": {"lno1"}, "amountSat": {"10"}}, d.last(t).form)

	result, err := c.PayLnAddress(ctx, &PayLnAddressRequest{Address: "satoshi@example.com", AmountSat: 10, Message: "thanks"})
	require.NoError(t, err)
	assert.Equal(t, "pre", result.PaymentPreimage)
	assert.Equal(t, "/paylnaddress", d.last(t).path)
	assert.Equal(t, url.Values{
		"address":   {"satoshi@example.com"},
		"amountSat": {"10"},
		"message":   {"thanks"},
	}, d.last(t).form)

	_, err = c.PayOffer(ctx, &PayOfferRequest{})
	assert.Error(t, err)
	assert.Equal(t, 3, d.count())
}

func TestSendToAddress(t *testing.T) {
	d := newFakeDaemon(t, http.StatusOK, "d1f3a0\n")
	c := newTestClient(t, d.Server, &fakeCredentials{secret: "x"})

	result, err := c.SendToAddress(context.Background(), &SendToAddressRequest{Address: "bc1q", AmountSat: 5000, FeerateSatByte: 12})
	require.NoError(t, err)
	assert.Equal(t, "d1f3a0", result.TxId)
	assert.Equal(t, "/sendtoaddress", d.last(t).path)
	assert.Equal(t, url.Values{
		"address":        {"bc1q"},
		"amountSat":      {"5000"},
		"feerateSatByte": {"12"},
	}, d.last(t).form)

	d.respond(`{"txId": "e2"}`)

	result, err = c.SendToAddress(context.Background(), &SendToAddressRequest{Address: "bc1q"})
	require.NoError(t, err)
	assert.Equal(t, "e2", result.TxId)
	assert.Equal(t, url.Values{"address": {"bc1q"}}, d.last(t).form)
}

func TestFormRoundTrip(t *testing.T) {
	encoded := newForm().
		set("offer", "lno1").
		setInt("amountSat", 0).
		set("message", "").
		setInt("feerateSatByte", 3).
		Encode()

	decoded, err := url.ParseQuery(encoded)
	require.NoError(t, err)

	assert.Equal(t, url.Values{"offer": {"lno1"}, "feerateSatByte": {"3"}}, decoded)
	assert.NotContains(t, decoded, "amountSat")
	assert.NotContains(t, decoded, "message")
}
