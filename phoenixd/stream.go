package phoenixd

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/the-lightning-land/resurrection/auth"
)

// PaymentEvent is a notification pushed by phoenixd, passed on untouched.
type PaymentEvent = json.RawMessage

// PaymentsClient is a live subscription to phoenixd's websocket. Events are
// delivered in the order they arrive until the connection ends, after which
// the channel is closed and Err reports why.
type PaymentsClient struct {
	Events <-chan PaymentEvent

	conn       *websocket.Conn
	done       chan struct{}
	cancelOnce sync.Once
	errMtx     sync.Mutex
	err        error
	log        Logger
}

// SubscribePayments opens a new websocket connection to phoenixd. Each call
// is an independent connection; there is no resumption and no reconnect.
func (c *Client) SubscribePayments(ctx context.Context) (*PaymentsClient, error) {
	secret, err := c.credentials.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	auth.Apply(header, secret)

	conn, res, err := c.dialer.DialContext(ctx, c.url("ws", "/websocket"), header)
	if err != nil {
		if res != nil && res.StatusCode == http.StatusUnauthorized {
			c.credentials.Invalidate()
		}

		c.log.Errorf("Could not connect to phoenixd websocket: %v", err)

		return nil, &ConnectionFailed{Cause: err}
	}

	c.log.Infof("Connected to phoenixd websocket")

	events := make(chan PaymentEvent)

	client := &PaymentsClient{
		Events: events,
		conn:   conn,
		done:   make(chan struct{}),
		log:    c.log,
	}

	go client.readPump(events)

	return client, nil
}

func (p *PaymentsClient) readPump(events chan<- PaymentEvent) {
	defer close(events)

	for {
		_, message, err := p.conn.ReadMessage()
		if err != nil {
			select {
			case <-p.done:
			default:
				p.setErr(err)
				p.log.Warnf("phoenixd websocket closed: %v", err)
			}

			return
		}

		select {
		case events <- PaymentEvent(message):
		case <-p.done:
			return
		}
	}
}

func (p *PaymentsClient) setErr(err error) {
	p.errMtx.Lock()
	p.err = err
	p.errMtx.Unlock()
}

// Err returns the error that ended the subscription, or nil if it is still
// running or was cancelled.
func (p *PaymentsClient) Err() error {
	p.errMtx.Lock()
	defer p.errMtx.Unlock()

	return p.err
}

// Cancel closes the connection. It is safe to call more than once.
func (p *PaymentsClient) Cancel() error {
	var err error

	p.cancelOnce.Do(func() {
		close(p.done)

		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))

		err = p.conn.Close()
	})

	return err
}
