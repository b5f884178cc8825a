package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-errors/errors"
	"github.com/gorilla/websocket"
	"github.com/the-lightning-land/resurrection/phoenixd"
)

const (
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 30 * time.Second
	defaultClientBuffer    = 16
)

var errStreamClosed = errors.New("payment stream closed")

// RelayConfig controls how the api reconnects to phoenixd's payment stream.
type RelayConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	ClientBuffer    int
}

// EventsClient receives every payment event relayed after it subscribed.
type EventsClient struct {
	Id     uint32
	Events chan phoenixd.PaymentEvent
	relay  *relay
}

// relay keeps a single subscription to phoenixd open and fans its events out
// to the websocket clients of the api.
type relay struct {
	node            Node
	initialInterval time.Duration
	maxInterval     time.Duration
	clientBuffer    int
	clients         map[uint32]*EventsClient
	clientMtx       sync.Mutex
	nextClientID    uint32
	log             Logger
}

func newRelay(node Node, config *RelayConfig, log Logger) *relay {
	r := &relay{
		node:            node,
		initialInterval: config.InitialInterval,
		maxInterval:     config.MaxInterval,
		clientBuffer:    config.ClientBuffer,
		clients:         make(map[uint32]*EventsClient),
		log:             log,
	}

	if r.initialInterval == 0 {
		r.initialInterval = defaultInitialInterval
	}

	if r.maxInterval == 0 {
		r.maxInterval = defaultMaxInterval
	}

	if r.clientBuffer == 0 {
		r.clientBuffer = defaultClientBuffer
	}

	return r
}

// run subscribes to phoenixd and resubscribes with exponential backoff
// whenever the stream ends, until ctx is done. All clients are closed on
// return.
func (r *relay) run(ctx context.Context) {
	defer r.closeAll()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = 0

	err := backoff.RetryNotify(func() error {
		return r.relayOnce(ctx, b)
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		r.log.Warnf("Payment stream interrupted, reconnecting in %v: %v", wait, err)
	})
	if err != nil && ctx.Err() == nil {
		r.log.Errorf("Stopped relaying payment events: %v", err)
	}
}

func (r *relay) relayOnce(ctx context.Context, b backoff.BackOff) error {
	sub, err := r.node.SubscribePayments(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := sub.Cancel(); err != nil {
			r.log.Debugf("Could not close payment stream: %v", err)
		}
	}()

	b.Reset()

	r.log.Infof("Relaying payment events")

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				if err := sub.Err(); err != nil {
					return err
				}

				return errStreamClosed
			}

			r.broadcast(event)
		case <-ctx.Done():
			return backoff.Permanent(ctx.Err())
		}
	}
}

func (r *relay) broadcast(event phoenixd.PaymentEvent) {
	r.clientMtx.Lock()
	defer r.clientMtx.Unlock()

	for _, client := range r.clients {
		select {
		case client.Events <- event:
		default:
			r.log.Warnf("Dropped payment event for slow client %v", client.Id)
		}
	}
}

func (r *relay) subscribe() *EventsClient {
	client := &EventsClient{
		Events: make(chan phoenixd.PaymentEvent, r.clientBuffer),
		relay:  r,
	}

	r.clientMtx.Lock()
	client.Id = r.nextClientID
	r.nextClientID++
	r.clients[client.Id] = client
	r.clientMtx.Unlock()

	return client
}

func (r *relay) closeAll() {
	r.clientMtx.Lock()
	defer r.clientMtx.Unlock()

	for id, client := range r.clients {
		delete(r.clients, id)
		close(client.Events)
	}
}

// Cancel stops delivery and closes Events. It is safe to call more than once.
func (c *EventsClient) Cancel() {
	c.relay.clientMtx.Lock()
	defer c.relay.clientMtx.Unlock()

	if _, ok := c.relay.clients[c.Id]; !ok {
		return
	}

	delete(c.relay.clients, c.Id)
	close(c.Events)
}

func (a *Api) handleGetPaymentEvents() http.HandlerFunc {
	upgrader := &websocket.Upgrader{}

	return func(w http.ResponseWriter, r *http.Request) {
		client := a.relay.subscribe()
		defer client.Cancel()

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			a.log.Errorf("Could not upgrade to websocket: %v", err)
			return
		}

		done := make(chan struct{})

		// read pump
		go func() {
			defer close(done)

			c.SetReadLimit(512)
			c.SetReadDeadline(time.Now().Add(60 * time.Second))
			c.SetPongHandler(func(string) error {
				c.SetReadDeadline(time.Now().Add(60 * time.Second))
				return nil
			})

			for {
				_, _, err := c.ReadMessage()
				if err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						a.log.Errorf("unexpected websocket closure: %v", err)
					}
					break
				}
			}
		}()

		// write pump
		defer c.Close()

		ticker := time.NewTicker(54 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-client.Events:
				c.SetWriteDeadline(time.Now().Add(10 * time.Second))

				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}

				if err := c.WriteMessage(websocket.TextMessage, event); err != nil {
					return
				}
			case <-ticker.C:
				c.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
