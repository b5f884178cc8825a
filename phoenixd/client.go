package phoenixd

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-errors/errors"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/the-lightning-land/resurrection/auth"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 9740
)

// CredentialResolver supplies the http password used to authenticate
// against phoenixd.
type CredentialResolver interface {
	Resolve(ctx context.Context) (string, error)
	Invalidate()
}

type Config struct {
	Host        string
	Port        int
	Credentials CredentialResolver
	HTTPClient  *http.Client
	Dialer      *websocket.Dialer
	Logger      Logger
}

// Client talks to a local phoenixd over its HTTP API. Every call is a single
// request without retries.
type Client struct {
	host        string
	port        int
	credentials CredentialResolver
	http        *http.Client
	dialer      *websocket.Dialer
	log         Logger
}

func NewClient(config *Config) *Client {
	client := &Client{
		host:        config.Host,
		port:        config.Port,
		credentials: config.Credentials,
		http:        config.HTTPClient,
		dialer:      config.Dialer,
	}

	if client.host == "" {
		client.host = DefaultHost
	}

	if client.port == 0 {
		client.port = DefaultPort
	}

	if client.http == nil {
		client.http = http.DefaultClient
	}

	if client.dialer == nil {
		client.dialer = websocket.DefaultDialer
	}

	if config.Logger != nil {
		client.log = config.Logger
	} else {
		client.log = noopLogger{}
	}

	return client
}

func (c *Client) hostPort() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

func (c *Client) url(scheme string, path string) string {
	return fmt.Sprintf("%s://%s%s", scheme, c.hostPort(), path)
}

// form collects the fields of a POST body. Empty values are never sent.
type form struct {
	url.Values
}

func newForm() form {
	return form{url.Values{}}
}

func (f form) set(key string, value string) form {
	if value != "" {
		f.Set(key, value)
	}

	return f
}

func (f form) setInt(key string, value int64) form {
	if value != 0 {
		f.Set(key, strconv.FormatInt(value, 10))
	}

	return f
}

// do issues one request and returns the body of a successful response.
func (c *Client) do(ctx context.Context, op Operation, method string, path string, body *form) ([]byte, error) {
	secret, err := c.credentials.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(body.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url("http", path), reader)
	if err != nil {
		return nil, errors.Errorf("could not create %v request: %w", op, err)
	}

	auth.Apply(req.Header, secret)

	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Errorf("could not reach phoenixd for %v: %w", op, err)
	}

	defer res.Body.Close()

	c.log.Debugf("%v %v - %v", method, path, res.Status)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if res.StatusCode == http.StatusUnauthorized {
			c.log.Warnf("phoenixd rejected the http password, will re-read it on next request")
			c.credentials.Invalidate()
		}

		return nil, &RequestFailed{Operation: op, Status: res.StatusCode}
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Errorf("could not read %v response: %w", op, err)
	}

	return payload, nil
}

type validator interface {
	validate() error
}

func decode(op Operation, payload []byte, v interface{}) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return &DecodeFailed{Operation: op, Err: err}
	}

	if val, ok := v.(validator); ok {
		if err := val.validate(); err != nil {
			return &DecodeFailed{Operation: op, Err: err}
		}
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, op Operation, path string, v interface{}) error {
	payload, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	return decode(op, payload, v)
}

func (c *Client) postJSON(ctx context.Context, op Operation, path string, body form, v interface{}) error {
	payload, err := c.do(ctx, op, http.MethodPost, path, &body)
	if err != nil {
		return err
	}

	return decode(op, payload, v)
}
