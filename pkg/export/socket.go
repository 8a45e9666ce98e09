package export

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	werrors "github.com/matzehuels/worksite/pkg/errors"
)

// OpenEvent is emitted to ask the architect to open a channel.
const OpenEvent = "open_channel"

// SocketOptions configures a SocketChannel.
type SocketOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
	Logger             *log.Logger
}

// SocketChannel talks to the architect over socket.io. Every Open uses its
// own connection: the channel name is emitted with the payload and the
// architect replies with events named after the channel.
type SocketChannel struct {
	opts SocketOptions
	base string
	path string
}

// NewSocketChannel validates opts.
func NewSocketChannel(opts SocketOptions) (*SocketChannel, error) {
	if err := werrors.ValidateURL(opts.URL); err != nil {
		return nil, err
	}
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "parse architect URL")
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &SocketChannel{
		opts: opts,
		base: fmt.Sprintf("%s://%s", u.Scheme, u.Host),
		path: u.Path,
	}, nil
}

func (c *SocketChannel) connect(ctx context.Context) (*socket.Socket, error) {
	logger := c.opts.Logger.With("url", c.opts.URL)

	opts := socket.DefaultOptions()
	if c.path != "" {
		opts.SetPath(c.path)
	}
	if c.opts.InsecureSkipVerify {
		logger.Warn("skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(c.base, opts)
	sock := manager.Socket(c.opts.Namespace, opts)

	connected := make(chan error, 1)
	sock.Once(types.EventName("connect"), func(...any) {
		logger.Debug("connected", "sid", sock.Id())
		notify(connected, nil)
	})
	sock.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		notify(connected, err)
	})
	sock.Connect()

	select {
	case err := <-connected:
		if err != nil {
			sock.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return sock, nil
	case <-ctx.Done():
		sock.Disconnect()
		return nil, ctx.Err()
	case <-time.After(c.opts.ConnectTimeout):
		sock.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", c.opts.ConnectTimeout)
	}
}

// notify reports the first connection outcome. Later outcomes, such as a
// reconnect after a failed attempt, are dropped without blocking the socket.
func notify(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// Open implements Channel. It connects, emits the payload on the channel and
// blocks until the architect sends a final update or ctx ends.
func (c *SocketChannel) Open(ctx context.Context, name string, p Payload, onUpdate func(Update)) error {
	sock, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer sock.Disconnect()

	updates := make(chan Update)
	done := make(chan struct{})
	defer close(done)
	sock.On(types.EventName(name), func(args ...any) {
		if len(args) == 0 {
			return
		}
		u, err := decodeUpdate(args[0])
		if err != nil {
			c.opts.Logger.Warn("ignoring malformed update", "channel", name, "err", err)
			return
		}
		select {
		case updates <- u:
		case <-done:
		}
	})

	sock.Emit(OpenEvent, map[string]any{"channel": name, "data": p})

	for {
		select {
		case u := <-updates:
			onUpdate(u)
			if u.Final() {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// decodeUpdate converts a decoded socket.io argument into an Update.
func decodeUpdate(arg any) (Update, error) {
	var raw []byte
	switch v := arg.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Update{}, err
		}
		raw = b
	}
	var u Update
	if err := json.Unmarshal(raw, &u); err != nil {
		return Update{}, err
	}
	return u, nil
}
