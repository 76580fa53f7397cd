// Package mqtt carries encoded app-message dictionaries between a watch and
// its companion over an MQTT broker.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"watchcore/internal/appmsg"
)

const (
	qos            = byte(1)
	defaultTimeout = 5 * time.Second
)

var errStopped = errors.New("channel stopped")

type Options struct {
	Broker   string
	Port     int
	ClientID string

	// SubscribeTopic receives inbound dictionaries; PublishTopic carries outbound ones.
	SubscribeTopic string
	PublishTopic   string

	InboxSize  int
	OutboxSize int

	// SendTimeout bounds how long a publish may wait for the broker ack.
	SendTimeout time.Duration
}

// Handlers are invoked from paho's goroutines and must not block for long.
type Handlers struct {
	OnReceived         func(d appmsg.Dict)
	OnDropped          func(reason appmsg.Result, err error)
	OnSent             func()
	OnFailed           func(reason appmsg.Result, err error)
	OnConnectionChange func(connected bool)
}

type Channel struct {
	client   mqtt.Client
	opts     Options
	handlers Handlers
	logger   *slog.Logger

	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewChannel(opts Options, handlers Handlers, logger *slog.Logger) (*Channel, error) {
	if opts.SubscribeTopic == "" || opts.PublishTopic == "" {
		return nil, fmt.Errorf("mqtt: subscribe and publish topics are required")
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultTimeout
	}

	c := &Channel{
		opts:     opts,
		handlers: handlers,
		logger:   logger.With("component", "mqtt"),
		stopCh:   make(chan struct{}),
	}

	co := mqtt.NewClientOptions()
	co.AddBroker(fmt.Sprintf("tcp://%s:%d", opts.Broker, opts.Port))
	co.SetClientID(opts.ClientID)

	co.SetCleanSession(true)
	co.SetAutoReconnect(true)
	co.SetConnectRetry(true)
	co.SetConnectRetryInterval(5 * time.Second)
	co.SetMaxReconnectInterval(60 * time.Second)

	co.SetKeepAlive(30 * time.Second)
	co.SetPingTimeout(10 * time.Second)

	co.SetOnConnectHandler(func(_ mqtt.Client) {
		c.logger.Info("mqtt connected", "broker", opts.Broker, "port", opts.Port)
		// clean sessions drop subscriptions on reconnect
		go func() {
			if err := c.subscribe(); err != nil {
				c.logger.Error("mqtt subscribe failed", "topic", opts.SubscribeTopic, "error", err)
				return
			}
			c.setConnected(true)
		}()
	})

	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.logger.Warn("mqtt connection lost", "error", err)
		c.setConnected(false)
	})

	c.client = mqtt.NewClient(co)
	return c, nil
}

// Connect waits for the initial broker connection and inbox subscription.
// It respects ctx and Disconnect; later reconnects happen in the background.
func (c *Channel) Connect(ctx context.Context) error {
	if err := c.waitStop(ctx); err != nil {
		return err
	}
	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			break
		}
		if err := c.waitStop(ctx); err != nil {
			return err
		}
	}

	// connected once the OnConnect subscription lands
	for !c.IsConnected() {
		if err := c.waitStop(ctx); err != nil {
			return err
		}
		time.Sleep(poll / 4)
	}
	return nil
}

func (c *Channel) waitStop(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopCh:
		return errStopped
	default:
		return nil
	}
}

func (c *Channel) subscribe() error {
	token := c.client.Subscribe(c.opts.SubscribeTopic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		c.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(c.opts.SendTimeout) {
		return fmt.Errorf("subscribe timeout for topic %s", c.opts.SubscribeTopic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.opts.SubscribeTopic, err)
	}
	c.logger.Info("subscribed to mqtt topic", "topic", c.opts.SubscribeTopic, "qos", qos)
	return nil
}

// Send encodes d and publishes it without waiting for the broker. A nil
// return means the message is in flight; its outcome arrives through
// OnSent or OnFailed.
func (c *Channel) Send(d appmsg.Dict) error {
	select {
	case <-c.stopCh:
		return appmsg.ErrClosed
	default:
	}
	if !c.IsConnected() {
		return appmsg.ErrNotConnected
	}

	data, err := appmsg.Encode(d, c.opts.OutboxSize)
	if err != nil {
		return err
	}

	token := c.client.Publish(c.opts.PublishTopic, qos, false, data)
	go c.awaitPublish(token, len(data))
	return nil
}

func (c *Channel) awaitPublish(token mqtt.Token, size int) {
	if !token.WaitTimeout(c.opts.SendTimeout) {
		c.logger.Warn("publish timed out", "topic", c.opts.PublishTopic, "timeout", c.opts.SendTimeout)
		if c.handlers.OnFailed != nil {
			c.handlers.OnFailed(appmsg.ResultSendTimeout, appmsg.ErrSendTimeout)
		}
		return
	}
	if err := token.Error(); err != nil {
		c.logger.Error("publish failed", "topic", c.opts.PublishTopic, "error", err)
		if c.handlers.OnFailed != nil {
			c.handlers.OnFailed(appmsg.ResultFor(err), err)
		}
		return
	}
	c.logger.Debug("published dictionary", "topic", c.opts.PublishTopic, "size", size)
	if c.handlers.OnSent != nil {
		c.handlers.OnSent()
	}
}

func (c *Channel) handleMessage(topic string, payload []byte) {
	c.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	d, err := appmsg.Decode(payload, c.opts.InboxSize)
	if err != nil {
		c.logger.Warn("dropping inbound message", "topic", topic, "size", len(payload), "error", err)
		if c.handlers.OnDropped != nil {
			c.handlers.OnDropped(appmsg.ResultFor(err), err)
		}
		return
	}

	if c.handlers.OnReceived != nil {
		c.handlers.OnReceived(d)
	}
}

// IsConnected reports whether the broker link is up and subscribed.
func (c *Channel) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client.IsConnected()
}

// Peek is the connectivity reading used to seed a face at startup.
func (c *Channel) Peek() bool {
	return c.IsConnected()
}

// Disconnect stops the channel. It is idempotent; after it, Connect and Send fail.
func (c *Channel) Disconnect() {
	c.stopOnce.Do(func() { close(c.stopCh) })

	if c.client != nil {
		if c.client.IsConnected() {
			c.client.Unsubscribe(c.opts.SubscribeTopic).WaitTimeout(2 * time.Second)
		}
		c.client.Disconnect(250)
	}

	c.setConnected(false)
	c.logger.Info("mqtt disconnected")
}

func (c *Channel) setConnected(v bool) {
	c.mu.Lock()
	changed := c.connected != v
	c.connected = v
	c.mu.Unlock()

	if changed && c.handlers.OnConnectionChange != nil {
		c.handlers.OnConnectionChange(v)
	}
}
