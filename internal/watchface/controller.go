// Package watchface owns the display state of a face and applies clock,
// battery, connectivity and weather events to it.
package watchface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"watchcore/internal/appmsg"
	"watchcore/internal/battery"
	"watchcore/internal/clock"
	"watchcore/internal/connectivity"
	"watchcore/internal/weather"
)

type BatteryPeeker interface {
	Peek() (int, error)
}

type ConnectionPeeker interface {
	Peek() bool
}

// Sender hands a dictionary to the companion channel. A returned error is an
// immediate failure; later outcomes arrive as OutboxSent / OutboxFailed.
type Sender interface {
	Send(d appmsg.Dict) error
}

type Haptics interface {
	DoublePulse()
}

type Options struct {
	Variant     Variant
	Use24h      bool
	PollMinutes int
	Now         func() time.Time

	Surface    Surface
	Haptics    Haptics
	Channel    Sender
	Battery    BatteryPeeker
	Connection ConnectionPeeker
	Observer   Observer
	Logger     *slog.Logger
}

// Controller is the single writer of DisplayState. All methods must be
// called from one goroutine, normally through Run.
type Controller struct {
	opts     Options
	log      *slog.Logger
	state    DisplayState
	tracker  connectivity.Tracker
	exchange *weather.Exchange
	stats    Stats

	haveTemperature bool
	haveConditions  bool
}

func NewController(opts Options) (*Controller, error) {
	if opts.Surface == nil {
		return nil, errors.New("watchface: surface is required")
	}
	if opts.Variant.Weather != WeatherNone && opts.Channel == nil {
		return nil, fmt.Errorf("watchface: variant %q shows weather but no channel is configured", opts.Variant.Name)
	}
	if opts.Variant.Battery && opts.Battery == nil {
		return nil, fmt.Errorf("watchface: variant %q shows battery but no battery source is configured", opts.Variant.Name)
	}
	if opts.Variant.Connectivity && opts.Connection == nil {
		return nil, fmt.Errorf("watchface: variant %q shows connectivity but no connection source is configured", opts.Variant.Name)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		opts:     opts,
		log:      opts.Logger.With("variant", opts.Variant.Name),
		exchange: weather.NewExchange(opts.PollMinutes),
	}, nil
}

// State returns a copy of the current display state.
func (c *Controller) State() DisplayState {
	return c.state
}

func (c *Controller) Stats() Stats {
	return c.stats
}

// ExchangeState reports whether a weather request is outstanding.
func (c *Controller) ExchangeState() weather.State {
	return c.exchange.State()
}

// Start seeds every field from its source so the first frame is complete,
// then draws it.
func (c *Controller) Start() {
	v := c.opts.Variant
	c.applyTime(c.opts.Now())

	if v.Battery {
		if p, err := c.opts.Battery.Peek(); err != nil {
			c.log.Warn("battery: initial read failed", "error", err)
		} else {
			c.state.BatteryPercent = p
		}
	}

	if v.Connectivity {
		connected := c.opts.Connection.Peek()
		c.state.Connected = connected
		if c.tracker.Seed(connected, v.CheckConnectionAtLoad) {
			c.log.Warn("connectivity: companion unreachable at startup")
			c.pulse()
		}
	}

	c.log.Info("watchface started",
		"time", c.state.Time,
		"battery_percent", c.state.BatteryPercent,
		"connected", c.state.Connected,
	)
	c.render(v.Elements()...)
}

// Run dispatches events in arrival order until ctx is done or events is closed.
func (c *Controller) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Dispatch(ev)
		}
	}
}

func (c *Controller) Dispatch(ev Event) {
	switch e := ev.(type) {
	case Tick:
		c.HandleTick(e.At)
	case BatteryChanged:
		c.HandleBattery(e.Percent)
	case ConnectionChanged:
		c.HandleConnection(e.Connected)
	case InboxReceived:
		c.HandleInbox(e.Dict)
	case InboxDropped:
		c.HandleInboxDropped(e.Reason, e.Err)
	case OutboxSent:
		c.HandleOutboxSent()
	case OutboxFailed:
		c.HandleOutboxFailed(e.Reason, e.Err)
	default:
		c.log.Warn("unhandled event", "type", fmt.Sprintf("%T", ev))
	}
}

// HandleTick refreshes time and date, polls for weather on qualifying
// minutes and redraws the whole face.
func (c *Controller) HandleTick(at time.Time) {
	c.applyTime(at)
	if c.opts.Variant.Weather != WeatherNone && c.exchange.ShouldPoll(at) {
		c.requestWeather(at)
	}
	c.render(c.opts.Variant.Elements()...)
}

func (c *Controller) HandleBattery(percent int) {
	if !c.opts.Variant.Battery {
		return
	}
	c.state.BatteryPercent = percent
	c.render(ElementBattery)
}

func (c *Controller) HandleConnection(connected bool) {
	if !c.opts.Variant.Connectivity {
		return
	}
	alert := c.tracker.Observe(connected)
	changed := c.state.Connected != connected
	c.state.Connected = connected
	if alert {
		c.log.Warn("connectivity: companion lost")
		c.pulse()
	}
	if changed {
		c.log.Info("connectivity changed", "connected", connected)
		c.render(ElementConnectivity)
	}
}

// HandleInbox applies whichever weather fields the message carries. Responses
// are accepted whether or not a request is outstanding.
func (c *Controller) HandleInbox(d appmsg.Dict) {
	now := c.opts.Now()
	sample, err := c.exchange.Receive(d)
	if err != nil {
		c.stats.DecodeFailures++
		c.log.Error("weather: inbound message rejected", "keys", d.Keys(), "error", err)
		c.observe(Record{At: now, Kind: RecordDecodeFailed, Reason: appmsg.ResultMalformed, Detail: err.Error()})
		return
	}

	c.stats.Received++
	if sample.Temperature != nil {
		c.state.Temperature = weather.TemperatureText(*sample.Temperature)
		c.haveTemperature = true
	}
	if sample.Conditions != nil {
		c.state.Conditions = *sample.Conditions
		c.haveConditions = true
	}
	c.log.Info("weather: response applied",
		"temperature", c.state.Temperature,
		"conditions", c.state.Conditions,
		"partial", sample.Temperature == nil || sample.Conditions == nil,
	)
	c.observe(Record{At: now, Kind: RecordReceived, Temperature: sample.Temperature, Conditions: sample.Conditions})

	if c.opts.Variant.Weather != WeatherNone {
		c.render(c.opts.Variant.weatherElements()...)
	}
}

func (c *Controller) HandleInboxDropped(reason appmsg.Result, err error) {
	c.stats.Dropped++
	c.log.Error("weather: inbound message dropped", "reason", reason.String(), "error", err)
	c.observe(Record{At: c.opts.Now(), Kind: RecordDropped, Reason: reason, Detail: errText(err)})
}

func (c *Controller) HandleOutboxSent() {
	c.stats.Sent++
	c.log.Info("weather: request sent")
	c.observe(Record{At: c.opts.Now(), Kind: RecordSent})
}

// HandleOutboxFailed logs the failure. There is no retry before the next poll.
func (c *Controller) HandleOutboxFailed(reason appmsg.Result, err error) {
	c.stats.SendFailures++
	c.exchange.SendFailed()
	c.log.Error("weather: request send failed", "reason", reason.String(), "error", err)
	c.observe(Record{At: c.opts.Now(), Kind: RecordSendFailed, Reason: reason, Detail: errText(err)})
}

func (c *Controller) requestWeather(at time.Time) {
	req, superseded := c.exchange.Begin(at)
	c.stats.Requests++
	if superseded {
		c.stats.Superseded++
		c.log.Warn("weather: previous request unanswered")
		c.observe(Record{At: at, Kind: RecordSuperseded})
	}
	c.observe(Record{At: at, Kind: RecordRequested})
	if err := c.opts.Channel.Send(req); err != nil {
		c.HandleOutboxFailed(appmsg.ResultFor(err), err)
	}
}

func (c *Controller) applyTime(at time.Time) {
	v := c.opts.Variant
	td := clock.Format(at, c.opts.Use24h && !v.Force12h, v.HourPadding)
	c.state.Time = td.Time
	if v.Weekday {
		c.state.Day = td.Day
	}
	if v.Date {
		c.state.Date = td.Date
	}
}

func (c *Controller) pulse() {
	if c.opts.Haptics != nil {
		c.opts.Haptics.DoublePulse()
	}
}

func (c *Controller) observe(r Record) {
	if c.opts.Observer != nil {
		c.opts.Observer.Observe(r)
	}
}

func (c *Controller) render(elements ...Element) {
	if len(elements) == 0 {
		return
	}
	updates := make([]Update, 0, len(elements))
	for _, e := range elements {
		updates = append(updates, c.update(e))
	}
	c.opts.Surface.Render(updates)
}

func (c *Controller) update(e Element) Update {
	u := Update{Element: e}
	switch e {
	case ElementTime:
		u.Text = c.state.Time
	case ElementDay:
		u.Text = c.state.Day
	case ElementDate:
		u.Text = c.state.Date
	case ElementTemperature:
		u.Text = c.state.Temperature
	case ElementConditions:
		u.Text = c.state.Conditions
	case ElementWeather:
		if c.haveTemperature && c.haveConditions {
			u.Text = weather.CombinedLine(c.state.Temperature, c.state.Conditions)
		}
	case ElementBattery:
		bar := battery.Render(c.state.BatteryPercent, c.opts.Variant.BatteryBarWidth)
		u.Bar = &bar
	case ElementConnectivity:
		u.Text = c.opts.Variant.ConnectivityGlyph
		u.Hidden = !connectivity.IndicatorVisible(c.state.Connected)
	}
	return u
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
