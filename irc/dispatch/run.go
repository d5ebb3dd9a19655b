package dispatch

import (
	"context"
	"time"
)

type ConnState int32

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// Connector is a connection that can be opened repeatedly. Connect blocks until the
// connection ends.
type Connector interface {
	Connect() error
	Close()
}

func (e *Engine) State() ConnState {
	return ConnState(e.state.Load())
}

func (e *Engine) setState(s ConnState) {
	if old := ConnState(e.state.Swap(int32(s))); old != s {
		e.log.Debug("Connection state changed", "from", old, "to", s)
	}
}

// Run connects with c and reconnects after a fixed delay until ctx ends. With no reconnect
// delay it returns after the first disconnect.
func (e *Engine) Run(ctx context.Context, c Connector) error {
	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	for {
		e.setState(Connecting)
		err := c.Connect()
		e.setState(Disconnected)

		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			e.log.Error("Connection ended", "error", err)
		}
		if e.reconnectDelay <= 0 {
			return err
		}

		e.log.Info("Reconnecting", "delay", e.reconnectDelay)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(e.reconnectDelay):
		}
	}
}
