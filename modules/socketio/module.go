// Package socketio provides a handler that connects to a Socket.IO server,
// optionally emits an event, and returns either the server's acknowledgement
// of that event or the payload of the first event it is told to wait for.
package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/handlers"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultTimeout = 10 * time.Second

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input is the decoded task input of the socketio handler.
type Input struct {
	URL                string
	Namespace          string
	OnEvent            string
	EmitEvent          string
	EmitData           any
	WaitForAck         bool
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value any
	err   error
}

// ParseInput reads an Input from a task's structured input. `url` is
// required. `on_event` is required unless `wait_for_ack` is set, which in
// turn needs `emit_event`.
func ParseInput(in any) (*Input, error) {
	args, err := handlers.ArgsOf(in)
	if err != nil {
		return nil, err
	}

	input := &Input{EmitData: args["emit_data"]}
	if input.URL, err = args.RequiredString("url"); err != nil {
		return nil, err
	}
	if input.WaitForAck, err = args.Bool("wait_for_ack", false); err != nil {
		return nil, err
	}
	if input.Namespace, err = args.String("namespace", "/"); err != nil {
		return nil, err
	}
	if input.EmitEvent, err = args.String("emit_event", ""); err != nil {
		return nil, err
	}
	if input.WaitForAck {
		if input.EmitEvent == "" {
			return nil, errors.New(`field "wait_for_ack" needs "emit_event"`)
		}
		if input.OnEvent, err = args.String("on_event", ""); err != nil {
			return nil, err
		}
	} else if input.OnEvent, err = args.RequiredString("on_event"); err != nil {
		return nil, err
	}
	if input.Timeout, err = args.Duration("timeout", defaultTimeout); err != nil {
		return nil, err
	}
	if input.InsecureSkipVerify, err = args.Bool("insecure_skip_verify", false); err != nil {
		return nil, err
	}
	return input, nil
}

// OnRunSocketIO is the handler body registered as "socketio".
func OnRunSocketIO(ctx context.Context, in any) (any, error) {
	input, err := ParseInput(in)
	if err != nil {
		return nil, fmt.Errorf("socketio: %w", err)
	}

	logger := ctxlog.FromContext(ctx).With("url", input.URL, "on_event", input.OnEvent, "emit_event", input.EmitEvent, "wait_for_ack", input.WaitForAck)
	logger.Debug("Handler started.")
	defer logger.Debug("Handler finished.")

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	finish := func(res opResult) {
		select {
		case done <- res:
		default:
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, input.Timeout)
	defer cancel()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client.")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected.", "namespace", input.Namespace, "sid", io.Id())
		if input.EmitEvent == "" {
			return
		}
		var emitArgs []any
		if input.EmitData != nil {
			emitArgs = append(emitArgs, input.EmitData)
		}
		jsonData, _ := json.Marshal(input.EmitData)
		logger.Info("Emitting event.", "event", input.EmitEvent, "data", string(jsonData))
		if !input.WaitForAck {
			io.Emit(input.EmitEvent, emitArgs...)
			return
		}
		io.EmitWithAck(input.EmitEvent, emitArgs...)(func(reply []any, err error) {
			finish(ackResult(reply, err))
		})
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("connection failed: %w", e)
			}
		}
		finish(opResult{err: err})
	})

	if input.OnEvent != "" {
		io.On(types.EventName(input.OnEvent), func(data ...any) {
			var responseData any
			if len(data) > 0 {
				responseData = data[0]
			}
			finish(opResult{value: responseData})
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			if input.WaitForAck && input.OnEvent == "" {
				return nil, fmt.Errorf("timed out after connecting while waiting for ack of '%s'", input.EmitEvent)
			}
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", input.OnEvent)
		}
		return nil, errors.New("timed out while waiting for initial connection")
	case res := <-done:
		return res.value, res.err
	}
}

// ackResult turns an acknowledgement callback into a handler result: the
// first reply argument, or nil when the server acknowledged without data.
func ackResult(reply []any, err error) opResult {
	if err != nil {
		return opResult{err: fmt.Errorf("acknowledgement failed: %w", err)}
	}
	if len(reply) == 0 {
		return opResult{}
	}
	return opResult{value: reply[0]}
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("socketio", OnRunSocketIO)
}
