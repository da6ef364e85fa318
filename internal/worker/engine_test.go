package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/messaging"
	"github.com/Additional-Code/runner/internal/mocks"
)

func enabledConfig() config.Config {
	cfg := config.Config{}
	cfg.Messaging.Enabled = true
	cfg.Messaging.Workers.Enabled = true
	cfg.Messaging.Workers.Concurrency = 2
	return cfg
}

func TestEngineDispatch(t *testing.T) {
	var seen []string
	engine := NewEngine(Params{
		Client: new(mocks.Publisher),
		Logger: zap.NewNop(),
		Config: enabledConfig(),
		Registrations: []HandlerRegistration{
			{Topic: "orders.status-changed", Handler: func(_ context.Context, msg messaging.Message) error {
				seen = append(seen, string(msg.Value))
				return nil
			}},
			{Topic: "", Handler: func(context.Context, messaging.Message) error { return errors.New("never") }},
		},
	})

	require.NoError(t, engine.dispatch(context.Background(), messaging.Message{Topic: "orders.status-changed", Value: []byte("a")}))
	require.NoError(t, engine.dispatch(context.Background(), messaging.Message{Topic: "unknown", Value: []byte("b")}))

	assert.Equal(t, []string{"a"}, seen)
	assert.Len(t, engine.handlers, 1)
}

func TestEngineStartDisabled(t *testing.T) {
	client := new(mocks.Publisher)
	engine := NewEngine(Params{Client: client, Logger: zap.NewNop(), Config: config.Config{}})

	require.NoError(t, engine.Start(context.Background()))
	require.NoError(t, engine.Stop(context.Background()))
	client.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything)
}

func TestEngineStartStop(t *testing.T) {
	client := new(mocks.Publisher)
	client.On("Consume", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(context.Canceled)

	engine := NewEngine(Params{
		Client: client,
		Logger: zap.NewNop(),
		Config: enabledConfig(),
		Registrations: []HandlerRegistration{
			{Topic: "orders.status-changed", Handler: func(context.Context, messaging.Message) error { return nil }},
		},
	})

	require.NoError(t, engine.Start(context.Background()))
	require.NoError(t, engine.Stop(context.Background()))
	assert.Equal(t, 2, engine.concurrency)
}
