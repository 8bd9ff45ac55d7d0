package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimeengine/internal/config"
	"github.com/hamed0406/uptimeengine/internal/notify"
	"github.com/hamed0406/uptimeengine/internal/probe"
	"github.com/hamed0406/uptimeengine/internal/repo/file"
	"github.com/hamed0406/uptimeengine/internal/repo/memory"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := OpenStore(ctx, config.StoreConfig{Driver: "memory"}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &memory.Store{}, s)
	require.NoError(t, closeFn())

	s, closeFn, err = OpenStore(ctx, config.StoreConfig{Driver: "file", DataDir: filepath.Join(t.TempDir(), "data")}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &file.Store{}, s)
	require.NoError(t, closeFn())

	_, closeFn, err = OpenStore(ctx, config.StoreConfig{Driver: "etcd"}, zap.NewNop())
	require.Error(t, err)
	require.NotNil(t, closeFn)
}

func TestTransport_Selection(t *testing.T) {
	log := zap.NewNop()

	tr, closeFn := Transport(config.NotifyConfig{}, log)
	require.IsType(t, notify.Log{}, tr)
	require.NoError(t, closeFn())

	tr, _ = Transport(config.NotifyConfig{SlackWebhook: "http://127.0.0.1:1/hook"}, log)
	require.IsType(t, &notify.Slack{}, tr)

	tr, closeFn = Transport(config.NotifyConfig{
		SlackWebhook: "http://127.0.0.1:1/hook",
		Twilio:       config.TwilioConfig{AccountSID: "AC1", AuthToken: "t", FromPhone: "+15550000000"},
		Kafka:        config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, Topic: "alerts"},
	}, log)
	multi, ok := tr.(notify.Multi)
	require.True(t, ok)
	require.Len(t, multi, 3)
	require.NoError(t, closeFn())
}

func TestProber(t *testing.T) {
	require.IsType(t, &probe.HTTPProber{}, Prober(config.EngineConfig{}))
	require.IsType(t, &probe.DNSDiagnostics{}, Prober(config.EngineConfig{DNSDiagnostics: true}))
}
