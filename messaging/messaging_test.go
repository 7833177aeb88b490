package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/anyproto/anytype-push-messaging/credential"
	"github.com/anyproto/anytype-push-messaging/domain"
	"github.com/anyproto/anytype-push-messaging/httpclient"
	"github.com/anyproto/anytype-push-messaging/httpclient/mock_httpclient"
)

var ctx = context.Background()

const sendURL = "https://fcm.googleapis.com/v1/projects/test-project/messages:send"

// respondWith captures the request body as json and decodes resp into the output argument.
func respondWith(body *string, resp string) func(context.Context, string, any, map[string]string, any) error {
	return func(_ context.Context, _ string, req any, _ map[string]string, out any) error {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		*body = string(data)
		return json.Unmarshal([]byte(resp), out)
	}
}

func TestMessaging_Send(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fx := newFixture(t)
		var body string
		fx.client.EXPECT().PostJSON(ctx, sendURL, gomock.Any(), gomock.Nil(), gomock.Any()).
			DoAndReturn(respondWith(&body, `{"name":"projects/test-project/messages/1"}`))

		id, err := fx.Send(ctx, &domain.Message{Data: map[string]string{"a": "b"}, Token: "t"}, false)
		require.NoError(t, err)
		assert.Equal(t, "projects/test-project/messages/1", id)
		assert.JSONEq(t, `{"message":{"data":{"a":"b"},"token":"t"}}`, body)
	})
	t.Run("dry run", func(t *testing.T) {
		fx := newFixture(t)
		var body string
		fx.client.EXPECT().PostJSON(ctx, sendURL, gomock.Any(), gomock.Nil(), gomock.Any()).
			DoAndReturn(respondWith(&body, `{"name":"projects/test-project/messages/fake"}`))

		id, err := fx.Send(ctx, &domain.Message{
			Topic:        "news",
			Notification: &domain.Notification{Title: "hello"},
		}, true)
		require.NoError(t, err)
		assert.Equal(t, "projects/test-project/messages/fake", id)
		assert.JSONEq(t, `{"message":{"topic":"news","notification":{"title":"hello"}},"validate_only":true}`, body)
	})
	t.Run("invalid message", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.Send(ctx, &domain.Message{Token: "t", Topic: "news"}, false)
		assert.True(t, domain.IsInvalidArgument(err))
		_, err = fx.Send(ctx, nil, false)
		assert.True(t, domain.IsInvalidArgument(err))
	})
	t.Run("transport error", func(t *testing.T) {
		fx := newFixture(t)
		statusErr := &httpclient.StatusError{StatusCode: 503}
		fx.client.EXPECT().PostJSON(ctx, sendURL, gomock.Any(), gomock.Nil(), gomock.Any()).Return(statusErr)

		_, err := fx.Send(ctx, &domain.Message{Token: "t"}, false)
		assert.Same(t, statusErr, err)
	})
	t.Run("no name", func(t *testing.T) {
		fx := newFixture(t)
		var body string
		fx.client.EXPECT().PostJSON(ctx, sendURL, gomock.Any(), gomock.Nil(), gomock.Any()).
			DoAndReturn(respondWith(&body, `{}`))

		_, err := fx.Send(ctx, &domain.Message{Token: "t"}, false)
		assert.True(t, domain.IsUnexpectedResponse(err))
	})
}

func TestMessaging_TopicManagement(t *testing.T) {
	t.Run("subscribe", func(t *testing.T) {
		fx := newFixture(t)
		var body string
		fx.client.EXPECT().PostJSON(ctx, "https://iid.googleapis.com/iid/v1:batchAdd", gomock.Any(), iidHeaders, gomock.Any()).
			DoAndReturn(respondWith(&body, `{"results":[{}, {"error":"NOT_FOUND"}]}`))

		resp, err := fx.SubscribeToTopic(ctx, []string{"t1", "t2"}, "weather")
		require.NoError(t, err)
		assert.JSONEq(t, `{"to":"/topics/weather","registration_tokens":["t1","t2"]}`, body)
		assert.Equal(t, 1, resp.SuccessCount())
		assert.Equal(t, 1, resp.FailureCount())
		assert.Equal(t, []ErrorInfo{{Index: 1, Reason: "NOT_FOUND"}}, resp.Errors())
	})
	t.Run("unsubscribe with prefixed topic", func(t *testing.T) {
		fx := newFixture(t)
		var body string
		fx.client.EXPECT().PostJSON(ctx, "https://iid.googleapis.com/iid/v1:batchRemove", gomock.Any(), iidHeaders, gomock.Any()).
			DoAndReturn(respondWith(&body, `{"results":[{}]}`))

		resp, err := fx.UnsubscribeFromTopic(ctx, []string{"t1"}, "/topics/weather")
		require.NoError(t, err)
		assert.JSONEq(t, `{"to":"/topics/weather","registration_tokens":["t1"]}`, body)
		assert.Equal(t, 1, resp.SuccessCount())
	})
	t.Run("invalid tokens", func(t *testing.T) {
		fx := newFixture(t)
		for _, tokens := range [][]string{nil, {}, {""}, {"t1", ""}} {
			_, err := fx.SubscribeToTopic(ctx, tokens, "weather")
			assert.True(t, domain.IsInvalidArgument(err), fmt.Sprint(tokens))
		}
	})
	t.Run("invalid topic", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.SubscribeToTopic(ctx, []string{"t1"}, "")
		require.True(t, domain.IsInvalidArgument(err))
		assert.EqualError(t, err, "Topic must be a non-empty string.")
	})
	t.Run("unexpected response", func(t *testing.T) {
		fx := newFixture(t)
		var body string
		fx.client.EXPECT().PostJSON(ctx, gomock.Any(), gomock.Any(), iidHeaders, gomock.Any()).
			DoAndReturn(respondWith(&body, `{"error":"bad"}`))

		_, err := fx.SubscribeToTopic(ctx, []string{"t1"}, "weather")
		assert.True(t, domain.IsUnexpectedResponse(err))
	})
	t.Run("transport error", func(t *testing.T) {
		fx := newFixture(t)
		connErr := fmt.Errorf("%w: dial tcp: refused", httpclient.ErrConnection)
		fx.client.EXPECT().PostJSON(ctx, gomock.Any(), gomock.Any(), iidHeaders, gomock.Any()).Return(connErr)

		_, err := fx.UnsubscribeFromTopic(ctx, []string{"t1"}, "weather")
		assert.ErrorIs(t, err, httpclient.ErrConnection)
	})
}

func TestMessaging_Init(t *testing.T) {
	t.Run("project id from credentials", func(t *testing.T) {
		fx := newFixtureWith(t, Config{FCMEndpoint: "http://localhost:1"}, &testCredential{projectID: "cred-project"}, nil)
		assert.Equal(t, "http://localhost:1/v1/projects/cred-project/messages:send", fx.service.fcmURL)
	})
	t.Run("project id from env", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")
		fx := newFixtureWith(t, Config{}, &testCredential{err: errors.New("no credentials")}, nil)
		assert.Equal(t, "https://fcm.googleapis.com/v1/projects/env-project/messages:send", fx.service.fcmURL)
	})
	t.Run("no project id", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "")
		t.Setenv("GCLOUD_PROJECT", "")
		ctrl := gomock.NewController(t)
		client := mock_httpclient.NewMockHTTPClient(ctrl)
		client.EXPECT().Name().Return(httpclient.CName).AnyTimes()
		client.EXPECT().Init(gomock.Any()).AnyTimes()

		a := new(app.App)
		a.Register(&testConfig{}).
			Register(&testCredential{}).
			Register(client).
			Register(New())
		err := a.Start(ctx)
		require.Error(t, err)
		assert.True(t, domain.IsConfiguration(err))
	})
}

func TestMessaging_Metrics(t *testing.T) {
	m := &testMetric{reg: prometheus.NewRegistry()}
	fx := newFixtureWith(t, Config{ProjectID: "test-project"}, &testCredential{}, m)
	var body string
	fx.client.EXPECT().PostJSON(ctx, sendURL, gomock.Any(), gomock.Nil(), gomock.Any()).
		DoAndReturn(respondWith(&body, `{"name":"id"}`))

	_, err := fx.Send(ctx, &domain.Message{Token: "t"}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"messaging.send"}, m.rpcs())
	families, err := m.reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fcm_messaging_send_count")
	assert.Contains(t, names, "fcm_messaging_duration_seconds")
	assert.Equal(t, uint32(1), fx.service.metrics.sendCount.Load())
}

func TestMessaging_TopicRequestLog(t *testing.T) {
	m := &testMetric{reg: prometheus.NewRegistry()}
	fx := newFixtureWith(t, Config{ProjectID: "test-project"}, &testCredential{}, m)
	var body string
	fx.client.EXPECT().PostJSON(ctx, gomock.Any(), gomock.Any(), iidHeaders, gomock.Any()).
		DoAndReturn(respondWith(&body, `{"results":[{}]}`)).Times(2)

	_, err := fx.SubscribeToTopic(ctx, []string{"t1"}, "/topics/weather")
	require.NoError(t, err)
	_, err = fx.UnsubscribeFromTopic(ctx, []string{"t1"}, "weather")
	require.NoError(t, err)

	assert.Equal(t, []string{"messaging.subscribeToTopic", "messaging.unsubscribeFromTopic"}, m.rpcs())
	assert.Equal(t, "weather", m.field(0, "topic").String)
	assert.Equal(t, "weather", m.field(1, "topic").String)
}

func TestMessaging_Concurrent(t *testing.T) {
	fx := newFixture(t)
	fx.client.EXPECT().PostJSON(gomock.Any(), sendURL, gomock.Any(), gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ any, _ map[string]string, out any) error {
			return json.Unmarshal([]byte(`{"name":"id"}`), out)
		}).Times(20)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.Send(ctx, &domain.Message{Token: fmt.Sprintf("t%d", i)}, false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

type fixture struct {
	*service
	client *mock_httpclient.MockHTTPClient
	a      *app.App
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, Config{ProjectID: "test-project"}, &testCredential{}, nil)
}

func newFixtureWith(t *testing.T, conf Config, cred *testCredential, m *testMetric) *fixture {
	ctrl := gomock.NewController(t)
	fx := &fixture{
		service: New().(*service),
		client:  mock_httpclient.NewMockHTTPClient(ctrl),
		a:       new(app.App),
	}
	fx.client.EXPECT().Name().Return(httpclient.CName).AnyTimes()
	fx.client.EXPECT().Init(gomock.Any()).AnyTimes()

	fx.a.Register(&testConfig{Messaging: conf}).
		Register(cred).
		Register(fx.client)
	if m != nil {
		fx.a.Register(m)
	}
	fx.a.Register(fx.service)
	require.NoError(t, fx.a.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, fx.a.Close(ctx))
		ctrl.Finish()
	})
	return fx
}

type testConfig struct {
	Messaging Config
}

func (c *testConfig) Init(a *app.App) (err error) {
	return
}

func (c *testConfig) Name() (name string) {
	return "config"
}

func (c *testConfig) GetMessaging() Config {
	return c.Messaging
}

type testCredential struct {
	projectID string
	err       error
}

func (c *testCredential) Init(a *app.App) (err error) {
	return
}

func (c *testCredential) Name() (name string) {
	return credential.CName
}

func (c *testCredential) ClientOptions() []option.ClientOption {
	return nil
}

func (c *testCredential) ProjectID(ctx context.Context) (string, error) {
	return c.projectID, c.err
}

type testMetric struct {
	reg    *prometheus.Registry
	mu     sync.Mutex
	rpc    []string
	fields [][]zap.Field
}

func (m *testMetric) Init(a *app.App) (err error) {
	return
}

func (m *testMetric) Name() (name string) {
	return metric.CName
}

func (m *testMetric) Registry() *prometheus.Registry {
	return m.reg
}

func (m *testMetric) RequestLog(ctx context.Context, rpc string, fields ...zap.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rpc = append(m.rpc, rpc)
	m.fields = append(m.fields, fields)
}

func (m *testMetric) field(call int, key string) zap.Field {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.fields[call] {
		if f.Key == key {
			return f
		}
	}
	return zap.Skip()
}

func (m *testMetric) rpcs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rpc
}
