package messaging

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"github.com/anyproto/any-sync/metric"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/anyproto/anytype-push-messaging/credential"
	"github.com/anyproto/anytype-push-messaging/domain"
	"github.com/anyproto/anytype-push-messaging/encoder"
	"github.com/anyproto/anytype-push-messaging/httpclient"
)

const CName = "fcm.messaging"

var log = logger.NewNamed(CName)

const (
	operationSubscribe   = "iid/v1:batchAdd"
	operationUnsubscribe = "iid/v1:batchRemove"
)

var iidHeaders = map[string]string{"access_token_auth": "true"}

var projectIDEnvs = []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT"}

func New() Messaging {
	return new(service)
}

type Messaging interface {
	// Send delivers the message and returns the identifier assigned by the backend.
	// With dryRun the backend only validates the message.
	Send(ctx context.Context, message *domain.Message, dryRun bool) (id string, err error)
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*TopicManagementResponse, error)
	UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*TopicManagementResponse, error)
	app.Component
}

type sendResponse struct {
	Name string `json:"name"`
}

type service struct {
	client  httpclient.HTTPClient
	metric  metricSource
	fcmURL  string
	iidURL  string
	metrics struct {
		sendCount   atomic.Uint32
		topicTokens atomic.Uint32
		duration    *prometheus.SummaryVec
	}
}

func (s *service) Init(a *app.App) (err error) {
	conf := a.MustComponent("config").(configSource).GetMessaging()
	s.client = a.MustComponent(httpclient.CName).(httpclient.HTTPClient)
	cred := a.MustComponent(credential.CName).(credential.Credential)

	projectID := resolveProjectID(conf, cred)
	if projectID == "" {
		return fmt.Errorf("%w: project id is required to access the messaging service; "+
			"set messaging.projectId, use service account credentials or set the GOOGLE_CLOUD_PROJECT env variable",
			domain.ErrConfiguration)
	}
	s.fcmURL = fmt.Sprintf("%s/v1/projects/%s/messages:send", conf.fcmEndpoint(), projectID)
	s.iidURL = conf.iidEndpoint()

	if m, ok := a.Component(metric.CName).(metricSource); ok {
		s.metric = m
		registerMetrics(m.Registry(), s)
	}
	log.Info("messaging initialized", zap.String("projectId", projectID))
	return nil
}

func (s *service) Name() (name string) {
	return CName
}

func resolveProjectID(conf Config, cred credential.Credential) string {
	if conf.ProjectID != "" {
		return conf.ProjectID
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	projectID, err := cred.ProjectID(ctx)
	if err != nil {
		log.Warn("can't resolve project id from credentials", zap.Error(err))
	}
	if projectID != "" {
		return projectID
	}
	for _, env := range projectIDEnvs {
		if projectID = os.Getenv(env); projectID != "" {
			return projectID
		}
	}
	return ""
}

func (s *service) Send(ctx context.Context, message *domain.Message, dryRun bool) (id string, err error) {
	st := time.Now()
	defer func() {
		s.requestLog(ctx, "messaging.send", st, err, zap.Bool("dryRun", dryRun), zap.String("id", id))
	}()
	encoded, err := encoder.Encode(message)
	if err != nil {
		return "", err
	}
	req := map[string]any{"message": encoded}
	if dryRun {
		req["validate_only"] = true
	}
	var resp sendResponse
	if err = s.client.PostJSON(ctx, s.fcmURL, req, nil, &resp); err != nil {
		return "", err
	}
	if resp.Name == "" {
		return "", fmt.Errorf("%w: send response has no message name", domain.ErrUnexpectedResponse)
	}
	s.metrics.sendCount.Add(1)
	return resp.Name, nil
}

func (s *service) SubscribeToTopic(ctx context.Context, tokens []string, topic string) (resp *TopicManagementResponse, err error) {
	st := time.Now()
	defer func() {
		s.requestLog(ctx, "messaging.subscribeToTopic", st, err, zap.String("topic", domain.Topic(topic).Name()), zap.Int("tokens", len(tokens)))
	}()
	return s.makeTopicManagementRequest(ctx, tokens, topic, operationSubscribe)
}

func (s *service) UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (resp *TopicManagementResponse, err error) {
	st := time.Now()
	defer func() {
		s.requestLog(ctx, "messaging.unsubscribeFromTopic", st, err, zap.String("topic", domain.Topic(topic).Name()), zap.Int("tokens", len(tokens)))
	}()
	return s.makeTopicManagementRequest(ctx, tokens, topic, operationUnsubscribe)
}

func (s *service) makeTopicManagementRequest(ctx context.Context, tokens []string, topic, operation string) (*TopicManagementResponse, error) {
	checked, err := encoder.CheckStringList("Tokens", tokens)
	if err != nil {
		return nil, err
	}
	if checked == nil {
		return nil, domain.NewInvalidArgument("Tokens", "must be a non-empty list of strings.")
	}
	for _, token := range tokens {
		if _, err = encoder.CheckString("Tokens", token, true); err != nil {
			return nil, err
		}
	}
	if _, err = encoder.CheckString("Topic", topic, true); err != nil {
		return nil, err
	}
	req := map[string]any{
		"to":                  domain.Topic(topic).Qualified(),
		"registration_tokens": tokens,
	}
	var raw any
	if err = s.client.PostJSON(ctx, s.iidURL+"/"+operation, req, iidHeaders, &raw); err != nil {
		return nil, err
	}
	resp, err := newTopicManagementResponse(raw)
	if err != nil {
		return nil, err
	}
	s.metrics.topicTokens.Add(uint32(len(tokens)))
	log.Info("topic management done",
		zap.String("operation", operation),
		zap.Int("success", resp.SuccessCount()),
		zap.Int("failure", resp.FailureCount()),
	)
	return resp, nil
}

func (s *service) requestLog(ctx context.Context, method string, st time.Time, err error, fields ...zap.Field) {
	dur := time.Since(st)
	if s.metrics.duration != nil {
		s.metrics.duration.WithLabelValues(method).Observe(dur.Seconds())
	}
	fields = append(fields, zap.Error(err))
	if s.metric != nil {
		s.metric.RequestLog(ctx, method, append(fields, metric.TotalDur(dur))...)
		return
	}
	log.Debug(method, append(fields, zap.Duration("dur", dur))...)
}
