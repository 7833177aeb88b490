//go:generate mockgen -destination mock_httpclient/mock_httpclient.go github.com/anyproto/anytype-push-messaging/httpclient HTTPClient

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"
	htransport "google.golang.org/api/transport/http"

	"github.com/anyproto/anytype-push-messaging/credential"
	"github.com/anyproto/anytype-push-messaging/domain"
)

const CName = "fcm.httpclient"

var log = logger.NewNamed(CName)

func New() HTTPClient {
	return new(httpClient)
}

type HTTPClient interface {
	// PostJSON sends body as json and decodes the response into out. out may be nil.
	PostJSON(ctx context.Context, url string, body any, headers map[string]string, out any) error
	app.Component
}

type httpClient struct {
	client *http.Client
}

func (c *httpClient) Init(a *app.App) (err error) {
	cred := a.MustComponent(credential.CName).(credential.Credential)
	if c.client, _, err = htransport.NewClient(context.Background(), cred.ClientOptions()...); err != nil {
		return fmt.Errorf("create http transport: %w", err)
	}
	return
}

func (c *httpClient) Name() (name string) {
	return CName
}

func (c *httpClient) PostJSON(ctx context.Context, url string, body any, headers map[string]string, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrConnection, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("backend returned error status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return &StatusError{StatusCode: resp.StatusCode, Body: respData}
	}
	if out == nil || len(respData) == 0 {
		return nil
	}
	if err = json.Unmarshal(respData, out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnexpectedResponse, err)
	}
	return nil
}
