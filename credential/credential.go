package credential

import (
	"context"
	"fmt"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/transport"
)

const CName = "fcm.credential"

var log = logger.NewNamed(CName)

var scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/firebase.messaging",
}

func New() Credential {
	return new(credential)
}

// Credential authorizes calls to the messaging backend. Its contents are opaque to the callers:
// they only pass the client options on to the transport.
type Credential interface {
	ClientOptions() []option.ClientOption
	ProjectID(ctx context.Context) (string, error)
	app.Component
}

type credential struct {
	opts []option.ClientOption
}

func (c *credential) Init(a *app.App) (err error) {
	conf := a.MustComponent("config").(configSource).GetCredential()
	c.opts = []option.ClientOption{option.WithScopes(scopes...)}
	if conf.File != "" {
		c.opts = append(c.opts, option.WithCredentialsFile(conf.File))
		log.Info("using credentials file", zap.String("file", conf.File))
	} else {
		log.Info("using application default credentials")
	}
	return
}

func (c *credential) Name() (name string) {
	return CName
}

func (c *credential) ClientOptions() []option.ClientOption {
	return c.opts
}

func (c *credential) ProjectID(ctx context.Context) (string, error) {
	creds, err := transport.Creds(ctx, c.opts...)
	if err != nil {
		return "", fmt.Errorf("resolve credentials: %w", err)
	}
	return creds.ProjectID, nil
}
