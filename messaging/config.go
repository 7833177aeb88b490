package messaging

const (
	defaultFCMEndpoint = "https://fcm.googleapis.com"
	defaultIIDEndpoint = "https://iid.googleapis.com"
)

type configSource interface {
	GetMessaging() Config
}

type Config struct {
	ProjectID   string `yaml:"projectId"`
	FCMEndpoint string `yaml:"fcmEndpoint"`
	IIDEndpoint string `yaml:"iidEndpoint"`
}

func (c Config) fcmEndpoint() string {
	if c.FCMEndpoint != "" {
		return c.FCMEndpoint
	}
	return defaultFCMEndpoint
}

func (c Config) iidEndpoint() string {
	if c.IIDEndpoint != "" {
		return c.IIDEndpoint
	}
	return defaultIIDEndpoint
}
