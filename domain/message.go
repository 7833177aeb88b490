package domain

// Message is a single send request. Exactly one of Token, Topic or Condition addresses it.
type Message struct {
	Data         map[string]string `yaml:"data"`
	Notification *Notification     `yaml:"notification"`
	Android      *AndroidConfig    `yaml:"android"`
	Webpush      map[string]any    `yaml:"webpush"`
	APNS         map[string]any    `yaml:"apns"`
	Token        string            `yaml:"token"`
	Topic        string            `yaml:"topic"`
	Condition    string            `yaml:"condition"`
}

type Notification struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}
