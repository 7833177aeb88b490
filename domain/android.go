package domain

const (
	AndroidPriorityHigh   = "high"
	AndroidPriorityNormal = "normal"
)

type AndroidConfig struct {
	CollapseKey           string               `yaml:"collapse_key"`
	Priority              string               `yaml:"priority"`
	TTL                   string               `yaml:"ttl"`
	RestrictedPackageName string               `yaml:"restricted_package_name"`
	Data                  map[string]string    `yaml:"data"`
	Notification          *AndroidNotification `yaml:"notification"`
}

type AndroidNotification struct {
	Title        string   `yaml:"title"`
	Body         string   `yaml:"body"`
	Icon         string   `yaml:"icon"`
	Color        string   `yaml:"color"`
	Sound        string   `yaml:"sound"`
	Tag          string   `yaml:"tag"`
	ClickAction  string   `yaml:"click_action"`
	BodyLocKey   string   `yaml:"body_loc_key"`
	BodyLocArgs  []string `yaml:"body_loc_args"`
	TitleLocKey  string   `yaml:"title_loc_key"`
	TitleLocArgs []string `yaml:"title_loc_args"`
}
