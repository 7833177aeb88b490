package credential

type configSource interface {
	GetCredential() Config
}

type Config struct {
	// File is a service account json file. Application default credentials are used when empty.
	File string `yaml:"file"`
}
