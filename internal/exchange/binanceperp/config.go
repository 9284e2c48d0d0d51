package binanceperp

// Config carries the per-venue connection settings. APIKey/SecretKey are
// unused by the public endpoints this adapter calls today; they are
// carried so a future signed endpoint doesn't force a config schema break.
type Config struct {
	BaseURL   string
	WSBaseURL string
	APIKey    string
	SecretKey string
}

// NewConfig returns a Config pointed at the mainnet REST and WebSocket
// endpoints, carrying the given credentials.
func NewConfig(apiKey, secretKey string) *Config {
	return &Config{
		BaseURL:   MainnetBaseURL,
		WSBaseURL: MainnetWSBaseURL,
		APIKey:    apiKey,
		SecretKey: secretKey,
	}
}
