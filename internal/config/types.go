package config

// Config holds all configuration for the application.
type Config struct {
	DBName         string
	Port           string
	Turso          TursoConfig
	Slack          SlackConfig
	ProjectID      string
	Redis          RedisConfig
	InitialElo     float64
	AllowedOrigins []string
}
type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type RedisConfig struct {
	URL string
}

// SlackEnabled reports whether outbound Slack notifications are configured.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ChannelID != ""
}
