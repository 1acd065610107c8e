package config

const (
	defaultAgentBaseURL = "http://localhost:8000"
	defaultAgentAppName = "app"
	defaultAgentUserID  = "u_999"
	defaultAgentTimeout = "10m"

	defaultExportOutput   = "meal-plan.pdf"
	defaultExportPageSize = "A4"

	defaultEventStreamTopic = "mealprep.plans"

	defaultServeListen = ":8080"
	defaultServeOrigin = "http://localhost:4200"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Agent: AgentConfig{
			BaseURL:   defaultAgentBaseURL,
			AppName:   defaultAgentAppName,
			UserID:    defaultAgentUserID,
			Streaming: true,
			Timeout:   defaultAgentTimeout,
		},
		Export: ExportConfig{
			Output:   defaultExportOutput,
			PageSize: defaultExportPageSize,
		},
		EventStream: EventStreamConfig{
			Topic: defaultEventStreamTopic,
		},
		Serve: ServeConfig{
			Listen:         defaultServeListen,
			AllowedOrigins: []string{defaultServeOrigin},
		},
	}
}
