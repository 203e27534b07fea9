package config

type SMSConfig struct {
	Provider string        `yaml:"provider"` // twilio, aws, none
	Twilio   *TwilioConfig `yaml:"twilio"`
	AWS      *AWSSNSConfig `yaml:"aws"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type AWSSNSConfig struct {
	Region   string `yaml:"region"`
	SenderID string `yaml:"sender_id"`
}

func loadSMSConfig() *SMSConfig {
	return &SMSConfig{
		Provider: getEnv("SMS_PROVIDER", "twilio"),
		Twilio: &TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
		AWS: &AWSSNSConfig{
			Region:   getEnv("AWS_REGION", "us-east-1"),
			SenderID: getEnv("AWS_SNS_SENDER_ID", ""),
		},
	}
}
