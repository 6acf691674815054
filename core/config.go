package core

type JWTConfig struct {
	Secret               string `yaml:"secret"`                 // Secret key for signing JWT access tokens
	AccessTokenDuration  int    `yaml:"access_token_duration"`  // Access token lifetime in seconds
	RefreshTokenDuration int    `yaml:"refresh_token_duration"` // Refresh token lifetime in seconds
}

type CryptoConfig struct {
	EncryptionKey string `yaml:"encryption_key"` // 32-byte key for AES-256-GCM token encryption
}

type Config struct {
	JWT    JWTConfig    `yaml:"jwt"`
	Crypto CryptoConfig `yaml:"crypto"`
}
