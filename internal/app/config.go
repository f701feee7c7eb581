package app

import (
	"time"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
	"github.com/scaffoldlab/scaffold-backend/internal/services"
	"github.com/scaffoldlab/scaffold-backend/internal/utils"
)

type Config struct {
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	OpenAI          services.OpenAIConfig
	Perusall        services.PerusallConfig
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	return Config{
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		OpenAI: services.OpenAIConfig{
			BaseURL:        utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", log),
			APIKey:         utils.GetEnv("OPENAI_API_KEY", "", log),
			Model:          utils.GetEnv("OPENAI_MODEL", "gpt-4o", log),
			Temperature:    utils.GetEnvAsFloat("OPENAI_TEMPERATURE", 0.2, log),
			TimeoutSeconds: utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 180, log),
			MaxRetries:     utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 4, log),
		},
		Perusall: services.PerusallConfig{
			BaseURL:        utils.GetEnv("PERUSALL_BASE_URL", "https://app.perusall.com/api/v1", log),
			Institution:    utils.GetEnv("PERUSALL_INSTITUTION", "", log),
			APIToken:       utils.GetEnv("PERUSALL_API_TOKEN", "", log),
			TimeoutSeconds: utils.GetEnvAsInt("PERUSALL_TIMEOUT_SECONDS", 30, log),
		},
	}
}
