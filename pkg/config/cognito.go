package config

// CognitoConfig holds the single-tenant user pool and identity pool settings.
type CognitoConfig struct {
	UserPoolID     string
	ClientID       string
	ClientSecret   string
	IdentityPoolID string
	ProfileDataset string
}

func loadCognitoConfig() CognitoConfig {
	return CognitoConfig{
		UserPoolID:     getEnv("COGNITO_USER_POOL_ID", ""),
		ClientID:       getEnv("COGNITO_USER_POOL_CLIENT_ID", ""),
		ClientSecret:   getEnv("COGNITO_USER_POOL_CLIENT_SECRET", ""),
		IdentityPoolID: getEnv("COGNITO_IDENTITY_POOL_ID", ""),
		ProfileDataset: getEnv("COGNITO_USER_PROFILE_DATASET_NAME", ""),
	}
}
