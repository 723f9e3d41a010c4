package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with snake_case JSON keys
// and string durations.
type StructuredJSONConfig struct {
	App struct {
		Version  string `json:"version"`
		BaseURL  string `json:"base_url"`
		LogLevel string `json:"log_level"`
	} `json:"app,omitempty"`

	Auth struct {
		TokenHashKey  string `json:"token_hash_key"`
		StateSignKey  string `json:"state_sign_key"`
		StateIssuer   string `json:"state_issuer"`
		CookieName    string `json:"cookie_name"`
		SecureCookies bool   `json:"secure_cookies"`
		BcryptCost    int    `json:"bcrypt_cost"`
	} `json:"auth,omitempty"`

	OAuth struct {
		GitHub jsonOAuthClient `json:"github"`
		Google jsonOAuthClient `json:"google"`
	} `json:"oauth,omitempty"`

	Email struct {
		ResendAPIKey string   `json:"resend_api_key"`
		ResendURL    string   `json:"resend_url"`
		From         string   `json:"from"`
		Timeout      Duration `json:"timeout"`
	} `json:"email,omitempty"`

	Storage struct {
		DB struct {
			Driver string `json:"driver"`
			DSN    string `json:"dsn"`
		} `json:"db,omitempty"`

		Avatars struct {
			Dir string `json:"dir"`
			S3  struct {
				Endpoint  string `json:"endpoint"`
				Region    string `json:"region"`
				Bucket    string `json:"bucket"`
				AccessKey string `json:"access_key"`
				SecretKey string `json:"secret_key"`
				PublicURL string `json:"public_url"`
			} `json:"s3,omitempty"`
		} `json:"avatars,omitempty"`
	} `json:"storage,omitempty"`

	RateLimit struct {
		Backend string `json:"backend"`
		Redis   struct {
			Addr     string `json:"addr"`
			Password string `json:"password"`
			DB       int    `json:"db"`
			Prefix   string `json:"prefix"`
		} `json:"redis,omitempty"`
	} `json:"rate_limit,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Workers struct {
		GCInterval Duration `json:"gc_interval"`
	} `json:"workers,omitempty"`
}

type jsonOAuthClient struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	s3 := jsonCfg.Storage.Avatars.S3
	redis := jsonCfg.RateLimit.Redis

	cfg := &StructuredConfig{
		App: App{
			Version:  jsonCfg.App.Version,
			BaseURL:  jsonCfg.App.BaseURL,
			LogLevel: jsonCfg.App.LogLevel,
		},
		Auth: Auth{
			TokenHashKey:  jsonCfg.Auth.TokenHashKey,
			StateSignKey:  jsonCfg.Auth.StateSignKey,
			StateIssuer:   jsonCfg.Auth.StateIssuer,
			CookieName:    jsonCfg.Auth.CookieName,
			SecureCookies: jsonCfg.Auth.SecureCookies,
			BcryptCost:    jsonCfg.Auth.BcryptCost,
		},
		OAuth: OAuth{
			GitHub: OAuthClient(jsonCfg.OAuth.GitHub),
			Google: OAuthClient(jsonCfg.OAuth.Google),
		},
		Email: Email{
			ResendAPIKey: jsonCfg.Email.ResendAPIKey,
			ResendURL:    jsonCfg.Email.ResendURL,
			From:         jsonCfg.Email.From,
			Timeout:      time.Duration(jsonCfg.Email.Timeout),
		},
		Storage: Storage{
			DB: DB{
				Driver: jsonCfg.Storage.DB.Driver,
				DSN:    jsonCfg.Storage.DB.DSN,
			},
			Avatars: Avatars{
				Dir: jsonCfg.Storage.Avatars.Dir,
				S3: S3{
					Endpoint:  s3.Endpoint,
					Region:    s3.Region,
					Bucket:    s3.Bucket,
					AccessKey: s3.AccessKey,
					SecretKey: s3.SecretKey,
					PublicURL: s3.PublicURL,
				},
			},
		},
		RateLimit: RateLimit{
			Backend: jsonCfg.RateLimit.Backend,
			Redis: Redis{
				Addr:     redis.Addr,
				Password: redis.Password,
				DB:       redis.DB,
				Prefix:   redis.Prefix,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Workers: Workers{
			GCInterval: time.Duration(jsonCfg.Workers.GCInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
