package config

import (
	"io"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
)

type SettingsType struct {
	m map[string]SettingType
}

type SettingType struct {
	Description string
	Value       string
	Default     string
}

const DefaultBackgroundImageURL = "https://images.unsplash.com/photo-1655929299728-93ee15ed7967?w=1200"

func NewSettingType(print bool) *SettingsType {
	s := &SettingsType{m: make(map[string]SettingType)}

	s.Set(LISTEN_ADDR, "Server listen address", ":8080")
	s.Set(TLS_ENABLED, "Serve HTTPS with a self-signed certificate when none exists", "false")
	s.Set(TLS_CERT, "TLS certificate path", "certs/server.crt")
	s.Set(TLS_KEY, "TLS private key path", "certs/server.key")
	s.Set(COOKIE_SECURE, "Mark the session cookie Secure", "false")
	s.Set(SESSION_TTL, "Session lifetime", "30m")
	s.Set(EMAIL_DOMAIN, "Domain marker a login email must carry", "@gmail.com")
	s.Set(EMAIL_POLICY, "How the domain marker is matched: suffix or contains", "suffix")
	s.Set(DECORATED_CHROME, "Show the taskbar with identity and logout after sign in", "true")
	s.Set(APP_TITLE, "Title shown in the taskbar", "Agri Dashboard")
	s.Set(BACKGROUND_IMAGE_URL, "Backdrop image url, empty disables it", DefaultBackgroundImageURL)
	s.Set(BACKGROUND_FETCH_TIMEOUT, "Timeout for the backdrop image probe", "5s")
	s.Set(BACKGROUND_CACHE_TTL, "How long a backdrop probe result is reused", "10m")

	if print {
		s.Print(os.Stdout)
	}
	return s
}

func (s *SettingsType) Print(w io.Writer) {
	keys := make([]string, 0, len(s.m))
	for key := range s.m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.Header("KEY", "Description", "value")
	for _, key := range keys {
		setting := s.m[key]
		table.Append([]string{key, setting.Description, setting.Value})
	}
	table.Render()
}

func (s *SettingsType) Get(id string) string {
	return s.m[id].Value
}

func (s *SettingsType) Has(id string) bool {
	return len(s.m[id].Value) > 0
}

func (s *SettingsType) IsTrue(id string) bool {
	return s.m[id].Value == "true"
}

// Duration parses the setting, falling back to its default when the
// configured value is not a valid duration.
func (s *SettingsType) Duration(id string) time.Duration {
	setting := s.m[id]
	if d, err := time.ParseDuration(setting.Value); err == nil {
		return d
	}
	d, _ := time.ParseDuration(setting.Default)
	return d
}

func (s *SettingsType) Set(id string, description string, defaultValue string) {
	if value, ok := os.LookupEnv(id); ok {
		s.m[id] = SettingType{Description: description, Value: value, Default: defaultValue}
	} else {
		s.m[id] = SettingType{Description: description, Value: defaultValue, Default: defaultValue}
	}
}

const (
	LISTEN_ADDR              = "LISTEN_ADDR"
	TLS_ENABLED              = "TLS_ENABLED"
	TLS_CERT                 = "TLS_CERT"
	TLS_KEY                  = "TLS_KEY"
	COOKIE_SECURE            = "COOKIE_SECURE"
	SESSION_TTL              = "SESSION_TTL"
	EMAIL_DOMAIN             = "EMAIL_DOMAIN"
	EMAIL_POLICY             = "EMAIL_POLICY"
	DECORATED_CHROME         = "DECORATED_CHROME"
	APP_TITLE                = "APP_TITLE"
	BACKGROUND_IMAGE_URL     = "BACKGROUND_IMAGE_URL"
	BACKGROUND_FETCH_TIMEOUT = "BACKGROUND_FETCH_TIMEOUT"
	BACKGROUND_CACHE_TTL     = "BACKGROUND_CACHE_TTL"
)
