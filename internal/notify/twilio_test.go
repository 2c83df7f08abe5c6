package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "+27100000000",
		BaseURL:    baseURL,
	}
}

func TestNewTwilioClient(t *testing.T) {
	tests := []struct {
		mutate  func(*Config)
		name    string
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(_ *Config) {},
		},
		{
			name:    "missing account sid",
			mutate:  func(c *Config) { c.AccountSID = "" },
			wantErr: true,
		},
		{
			name:    "missing auth token",
			mutate:  func(c *Config) { c.AuthToken = "" },
			wantErr: true,
		},
		{
			name:    "missing sending number",
			mutate:  func(c *Config) { c.From = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("")
			tt.mutate(&cfg)

			client, err := NewTwilioClient(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, defaultTwilioBaseURL, client.baseURL)
		})
	}
}

func TestSend(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer server.Close()

	client, err := NewTwilioClient(testConfig(server.URL))
	require.NoError(t, err)

	err = client.Send(context.Background(), "+27821234567", "Sharp sharp! Your catering order is confirmed.")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, []string{"+27100000000"}, gotForm["From"])
	assert.Equal(t, []string{"+27821234567"}, gotForm["To"])
	assert.Equal(t, []string{"Sharp sharp! Your catering order is confirmed."}, gotForm["Body"])
}

func TestSendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":20003,"message":"Authenticate"}`))
	}))
	defer server.Close()

	client, err := NewTwilioClient(testConfig(server.URL))
	require.NoError(t, err)

	err = client.Send(context.Background(), "+27821234567", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "Authenticate")
	assert.NotContains(t, err.Error(), "secret")
}

func TestSendRequiresDestination(t *testing.T) {
	client, err := NewTwilioClient(testConfig(""))
	require.NoError(t, err)

	err = client.Send(context.Background(), "  ", "hello")
	assert.Error(t, err)
}
