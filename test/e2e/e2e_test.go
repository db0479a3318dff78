//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type cfg struct {
	APIBase     string // http://localhost:8080
	MailhogBase string // http://localhost:8025
	WaitEmail   time.Duration
}

func loadCfg() cfg {
	return cfg{
		APIBase:     getenv("E2E_API_BASE", "http://localhost:8080"),
		MailhogBase: getenv("E2E_MAILHOG_BASE", "http://localhost:8025"),
		WaitEmail:   mustParseDur(getenv("E2E_WAIT_EMAIL", "30s")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustParseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

type authResp struct {
	AuthenticationToken string    `json:"authenticationToken"`
	RefreshToken        string    `json:"refreshToken"`
	ExpiresAt           time.Time `json:"expiresAt"`
	Username            string    `json:"username"`
}

type meResp struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

// Mailhog API v2 response, only the fields used here.
type mailhogMessages struct {
	Count    int          `json:"count"`
	Total    int          `json:"total"`
	Start    int          `json:"start"`
	Messages []mailhogMsg `json:"items"`
}
type mailhogMsg struct {
	To      []mailhogPerson `json:"To"`
	Content struct {
		Headers map[string][]string `json:"Headers"`
		Body    string              `json:"Body"`
	} `json:"Content"`
}
type mailhogPerson struct {
	Mailbox string `json:"Mailbox"`
	Domain  string `json:"Domain"`
}

func (p mailhogPerson) Email() string {
	if p.Domain == "" {
		return p.Mailbox
	}
	return p.Mailbox + "@" + p.Domain
}

var tokenRe = regexp.MustCompile(`token=([A-Za-z0-9_\-]+)`)

func send(t *testing.T, method, url string, in, out any, bearer string) int {
	t.Helper()
	var r io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("unmarshal %s: %v; body=%s", url, err, string(body))
		}
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, url string, into any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	all, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(all, into))
}

func waitHealthy(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				return
			}
		}
		time.Sleep(time.Second)
	}
	t.Fatal("api-gateway not healthy")
}

func Test_PasswordReset_EndToEnd(t *testing.T) {
	c := loadCfg()
	waitHealthy(t, c.APIBase)
	api := c.APIBase + "/api/auth"

	suffix := time.Now().UnixNano()
	username := fmt.Sprintf("e2e_%d", suffix)
	email := fmt.Sprintf("e2e_%d@goodcookie.dev", suffix)

	require.Equal(t, 200, send(t, http.MethodPost, api+"/register", map[string]string{
		"username": username, "password": "P@ssw0rd!", "email": email,
	}, nil, ""))

	var login authResp
	require.Equal(t, 200, send(t, http.MethodPost, api+"/login", map[string]string{
		"username": username, "password": "P@ssw0rd!",
	}, &login, ""))
	require.NotEmpty(t, login.AuthenticationToken)

	var me meResp
	require.Equal(t, 200, send(t, http.MethodGet, api+"/me", nil, &me, login.AuthenticationToken))
	require.Equal(t, username, me.Username)

	require.Equal(t, 200, send(t, http.MethodPost, api+"/forgot", map[string]string{"email": email}, nil, ""))

	token := waitResetToken(t, c, email)
	require.Equal(t, 200, send(t, http.MethodPost, api+"/validatePasswordToken/"+token, nil, nil, ""))
	require.Equal(t, 200, send(t, http.MethodPut, api+"/updatePassword", map[string]string{
		"token": token, "newPassword": "N3w-P@ss",
	}, nil, ""))

	require.Equal(t, 401, send(t, http.MethodPost, api+"/login", map[string]string{
		"username": username, "password": "P@ssw0rd!",
	}, nil, ""))
	require.Equal(t, 200, send(t, http.MethodPost, api+"/login", map[string]string{
		"username": username, "password": "N3w-P@ss",
	}, nil, ""))
}

func waitResetToken(t *testing.T, c cfg, email string) string {
	t.Helper()
	deadline := time.Now().Add(c.WaitEmail)
	for time.Now().Before(deadline) {
		for _, m := range fetchMailhog(t, c, email) {
			if !strings.Contains(headerFirst(m.Content.Headers, "Subject"), "Password Reset") {
				continue
			}
			if sub := tokenRe.FindStringSubmatch(m.Content.Body); sub != nil {
				return sub[1]
			}
		}
		time.Sleep(time.Second)
	}
	t.Fatal("reset email didn't arrive in time")
	return ""
}

func fetchMailhog(t *testing.T, c cfg, toEmail string) []mailhogMsg {
	t.Helper()
	var out mailhogMessages
	getJSON(t, c.MailhogBase+"/api/v2/messages", &out)
	var res []mailhogMsg
	for _, m := range out.Messages {
		for _, rcpt := range m.To {
			if strings.EqualFold(rcpt.Email(), toEmail) {
				res = append(res, m)
				break
			}
		}
	}
	return res
}

func headerFirst(h map[string][]string, key string) string {
	for k, v := range h {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}
