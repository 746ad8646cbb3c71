package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var httpTimeout = 5 * time.Second

var errUnauthorized = errors.New("unauthorized")

// sessionCookieName is what the server's auth middleware reads.
const sessionCookieName = "sessionId"

type SessionFile struct {
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
}

type signInBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type meResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
	Status int `json:"status"`
}

// APISignIn posts the credentials and returns the session id captured from
// the Set-Cookie response.
func APISignIn(baseURL, username, password string) (string, error) {
	payload := signInBody{Username: username, Password: password}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+"/auth/sign-in", bytes.NewBuffer(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", errUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sign-in returned %d: %s", resp.StatusCode, readResponseError(resp.Body))
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", errors.New("sign-in response carried no session cookie")
}

// APIGetMe verifies a stored session and returns the signed-in username.
func APIGetMe(baseURL, sessionID string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/user/me", nil)
	if err != nil {
		return "", err
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionID})

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", errUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("me returned %d: %s", resp.StatusCode, readResponseError(resp.Body))
	}
	var parsed meResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.Data.Username, nil
}

func readResponseError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "request failed"
	}
	var parsed map[string]string
	if err := json.Unmarshal(data, &parsed); err == nil {
		if msg, ok := parsed["message"]; ok {
			return msg
		}
	}
	return strings.TrimSpace(string(data))
}

var roomPathPattern = regexp.MustCompile(`/rooms/([^/]+)`)

// ErrNoRoomID is returned when the page URL carries no /rooms/ segment; the
// client must not attempt to join in that case.
var ErrNoRoomID = errors.New("no room id in URL")

// ParseRoomID extracts the room id from a room page URL. The server hands
// out uuid room ids, so anything else is rejected early.
func ParseRoomID(roomURL string) (string, error) {
	parsed, err := url.Parse(roomURL)
	if err != nil {
		return "", err
	}
	match := roomPathPattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", ErrNoRoomID
	}
	if _, err := uuid.Parse(match[1]); err != nil {
		return "", fmt.Errorf("room id %q: %w", match[1], err)
	}
	return match[1], nil
}

// WebsocketURL derives the ws endpoint from the room page URL. The room
// socket lives at /ws on the same host.
func WebsocketURL(roomURL string) (string, error) {
	parsed, err := url.Parse(roomURL)
	if err != nil {
		return "", err
	}
	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %s", parsed.Scheme)
	}
	parsed.Path = "/ws"
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}

// HTTPBaseURL strips the room page URL down to scheme://host for API calls.
func HTTPBaseURL(roomURL string) (string, error) {
	parsed, err := url.Parse(roomURL)
	if err != nil {
		return "", err
	}
	switch parsed.Scheme {
	case "ws":
		parsed.Scheme = "http"
	case "wss":
		parsed.Scheme = "https"
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported scheme %s", parsed.Scheme)
	}
	parsed.Path = ""
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return strings.TrimRight(parsed.String(), "/"), nil
}

func loadSessionFromDisk(path string) (*SessionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var session SessionFile
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	if session.SessionID == "" {
		return nil, errors.New("session file incomplete")
	}
	return &session, nil
}

func saveSessionToDisk(path string, session SessionFile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSession reads a stored session, nil when absent or incomplete.
func LoadSession(path string) *SessionFile {
	session, err := loadSessionFromDisk(path)
	if err != nil {
		return nil
	}
	return session
}

// SaveSession persists the session id for the next run.
func SaveSession(path, username, sessionID string) error {
	return saveSessionToDisk(path, SessionFile{Username: username, SessionID: sessionID})
}
