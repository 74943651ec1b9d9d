package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Session is the locally saved game membership. A team member holds a
// token; a facilitator holds the facilitator key and join code instead.
type Session struct {
	APIBaseURL     string `json:"api_base_url,omitempty"`
	GameID         string `json:"game_id"`
	TeamID         string `json:"team_id,omitempty"`
	Token          string `json:"token,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	JoinCode       string `json:"join_code,omitempty"`
	FacilitatorKey string `json:"facilitator_key,omitempty"`
}

func (s Session) IsTeam() bool {
	return strings.TrimSpace(s.Token) != ""
}

func (s Session) IsFacilitator() bool {
	return strings.TrimSpace(s.FacilitatorKey) != ""
}

func baseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".agencysim")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func sessionPath() (string, error) {
	dir, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func SaveSession(s Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o600)
}

func LoadSession() (Session, error) {
	path, err := sessionPath()
	if err != nil {
		return Session{}, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(s.GameID) == "" {
		return Session{}, fmt.Errorf("no game found in session")
	}
	return s, nil
}

func ClearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return os.Remove(path)
}
