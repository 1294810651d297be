package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// FindEnvTest walks up from the working directory looking for filename
// (".env" when empty) and returns the first match.
func FindEnvTest(filename string) (string, error) {
	if filename == "" {
		filename = ".env"
	}
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}
	curr, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(curr, filename)
		if _, err = os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(curr)
		if parent == curr {
			return "", os.ErrNotExist
		}
		curr = parent
	}
}

// Addr returns host:port for the API server.
func (s *Server) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// BaseURL returns scheme://host:port.
func (s *Server) BaseURL() string {
	return s.Scheme + "://" + s.Addr()
}
