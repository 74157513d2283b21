package testutil

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// SessionSuite is a testify suite base with a bounded context and a scratch
// directory for config files.
type SessionSuite struct {
	suite.Suite
	ctx     context.Context
	cancel  context.CancelFunc
	tempDir string
}

// SetupSuite runs before all tests in the suite
func (s *SessionSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 2*time.Minute)

	dir, err := os.MkdirTemp("", "tagpool-test-*")
	require.NoError(s.T(), err)
	s.tempDir = dir
}

// TearDownSuite runs after all tests in the suite
func (s *SessionSuite) TearDownSuite() {
	s.cancel()
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

// Context returns the suite context
func (s *SessionSuite) Context() context.Context {
	return s.ctx
}

// TempDir returns the scratch directory
func (s *SessionSuite) TempDir() string {
	return s.tempDir
}

// CreateTempFile writes content under the scratch directory and returns its path.
func (s *SessionSuite) CreateTempFile(name string, content []byte) string {
	path := filepath.Join(s.tempDir, name)
	require.NoError(s.T(), os.WriteFile(path, content, 0o644))
	return path
}
