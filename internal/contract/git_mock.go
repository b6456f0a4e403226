package contract

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockRepoScanner is a mock implementation of the RepoScanner interface.
type MockRepoScanner struct {
	mock.Mock
}

var _ RepoScanner = &MockRepoScanner{} // Compile-time check

// CommitsTouching implements the RepoScanner interface.
func (m *MockRepoScanner) CommitsTouching(ctx context.Context, repoPath, path string, from, to time.Time) ([]string, error) {
	ret := m.Called(ctx, repoPath, path, from, to)
	commits, _ := ret.Get(0).([]string)
	return commits, ret.Error(1)
}

// HeadCommit implements the RepoScanner interface.
func (m *MockRepoScanner) HeadCommit(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	commit, _ := ret.Get(0).(string)
	return commit, ret.Error(1)
}
