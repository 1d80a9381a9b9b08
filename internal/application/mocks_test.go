package application_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

// --- Mock implementations ---

// mockAdminStore is an in-memory AdminStore. InsertFirst holds the mutex
// across the emptiness check and the append, like the real adapters.
type mockAdminStore struct {
	mu     sync.Mutex
	admins []model.Administrator
	err    error // returned by every method when set
}

var _ driven.AdminStore = (*mockAdminStore)(nil)

func (m *mockAdminStore) FindByUsername(_ context.Context, username string) (*model.Administrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.admins {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *mockAdminStore) FindByID(_ context.Context, id uuid.UUID) (*model.Administrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.admins {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *mockAdminStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return len(m.admins), nil
}

func (m *mockAdminStore) Insert(_ context.Context, admin model.Administrator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(admin)
}

func (m *mockAdminStore) InsertFirst(_ context.Context, admin model.Administrator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if len(m.admins) > 0 {
		return driven.ErrNotEmpty
	}
	return m.insertLocked(admin)
}

func (m *mockAdminStore) insertLocked(admin model.Administrator) error {
	if m.err != nil {
		return m.err
	}
	for _, a := range m.admins {
		if a.Username == admin.Username {
			return driven.ErrUsernameTaken
		}
	}
	m.admins = append(m.admins, admin)
	return nil
}

// mockHasher "hashes" by prefixing, and counts Verify/Equalize calls so tests
// can check that both login failure paths do the same work.
type mockHasher struct {
	hashErr   error
	verifies  atomic.Int32
	equalizes atomic.Int32
}

func (h *mockHasher) Hash(plaintext string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (h *mockHasher) Verify(plaintext, hash string) bool {
	h.verifies.Add(1)
	stored, ok := strings.CutPrefix(hash, "hashed:")
	return ok && stored == plaintext
}

func (h *mockHasher) Equalize(_ string) {
	h.equalizes.Add(1)
}

type mockGitHubClient struct {
	fetch func(ctx context.Context, username string) ([]model.ShowcaseRepo, error)
}

func (m *mockGitHubClient) FetchPublicRepos(ctx context.Context, username string) ([]model.ShowcaseRepo, error) {
	return m.fetch(ctx, username)
}

type mockShowcaseStore struct {
	mu       sync.Mutex
	repos    []model.ShowcaseRepo
	replaces int
	err      error
}

func (m *mockShowcaseStore) ReplaceAll(_ context.Context, repos []model.ShowcaseRepo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.replaces++
	m.repos = append([]model.ShowcaseRepo(nil), repos...)
	return nil
}

func (m *mockShowcaseStore) ListAll(_ context.Context) ([]model.ShowcaseRepo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.repos, nil
}

var errBoom = errors.New("boom")
