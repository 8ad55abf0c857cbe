package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"easy-website/config"
	"easy-website/internal/auth"
	"easy-website/models"
	"easy-website/repository"
)

// mockStore is an in-memory Store for exercising the application logic
// without a database.
type mockStore struct {
	profiles  []models.ProviderProfile
	templates []models.PromptTemplate
	users     []models.User
	tokens    []models.RefreshToken

	// activity is appended from the logActivity goroutine; guard it.
	mu       sync.Mutex
	activity []models.ActivityLog

	nextTokenID int64
	failWith    error
}

func newMockStore() *mockStore {
	return &mockStore{nextTokenID: 1}
}

func (m *mockStore) GetDefaultProfile(ctx context.Context) (*models.ProviderProfile, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var best *models.ProviderProfile
	for i := range m.profiles {
		p := &m.profiles[i]
		if p.IsDefault && (best == nil || !best.IsDefault || p.ID < best.ID) {
			best = p
		}
	}
	if best != nil {
		return best, nil
	}
	for i := range m.profiles {
		p := &m.profiles[i]
		if best == nil || p.ID < best.ID {
			best = p
		}
	}
	return best, nil
}

func (m *mockStore) GetProfile(ctx context.Context, id int64) (*models.ProviderProfile, error) {
	for i := range m.profiles {
		if m.profiles[i].ID == id {
			return &m.profiles[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListProfiles(ctx context.Context) ([]models.ProviderProfile, error) {
	return m.profiles, m.failWith
}

func (m *mockStore) CreateProfile(ctx context.Context, p *models.ProviderProfile) error {
	p.ID = int64(len(m.profiles) + 1)
	m.profiles = append(m.profiles, *p)
	return nil
}

func (m *mockStore) UpdateProfile(ctx context.Context, p *models.ProviderProfile) error {
	for i := range m.profiles {
		if m.profiles[i].ID == p.ID {
			m.profiles[i] = *p
			return nil
		}
	}
	return errNoRows()
}

func (m *mockStore) DeleteProfile(ctx context.Context, id int64) error {
	for i := range m.profiles {
		if m.profiles[i].ID == id {
			m.profiles = append(m.profiles[:i], m.profiles[i+1:]...)
			return nil
		}
	}
	return errNoRows()
}

func (m *mockStore) SetDefaultProfile(ctx context.Context, id int64) error {
	found := false
	for i := range m.profiles {
		m.profiles[i].IsDefault = m.profiles[i].ID == id
		if m.profiles[i].ID == id {
			found = true
		}
	}
	if !found {
		return errNoRows()
	}
	return nil
}

func (m *mockStore) FindTemplate(ctx context.Context, componentType string, templateType models.TemplateType) (*models.PromptTemplate, error) {
	var best *models.PromptTemplate
	for i := range m.templates {
		t := &m.templates[i]
		if t.ComponentType != componentType || t.TemplateType != templateType || !t.Enabled {
			continue
		}
		if best == nil || (t.IsDefault && !best.IsDefault) || (t.IsDefault == best.IsDefault && t.ID < best.ID) {
			best = t
		}
	}
	return best, nil
}

func (m *mockStore) GetTemplate(ctx context.Context, id int64) (*models.PromptTemplate, error) {
	for i := range m.templates {
		if m.templates[i].ID == id {
			return &m.templates[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListTemplates(ctx context.Context) ([]models.PromptTemplate, error) {
	return m.templates, nil
}

func (m *mockStore) CreateTemplate(ctx context.Context, t *models.PromptTemplate) error {
	t.ID = int64(len(m.templates) + 1)
	m.templates = append(m.templates, *t)
	return nil
}

func (m *mockStore) UpdateTemplate(ctx context.Context, t *models.PromptTemplate) error {
	for i := range m.templates {
		if m.templates[i].ID == t.ID {
			m.templates[i] = *t
			return nil
		}
	}
	return errNoRows()
}

func (m *mockStore) DeleteTemplate(ctx context.Context, id int64) error {
	for i := range m.templates {
		if m.templates[i].ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return nil
		}
	}
	return errNoRows()
}

func (m *mockStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].Username == username {
			return &m.users[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) UpdateLastLogin(ctx context.Context, id int64) error {
	now := time.Now()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].LastLogin = &now
		}
	}
	return nil
}

func (m *mockStore) EmailInUse(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	for i := range m.users {
		if m.users[i].Email == email && m.users[i].ID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) UpdateUserProfile(ctx context.Context, id int64, update repository.UserProfileUpdate) error {
	for i := range m.users {
		if m.users[i].ID != id {
			continue
		}
		u := &m.users[i]
		if update.Email != nil {
			u.Email = *update.Email
		}
		if update.FirstName != nil {
			u.FirstName = *update.FirstName
		}
		if update.LastName != nil {
			u.LastName = *update.LastName
		}
		if update.Language != nil {
			u.Language = *update.Language
		}
		if update.PasswordHash != nil {
			u.PasswordHash = *update.PasswordHash
		}
		return nil
	}
	return errNoRows()
}

func (m *mockStore) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	t.ID = m.nextTokenID
	m.nextTokenID++
	t.CreatedAt = time.Now()
	m.tokens = append(m.tokens, *t)
	return nil
}

func (m *mockStore) GetRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	for i := range m.tokens {
		if m.tokens[i].TokenHash == hash {
			return &m.tokens[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) RevokeRefreshToken(ctx context.Context, id int64) error {
	now := time.Now()
	for i := range m.tokens {
		if m.tokens[i].ID == id && m.tokens[i].RevokedAt == nil {
			m.tokens[i].RevokedAt = &now
		}
	}
	return nil
}

func (m *mockStore) MarkRotated(ctx context.Context, oldID, newID int64) error {
	now := time.Now()
	for i := range m.tokens {
		if m.tokens[i].ID == oldID {
			m.tokens[i].RevokedAt = &now
			m.tokens[i].ReplacedByID = &newID
			m.tokens[i].LastUsedAt = &now
		}
	}
	return nil
}

func (m *mockStore) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	now := time.Now()
	for i := range m.tokens {
		if m.tokens[i].TokenHash == hash && m.tokens[i].RevokedAt == nil {
			m.tokens[i].RevokedAt = &now
		}
	}
	return nil
}

func (m *mockStore) InsertActivityLog(ctx context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity = append(m.activity, *entry)
	return nil
}

func (m *mockStore) ListRecentActivity(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]models.ActivityLog, len(m.activity))
	copy(entries, m.activity)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// waitForActivity polls for an activity entry with the given action, since
// audit writes happen on a background goroutine.
func (m *mockStore) waitForActivity(action string) *models.ActivityLog {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		for i := range m.activity {
			if m.activity[i].Action == action {
				entry := m.activity[i]
				m.mu.Unlock()
				return &entry
			}
		}
		m.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockStore) tokenByID(id int64) *models.RefreshToken {
	for i := range m.tokens {
		if m.tokens[i].ID == id {
			return &m.tokens[i]
		}
	}
	return nil
}

func errNoRows() error {
	return fmt.Errorf("mock store: %w", pgx.ErrNoRows)
}

// mockLLM records the prompts it receives and replies with canned content
type mockLLM struct {
	reply   string
	err     error
	prompts []string
	seen    []models.ProviderProfile
}

func (m *mockLLM) ChatCompletion(ctx context.Context, profile *models.ProviderProfile, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.seen = append(m.seen, *profile)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func newTestApp(store Store, llm LLMClient) *App {
	return New(config.NewTestConfig(), store, llm)
}

func seedUser(store *mockStore, username, password string) *models.User {
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		panic(err)
	}
	user := models.User{
		ID:           int64(len(store.users) + 1),
		Username:     username,
		PasswordHash: hash,
		Email:        username + "@example.com",
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	store.users = append(store.users, user)
	return &store.users[len(store.users)-1]
}

func seedProfile(store *mockStore, p models.ProviderProfile) models.ProviderProfile {
	if p.ID == 0 {
		p.ID = int64(len(store.profiles) + 1)
	}
	store.profiles = append(store.profiles, p)
	return p
}

func seedTemplate(store *mockStore, t models.PromptTemplate) models.PromptTemplate {
	if t.ID == 0 {
		t.ID = int64(len(store.templates) + 1)
	}
	store.templates = append(store.templates, t)
	return t
}
