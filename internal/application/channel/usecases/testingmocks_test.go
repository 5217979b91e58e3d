package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/orris-inc/channelsync/internal/domain/channel"
	"github.com/orris-inc/channelsync/internal/domain/project"
	apperrors "github.com/orris-inc/channelsync/internal/shared/errors"
)

// memChannelRepository keeps channels in memory. Stored channels are
// reconstructed on read so tests observe only persisted state.
type memChannelRepository struct {
	mu        sync.Mutex
	nextID    uint
	rows      map[uint]*channel.Channel
	deleted   []uint
	updateErr error
	updates   int
	// findMisses makes the next FindByAccount calls miss, like a snapshot read
	// that has not seen a concurrent insert.
	findMisses int
}

func newMemChannelRepository() *memChannelRepository {
	return &memChannelRepository{rows: make(map[uint]*channel.Channel)}
}

func cloneChannel(c *channel.Channel) *channel.Channel {
	out, err := channel.ReconstructChannel(
		c.ID(), c.ProjectID(), c.Provider(), c.AccountID(), c.Name(), c.ProfileURL(),
		c.AccessToken(), c.RefreshToken(), c.TokenExpiresAt(), c.FollowerCount(),
		c.IsActive(), c.LastSyncedAt(), c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		panic(err)
	}
	return out
}

func (r *memChannelRepository) Create(_ context.Context, ch *channel.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.ProjectID() == ch.ProjectID() && existing.Provider() == ch.Provider() && existing.AccountID() == ch.AccountID() {
			return channel.ErrChannelExists
		}
	}
	r.nextID++
	if err := ch.SetID(r.nextID); err != nil {
		return err
	}
	r.rows[ch.ID()] = cloneChannel(ch)
	return nil
}

func (r *memChannelRepository) Update(_ context.Context, ch *channel.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.rows[ch.ID()]; !ok {
		return errors.New("channel not found")
	}
	r.updates++
	r.rows[ch.ID()] = cloneChannel(ch)
	return nil
}

func (r *memChannelRepository) UpdateTokens(_ context.Context, ch *channel.Channel, previousAccessToken string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[ch.ID()]
	if !ok || stored.AccessToken() != previousAccessToken {
		return false, nil
	}
	r.updates++
	r.rows[ch.ID()] = rebuildChannel(stored, func(f *channelFields) {
		f.accessToken = ch.AccessToken()
		f.refreshToken = ch.RefreshToken()
		f.tokenExpiresAt = ch.TokenExpiresAt()
		f.updatedAt = ch.UpdatedAt()
	})
	return true, nil
}

func (r *memChannelRepository) DeactivateGrant(_ context.Context, ch *channel.Channel, accessToken string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[ch.ID()]
	if !ok || !stored.IsActive() || stored.AccessToken() != accessToken {
		return false, nil
	}
	r.updates++
	r.rows[ch.ID()] = rebuildChannel(stored, func(f *channelFields) {
		f.active = false
		f.updatedAt = ch.UpdatedAt()
	})
	return true, nil
}

func (r *memChannelRepository) UpdateSyncStats(_ context.Context, ch *channel.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[ch.ID()]
	if !ok {
		return errors.New("channel not found")
	}
	r.updates++
	r.rows[ch.ID()] = rebuildChannel(stored, func(f *channelFields) {
		f.followerCount = ch.FollowerCount()
		f.lastSyncedAt = ch.LastSyncedAt()
		f.updatedAt = ch.UpdatedAt()
	})
	return nil
}

// channelFields are the mutable columns a partial write may touch.
type channelFields struct {
	accessToken    string
	refreshToken   string
	tokenExpiresAt *time.Time
	followerCount  *int64
	active         bool
	lastSyncedAt   *time.Time
	updatedAt      time.Time
}

func rebuildChannel(c *channel.Channel, patch func(*channelFields)) *channel.Channel {
	f := channelFields{
		accessToken:    c.AccessToken(),
		refreshToken:   c.RefreshToken(),
		tokenExpiresAt: c.TokenExpiresAt(),
		followerCount:  c.FollowerCount(),
		active:         c.IsActive(),
		lastSyncedAt:   c.LastSyncedAt(),
		updatedAt:      c.UpdatedAt(),
	}
	patch(&f)
	out, err := channel.ReconstructChannel(
		c.ID(), c.ProjectID(), c.Provider(), c.AccountID(), c.Name(), c.ProfileURL(),
		f.accessToken, f.refreshToken, f.tokenExpiresAt, f.followerCount,
		f.active, f.lastSyncedAt, c.CreatedAt(), f.updatedAt,
	)
	if err != nil {
		panic(err)
	}
	return out
}

// reauthorize simulates a callback for the stored channel landing mid-cycle.
func (r *memChannelRepository) reauthorize(id uint, accessToken, refreshToken string) {
	stored := r.get(id)
	if err := stored.Reauthorize(&channel.TokenGrant{AccessToken: accessToken, RefreshToken: refreshToken}, nil); err != nil {
		panic(err)
	}
	if err := r.Update(context.Background(), stored); err != nil {
		panic(err)
	}
}

func (r *memChannelRepository) GetByID(_ context.Context, id uint) (*channel.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.rows[id]; ok {
		return cloneChannel(ch), nil
	}
	return nil, nil
}

func (r *memChannelRepository) FindByAccount(_ context.Context, projectID uint, provider channel.Provider, accountID string) (*channel.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findMisses > 0 {
		r.findMisses--
		return nil, nil
	}
	for _, ch := range r.rows {
		if ch.ProjectID() == projectID && ch.Provider() == provider && ch.AccountID() == accountID {
			return cloneChannel(ch), nil
		}
	}
	return nil, nil
}

func (r *memChannelRepository) LockByAccount(_ context.Context, projectID uint, provider channel.Provider, accountID string) (*channel.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.rows {
		if ch.ProjectID() == projectID && ch.Provider() == provider && ch.AccountID() == accountID {
			return cloneChannel(ch), nil
		}
	}
	return nil, nil
}

func (r *memChannelRepository) ListActive(_ context.Context) ([]*channel.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*channel.Channel
	for id := uint(1); id <= r.nextID; id++ {
		if ch, ok := r.rows[id]; ok && ch.IsActive() {
			out = append(out, cloneChannel(ch))
		}
	}
	return out, nil
}

func (r *memChannelRepository) ListByProject(_ context.Context, projectID uint) ([]*channel.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*channel.Channel
	for id := uint(1); id <= r.nextID; id++ {
		if ch, ok := r.rows[id]; ok && ch.ProjectID() == projectID {
			out = append(out, cloneChannel(ch))
		}
	}
	return out, nil
}

func (r *memChannelRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *memChannelRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *memChannelRepository) get(id uint) *channel.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.rows[id]; ok {
		return cloneChannel(ch)
	}
	return nil
}

// seed stores a channel as if it had been persisted earlier.
func (r *memChannelRepository) seed(projectID uint, provider channel.Provider, accountID, accessToken, refreshToken string, expiresAt *time.Time) *channel.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	ch, err := channel.ReconstructChannel(
		r.nextID, projectID, provider, accountID, "seeded", "",
		accessToken, refreshToken, expiresAt, nil, true, nil, now, now,
	)
	if err != nil {
		panic(err)
	}
	r.rows[ch.ID()] = ch
	return cloneChannel(ch)
}

type memStatsRepository struct {
	mu        sync.Mutex
	snapshots []*channel.StatsSnapshot
	appendErr error
}

func (r *memStatsRepository) Append(_ context.Context, s *channel.StatsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	s.ID = uint(len(r.snapshots) + 1)
	r.snapshots = append(r.snapshots, s)
	return nil
}

func (r *memStatsRepository) ListByChannel(_ context.Context, channelID uint, limit int) ([]*channel.StatsSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*channel.StatsSnapshot
	for i := len(r.snapshots) - 1; i >= 0; i-- {
		if r.snapshots[i].ChannelID == channelID {
			out = append(out, r.snapshots[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memStatsRepository) forChannel(channelID uint) []*channel.StatsSnapshot {
	out, _ := r.ListByChannel(context.Background(), channelID, 0)
	return out
}

type memPostRepository struct {
	mu     sync.Mutex
	nextID uint
	posts  map[uint]*channel.Post
	stats  []*channel.PostStats
}

func newMemPostRepository() *memPostRepository {
	return &memPostRepository{posts: make(map[uint]*channel.Post)}
}

func (r *memPostRepository) FindByProviderPostID(_ context.Context, channelID uint, providerPostID string) (*channel.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ChannelID == channelID && p.ProviderPostID == providerPostID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPostRepository) Save(_ context.Context, post *channel.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID == 0 {
		r.nextID++
		post.ID = r.nextID
	}
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *memPostRepository) AppendStats(_ context.Context, s *channel.PostStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = uint(len(r.stats) + 1)
	r.stats = append(r.stats, s)
	return nil
}

func (r *memPostRepository) ListByChannel(_ context.Context, channelID uint, limit int) ([]*channel.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*channel.Post
	for id := uint(1); id <= r.nextID; id++ {
		if p, ok := r.posts[id]; ok && p.ChannelID == channelID {
			cp := *p
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// staticProjects owns a fixed set of project ids per user.
type staticProjects struct {
	owners map[uint]string
}

func newStaticProjects(owners map[uint]string) *staticProjects {
	return &staticProjects{owners: owners}
}

func (p *staticProjects) GetOwned(_ context.Context, projectID uint, userID string) (*project.Project, error) {
	owner, ok := p.owners[projectID]
	if !ok || owner != userID {
		return nil, apperrors.NewNotFoundError("project not found")
	}
	return &project.Project{ID: projectID, OwnerID: owner, Name: "test"}, nil
}

func (p *staticProjects) Create(_ context.Context, pr *project.Project) error {
	p.owners[pr.ID] = pr.OwnerID
	return nil
}

type mockAdapter struct {
	mock.Mock
	provider channel.Provider
}

func newMockAdapter(provider channel.Provider) *mockAdapter {
	return &mockAdapter{provider: provider}
}

func (m *mockAdapter) Provider() channel.Provider {
	return m.provider
}

func (m *mockAdapter) AuthorizationURL(state, codeChallenge string) string {
	args := m.Called(state, codeChallenge)
	return args.String(0)
}

func (m *mockAdapter) ExchangeCode(ctx context.Context, code, codeVerifier string) (*channel.TokenGrant, error) {
	args := m.Called(ctx, code, codeVerifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.TokenGrant), args.Error(1)
}

func (m *mockAdapter) Refresh(ctx context.Context, refreshToken string) (*channel.TokenGrant, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.TokenGrant), args.Error(1)
}

func (m *mockAdapter) FetchIdentity(ctx context.Context, accessToken string) (*channel.Identity, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.Identity), args.Error(1)
}

func (m *mockAdapter) FetchFollowerCount(ctx context.Context, accessToken string) (int64, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAdapter) FetchRecentPosts(ctx context.Context, accessToken string) ([]channel.RawPost, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.RawPost), args.Error(1)
}

func (m *mockAdapter) Revoke(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

// mapRegistry serves the adapters it holds. Providers in notConfigured answer
// ErrProviderNotConfigured.
type mapRegistry struct {
	adapters      map[channel.Provider]channel.ProviderAdapter
	notConfigured map[channel.Provider]bool
}

func newMapRegistry(adapters ...channel.ProviderAdapter) *mapRegistry {
	r := &mapRegistry{
		adapters:      make(map[channel.Provider]channel.ProviderAdapter),
		notConfigured: make(map[channel.Provider]bool),
	}
	for _, a := range adapters {
		r.adapters[a.Provider()] = a
	}
	return r
}

func (r *mapRegistry) Adapter(provider channel.Provider) (channel.ProviderAdapter, error) {
	if !provider.IsValid() {
		return nil, channel.ErrUnsupportedProvider
	}
	if a, ok := r.adapters[provider]; ok && !r.notConfigured[provider] {
		return a, nil
	}
	return nil, channel.ErrProviderNotConfigured
}

type mockVerifierStore struct {
	mock.Mock
}

func (m *mockVerifierStore) Store(ctx context.Context, state, codeVerifier string) error {
	args := m.Called(ctx, state, codeVerifier)
	return args.Error(0)
}

func (m *mockVerifierStore) Take(ctx context.Context, state string) (string, bool, error) {
	args := m.Called(ctx, state)
	return args.String(0), args.Bool(1), args.Error(2)
}

// mapVerifierStore is a single-use in-memory verifier store.
type mapVerifierStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMapVerifierStore() *mapVerifierStore {
	return &mapVerifierStore{entries: make(map[string]string)}
}

func (s *mapVerifierStore) Store(_ context.Context, state, codeVerifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[state] = codeVerifier
	return nil
}

func (s *mapVerifierStore) Take(_ context.Context, state string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[state]
	delete(s.entries, state)
	return v, ok, nil
}

type mockSyncTrigger struct {
	mock.Mock
}

func (m *mockSyncTrigger) TriggerSync(channelID uint) {
	m.Called(channelID)
}

// fakeStateCodec always decodes to project 1 owned by user-1.
type fakeStateCodec struct {
	err error
}

func (c fakeStateCodec) Encode(_ uint, userID string) string {
	return "state-" + userID
}

func (c fakeStateCodec) Decode(state string) (uint, string, error) {
	if c.err != nil {
		return 0, "", c.err
	}
	return 1, "user-1", nil
}

// directTx runs fn without a database. AfterCommit hooks run inline.
type directTx struct{}

func (directTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func int64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }
