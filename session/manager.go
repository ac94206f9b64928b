package session

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	interrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/store"
)

const (
	// DefaultTTL is how long an acquired token is trusted locally,
	// regardless of server-side validity.
	DefaultTTL = 3 * time.Hour

	// DefaultCheckInterval is how often the expiry watcher re-evaluates
	// an authenticated session.
	DefaultCheckInterval = 5 * time.Minute

	networkErrorMsg = "Network error occurred"
)

// Manager is the sole authority for authentication state. It mediates
// between the persistent store, the remote auth endpoint and consumers.
// All methods are safe for concurrent use.
type Manager struct {
	store   store.Store
	api     API
	ttl     time.Duration
	checkIv time.Duration
	nowTime func() time.Time // nowTime function (injectable for testing)
	logger  zerolog.Logger

	mu       sync.Mutex
	status   Status
	token    string
	issuedAt time.Time
	user     *UserIdentity
	profile  Profile

	initOnce sync.Once

	emitMu  sync.Mutex
	subMu   sync.RWMutex
	subs    map[uint64]func(Event)
	nextSub uint64

	watchMu   sync.Mutex
	stopWatch chan struct{}
	watchDone chan struct{}
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

// WithTTL overrides the session time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithCheckInterval overrides the expiry watcher interval.
func WithCheckInterval(iv time.Duration) Option {
	return func(m *Manager) { m.checkIv = iv }
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) { m.nowTime = nowFunc }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New initializes a new Manager with required dependencies. Optional
// configuration can be provided via options. The Manager starts in
// StatusInitializing; call Initialize before reading state.
func New(st store.Store, api API, options ...Option) (*Manager, error) {
	if st == nil {
		return nil, errors.New("[session.New] store is required")
	}
	if api == nil {
		return nil, errors.New("[session.New] api is required")
	}

	m := &Manager{
		store:   st,
		api:     api,
		ttl:     DefaultTTL,
		checkIv: DefaultCheckInterval,
		nowTime: time.Now,
		logger:  zerolog.Nop(),
		status:  StatusInitializing,
		subs:    make(map[uint64]func(Event)),
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Initialize restores the session from the persistent store. It runs at
// most once; later calls are no-ops. It never fails: every failure path
// degrades to StatusUnauthenticated.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() { m.restore(ctx) })
}

func (m *Manager) restore(ctx context.Context) {
	token, found, err := m.store.Get(ctx, store.KeyToken)
	if err != nil {
		m.logger.Warn().Err(err).Msg("store unavailable during restore")
		m.toUnauthenticated()
		return
	}
	if !found || token == "" {
		m.toUnauthenticated()
		return
	}

	issuedAt, ok := m.readLoginTime(ctx)
	if !ok || m.expired(issuedAt) {
		// Expired or unreadable issue time: clear without a network call.
		m.clearStore(ctx)
		m.toUnauthenticated()
		return
	}

	m.setStatus(StatusAuthenticating)

	profile, err := m.api.FetchProfile(ctx, token)
	if err != nil {
		m.logger.Info().Err(err).Msg("stored token rejected, clearing session")
		m.clearStore(ctx)
		m.toUnauthenticated()
		return
	}

	user := IdentityFromProfile(profile)

	m.mu.Lock()
	prev := m.snapshotLocked()
	m.token = token
	m.issuedAt = issuedAt
	m.user = &user
	m.profile = profile
	m.status = StatusAuthenticated
	cur := m.snapshotLocked()
	m.mu.Unlock()
	m.emit(prev, cur)

	m.logger.Debug().Str("user", user.Email).Msg("session restored")
}

// Login exchanges credentials for a token. Expected failures (rejection,
// transport error) are returned in the Result and leave state unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	prevStatus := m.beginAuthenticating()

	grant, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.setStatus(prevStatus)
		return failureResult(err)
	}

	return m.completeGrant(ctx, grant)
}

// Register creates an account. The endpoint returns a token directly, so
// success mirrors Login's success path (auto-login semantics).
func (m *Manager) Register(ctx context.Context, reg Registration) Result {
	prevStatus := m.beginAuthenticating()

	grant, err := m.api.Register(ctx, reg)
	if err != nil {
		m.setStatus(prevStatus)
		return failureResult(err)
	}

	return m.completeGrant(ctx, grant)
}

// completeGrant persists the token, flips to Authenticated and then
// best-effort fetches the profile. A profile fetch failure does not revert
// authentication; the profile stays unset until a later refresh.
func (m *Manager) completeGrant(ctx context.Context, grant *Grant) Result {
	now := m.nowTime()
	if err := m.persistToken(ctx, grant.Token, now); err != nil {
		// Persistence failed: do not hold a session that cannot be
		// restored consistently. Degrade to the safest state.
		m.logger.Error().Err(err).Msg("failed to persist token")
		m.clearStore(ctx)
		m.toUnauthenticated()
		return fail(networkErrorMsg)
	}

	user := grant.User

	m.mu.Lock()
	prev := m.snapshotLocked()
	m.token = grant.Token
	m.issuedAt = now
	m.user = &user
	m.profile = nil
	m.status = StatusAuthenticated
	cur := m.snapshotLocked()
	m.mu.Unlock()
	m.emit(prev, cur)

	if profile, err := m.api.FetchProfile(ctx, grant.Token); err == nil {
		m.setProfile(grant.Token, profile)
	} else {
		m.logger.Debug().Err(err).Msg("profile fetch after login failed")
	}

	return ok()
}

// Logout clears the session locally. It is synchronous and always
// succeeds; server-side token invalidation is the endpoint's concern.
func (m *Manager) Logout() {
	m.clearStore(context.Background())

	m.mu.Lock()
	prev := m.snapshotLocked()
	m.token = ""
	m.issuedAt = time.Time{}
	m.user = nil
	m.profile = nil
	m.status = StatusUnauthenticated
	cur := m.snapshotLocked()
	m.mu.Unlock()
	m.emit(prev, cur)
}

// RefreshProfile re-fetches the profile for the current token. A 401 is
// treated as an implicit logout.
func (m *Manager) RefreshProfile(ctx context.Context) Result {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()
	if token == "" {
		return fail(interrors.ErrNotAuthenticated.Error())
	}

	profile, err := m.api.FetchProfile(ctx, token)
	if err != nil {
		if re, isRemote := AsRemoteError(err); isRemote && re.StatusCode == http.StatusUnauthorized {
			m.logger.Info().Msg("token rejected mid-session, logging out")
			m.Logout()
		}
		return failureResult(err)
	}

	m.setProfile(token, profile)
	return ok()
}

// UpdateProfile patches profile fields on the backend and stores the
// returned profile. A 401 is treated as an implicit logout.
func (m *Manager) UpdateProfile(ctx context.Context, fields map[string]any) Result {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()
	if token == "" {
		return fail(interrors.ErrNotAuthenticated.Error())
	}

	profile, err := m.api.UpdateProfile(ctx, token, fields)
	if err != nil {
		if re, isRemote := AsRemoteError(err); isRemote && re.StatusCode == http.StatusUnauthorized {
			m.logger.Info().Msg("token rejected mid-session, logging out")
			m.Logout()
		}
		return failureResult(err)
	}

	m.setProfile(token, profile)
	return ok()
}

// Snapshot returns an immutable copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Status returns the current lifecycle status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Token returns the current bearer token, if one is held.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

// AuthHeader returns the value for the Authorization header on authorized
// requests, e.g. "Token abc123".
func (m *Manager) AuthHeader() (string, bool) {
	token, held := m.Token()
	if !held {
		return "", false
	}
	return "Token " + token, true
}

// IsExpired reports whether the held token has outlived the TTL. A session
// without a token counts as expired.
func (m *Manager) IsExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return true
	}
	return m.expired(m.issuedAt)
}

// Subscribe registers an observer for state transitions and returns its
// unsubscribe function. Observers are invoked synchronously in
// subscription order; they must not call back into the Manager.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// StartWatcher launches the background expiry checker. It returns
// ErrAlreadyStarted if the watcher is already running.
func (m *Manager) StartWatcher() error {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	if m.stopWatch != nil {
		return interrors.ErrAlreadyStarted
	}
	m.stopWatch = make(chan struct{})
	m.watchDone = make(chan struct{})
	go m.watch(m.stopWatch, m.watchDone)
	return nil
}

// Close stops the expiry watcher, waiting for it to exit. It is safe to
// call multiple times and without a running watcher.
func (m *Manager) Close() error {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	if m.stopWatch == nil {
		return nil
	}
	close(m.stopWatch)
	<-m.watchDone
	m.stopWatch = nil
	m.watchDone = nil
	return nil
}

func (m *Manager) watch(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.checkIv)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.CheckExpiry(context.Background())
		}
	}
}

// CheckExpiry expires the session if the TTL has elapsed. The watcher
// calls this periodically; it is exported so embedders without a watcher
// goroutine can drive the check themselves.
func (m *Manager) CheckExpiry(ctx context.Context) {
	m.mu.Lock()
	if m.status != StatusAuthenticated || !m.expired(m.issuedAt) {
		m.mu.Unlock()
		return
	}
	prev := m.snapshotLocked()
	m.token = ""
	m.issuedAt = time.Time{}
	m.user = nil
	m.profile = nil
	m.status = StatusExpired
	mid := m.snapshotLocked()
	m.mu.Unlock()
	m.emit(prev, mid)

	m.logger.Info().Msg("session TTL elapsed, logging out")
	m.clearStore(ctx)

	m.setStatus(StatusUnauthenticated)
}

// beginAuthenticating flips to StatusAuthenticating and returns the status
// to restore should the attempt fail.
func (m *Manager) beginAuthenticating() Status {
	m.mu.Lock()
	prevStatus := m.status
	prev := m.snapshotLocked()
	m.status = StatusAuthenticating
	cur := m.snapshotLocked()
	m.mu.Unlock()
	m.emit(prev, cur)
	return prevStatus
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	if m.status == s {
		m.mu.Unlock()
		return
	}
	prev := m.snapshotLocked()
	m.status = s
	cur := m.snapshotLocked()
	m.mu.Unlock()
	m.emit(prev, cur)
}

func (m *Manager) toUnauthenticated() {
	m.mu.Lock()
	prev := m.snapshotLocked()
	m.token = ""
	m.issuedAt = time.Time{}
	m.user = nil
	m.profile = nil
	m.status = StatusUnauthenticated
	cur := m.snapshotLocked()
	m.mu.Unlock()
	m.emit(prev, cur)
}

// setProfile records a fetched profile, but only if the token it was
// fetched with is still the current one. A stale fetch that completes
// after a logout or re-login must not resurrect old profile data.
func (m *Manager) setProfile(token string, profile Profile) {
	m.mu.Lock()
	if m.token != token {
		m.mu.Unlock()
		return
	}
	prev := m.snapshotLocked()
	m.profile = profile
	cur := m.snapshotLocked()
	m.mu.Unlock()
	m.emit(prev, cur)
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:   m.status,
		Token:    m.token,
		IssuedAt: m.issuedAt,
		Profile:  m.profile.Clone(),
	}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	snap.ProfileIncomplete = m.status == StatusAuthenticated && m.profile == nil
	return snap
}

func (m *Manager) expired(issuedAt time.Time) bool {
	if issuedAt.IsZero() {
		return true
	}
	return m.nowTime().Sub(issuedAt) > m.ttl
}

func (m *Manager) persistToken(ctx context.Context, token string, issuedAt time.Time) error {
	if err := m.store.Set(ctx, store.KeyToken, token); err != nil {
		return errors.Wrap(err, "[Manager.persistToken] store token")
	}
	millis := strconv.FormatInt(issuedAt.UnixMilli(), 10)
	if err := m.store.Set(ctx, store.KeyLoginTime, millis); err != nil {
		return errors.Wrap(err, "[Manager.persistToken] store login time")
	}
	return nil
}

func (m *Manager) readLoginTime(ctx context.Context) (time.Time, bool) {
	raw, found, err := m.store.Get(ctx, store.KeyLoginTime)
	if err != nil || !found {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

func (m *Manager) clearStore(ctx context.Context) {
	if err := m.store.Delete(ctx, store.KeyToken); err != nil {
		m.logger.Warn().Err(err).Msg("failed to clear stored token")
	}
	if err := m.store.Delete(ctx, store.KeyLoginTime); err != nil {
		m.logger.Warn().Err(err).Msg("failed to clear stored login time")
	}
}

func (m *Manager) emit(prev, cur Snapshot) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	m.subMu.RLock()
	ids := make([]uint64, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subMu.RUnlock()

	event := Event{Previous: prev, Current: cur, At: m.nowTime()}
	for _, fn := range fns {
		fn(event)
	}
}

// failureResult maps an API error to a Result: server-provided message for
// rejections, a generic message for transport failures.
func failureResult(err error) Result {
	if re, isRemote := AsRemoteError(err); isRemote && re.Message != "" {
		return fail(re.Message)
	}
	return fail(networkErrorMsg)
}
