package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

type stubAccountRepo struct {
	accounts map[string]*domain.Account
	proCalls int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.accounts[a.ID] = cloneAccount(a)
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) SetPro(_ context.Context, id string, pro bool) error {
	r.proCalls++
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Pro = pro
	return nil
}

type stubSessionStore struct {
	sessions map[string]*domain.Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, sess *domain.Session) error {
	clone := *sess
	s.sessions[sess.ID] = &clone
	return nil
}

func (s *stubSessionStore) Load(_ context.Context, id string) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *stubSessionStore) Clear(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type sessionFixture struct {
	svc       *SessionService
	accounts  *stubAccountRepo
	durable   *stubSessionStore
	ephemeral *stubSessionStore
}

func newSessionFixture() sessionFixture {
	f := sessionFixture{
		accounts:  newStubAccountRepo(),
		durable:   newStubSessionStore(),
		ephemeral: newStubSessionStore(),
	}
	f.svc = NewSessionService(f.accounts, f.durable, f.ephemeral, "secret", time.Hour, zerolog.Nop())
	return f
}

func TestSessionService_SignIn_Permissive(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.svc.SignIn(context.Background(), "", "alice@example.com", "123456")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if sess.Tier != domain.TierMember {
		t.Fatalf("expected member, got %s", sess.Tier)
	}
	if sess.ID == "" {
		t.Fatalf("expected a session id to be assigned")
	}
	if sess.Account == nil || sess.Account.Name != "alice" || sess.Account.Role != domain.RoleTrader {
		t.Fatalf("unexpected account: %+v", sess.Account)
	}
	if _, ok := f.durable.sessions[sess.ID]; !ok {
		t.Fatalf("member session must be persisted")
	}
}

func TestSessionService_SignIn_Rejects(t *testing.T) {
	f := newSessionFixture()
	cases := []struct{ email, password string }{
		{"no-at-sign", "123456"},
		{"@example.com", "123456"},
		{"bob@example.com", "12345"},
	}
	for _, tc := range cases {
		if _, err := f.svc.SignIn(context.Background(), "", tc.email, tc.password); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("SignIn(%q, %q): expected ErrInvalidCredentials, got %v", tc.email, tc.password, err)
		}
	}
}

func TestSessionService_SignIn_DemoAccount(t *testing.T) {
	f := newSessionFixture()
	sess, err := f.svc.SignIn(context.Background(), "", "demo@aitrader.com", "demo123")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if sess.Account.Name != "Demo User" {
		t.Fatalf("expected Demo User, got %q", sess.Account.Name)
	}
}

func TestSessionService_Register_ThenSignIn(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	sess, err := f.svc.Register(ctx, "", "Carol", "carol@example.com", "longpass1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if sess.Tier != domain.TierMember {
		t.Fatalf("expected member, got %s", sess.Tier)
	}
	stored, _ := f.accounts.FindByEmail(ctx, "carol@example.com")
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longpass1")) != nil {
		t.Fatalf("stored hash does not match password")
	}

	if _, err := f.svc.SignIn(ctx, "", "carol@example.com", "wrongpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	again, err := f.svc.SignIn(ctx, "", "carol@example.com", "longpass1")
	if err != nil || again.Account.Name != "Carol" {
		t.Fatalf("SignIn after register: %v %+v", err, again)
	}
}

func TestSessionService_Register_Validation(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "", "", "a@b.c", "longpass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty name, got %v", err)
	}
	if _, err := f.svc.Register(ctx, "", "Dan", "dan@example.com", "short"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for short password, got %v", err)
	}
	_, _ = f.svc.Register(ctx, "", "Dan", "dan@example.com", "longpass1")
	if _, err := f.svc.Register(ctx, "", "Dan", "dan@example.com", "longpass2"); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestSessionService_ContinueAsGuest_NotPersisted(t *testing.T) {
	f := newSessionFixture()
	sess := f.svc.ContinueAsGuest(context.Background(), "")
	if sess.Tier != domain.TierGuest {
		t.Fatalf("expected guest, got %s", sess.Tier)
	}
	if sess.Account == nil || sess.Account.Name != "Guest User" || sess.Account.Email != "" {
		t.Fatalf("unexpected guest account: %+v", sess.Account)
	}
	if len(f.durable.sessions) != 0 {
		t.Fatalf("guest must never reach the durable store")
	}
	if got := f.svc.Current(context.Background(), sess.ID); got.Tier != domain.TierGuest {
		t.Fatalf("Current = %s, want guest", got.Tier)
	}
}

func TestSessionService_SignOut_ClearsIdentity(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	sess, _ := f.svc.SignIn(ctx, "", "erin@example.com", "123456")
	out := f.svc.SignOut(ctx, sess.ID)
	if out.Tier != domain.TierAnonymous || out.Account != nil {
		t.Fatalf("expected anonymous session, got %+v", out)
	}
	if len(f.durable.sessions) != 0 {
		t.Fatalf("sign-out must clear the persisted identity")
	}
	if got := f.svc.Current(ctx, sess.ID); got.Tier != domain.TierAnonymous {
		t.Fatalf("Current after sign-out = %s", got.Tier)
	}
	if again := f.svc.SignOut(ctx, sess.ID); again.Tier != domain.TierAnonymous {
		t.Fatalf("sign-out must be idempotent")
	}
}

func TestSessionService_Upgrade(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	guest := f.svc.ContinueAsGuest(ctx, "")
	same, err := f.svc.Upgrade(ctx, guest.ID)
	if err != nil || same.Tier != domain.TierGuest {
		t.Fatalf("upgrade from guest must be a no-op: %v %+v", err, same)
	}

	sess, _ := f.svc.Register(ctx, "", "Fay", "fay@example.com", "longpass1")
	pro, err := f.svc.Upgrade(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Upgrade returned error: %v", err)
	}
	if pro.Tier != domain.TierPro || !pro.Account.Pro {
		t.Fatalf("expected pro session, got %+v", pro)
	}
	if !f.accounts.accounts[sess.Account.ID].Pro {
		t.Fatalf("pro flag must be stored on the account")
	}

	calls := f.accounts.proCalls
	if again, _ := f.svc.Upgrade(ctx, sess.ID); again.Tier != domain.TierPro || f.accounts.proCalls != calls {
		t.Fatalf("second upgrade must be a no-op")
	}

	// A restored pro account signs straight into pro.
	f.svc.SignOut(ctx, sess.ID)
	back, err := f.svc.SignIn(ctx, "", "fay@example.com", "longpass1")
	if err != nil || back.Tier != domain.TierPro {
		t.Fatalf("expected pro on sign-in, got %v %+v", err, back)
	}
}

func TestSessionService_Current_RestoresPersisted(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	sess, _ := f.svc.SignIn(ctx, "", "gil@example.com", "123456")

	restarted := NewSessionService(f.accounts, f.durable, newStubSessionStore(), "secret", time.Hour, zerolog.Nop())
	if got := restarted.Current(ctx, sess.ID); got.Tier != domain.TierMember {
		t.Fatalf("expected restored member, got %s", got.Tier)
	}
	if got := restarted.Current(ctx, "unknown"); got.Tier != domain.TierAnonymous {
		t.Fatalf("unknown session must be anonymous, got %s", got.Tier)
	}
}

func TestSessionService_OnTransition(t *testing.T) {
	f := newSessionFixture()
	var events []domain.TierEvent
	f.svc.OnTransition(func(_ context.Context, _, _ *domain.Session, ev domain.TierEvent) {
		events = append(events, ev)
	})

	sess := f.svc.ContinueAsGuest(context.Background(), "")
	f.svc.SignOut(context.Background(), sess.ID)

	if len(events) != 2 || events[0] != domain.EventContinueAsGuest || events[1] != domain.EventSignOut {
		t.Fatalf("unexpected events: %v", events)
	}
}

func TestSessionService_Token(t *testing.T) {
	f := newSessionFixture()
	sess, _ := f.svc.SignIn(context.Background(), "", "hal@example.com", "123456")

	token, err := f.svc.IssueToken(sess)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}); err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sid"] != sess.ID {
		t.Fatalf("expected sid %s, got %v", sess.ID, claims["sid"])
	}

	sid, err := f.svc.ParseToken(token)
	if err != nil || sid != sess.ID {
		t.Fatalf("ParseToken = %q, %v", sid, err)
	}
	if _, err := f.svc.ParseToken("garbage"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
