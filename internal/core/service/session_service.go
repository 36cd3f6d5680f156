package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/core/ports"
)

const (
	minSignInPassword   = 6
	minRegisterPassword = 8

	demoEmail    = "demo@aitrader.com"
	demoPassword = "demo123"
	demoName     = "Demo User"
)

// TransitionListener observes every tier transition after it has been applied.
type TransitionListener func(ctx context.Context, from, to *domain.Session, ev domain.TierEvent)

// SessionService is the single mutator of each session's tier slot.
//
// Member and pro sessions live in the durable store so they survive restarts.
// Guest sessions live only in the ephemeral store.
type SessionService struct {
	accounts  ports.AccountRepository
	durable   ports.SessionStore
	ephemeral ports.SessionStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger

	mu        sync.Mutex
	listeners []TransitionListener
}

func NewSessionService(
	accounts ports.AccountRepository,
	durable ports.SessionStore,
	ephemeral ports.SessionStore,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *SessionService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &SessionService{
		accounts:  accounts,
		durable:   durable,
		ephemeral: ephemeral,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// OnTransition registers l. Not safe to call once requests are being served.
func (s *SessionService) OnTransition(l TransitionListener) {
	s.listeners = append(s.listeners, l)
}

// SignIn is a permissive stub: any email with a non-empty local part and a
// password of at least six characters is accepted. A registered account must
// match its stored password hash.
func (s *SessionService) SignIn(ctx context.Context, sessionID, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	local, ok := emailLocalPart(email)
	if !ok || len(password) < minSignInPassword {
		return nil, domain.ErrInvalidCredentials
	}

	var account *domain.Account
	switch {
	case strings.EqualFold(email, demoEmail) && password == demoPassword:
		account = &domain.Account{ID: accountID(email), Name: demoName, Email: demoEmail, Role: domain.RoleTrader}
	default:
		found, err := s.accounts.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)) != nil {
				return nil, domain.ErrInvalidCredentials
			}
			account = found
		case errors.Is(err, domain.ErrAccountNotFound):
			account = &domain.Account{ID: accountID(email), Name: local, Email: email, Role: domain.RoleTrader}
		default:
			return nil, fmt.Errorf("sign in: %w", err)
		}
	}

	return s.establish(ctx, sessionID, account)
}

// Register stores a new account and signs it in.
func (s *SessionService) Register(ctx context.Context, sessionID, name, email, password string) (*domain.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if _, ok := emailLocalPart(email); !ok || name == "" || len(password) < minRegisterPassword {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.accounts.Create(ctx, &domain.Account{
		ID:           accountID(email),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleTrader,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return s.establish(ctx, sessionID, created)
}

func (s *SessionService) establish(ctx context.Context, sessionID string, account *domain.Account) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.Current(ctx, sessionID)
	next := &domain.Session{
		ID:      ensureSessionID(sessionID),
		Tier:    from.Tier.Transition(domain.EventSignIn),
		Account: account,
	}
	if account.Pro {
		next.Tier = next.Tier.Transition(domain.EventUpgrade)
	}

	if err := s.durable.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("sign in: persist session: %w", err)
	}
	if err := s.ephemeral.Clear(ctx, next.ID); err != nil {
		s.log.Warn().Err(err).Str("session", next.ID).Msg("failed to clear guest session")
	}

	s.notify(ctx, from, next, domain.EventSignIn)
	return next, nil
}

// ContinueAsGuest always succeeds. The guest identity is never persisted.
func (s *SessionService) ContinueAsGuest(ctx context.Context, sessionID string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.Current(ctx, sessionID)
	guest := domain.GuestAccount()
	next := &domain.Session{
		ID:      ensureSessionID(sessionID),
		Tier:    from.Tier.Transition(domain.EventContinueAsGuest),
		Account: &guest,
	}

	if err := s.durable.Clear(ctx, next.ID); err != nil {
		s.log.Warn().Err(err).Str("session", next.ID).Msg("failed to clear persisted identity")
	}
	if err := s.ephemeral.Save(ctx, next); err != nil {
		s.log.Warn().Err(err).Str("session", next.ID).Msg("failed to hold guest session")
	}

	s.notify(ctx, from, next, domain.EventContinueAsGuest)
	return next
}

// SignOut always returns an anonymous session and clears any persisted identity.
func (s *SessionService) SignOut(ctx context.Context, sessionID string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.Current(ctx, sessionID)
	next := domain.AnonymousSession(sessionID)
	next.Tier = from.Tier.Transition(domain.EventSignOut)

	if sessionID != "" {
		if err := s.durable.Clear(ctx, sessionID); err != nil {
			s.log.Warn().Err(err).Str("session", sessionID).Msg("failed to clear persisted identity")
		}
		if err := s.ephemeral.Clear(ctx, sessionID); err != nil {
			s.log.Warn().Err(err).Str("session", sessionID).Msg("failed to clear guest session")
		}
	}

	s.notify(ctx, from, next, domain.EventSignOut)
	return next
}

// Upgrade sets the pro billing flag. It only changes a member session; any
// other tier is returned unchanged.
func (s *SessionService) Upgrade(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.Current(ctx, sessionID)
	nextTier := from.Tier.Transition(domain.EventUpgrade)
	if nextTier == from.Tier {
		return from, nil
	}

	var account domain.Account
	if from.Account != nil {
		account = *from.Account
	}
	account.Pro = true
	next := &domain.Session{ID: from.ID, Tier: nextTier, Account: &account}

	if err := s.accounts.SetPro(ctx, account.ID, true); err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("upgrade: %w", err)
	}
	if err := s.durable.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("upgrade: persist session: %w", err)
	}

	s.notify(ctx, from, next, domain.EventUpgrade)
	return next, nil
}

// Current returns the tier snapshot for sessionID at the moment of the call.
// A persisted member identity is restored here.
func (s *SessionService) Current(ctx context.Context, sessionID string) *domain.Session {
	if sessionID == "" {
		return domain.AnonymousSession("")
	}
	for _, store := range []ports.SessionStore{s.ephemeral, s.durable} {
		sess, err := store.Load(ctx, sessionID)
		if err == nil {
			return sess
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.log.Warn().Err(err).Str("session", sessionID).Msg("session lookup failed")
		}
	}
	return domain.AnonymousSession(sessionID)
}

// IssueToken returns a signed token carrying the session id.
func (s *SessionService) IssueToken(sess *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid":  sess.ID,
		"tier": string(sess.Tier),
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// ParseToken validates a token and returns its session id. The tier claim is
// informational only; the tier is always read from the session store.
func (s *SessionService) ParseToken(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidCredentials
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", domain.ErrInvalidCredentials
	}
	return sid, nil
}

func (s *SessionService) notify(ctx context.Context, from, to *domain.Session, ev domain.TierEvent) {
	s.log.Info().
		Str("session", to.ID).
		Str("event", string(ev)).
		Str("from", string(from.Tier)).
		Str("to", string(to.Tier)).
		Msg("tier transition")
	for _, l := range s.listeners {
		l(ctx, from, to, ev)
	}
}

func emailLocalPart(email string) (string, bool) {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "", false
	}
	return email[:at], true
}

// accountID is stable per email so saved strategies follow the person across sign-ins.
func accountID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))).String()
}

func ensureSessionID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
