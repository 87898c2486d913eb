package license

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service evaluates and manages the application license. Evaluations are
// cached briefly so the HTTP gate does not hit the store on every request.
type Service struct {
	repo Repository
	now  func() time.Time

	mu       sync.Mutex
	cached   Evaluation
	cachedAt time.Time
	cacheTTL time.Duration
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		now:      time.Now,
		cacheTTL: time.Minute,
	}
}

// Evaluate loads the active license and checks it against the current time.
// Unlike Status it never serves a cached result; login and startup use it.
func (s *Service) Evaluate(ctx context.Context) (Evaluation, error) {
	lic, err := s.repo.GetActive(ctx)
	if err != nil {
		return Evaluation{State: StateExpired}, err
	}
	eval := CheckValidity(*lic, s.now())

	s.mu.Lock()
	s.cached = eval
	s.cachedAt = s.now()
	s.mu.Unlock()

	return eval, nil
}

// Status returns the current evaluation, serving a cached value when fresh.
func (s *Service) Status(ctx context.Context) (Evaluation, error) {
	s.mu.Lock()
	if !s.cachedAt.IsZero() && s.now().Sub(s.cachedAt) < s.cacheTTL {
		eval := s.cached
		s.mu.Unlock()
		return eval, nil
	}
	s.mu.Unlock()
	return s.Evaluate(ctx)
}

// ActivateInput describes a license activation request.
type ActivateInput struct {
	Key        string
	Kind       Kind
	IssuedAt   time.Time
	WindowDays int
	Unlimited  bool
}

// Activate stores a new license record and makes it the active one.
func (s *Service) Activate(ctx context.Context, input ActivateInput) (*License, error) {
	key := strings.TrimSpace(input.Key)
	if key == "" {
		key = uuid.NewString()
	} else if _, err := uuid.Parse(key); err != nil {
		return nil, errors.New("license: key must be a UUID")
	}
	if !input.Unlimited && input.WindowDays <= 0 {
		return nil, errors.New("license: window days required for limited licenses")
	}
	issued := input.IssuedAt
	if issued.IsZero() {
		issued = s.now().UTC()
	}
	kind := input.Kind
	if kind == "" {
		if input.Unlimited {
			kind = KindFull
		} else {
			kind = KindTrial
		}
	}

	lic := License{
		Key:        key,
		Kind:       kind,
		IssuedAt:   issued,
		WindowDays: input.WindowDays,
		Unlimited:  input.Unlimited,
	}
	id, err := s.repo.Activate(ctx, lic)
	if err != nil {
		return nil, err
	}
	lic.ID = id

	// Force the next Status call to re-evaluate.
	s.mu.Lock()
	s.cachedAt = time.Time{}
	s.mu.Unlock()

	return &lic, nil
}
