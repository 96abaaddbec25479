package usecases

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/pkg/utils"
	redispkg "dvlottery.backend/pkg/redis"
)

// memStore is an in-memory relational store. Every method holds the lock for
// its whole body, giving per-statement atomicity like the real database.
type memStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]entities.User
	codes       map[uuid.UUID]entities.VerificationCode
	resetTokens map[uuid.UUID]entities.PasswordResetToken
	apps        map[uuid.UUID]entities.Application
	txs         map[string]entities.Transaction
	templates   map[uuid.UUID]entities.EmailTemplate
	admins      map[uuid.UUID]entities.Admin
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[uuid.UUID]entities.User{},
		codes:       map[uuid.UUID]entities.VerificationCode{},
		resetTokens: map[uuid.UUID]entities.PasswordResetToken{},
		apps:        map[uuid.UUID]entities.Application{},
		txs:         map[string]entities.Transaction{},
		templates:   map[uuid.UUID]entities.EmailTemplate{},
		admins:      map[uuid.UUID]entities.Admin{},
	}
}

type memUoW struct{}

func (memUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func (memUoW) WithLock(ctx context.Context) context.Context { return ctx }

// users

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domainerrors.ErrAlreadyExists
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.PaymentStatus == "" {
		u.PaymentStatus = entities.PaymentStatusPending
	}
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memUsers) update(id uuid.UUID, fn func(u *entities.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	fn(&u)
	r.s.users[id] = u
	return nil
}

func (r memUsers) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	return r.update(id, func(u *entities.User) { u.Name = name })
}

func (r memUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return r.update(id, func(u *entities.User) { u.PasswordHash = hash })
}

func (r memUsers) UpdatePackage(_ context.Context, id uuid.UUID, pkg entities.PackageType) error {
	return r.update(id, func(u *entities.User) { u.PackageType = pkg })
}

func (r memUsers) MarkVerified(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(u *entities.User) { u.IsVerified = true })
}

func (r memUsers) MarkPaymentCompleted(_ context.Context, id uuid.UUID, customerID string) error {
	return r.update(id, func(u *entities.User) {
		u.PaymentStatus = entities.PaymentStatusCompleted
		if customerID != "" {
			u.PaymentCustomerID = null.StringFrom(customerID)
		}
	})
}

func (r memUsers) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.update(id, func(u *entities.User) { u.LastLoginAt = null.TimeFrom(at) })
}

func (r memUsers) Counts(context.Context) (int64, int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total, verified, paid int64
	for _, u := range r.s.users {
		total++
		if u.IsVerified {
			verified++
		}
		if u.PaymentStatus == entities.PaymentStatusCompleted {
			paid++
		}
	}
	return total, verified, paid, nil
}

// verification codes

type memCodes struct{ s *memStore }

func (r memCodes) Create(_ context.Context, c *entities.VerificationCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.codes[c.ID] = *c
	return nil
}

func (r memCodes) FindByUserAndCode(_ context.Context, userID uuid.UUID, code string) (*entities.VerificationCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.codes {
		if c.UserID == userID && c.Code == code {
			return &c, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memCodes) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.codes[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(r.s.codes, id)
	return nil
}

func (r memCodes) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.codes {
		if c.UserID == userID {
			delete(r.s.codes, id)
		}
	}
	return nil
}

func (r memCodes) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.codes {
		if c.IsExpired(now) {
			delete(r.s.codes, id)
			n++
		}
	}
	return n, nil
}

func (r memCodes) forUser(userID uuid.UUID) []entities.VerificationCode {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entities.VerificationCode
	for _, c := range r.s.codes {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

// reset tokens

type memResetTokens struct{ s *memStore }

func (r memResetTokens) Create(_ context.Context, t *entities.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.s.resetTokens[t.ID] = *t
	return nil
}

func (r memResetTokens) FindValidByHash(_ context.Context, hash string, now time.Time) (*entities.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.resetTokens {
		if t.TokenHash == hash && t.ExpiresAt.After(now) {
			return &t, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memResetTokens) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.resetTokens {
		if t.UserID == userID {
			delete(r.s.resetTokens, id)
		}
	}
	return nil
}

func (r memResetTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, t := range r.s.resetTokens {
		if !t.ExpiresAt.After(now) {
			delete(r.s.resetTokens, id)
			n++
		}
	}
	return n, nil
}

// applications

type memApps struct{ s *memStore }

func (r memApps) Create(_ context.Context, a *entities.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.apps {
		if existing.UserID == a.UserID {
			return domainerrors.ErrAlreadyExists
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.s.apps[a.ID] = *a
	return nil
}

func (r memApps) GetByID(_ context.Context, id uuid.UUID) (*entities.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.apps[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &a, nil
}

func (r memApps) GetByUserID(_ context.Context, userID uuid.UUID) (*entities.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.apps {
		if a.UserID == userID {
			return &a, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memApps) Update(_ context.Context, a *entities.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.apps[a.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	r.s.apps[a.ID] = *a
	return nil
}

func (r memApps) SetPaymentStep(_ context.Context, userID uuid.UUID, status entities.StepStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.apps {
		if a.UserID == userID {
			a.PaymentStatus = status
			r.s.apps[id] = a
			return nil
		}
	}
	return domainerrors.ErrNotFound
}

func (r memApps) List(_ context.Context, filter entities.ApplicationFilter, p utils.PaginationParams) ([]*entities.Application, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entities.Application
	for _, a := range r.s.apps {
		a := a
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		all = append(all, &a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	total := int64(len(all))
	if p.Limit > 0 {
		start := p.CalculateOffset()
		if start > len(all) {
			start = len(all)
		}
		end := start + p.Limit
		if end > len(all) {
			end = len(all)
		}
		all = all[start:end]
	}
	return all, total, nil
}

func (r memApps) CountByStatus(context.Context) (map[entities.ApplicationStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[entities.ApplicationStatus]int64{}
	for _, a := range r.s.apps {
		out[a.Status]++
	}
	return out, nil
}

func (r memApps) forUser(userID uuid.UUID) entities.Application {
	a, _ := r.GetByUserID(context.Background(), userID)
	return *a
}

// transactions: external_ref is unique and settlement is a conditional update

type memTxs struct{ s *memStore }

func (r memTxs) Create(_ context.Context, tx *entities.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.txs[tx.ExternalRef]; ok {
		return domainerrors.ErrAlreadyExists
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	r.s.txs[tx.ExternalRef] = *tx
	return nil
}

func (r memTxs) GetByExternalRef(_ context.Context, ref string) (*entities.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx, ok := r.s.txs[ref]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &tx, nil
}

func (r memTxs) settle(ref string, status entities.TransactionStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx, ok := r.s.txs[ref]
	if !ok || tx.Status != entities.TransactionPending {
		return false, nil
	}
	tx.Status = status
	r.s.txs[ref] = tx
	return true, nil
}

func (r memTxs) CompletePending(_ context.Context, ref string) (bool, error) {
	return r.settle(ref, entities.TransactionCompleted)
}

func (r memTxs) FailPending(_ context.Context, ref string) (bool, error) {
	return r.settle(ref, entities.TransactionFailed)
}

func (r memTxs) RevenueByPackage(context.Context) (map[entities.PackageType]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[entities.PackageType]int64{}
	for _, tx := range r.s.txs {
		if tx.Status == entities.TransactionCompleted {
			out[tx.PackageType] += tx.AmountCents
		}
	}
	return out, nil
}

func (r memTxs) count(status entities.TransactionStatus) int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, tx := range r.s.txs {
		if tx.Status == status {
			n++
		}
	}
	return n
}

// templates

type memTemplates struct{ s *memStore }

func (r memTemplates) Create(_ context.Context, t *entities.EmailTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.templates {
		if existing.Name == t.Name {
			return domainerrors.ErrAlreadyExists
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.s.templates[t.ID] = *t
	return nil
}

func (r memTemplates) GetByID(_ context.Context, id uuid.UUID) (*entities.EmailTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.templates[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &t, nil
}

func (r memTemplates) GetByName(_ context.Context, name string) (*entities.EmailTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.templates {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memTemplates) List(context.Context) ([]*entities.EmailTemplate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.EmailTemplate, 0, len(r.s.templates))
	for _, t := range r.s.templates {
		t := t
		out = append(out, &t)
	}
	return out, nil
}

func (r memTemplates) Update(_ context.Context, t *entities.EmailTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.templates[t.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	for id, existing := range r.s.templates {
		if id != t.ID && existing.Name == t.Name {
			return domainerrors.ErrAlreadyExists
		}
	}
	r.s.templates[t.ID] = *t
	return nil
}

func (r memTemplates) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.templates[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(r.s.templates, id)
	return nil
}

// admins

type memAdmins struct{ s *memStore }

func (r memAdmins) Create(_ context.Context, a *entities.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.s.admins[a.ID] = *a
	return nil
}

func (r memAdmins) GetByID(_ context.Context, id uuid.UUID) (*entities.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.admins[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &a, nil
}

func (r memAdmins) GetByEmail(_ context.Context, email string) (*entities.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memAdmins) Update(_ context.Context, a *entities.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.admins[a.ID] = *a
	return nil
}

func (r memAdmins) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.admins[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	a.LastLoginAt = null.TimeFrom(at)
	r.s.admins[id] = a
	return nil
}

// collaborators

type fakeSender struct {
	mu   sync.Mutex
	sent []entities.EmailMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg entities.EmailMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeSender) last() entities.EmailMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fakeProvider struct {
	mu        sync.Mutex
	sessions  map[string]entities.CheckoutSession
	requests  []entities.CheckoutSessionRequest
	createErr error
	getErr    error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]entities.CheckoutSession{}}
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req entities.CheckoutSessionRequest) (*entities.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.requests = append(f.requests, req)
	id := fmt.Sprintf("cs_test_%d", len(f.requests))
	session := entities.CheckoutSession{
		ID:                id,
		URL:               "https://checkout.example.com/" + id,
		ClientReferenceID: req.ClientReferenceID,
		PaymentStatus:     entities.SessionPaymentUnpaid,
		Status:            "open",
		AmountTotal:       req.AmountCents,
		Currency:          req.Currency,
		Metadata:          map[string]string{"package_type": string(req.PackageType)},
	}
	f.sessions[id] = session
	return &session, nil
}

func (f *fakeProvider) GetCheckoutSession(_ context.Context, id string) (*entities.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such session %s", id)
	}
	return &s, nil
}

func (f *fakeProvider) markPaid(id, customer string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sessions[id]
	s.PaymentStatus = entities.SessionPaymentPaid
	s.Status = "complete"
	s.CustomerID = customer
	f.sessions[id] = s
}

func (f *fakeProvider) markExpired(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.sessions[id]
	s.Status = entities.SessionStatusExpired
	f.sessions[id] = s
}

type fakeCooldown struct {
	mu    sync.Mutex
	taken map[string]bool
	err   error
}

func (f *fakeCooldown) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.taken == nil {
		f.taken = map[string]bool{}
	}
	if f.taken[key] {
		return false, nil
	}
	f.taken[key] = true
	return true, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	return f.err
}

func (f *fakePublisher) count(subject string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

type fakeStorage struct {
	key         string
	contentType string
	err         error
}

func (f *fakeStorage) Upload(_ context.Context, key, contentType string, r io.Reader, _ int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, r)
	f.key = key
	f.contentType = contentType
	return "https://cdn.example.com/" + key, nil
}

type fakeSessions struct {
	mu   sync.Mutex
	data map[string]*redispkg.SessionData
}

func (f *fakeSessions) CreateSession(_ context.Context, id string, d *redispkg.SessionData, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		f.data = map[string]*redispkg.SessionData{}
	}
	f.data[id] = d
	return nil
}

func (f *fakeSessions) GetSession(_ context.Context, id string) (*redispkg.SessionData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.data[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return d, nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, id)
	return nil
}

type countingMetrics struct {
	mu         sync.Mutex
	issued     int
	failures   map[string]int
	reconciled int
	duplicates int
	cancelled  int
}

func (m *countingMetrics) CodeIssued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
}

func (m *countingMetrics) EmailFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures == nil {
		m.failures = map[string]int{}
	}
	m.failures[kind]++
}

func (m *countingMetrics) PaymentReconciled(_ string, duplicate bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if duplicate {
		m.duplicates++
		return
	}
	m.reconciled++
}

func (m *countingMetrics) CheckoutCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled++
}

// harness wires every usecase against one memStore

type harness struct {
	store    *memStore
	users    memUsers
	codes    memCodes
	tokens   memResetTokens
	apps     memApps
	txs      memTxs
	tpls     memTemplates
	admins   memAdmins
	sender   *fakeSender
	provider *fakeProvider
	cooldown *fakeCooldown
	events   *fakePublisher
	metrics  *countingMetrics
	now      time.Time

	verification *VerificationUsecase
	auth         *AuthUsecase
	reset        *PasswordResetUsecase
	applications *ApplicationUsecase
	payments     *PaymentUsecase
	templates    *TemplateUsecase
}

func newHarness() *harness {
	s := newMemStore()
	h := &harness{
		store:    s,
		users:    memUsers{s},
		codes:    memCodes{s},
		tokens:   memResetTokens{s},
		apps:     memApps{s},
		txs:      memTxs{s},
		tpls:     memTemplates{s},
		admins:   memAdmins{s},
		sender:   &fakeSender{},
		provider: newFakeProvider(),
		cooldown: &fakeCooldown{},
		events:   &fakePublisher{},
		metrics:  &countingMetrics{},
		now:      time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }

	h.verification = NewVerificationUsecase(memUoW{}, h.users, h.codes, h.tpls, h.sender, h.cooldown, h.metrics, h.events,
		VerificationConfig{CodeTTL: 15 * time.Minute, ResendCooldown: time.Minute})
	h.verification.now = clock

	h.auth = NewAuthUsecase(memUoW{}, h.users, h.apps, h.verification, testJWT(), &fakeSessions{}, h.events, false)
	h.auth.now = clock

	h.reset = NewPasswordResetUsecase(memUoW{}, h.users, h.tokens, h.tpls, h.sender, h.metrics, time.Hour, "https://dv.example.com/")
	h.reset.now = clock

	h.applications = NewApplicationUsecase(memUoW{}, h.apps, h.users, &fakeStorage{}, h.events, 1024)
	h.payments = NewPaymentUsecase(h.users, h.apps, h.txs, h.provider, h.metrics, h.events, PaymentConfig{FrontendURL: "https://dv.example.com"})
	h.templates = NewTemplateUsecase(h.tpls, h.sender, h.metrics)
	return h
}

// seedUser inserts a user and its application directly
func (h *harness) seedUser(name, email string, pkg entities.PackageType, verified bool) *entities.User {
	u := &entities.User{Name: name, Email: email, PackageType: pkg, IsVerified: verified}
	if err := h.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	if err := h.apps.Create(context.Background(), entities.NewApplication(u.ID)); err != nil {
		panic(err)
	}
	return u
}
