package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"poseidon-capital/backend/internal/keycloak"
	"poseidon-capital/backend/internal/user/domain"
)

type account struct {
	username string
	password string
	role     string
}

// fakeIdentityProvider records every call so tests can assert exactly which
// remote operations a workflow performed.
type fakeIdentityProvider struct {
	mu       sync.Mutex
	nextID   string
	seq      int
	accounts map[string]*account

	createCalls      []string // usernames
	deleteCalls      []string // external ids
	setPasswordCalls []string // external ids
	setRoleCalls     []string // "externalID:role"

	createErr      error
	deleteErr      error
	setPasswordErr error
	setRoleErr     error
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{accounts: map[string]*account{}}
}

func (f *fakeIdentityProvider) CreateAccount(ctx context.Context, username, password, role string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, username)
	if f.createErr != nil {
		return "", f.createErr
	}
	for _, a := range f.accounts {
		if a.username == username {
			return "", keycloak.ErrDuplicateAccount
		}
	}
	id := f.nextID
	if id == "" {
		f.seq++
		id = fmt.Sprintf("ext-%03d", f.seq)
	}
	f.accounts[id] = &account{username: username, password: password, role: role}
	return id, nil
}

func (f *fakeIdentityProvider) DeleteAccount(ctx context.Context, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, externalID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	// Missing accounts are tolerated, matching the real client.
	delete(f.accounts, externalID)
	return nil
}

func (f *fakeIdentityProvider) SetPassword(ctx context.Context, externalID, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setPasswordCalls = append(f.setPasswordCalls, externalID)
	if f.setPasswordErr != nil {
		return f.setPasswordErr
	}
	if a, ok := f.accounts[externalID]; ok {
		a.password = password
	}
	return nil
}

func (f *fakeIdentityProvider) SetRole(ctx context.Context, externalID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setRoleCalls = append(f.setRoleCalls, externalID+":"+role)
	if f.setRoleErr != nil {
		return f.setRoleErr
	}
	if a, ok := f.accounts[externalID]; ok {
		a.role = role
	}
	return nil
}

func (f *fakeIdentityProvider) remoteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createCalls) + len(f.deleteCalls) + len(f.setPasswordCalls) + len(f.setRoleCalls)
}

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User

	createErr error
	updateErr error
	deleteErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[int64]*domain.User{}}
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u2 := *u
		return &u2, nil
	}
	return nil, nil
}

func (r *memUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		u2 := *u
		out = append(out, &u2)
	}
	return out, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	u.ID = r.nextID
	u2 := *u
	r.byID[u.ID] = &u2
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.byID[u.ID]; ok {
		u2 := *u
		r.byID[u.ID] = &u2
	}
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.byID, id)
	return nil
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func newTestService() (*Service, *fakeIdentityProvider, *memUserRepo) {
	provider := newFakeIdentityProvider()
	repo := newMemUserRepo()
	return NewService(provider, repo, nil), provider, repo
}

func validInput() *domain.User {
	return &domain.User{
		Username: "alice",
		Password: "Str0ng!Pass",
		Fullname: "Alice A",
		Role:     domain.RoleUser,
	}
}

func TestCreateUser_Success(t *testing.T) {
	svc, provider, repo := newTestService()

	u := validInput()
	if err := svc.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 {
		t.Error("internal id should be assigned")
	}
	if u.KeycloakID == "" {
		t.Error("external id should be linked")
	}
	if u.Password != domain.PasswordSentinel {
		t.Errorf("password = %q, want sentinel %q", u.Password, domain.PasswordSentinel)
	}
	stored, err := repo.GetByID(context.Background(), u.ID)
	if err != nil || stored == nil {
		t.Fatalf("stored user = %v, %v", stored, err)
	}
	if stored.KeycloakID != u.KeycloakID {
		t.Errorf("stored external id = %q, want %q", stored.KeycloakID, u.KeycloakID)
	}
	a := provider.accounts[u.KeycloakID]
	if a == nil || a.username != "alice" || a.role != "USER" || a.password != "Str0ng!Pass" {
		t.Errorf("provider account = %+v, want alice/USER with submitted password", a)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	svc, provider, repo := newTestService()

	if err := svc.CreateUser(context.Background(), validInput()); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	second := validInput()
	err := svc.CreateUser(context.Background(), second)
	if !errors.Is(err, keycloak.ErrDuplicateAccount) {
		t.Errorf("err = %v, want ErrDuplicateAccount", err)
	}
	if repo.count() != 1 {
		t.Errorf("local records = %d, want 1 (no save on conflict)", repo.count())
	}
	if len(provider.deleteCalls) != 0 {
		t.Errorf("deleteCalls = %v, want none (nothing to compensate)", provider.deleteCalls)
	}
}

func TestCreateUser_LocalSaveFails_CompensatesRemote(t *testing.T) {
	svc, provider, repo := newTestService()
	repo.createErr = errors.New("unique constraint violated")

	err := svc.CreateUser(context.Background(), validInput())
	if err == nil {
		t.Fatal("CreateUser should fail when local save fails")
	}
	if !strings.Contains(err.Error(), "unique constraint violated") {
		t.Errorf("err = %v, want the original persistence failure", err)
	}
	if len(provider.createCalls) != 1 || len(provider.deleteCalls) != 1 {
		t.Fatalf("provider calls create=%d delete=%d, want 1 and 1", len(provider.createCalls), len(provider.deleteCalls))
	}
	if provider.deleteCalls[0] != "ext-001" {
		t.Errorf("compensated account = %q, want the id returned by CreateAccount (%q)", provider.deleteCalls[0], "ext-001")
	}
	if len(provider.accounts) != 0 {
		t.Errorf("provider accounts = %d, want 0 after compensation", len(provider.accounts))
	}
}

func TestCreateUser_CompensationFailureDoesNotMaskError(t *testing.T) {
	svc, provider, repo := newTestService()
	repo.createErr = errors.New("disk full")
	provider.deleteErr = errors.New("provider unavailable")

	err := svc.CreateUser(context.Background(), validInput())
	if err == nil {
		t.Fatal("CreateUser should fail")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v, want the original persistence failure", err)
	}
	if strings.Contains(err.Error(), "provider unavailable") {
		t.Errorf("err = %v, compensation failure must be swallowed", err)
	}
	// The remote account is leaked here; that is the accepted gap.
	if len(provider.accounts) != 1 {
		t.Errorf("provider accounts = %d, want 1 (leaked)", len(provider.accounts))
	}
}

func TestCreateUser_ProviderFailure_NoLocalState(t *testing.T) {
	svc, provider, repo := newTestService()
	provider.createErr = errors.New("realm unreachable")

	err := svc.CreateUser(context.Background(), validInput())
	if err == nil {
		t.Fatal("CreateUser should fail")
	}
	if repo.count() != 0 {
		t.Errorf("local records = %d, want 0", repo.count())
	}
	if len(provider.deleteCalls) != 0 {
		t.Errorf("deleteCalls = %v, want none", provider.deleteCalls)
	}
}

func TestCreateUser_InvalidInput_NoRemoteCalls(t *testing.T) {
	svc, provider, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(u *domain.User)
	}{
		{"short username", func(u *domain.User) { u.Username = "al" }},
		{"bad role", func(u *domain.User) { u.Role = "ROOT" }},
		{"missing password", func(u *domain.User) { u.Password = "" }},
		{"sentinel password", func(u *domain.User) { u.Password = domain.PasswordSentinel }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validInput()
			tt.mutate(u)
			if err := svc.CreateUser(context.Background(), u); err == nil {
				t.Error("CreateUser should fail")
			}
		})
	}
	if provider.remoteCalls() != 0 {
		t.Errorf("remote calls = %d, want 0 for invalid input", provider.remoteCalls())
	}
}

func mustCreate(t *testing.T, svc *Service) *domain.User {
	t.Helper()
	u := validInput()
	if err := svc.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestUpdateUser_NotFound_NoRemoteCalls(t *testing.T) {
	svc, provider, _ := newTestService()

	err := svc.UpdateUser(context.Background(), 99, "Alice Anderson", domain.RoleAdmin, "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if provider.remoteCalls() != 0 {
		t.Errorf("remote calls = %d, want 0", provider.remoteCalls())
	}
}

func TestUpdateUser_EmptyPasswordSkipsCredentialCall(t *testing.T) {
	svc, provider, repo := newTestService()
	u := mustCreate(t, svc)

	if err := svc.UpdateUser(context.Background(), u.ID, "Alice Anderson", domain.RoleAdmin, ""); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if len(provider.setPasswordCalls) != 0 {
		t.Errorf("setPasswordCalls = %v, want none for empty password", provider.setPasswordCalls)
	}
	if got, want := provider.setRoleCalls, []string{u.KeycloakID + ":ADMIN"}; len(got) != 1 || got[0] != want[0] {
		t.Errorf("setRoleCalls = %v, want %v", got, want)
	}
	stored, _ := repo.GetByID(context.Background(), u.ID)
	if stored.Fullname != "Alice Anderson" || stored.Role != domain.RoleAdmin {
		t.Errorf("stored = %+v, want fullname/role updated", stored)
	}
}

func TestUpdateUser_SentinelPasswordSkipsCredentialCall(t *testing.T) {
	svc, provider, _ := newTestService()
	u := mustCreate(t, svc)

	if err := svc.UpdateUser(context.Background(), u.ID, "Alice Anderson", domain.RoleUser, domain.PasswordSentinel); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if len(provider.setPasswordCalls) != 0 {
		t.Errorf("setPasswordCalls = %v, want none for sentinel password", provider.setPasswordCalls)
	}
}

func TestUpdateUser_NewPasswordForwarded(t *testing.T) {
	svc, provider, _ := newTestService()
	u := mustCreate(t, svc)

	if err := svc.UpdateUser(context.Background(), u.ID, "Alice Anderson", domain.RoleUser, "N3w!Passw0rd"); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if len(provider.setPasswordCalls) != 1 || provider.setPasswordCalls[0] != u.KeycloakID {
		t.Errorf("setPasswordCalls = %v, want one call for %q", provider.setPasswordCalls, u.KeycloakID)
	}
	if got := provider.accounts[u.KeycloakID].password; got != "N3w!Passw0rd" {
		t.Errorf("provider password = %q, want %q", got, "N3w!Passw0rd")
	}
}

func TestUpdateUser_InvalidPasswordPassesThrough(t *testing.T) {
	svc, provider, repo := newTestService()
	u := mustCreate(t, svc)
	provider.setPasswordErr = keycloak.ErrInvalidPassword

	err := svc.UpdateUser(context.Background(), u.ID, "Alice Anderson", domain.RoleAdmin, "weak")
	if !errors.Is(err, keycloak.ErrInvalidPassword) {
		t.Errorf("err = %v, want ErrInvalidPassword unchanged", err)
	}
	// No local mutation happened: the failure came before any write.
	stored, _ := repo.GetByID(context.Background(), u.ID)
	if stored.Fullname != "Alice A" || stored.Role != domain.RoleUser {
		t.Errorf("stored = %+v, want untouched record", stored)
	}
	if len(provider.setRoleCalls) != 0 {
		t.Errorf("setRoleCalls = %v, want none after password failure", provider.setRoleCalls)
	}
}

func TestUpdateUser_RoleFailureLeavesLocalUntouched(t *testing.T) {
	svc, provider, repo := newTestService()
	u := mustCreate(t, svc)
	provider.setRoleErr = errors.New("realm unreachable")

	err := svc.UpdateUser(context.Background(), u.ID, "Alice Anderson", domain.RoleAdmin, "N3w!Passw0rd")
	if err == nil {
		t.Fatal("UpdateUser should fail when SetRole fails")
	}
	// The remote password was already changed; local record stays on the old
	// fullname/role until a retry. Accepted, not corrected.
	if got := provider.accounts[u.KeycloakID].password; got != "N3w!Passw0rd" {
		t.Errorf("provider password = %q, want already-updated %q", got, "N3w!Passw0rd")
	}
	stored, _ := repo.GetByID(context.Background(), u.ID)
	if stored.Fullname != "Alice A" || stored.Role != domain.RoleUser {
		t.Errorf("stored = %+v, want untouched record", stored)
	}
}

func TestDeleteUser_NotFound_NoRemoteCalls(t *testing.T) {
	svc, provider, _ := newTestService()

	err := svc.DeleteUser(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if provider.remoteCalls() != 0 {
		t.Errorf("remote calls = %d, want 0", provider.remoteCalls())
	}
}

func TestDeleteUser_Success(t *testing.T) {
	svc, provider, repo := newTestService()
	u := mustCreate(t, svc)

	if err := svc.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if repo.count() != 0 {
		t.Errorf("local records = %d, want 0", repo.count())
	}
	if len(provider.deleteCalls) != 1 || provider.deleteCalls[0] != u.KeycloakID {
		t.Errorf("deleteCalls = %v, want exactly one for %q", provider.deleteCalls, u.KeycloakID)
	}
}

func TestDeleteUser_RemoteFailureKeepsLocal(t *testing.T) {
	svc, provider, repo := newTestService()
	u := mustCreate(t, svc)
	provider.deleteErr = errors.New("realm unreachable")

	if err := svc.DeleteUser(context.Background(), u.ID); err == nil {
		t.Fatal("DeleteUser should fail when the provider delete fails")
	}
	// Remote-first ordering: the local record survives a remote failure, so
	// the two stores stay linked and the operation can be retried.
	if repo.count() != 1 {
		t.Errorf("local records = %d, want 1", repo.count())
	}
}

func TestDeleteUser_LocalFailureIsRetryable(t *testing.T) {
	svc, provider, repo := newTestService()
	u := mustCreate(t, svc)
	repo.deleteErr = errors.New("deadlock detected")

	if err := svc.DeleteUser(context.Background(), u.ID); err == nil {
		t.Fatal("DeleteUser should surface the local failure")
	}
	if repo.count() != 1 {
		t.Fatalf("local records = %d, want 1 (row not removed)", repo.count())
	}

	// The provider tolerates deleting a missing account, so a retry converges.
	repo.deleteErr = nil
	if err := svc.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("retried DeleteUser: %v", err)
	}
	if repo.count() != 0 {
		t.Errorf("local records = %d, want 0 after retry", repo.count())
	}
	if len(provider.deleteCalls) != 2 {
		t.Errorf("deleteCalls = %d, want 2 (once per attempt)", len(provider.deleteCalls))
	}
}

func TestGetUser(t *testing.T) {
	svc, _, _ := newTestService()
	u := mustCreate(t, svc)

	got, err := svc.GetUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("username = %q, want %q", got.Username, "alice")
	}

	if _, err := svc.GetUser(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestLifecycle_EndToEnd walks the full scenario: create, update without a
// password change, then delete.
func TestLifecycle_EndToEnd(t *testing.T) {
	svc, provider, repo := newTestService()
	provider.nextID = "ext-123"

	u := &domain.User{Username: "alice", Password: "Str0ng!Pass", Fullname: "Alice A", Role: domain.RoleUser}
	if err := svc.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.KeycloakID != "ext-123" {
		t.Fatalf("external id = %q, want %q", u.KeycloakID, "ext-123")
	}
	stored, _ := repo.GetByID(context.Background(), u.ID)
	if stored.Password != domain.PasswordSentinel {
		t.Errorf("stored password = %q, want sentinel", stored.Password)
	}

	if err := svc.UpdateUser(context.Background(), u.ID, "Alice Anderson", domain.RoleAdmin, ""); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if len(provider.setPasswordCalls) != 0 {
		t.Errorf("setPasswordCalls = %v, want none", provider.setPasswordCalls)
	}
	if len(provider.setRoleCalls) != 1 || provider.setRoleCalls[0] != "ext-123:ADMIN" {
		t.Errorf("setRoleCalls = %v, want [ext-123:ADMIN]", provider.setRoleCalls)
	}
	stored, _ = repo.GetByID(context.Background(), u.ID)
	if stored.Fullname != "Alice Anderson" || stored.Role != domain.RoleAdmin {
		t.Errorf("stored = %+v, want updated fullname/role", stored)
	}

	if err := svc.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if repo.count() != 0 {
		t.Error("local record should be removed")
	}
	if len(provider.deleteCalls) != 1 || provider.deleteCalls[0] != "ext-123" {
		t.Errorf("deleteCalls = %v, want exactly [ext-123]", provider.deleteCalls)
	}
}
