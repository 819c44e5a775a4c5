package users

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// fakeRepo keeps users in a map, enough to drive the service without a
// database.
type fakeRepo struct {
	byID map[uuid.UUID]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[uuid.UUID]*User)}
}

func (f *fakeRepo) Create(user *User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeRepo) GetByID(id uuid.UUID) (*User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeRepo) GetByAccount(account string) (*User, error) {
	for _, user := range f.byID {
		if user.Account == account {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetByEmail(email string) (*User, error) {
	for _, user := range f.byID {
		if user.Email != nil && *user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetByPhone(phone string) (*User, error) {
	for _, user := range f.byID {
		if user.Phone != nil && *user.Phone == phone {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ExistsByAccount(account string) (bool, error) {
	_, err := f.GetByAccount(account)
	return err == nil, nil
}

func (f *fakeRepo) ExistsByEmail(email string) (bool, error) {
	_, err := f.GetByEmail(email)
	return err == nil, nil
}

func (f *fakeRepo) ExistsByPhone(phone string) (bool, error) {
	_, err := f.GetByPhone(phone)
	return err == nil, nil
}

func (f *fakeRepo) Update(id uuid.UUID, updates map[string]interface{}) (*User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		user.Name = name
	}
	if avatar, ok := updates["avatar"].(string); ok {
		user.Avatar = avatar
	}
	if password, ok := updates["password"].(string); ok {
		user.Password = password
	}
	copied := *user
	return &copied, nil
}

func (f *fakeRepo) GetAll() ([]User, error) {
	all := make([]User, 0, len(f.byID))
	for _, user := range f.byID {
		all = append(all, *user)
	}
	return all, nil
}

func seedUser(t *testing.T, repo *fakeRepo, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	email := "ming@example.com"
	user := &User{
		Account:  "ming",
		Name:     "小明",
		Email:    &email,
		Password: string(hash),
		Status:   StatusActive,
		Role:     RoleLevel1,
	}
	require.NoError(t, repo.Create(user))
	return user
}

func TestGetProfile(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	user := seedUser(t, repo, "secret-1")

	profile, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ming", profile.Account)
	assert.Equal(t, "ming@example.com", profile.Email)

	_, err = svc.GetProfile(uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	user := seedUser(t, repo, "secret-1")

	name := "明总"
	profile, err := svc.UpdateProfile(user.ID, UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "明总", profile.Name)

	// No fields set: acts as a read.
	profile, err = svc.UpdateProfile(user.ID, UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "明总", profile.Name)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	user := seedUser(t, repo, "old-secret")

	err := svc.ChangePassword(user.ID, ChangePasswordRequest{OldPassword: "wrong", NewPassword: "new-secret"})
	assert.ErrorIs(t, err, ErrWrongOldPassword)

	err = svc.ChangePassword(user.ID, ChangePasswordRequest{OldPassword: "old-secret", NewPassword: "new-secret"})
	require.NoError(t, err)

	stored := repo.byID[user.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("new-secret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("old-secret")))
}

func TestUserJSONNeverLeaksPassword(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(t, repo, "secret-1")

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), user.Password)

	raw, err = json.Marshal(user.ToResponse())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), user.Password)
}
