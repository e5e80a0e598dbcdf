package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rowad-platform/merit-api/internal/models"
	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
)

type fakeUserRepo struct {
	byName  map[string]*models.User
	byEmail map[string]*models.User
	created []*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byName: map[string]*models.User{}, byEmail: map[string]*models.User{}}
}

func (r *fakeUserRepo) add(user *models.User) {
	r.byName[user.Name] = user
	r.byEmail[user.Email] = user
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = "u" + user.Name
	r.created = append(r.created, user)
	r.add(user)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range r.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) FindByName(_ context.Context, name string) (*models.User, error) {
	if u, ok := r.byName[name]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	_, ok := r.byName[name]
	return ok, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

type fakeStudentRepo struct {
	byUserID map[string]*models.Student
	enrolled map[string]bool
	created  []*models.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{byUserID: map[string]*models.Student{}, enrolled: map[string]bool{}}
}

func (r *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	student.ID = "s" + student.Name
	r.created = append(r.created, student)
	if student.UserID != nil {
		r.byUserID[*student.UserID] = student
	}
	r.enrolled[student.Name+"|"+student.ClassName] = true
	return nil
}

func (r *fakeStudentRepo) FindByUserID(_ context.Context, userID string) (*models.Student, error) {
	if s, ok := r.byUserID[userID]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (r *fakeStudentRepo) ExistsByNameAndClass(_ context.Context, name, className string) (bool, error) {
	return r.enrolled[name+"|"+className], nil
}

func newAuthService(users *fakeUserRepo, students *fakeStudentRepo) *AuthService {
	return NewAuthService(users, students, nil, nil, AuthConfig{
		Secret:      "test-secret",
		Expiration:  time.Hour,
		EmailDomain: "students.school.local",
	})
}

func TestAuthServiceRegisterStudentDerivesEmail(t *testing.T) {
	users := newFakeUserRepo()
	students := newFakeStudentRepo()
	svc := newAuthService(users, students)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:      "Sara Ali",
		Password:  "secret1",
		Role:      "student",
		ClassName: "1/A",
	})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "sara_ali_1_a@students.school.local", resp.User.Email)
	require.Len(t, students.created, 1)
	assert.Equal(t, resp.User.ID, *students.created[0].UserID)
	assert.Equal(t, "1/A", students.created[0].ClassName)
}

func TestAuthServiceRegisterStaffRequiresEmail(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), newFakeStudentRepo())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Mr. Khalid",
		Password: "secret1",
		Role:     "teacher",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterDuplicateStudent(t *testing.T) {
	users := newFakeUserRepo()
	students := newFakeStudentRepo()
	students.enrolled["Sara Ali|1/A"] = true
	svc := newAuthService(users, students)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:      "Sara Ali",
		Password:  "secret1",
		Role:      "student",
		ClassName: "1/A",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, users.created)
}

func TestAuthServiceLoginByNameAndEmail(t *testing.T) {
	users := newFakeUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	users.add(&models.User{ID: "u1", Name: "admin", Email: "admin@school.local", Role: models.RoleAdmin, PasswordHash: string(hash)})
	svc := newAuthService(users, newFakeStudentRepo())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)

	resp, err = svc.Login(context.Background(), models.LoginRequest{Username: "admin@school.local", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	users.add(&models.User{ID: "u1", Name: "admin", Email: "admin@school.local", Role: models.RoleAdmin, PasswordHash: string(hash)})
	svc := newAuthService(users, newFakeStudentRepo())

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginStudentClassMismatch(t *testing.T) {
	users := newFakeUserRepo()
	students := newFakeStudentRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: "u1", Name: "Sara Ali", Email: "sara_ali_1_a@students.school.local", Role: models.RoleStudent, PasswordHash: string(hash)}
	users.add(user)
	students.byUserID["u1"] = &models.Student{ID: "s1", UserID: &user.ID, Name: "Sara Ali", ClassName: "1/A"}
	svc := newAuthService(users, students)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "Sara Ali", Password: "secret1", ClassName: "2/B"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "Sara Ali", Password: "secret1", ClassName: "1/A"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)
}

func TestAuthServiceValidateTokenRoundTrip(t *testing.T) {
	users := newFakeUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	users.add(&models.User{ID: "u1", Name: "admin", Email: "admin@school.local", Role: models.RoleAdmin, PasswordHash: string(hash)})
	svc := newAuthService(users, newFakeStudentRepo())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret1"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	current, err := svc.CurrentUser(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "admin", current.Name)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	users := newFakeUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	users.add(&models.User{ID: "u1", Name: "admin", Email: "admin@school.local", Role: models.RoleAdmin, PasswordHash: string(hash)})

	expired := NewAuthService(users, newFakeStudentRepo(), nil, nil, AuthConfig{Secret: "test-secret", Expiration: -time.Minute})
	resp, err := expired.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret1"})
	require.NoError(t, err)

	_, err = expired.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenExpired.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), newFakeStudentRepo())

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
