package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rowad-platform/merit-api/internal/models"
	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
)

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	ExistsByNameAndClass(ctx context.Context, name, className string) (bool, error)
	List(ctx context.Context, className string) ([]models.Student, error)
	DeleteCascade(ctx context.Context, id string) error
}

type studentUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// StudentConfig holds the account provisioning defaults for new students.
type StudentConfig struct {
	EmailDomain     string
	DefaultPassword string
}

// StudentService manages the student registry. Every enrollment provisions a
// linked login account so students can view their own record.
type StudentService struct {
	students  studentRepository
	users     studentUserRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	config    StudentConfig
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepository, users studentUserRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, config StudentConfig) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{students: students, users: users, cache: cache, validator: validate, logger: logger, config: config}
}

// Create enrolls a student and provisions the linked account.
func (s *StudentService) Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	enrolled, err := s.students.ExistsByNameAndClass(ctx, req.Name, req.ClassName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if enrolled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this class")
	}

	// The derived address encodes name and class, so the e-mail probe is the
	// account-level uniqueness check. Same-named students in other classes are
	// allowed.
	email := derivedEmail(req.Name, req.ClassName, s.config.EmailDomain)
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account for this student already exists")
	}

	password := req.Password
	if password == "" {
		password = s.config.DefaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        email,
		Role:         models.RoleStudent,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	student := &models.Student{
		UserID:    &user.ID,
		Name:      req.Name,
		ClassName: req.ClassName,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.cache.InvalidateStatistics(ctx)
	s.logger.Info("student enrolled", zap.String("student_id", student.ID), zap.String("class", student.ClassName))
	return student, nil
}

// Get fetches a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// GetByUser fetches the student linked to a user account.
func (s *StudentService) GetByUser(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no student record for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// List returns students, optionally restricted to one class.
func (s *StudentService) List(ctx context.Context, className string) ([]models.Student, error) {
	students, err := s.students.List(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// Delete removes a student together with its records and linked account.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.students.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	if err := s.students.DeleteCascade(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	s.cache.InvalidateStatistics(ctx)
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}
