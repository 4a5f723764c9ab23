package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/authz"
	"github.com/SAP-F-2025/school-service/internal/events"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

type userService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, eventPublisher events.EventPublisher) UserService {
	return &userService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
	}
}

func (s *userService) Authenticate(ctx context.Context, req *LoginRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Same error as a bad password so the response does not leak
			// which emails exist.
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	s.logger.Info("User authenticated", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest, callerID uint) (*UserResponse, error) {
	s.logger.Info("Creating user", "caller_id", callerID, "email", req.Email, "role", req.Role)

	if errs := s.validator.GetBusinessValidator().ValidateUserCreate(req); len(errs) > 0 {
		return nil, errs
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionCreate, authz.ResourceUser) {
		return nil, NewPermissionError(callerID, 0, "user", "create", "only principals and developers manage accounts")
	}

	taken, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *models.User
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		user = &models.User{
			Email:          req.Email,
			HashedPassword: string(hashed),
			FullName:       req.FullName,
			Role:           req.Role,
			IsActive:       true,
		}
		if err := txRepo.User().Create(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.createProfile(ctx, txRepo, user.ID, req)
	})
	if err != nil {
		return nil, err
	}

	s.publishUserCreated(ctx, user)
	s.logger.Info("User created", "user_id", user.ID, "role", user.Role)

	return s.toUserResponse(user, caller), nil
}

func (s *userService) createProfile(ctx context.Context, txRepo repositories.Repository, userID uint, req *CreateUserRequest) error {
	switch req.Role {
	case models.RoleStudent:
		if req.StudentProfile == nil {
			return nil
		}
		return txRepo.Profile().CreateStudent(ctx, nil, &models.StudentProfile{
			UserID:     userID,
			Grade:      req.StudentProfile.Grade,
			Section:    req.StudentProfile.Section,
			RollNumber: req.StudentProfile.RollNumber,
		})
	case models.RoleTeacher:
		if req.TeacherProfile == nil {
			return nil
		}
		return txRepo.Profile().CreateTeacher(ctx, nil, &models.TeacherProfile{
			UserID:          userID,
			Department:      req.TeacherProfile.Department,
			Qualification:   req.TeacherProfile.Qualification,
			ExperienceYears: req.TeacherProfile.ExperienceYears,
		})
	case models.RolePrincipal:
		if req.PrincipalProfile == nil {
			return nil
		}
		return txRepo.Profile().CreatePrincipal(ctx, nil, &models.PrincipalProfile{
			UserID:          userID,
			Qualification:   req.PrincipalProfile.Qualification,
			ExperienceYears: req.PrincipalProfile.ExperienceYears,
		})
	case models.RoleDeveloper:
		if req.DeveloperProfile == nil {
			return nil
		}
		return txRepo.Profile().CreateDeveloper(ctx, nil, &models.DeveloperProfile{
			UserID:         userID,
			Specialization: req.DeveloperProfile.Specialization,
			GithubURL:      req.DeveloperProfile.GithubURL,
		})
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, id uint, callerID uint) (*UserResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	if !s.canReadUser(caller, id) {
		return nil, NewPermissionError(callerID, id, "user", "read", "not own account")
	}

	user, err := s.repo.User().GetByIDWithProfile(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.toUserResponse(user, caller), nil
}

func (s *userService) Update(ctx context.Context, id uint, req *UpdateUserRequest, callerID uint) (*UserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	isAdmin := authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceUser)
	isSelf := callerID == id
	if !isAdmin && !isSelf {
		return nil, NewPermissionError(callerID, id, "user", "update", "not own account")
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.User().ExistsByEmail(ctx, nil, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hashed)
	}

	// Administrative fields are silently dropped on self-service updates.
	if isAdmin {
		if req.Role != nil {
			user.Role = *req.Role
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		if req.IsSuperuser != nil {
			user.IsSuperuser = *req.IsSuperuser
		}
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, err
	}

	s.logger.Info("User updated", "user_id", id, "caller_id", callerID)
	return s.toUserResponse(user, caller), nil
}

func (s *userService) Delete(ctx context.Context, id uint, callerID uint) error {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return err
	}
	if !authz.Can(caller.Role, authz.ActionDelete, authz.ResourceUser) {
		return NewPermissionError(callerID, id, "user", "delete", "only principals and developers manage accounts")
	}
	if callerID == id {
		return NewPermissionError(callerID, id, "user", "delete", "cannot delete own account")
	}

	if err := s.repo.User().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info("User deleted", "user_id", id, "caller_id", callerID)
	return nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters, callerID uint) (*UserListResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionRead, authz.ResourceUser) {
		return nil, NewPermissionError(callerID, 0, "user", "read", "only principals and developers list accounts")
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}

	resp := &UserListResponse{
		Users: make([]*UserResponse, 0, len(users)),
		Total: total,
		Size:  len(users),
	}
	if filters.Limit > 0 {
		resp.Page = filters.Offset/filters.Limit + 1
	}
	for _, u := range users {
		resp.Users = append(resp.Users, s.toUserResponse(u, caller))
	}
	return resp, nil
}

func (s *userService) EnsureSuperuser(ctx context.Context, email, password, fullName string) error {
	if email == "" || password == "" {
		return nil
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return fmt.Errorf("failed to check superuser: %w", err)
	}
	if exists {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash superuser password: %w", err)
	}

	user := &models.User{
		Email:          email,
		HashedPassword: string(hashed),
		FullName:       fullName,
		Role:           models.RoleDeveloper,
		IsActive:       true,
		IsSuperuser:    true,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to create superuser: %w", err)
	}

	s.logger.Info("Bootstrap superuser created", "email", email)
	return nil
}

func (s *userService) canReadUser(caller *models.User, targetID uint) bool {
	if caller.ID == targetID {
		return true
	}
	return authz.Can(caller.Role, authz.ActionRead, authz.ResourceUser)
}

func (s *userService) toUserResponse(user *models.User, caller *models.User) *UserResponse {
	canManage := authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceUser)
	return &UserResponse{
		User:      user,
		CanEdit:   canManage || caller.ID == user.ID,
		CanDelete: authz.Can(caller.Role, authz.ActionDelete, authz.ResourceUser) && caller.ID != user.ID,
	}
}

func (s *userService) publishUserCreated(ctx context.Context, user *models.User) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.EventUserCreated, events.UserCreatedEvent{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		// Events are best effort; the write already committed.
		s.logger.Error("Failed to publish user created event", "error", err, "user_id", user.ID)
	}
}
