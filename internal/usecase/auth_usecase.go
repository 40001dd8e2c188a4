package usecase

import (
	"context"
	"errors"
	"fmt"

	"myopia-screening-service/internal/delivery/dto"
	"myopia-screening-service/internal/delivery/http/middleware"
	"myopia-screening-service/internal/domain/entity"
	"myopia-screening-service/internal/domain/repository"
	"myopia-screening-service/pkg/jwt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context) error
}

type authUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	userRepo    repository.UserRepository
	jwtService  *jwt.JWTService
	redisClient *redis.Client
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
) AuthUsecase {
	return &authUsecase{
		db:          db,
		log:         log,
		userRepo:    userRepo,
		jwtService:  jwtService,
		redisClient: redisClient,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	existing, err := u.userRepo.FindByEmail(ctx, u.db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to check existing email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:      req.Email,
		Password:   string(hashedPassword),
		FullName:   req.FullName,
		HospitalID: req.HospitalID,
	}

	if err := u.userRepo.Create(ctx, u.db, user); err != nil {
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	u.log.Infof("User registered: id=%s, hospital=%s", user.ID, user.HospitalID)
	return u.issueTokens(ctx, user)
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) Logout(ctx context.Context) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrMissingScope
	}
	tokenID, ok := middleware.GetTokenIDFromContext(ctx)
	if !ok {
		return ErrMissingScope
	}

	tokenKey := fmt.Sprintf("access_token:%s:%s", userID.String(), tokenID)
	if err := u.redisClient.Del(ctx, tokenKey).Err(); err != nil {
		u.log.Warnf("Failed to revoke token for user %s: %+v", userID, err)
		return err
	}
	return nil
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.AuthResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(user.ID, user.HospitalID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := u.jwtService.GenerateRefreshToken(user.ID, user.HospitalID, user.Email)
	if err != nil {
		return nil, err
	}

	// Track the active access token so it can be revoked on logout.
	tokenKey := fmt.Sprintf("access_token:%s:%s", user.ID.String(), accessTokenID)
	if err := u.redisClient.Set(ctx, tokenKey, "1", u.jwtService.AccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token for user %s: %+v", user.ID, err)
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: &dto.UserResponse{
			ID:         user.ID,
			Email:      user.Email,
			FullName:   user.FullName,
			HospitalID: user.HospitalID,
		},
	}, nil
}
