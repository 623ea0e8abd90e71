package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/models"
	"github.com/storefront-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserServiceTest(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:user_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Cart{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.ExpireHours = 1
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 6}
	userRepo := repository.NewUserRepository(db)
	cartRepo := repository.NewCartRepository(db)
	return NewUserService(cfg, userRepo, cartRepo), db
}

func TestRegisterCreatesUserWithEmptyCart(t *testing.T) {
	svc, db := setupUserServiceTest(t)

	user, err := svc.Register(RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Fatalf("password not hashed")
	}

	var cart models.Cart
	if err := db.Where("user_id = ?", user.ID).First(&cart).Error; err != nil {
		t.Fatalf("cart not created: %v", err)
	}
	if cart.TotalAmount.String() != "0.00" {
		t.Fatalf("new cart total want 0.00 got %s", cart.TotalAmount.String())
	}
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	svc, _ := setupUserServiceTest(t)

	if _, err := svc.Register(RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	if _, err := svc.Register(RegisterInput{Username: "bob2", Email: "bob@example.com", Password: "secret1"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email want ErrEmailExists got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "bob", Email: "bob2@example.com", Password: "secret1"}); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("duplicate username want ErrUsernameExists got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "carol", Email: "not-an-email", Password: "secret1"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad email want ErrInvalidEmail got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "carol", Email: "carol@example.com", Password: "shrt"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("short password want ErrWeakPassword got %v", err)
	}
}

func TestLoginVerifiesCredentialsAndIssuesJWT(t *testing.T) {
	svc, _ := setupUserServiceTest(t)

	registered, err := svc.Register(RegisterInput{Username: "dave", Email: "dave@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, token, expiresAt, err := svc.Login("dave@example.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("login user id want %d got %d", registered.ID, user.ID)
	}
	if token == "" || !expiresAt.After(time.Now()) {
		t.Fatalf("token not issued: %q %v", token, expiresAt)
	}
	if user.LastLoginAt == nil {
		t.Fatalf("last_login_at not set")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != registered.ID || claims.Email != "dave@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	if _, _, _, err := svc.Login("dave@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := svc.Login("nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email want ErrInvalidCredentials got %v", err)
	}
}

func TestChangePasswordRequiresOldPassword(t *testing.T) {
	svc, _ := setupUserServiceTest(t)

	user, err := svc.Register(RegisterInput{Username: "erin", Email: "erin@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrong-old", "newsecret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong old password want ErrInvalidCredentials got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "secret1", "nope"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("weak new password want ErrWeakPassword got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "secret1", "newsecret1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, _, err := svc.Login("erin@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, _, _, err := svc.Login("erin@example.com", "newsecret1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUpdateProfileGuardsUsernameUniqueness(t *testing.T) {
	svc, _ := setupUserServiceTest(t)

	if _, err := svc.Register(RegisterInput{Username: "frank", Email: "frank@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register frank failed: %v", err)
	}
	grace, err := svc.Register(RegisterInput{Username: "grace", Email: "grace@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register grace failed: %v", err)
	}

	taken := "frank"
	if _, err := svc.UpdateProfile(grace.ID, UpdateProfileInput{Username: &taken}); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("taken username want ErrUsernameExists got %v", err)
	}

	phone := "555-0100"
	updated, err := svc.UpdateProfile(grace.ID, UpdateProfileInput{Phone: &phone})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.Phone != "555-0100" {
		t.Fatalf("phone want 555-0100 got %s", updated.Phone)
	}
	if updated.Username != "grace" {
		t.Fatalf("username should be unchanged, got %s", updated.Username)
	}
}
