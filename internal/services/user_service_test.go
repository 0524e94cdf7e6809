package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/storetest"
	"golang.org/x/crypto/bcrypt"
)

func newUserFixture() (*storetest.Store, *recordingQueue, *UserService) {
	store := storetest.New()
	mail := &recordingQueue{}
	svc := NewUserService(store, helpers.NewTokenManager("test-secret", time.Hour), mail, nil, "http://localhost:5173/", discardLogger())
	svc.hashCost = bcrypt.MinCost
	return store, mail, svc
}

func validSignup() CreateUserInput {
	return CreateUserInput{
		FirstName:       "Jane",
		LastName:        "Doe",
		Gender:          "Female",
		PhoneNumber:     "416-555-0101",
		Email:           "  Jane@Example.com ",
		Password:        "Secret1!x",
		ConfirmPassword: "Secret1!x",
		Role:            "REALTOR",
	}
}

func TestCreateUser(t *testing.T) {
	_, _, svc := newUserFixture()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, validSignup())
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Email != "jane@example.com" {
		t.Errorf("email should be normalised, got %q", u.Email)
	}
	if u.Password == "Secret1!x" {
		t.Error("password must be hashed")
	}
	if u.ProfilePicture != models.DefaultProfilePicture {
		t.Errorf("expected default picture, got %q", u.ProfilePicture)
	}

	if _, err := svc.CreateUser(ctx, validSignup()); !httperr.Is(err, httperr.Conflict) {
		t.Errorf("expected conflict for a duplicate email, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	_, _, svc := newUserFixture()
	cases := map[string]func(*CreateUserInput){
		"weak password":  func(in *CreateUserInput) { in.Password, in.ConfirmPassword = "password", "password" },
		"mismatch":       func(in *CreateUserInput) { in.ConfirmPassword = "Secret1!y" },
		"bad phone":      func(in *CreateUserInput) { in.PhoneNumber = "555" },
		"bad email":      func(in *CreateUserInput) { in.Email = "jane" },
		"unknown role":   func(in *CreateUserInput) { in.Role = "ADMIN" },
		"short name":     func(in *CreateUserInput) { in.FirstName = "J" },
		"missing gender": func(in *CreateUserInput) { in.Gender = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validSignup()
			mutate(&in)
			if _, err := svc.CreateUser(context.Background(), in); !httperr.Is(err, httperr.InvalidInput) {
				t.Errorf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	_, _, svc := newUserFixture()
	ctx := context.Background()
	created, err := svc.CreateUser(ctx, validSignup())
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, _, err := svc.Login(ctx, "jane@example.com", "Wrong1!pass"); !httperr.Is(err, httperr.Unauthenticated) {
		t.Errorf("expected unauthenticated for a wrong password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "Secret1!x"); !httperr.Is(err, httperr.Unauthenticated) {
		t.Errorf("expected unauthenticated for an unknown email, got %v", err)
	}

	token, user, err := svc.Login(ctx, "JANE@example.com", "Secret1!x")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != created.ID || token == "" {
		t.Fatalf("unexpected login result %q %+v", token, user)
	}

	claims, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if claims.UserID != created.ID.Hex() || !claims.IsRealtor() {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := svc.Authenticate(ctx, token+"x"); !httperr.Is(err, httperr.Unauthenticated) {
		t.Errorf("expected unauthenticated for a tampered token, got %v", err)
	}
	if err := svc.DeleteUser(ctx, claims, created.ID.Hex()); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); !httperr.Is(err, httperr.Unauthenticated) {
		t.Errorf("a deleted account should not authenticate, got %v", err)
	}
}

func TestUpdateUserIsSelfOnly(t *testing.T) {
	store, _, svc := newUserFixture()
	ctx := context.Background()
	jane := store.AddUser("jane", models.RoleClient)
	john := store.AddUser("john", models.RoleClient)
	me := &helpers.Claims{UserID: jane.ID.Hex(), Role: string(models.RoleClient)}

	name := "Janet"
	if _, err := svc.UpdateUser(ctx, me, john.ID.Hex(), UpdateUserInput{FirstName: &name}); !httperr.Is(err, httperr.Forbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if _, err := svc.UpdateUser(ctx, me, jane.ID.Hex(), UpdateUserInput{}); !httperr.Is(err, httperr.InvalidInput) {
		t.Errorf("expected invalid input for an empty update, got %v", err)
	}
	updated, err := svc.UpdateUser(ctx, me, jane.ID.Hex(), UpdateUserInput{FirstName: &name})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.FirstName != "Janet" {
		t.Errorf("expected Janet, got %q", updated.FirstName)
	}
	if err := svc.DeleteUser(ctx, me, john.ID.Hex()); !httperr.Is(err, httperr.Forbidden) {
		t.Errorf("expected forbidden delete, got %v", err)
	}
}

func TestPasswordReset(t *testing.T) {
	store, mail, svc := newUserFixture()
	ctx := context.Background()
	created, err := svc.CreateUser(ctx, validSignup())
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "nobody@example.com"); !httperr.Is(err, httperr.NotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := svc.RequestPasswordReset(ctx, "jane@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if mail.count() != 1 {
		t.Fatalf("expected one reset email, got %d", mail.count())
	}

	token := *store.User(created.ID).ResetPasswordToken
	if len(token) != 64 {
		t.Errorf("expected a 64 character token, got %d", len(token))
	}
	if !strings.Contains(mail.emails[0].HTML, "reset-password?token="+token) {
		t.Error("reset email should carry the link")
	}

	if err := svc.ResetPasswordWithToken(ctx, "not-a-token", "NewSecret1!"); !httperr.Is(err, httperr.InvalidInput) {
		t.Errorf("expected invalid input for an unknown token, got %v", err)
	}
	if err := svc.ResetPasswordWithToken(ctx, token, "weak"); !httperr.Is(err, httperr.InvalidInput) {
		t.Errorf("expected invalid input for a weak password, got %v", err)
	}
	if err := svc.ResetPasswordWithToken(ctx, token, "NewSecret1!"); err != nil {
		t.Fatalf("ResetPasswordWithToken: %v", err)
	}
	if _, _, err := svc.Login(ctx, "jane@example.com", "NewSecret1!"); err != nil {
		t.Errorf("login with the new password failed: %v", err)
	}
	if err := svc.ResetPasswordWithToken(ctx, token, "Another1!x"); !httperr.Is(err, httperr.InvalidInput) {
		t.Errorf("a used token must not work twice, got %v", err)
	}
}

func TestPasswordResetTokenExpires(t *testing.T) {
	store, _, svc := newUserFixture()
	ctx := context.Background()
	created, err := svc.CreateUser(ctx, validSignup())
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := svc.RequestPasswordReset(ctx, "jane@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	token := *store.User(created.ID).ResetPasswordToken

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := svc.ResetPasswordWithToken(ctx, token, "NewSecret1!"); !httperr.Is(err, httperr.InvalidInput) {
		t.Errorf("expected an expired token to be rejected, got %v", err)
	}
}

func TestRequireCaller(t *testing.T) {
	if _, err := RequireCaller(context.Background()); !httperr.Is(err, httperr.Unauthenticated) {
		t.Errorf("expected unauthenticated, got %v", err)
	}
	ctx := helpers.WithClaims(context.Background(), &helpers.Claims{UserID: "u1", Role: string(models.RoleClient)})
	if _, err := RequireRealtor(ctx); !httperr.Is(err, httperr.Forbidden) {
		t.Errorf("expected forbidden for a client, got %v", err)
	}
	ctx = helpers.WithClaims(context.Background(), &helpers.Claims{UserID: "u2", Role: string(models.RoleRealtor)})
	if c, err := RequireRealtor(ctx); err != nil || c.UserID != "u2" {
		t.Errorf("RequireRealtor = %+v, %v", c, err)
	}
}
