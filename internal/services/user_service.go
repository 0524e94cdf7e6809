package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = time.Hour

type UserService struct {
	userRepo models.UserRepo
	tokens   *helpers.TokenManager
	mail     EmailQueue
	images   ImageUploader
	appURL   string
	logger   *slog.Logger
	hashCost int
	now      func() time.Time
}

func NewUserService(userRepo models.UserRepo, tokens *helpers.TokenManager, mail EmailQueue, images ImageUploader, appURL string, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		mail:     mail,
		images:   images,
		appURL:   appURL,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

type CreateUserInput struct {
	FirstName       string `validate:"required,min=2"`
	LastName        string `validate:"required,min=2"`
	Gender          string `validate:"required,oneof=Male Female Other"`
	PhoneNumber     string `validate:"required"`
	Email           string `validate:"required"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required"`
	ProfilePicture  string
	Role            string `validate:"required,oneof=CLIENT REALTOR"`
}

func (us *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = helpers.NormalizeEmail(in.Email)

	if err := models.Validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if !helpers.IsValidEmail(in.Email) {
		return nil, httperr.Invalid("invalid email address")
	}
	if !helpers.IsValidPhone(in.PhoneNumber) {
		return nil, httperr.Invalid("phone number must look like 123-456-7890")
	}
	if !helpers.IsPasswordStrong(in.Password) {
		return nil, httperr.Invalid("password must be at least 8 characters and include upper and lower case letters, a number and one of @$!%%*?&")
	}
	if in.Password != in.ConfirmPassword {
		return nil, httperr.Invalid("passwords do not match")
	}

	if _, err := us.userRepo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, httperr.New(httperr.Conflict, "user already exists")
	} else if !httperr.Is(err, httperr.NotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), us.hashCost)
	if err != nil {
		return nil, err
	}

	picture := models.DefaultProfilePicture
	if p := strings.TrimSpace(in.ProfilePicture); p != "" {
		picture, err = us.uploadProfilePicture(ctx, p)
		if err != nil {
			return nil, err
		}
	}

	now := us.now().UTC()
	user := &models.User{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Gender:         in.Gender,
		PhoneNumber:    in.PhoneNumber,
		Email:          in.Email,
		Password:       string(hash),
		ProfilePicture: picture,
		Role:           models.Role(in.Role),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return us.userRepo.CreateUser(ctx, user)
}

func (us *UserService) uploadProfilePicture(ctx context.Context, picture string) (string, error) {
	if us.images == nil {
		return picture, nil
	}
	urls, err := us.images.UploadImages(ctx, []string{picture}, helpers.ProfileFolder)
	if err != nil {
		return "", httperr.Wrap(httperr.Upstream, err, "failed to upload profile picture")
	}
	if len(urls) == 0 {
		return models.DefaultProfilePicture, nil
	}
	return urls[0], nil
}

// Login checks the credentials and returns a signed token for the user.
func (us *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = helpers.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, httperr.Invalid("email and password are required")
	}

	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if httperr.Is(err, httperr.NotFound) {
			return "", nil, httperr.New(httperr.Unauthenticated, "invalid email or password")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, httperr.New(httperr.Unauthenticated, "invalid email or password")
	}

	token, err := us.tokens.Generate(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Authenticate resolves a bearer token into claims for an account that still exists.
func (us *UserService) Authenticate(ctx context.Context, token string) (*helpers.Claims, error) {
	claims, err := us.tokens.Validate(token)
	if err != nil {
		return nil, httperr.Wrap(httperr.Unauthenticated, err, "invalid or expired token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, httperr.New(httperr.Unauthenticated, "invalid or expired token")
	}
	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if httperr.Is(err, httperr.NotFound) {
			return nil, httperr.New(httperr.Unauthenticated, "user no longer exists")
		}
		return nil, err
	}
	// the stored role wins over whatever was signed into the token
	claims.Role = string(user.Role)
	claims.Email = user.Email
	return claims, nil
}

func (us *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := models.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	return us.userRepo.GetUserByID(ctx, oid)
}

func (us *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return us.userRepo.ListUsers(ctx)
}

// UsersByID loads the given users keyed by hex id. Unknown ids are skipped.
func (us *UserService) UsersByID(ctx context.Context, ids []primitive.ObjectID) (map[string]*models.User, error) {
	users, err := us.userRepo.GetUsersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.User, len(users))
	for _, u := range users {
		out[u.ID.Hex()] = u
	}
	return out, nil
}

type UpdateUserInput struct {
	FirstName      *string
	LastName       *string
	PhoneNumber    *string
	ProfilePicture *string
}

func (us *UserService) UpdateUser(ctx context.Context, caller *helpers.Claims, id string, in UpdateUserInput) (*models.User, error) {
	oid, err := models.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	if caller == nil || !caller.IsOwner(oid.Hex()) {
		return nil, httperr.New(httperr.Forbidden, "you can only update your own profile")
	}

	update := models.UserUpdate{}
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if len(v) < 2 {
			return nil, httperr.Invalid("firstName must be at least 2 characters")
		}
		update.FirstName = &v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		if len(v) < 2 {
			return nil, httperr.Invalid("lastName must be at least 2 characters")
		}
		update.LastName = &v
	}
	if in.PhoneNumber != nil {
		v := strings.TrimSpace(*in.PhoneNumber)
		if !helpers.IsValidPhone(v) {
			return nil, httperr.Invalid("phone number must look like 123-456-7890")
		}
		update.PhoneNumber = &v
	}
	if in.ProfilePicture != nil {
		v, err := us.uploadProfilePicture(ctx, strings.TrimSpace(*in.ProfilePicture))
		if err != nil {
			return nil, err
		}
		update.ProfilePicture = &v
	}
	if update.Empty() {
		return nil, httperr.Invalid("no fields to update")
	}
	return us.userRepo.UpdateUser(ctx, oid, update)
}

func (us *UserService) DeleteUser(ctx context.Context, caller *helpers.Claims, id string) error {
	oid, err := models.ParseID("id", id)
	if err != nil {
		return err
	}
	if caller == nil || !caller.IsOwner(oid.Hex()) {
		return httperr.New(httperr.Forbidden, "you can only delete your own account")
	}
	return us.userRepo.DeleteUser(ctx, oid)
}

// RequestPasswordReset stores a one hour reset token and emails the reset link.
func (us *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = helpers.NormalizeEmail(email)
	if !helpers.IsValidEmail(email) {
		return httperr.Invalid("invalid email address")
	}
	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if httperr.Is(err, httperr.NotFound) {
			return httperr.New(httperr.NotFound, "no account found with this email")
		}
		return err
	}

	token, err := helpers.GenerateResetToken()
	if err != nil {
		return err
	}
	if err := us.userRepo.SetResetToken(ctx, user.ID, token, us.now().UTC().Add(resetTokenTTL)); err != nil {
		return err
	}

	msg, err := notify.PasswordReset(user.Email, us.appURL+"reset-password?token="+token)
	if err != nil {
		us.logger.Error("failed to render reset email", "user_id", user.ID.Hex(), "error", err)
		return nil
	}
	us.mail.Enqueue(msg)
	return nil
}

func (us *UserService) ResetPasswordWithToken(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return httperr.Invalid("token is required")
	}
	if !helpers.IsPasswordStrong(password) {
		return httperr.Invalid("password must be at least 8 characters and include upper and lower case letters, a number and one of @$!%%*?&")
	}

	user, err := us.userRepo.GetUserByResetToken(ctx, token, us.now().UTC())
	if err != nil {
		if httperr.Is(err, httperr.NotFound) {
			return httperr.Invalid("password reset token is invalid or has expired")
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), us.hashCost)
	if err != nil {
		return err
	}
	return us.userRepo.SetPassword(ctx, user.ID, string(hash))
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var errNoCaller = errors.New("no authenticated caller")

// RequireCaller returns the authenticated identity or an unauthenticated error.
func RequireCaller(ctx context.Context) (*helpers.Claims, error) {
	c, ok := helpers.ClaimsFrom(ctx)
	if !ok {
		return nil, httperr.Wrap(httperr.Unauthenticated, errNoCaller, "authentication required")
	}
	return c, nil
}

// RequireRealtor returns the caller if it has the realtor role.
func RequireRealtor(ctx context.Context) (*helpers.Claims, error) {
	c, err := RequireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if !c.IsRealtor() {
		return nil, httperr.New(httperr.Forbidden, "only realtors can do this")
	}
	return c, nil
}
