package auth

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cuemby/swarm/pkg/types"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an issued token stays valid
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrUnauthorized is returned for every failed login or token check
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a caller may not change a password
	ErrForbidden = errors.New("forbidden")
)

// ErrUserNotFound is returned when a user id does not exist
var ErrUserNotFound = errors.New("user not found")

// dummyHash is compared against when the username is unknown so both
// failure paths cost one bcrypt comparison
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("swarm-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// Authenticator verifies credentials and issues tokens
type Authenticator struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// New creates an authenticator signing with key. A zero ttl means
// DefaultTokenTTL.
func New(key string, ttl time.Duration) (*Authenticator, error) {
	if key == "" {
		return nil, errors.New("jwt signing key is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Authenticator{key: []byte(key), ttl: ttl, now: time.Now}, nil
}

// HashPassword hashes a password with the default bcrypt cost
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify checks username and password against the stack's users
func (a *Authenticator) Verify(stack *types.Stack, username, password string) (*types.User, error) {
	user, ok := stack.FindUser(username)
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Login verifies the credentials and returns a token for the user
func (a *Authenticator) Login(stack *types.Stack, username, password string) (string, error) {
	user, err := a.Verify(stack, username, password)
	if err != nil {
		return "", err
	}
	return a.Issue(user.ID)
}

// Issue signs a token whose subject is userID
func (a *Authenticator) Issue(userID uint32) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its subject
func (a *Authenticator) Parse(token string) (uint32, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrUnauthorized)
	}
	return uint32(id), nil
}

// Refresh issues a new token for the subject of a valid one
func (a *Authenticator) Refresh(token string) (string, error) {
	id, err := a.Parse(token)
	if err != nil {
		return "", err
	}
	return a.Issue(id)
}

// ChangePassword sets a new password for target. A user may change their
// own password by supplying the current one; an admin may change anyone's.
func ChangePassword(stack *types.Stack, callerID, targetID uint32, oldPass, newPass string) error {
	if newPass == "" {
		return errors.New("new password is empty")
	}
	caller, ok := stack.FindUserByID(callerID)
	if !ok {
		return ErrUnauthorized
	}
	target, ok := stack.FindUserByID(targetID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUserNotFound, targetID)
	}

	if !caller.Admin {
		if caller.ID != target.ID {
			return ErrForbidden
		}
		if err := bcrypt.CompareHashAndPassword([]byte(target.PassHash), []byte(oldPass)); err != nil {
			return ErrUnauthorized
		}
	}

	hash, err := HashPassword(newPass)
	if err != nil {
		return err
	}
	target.PassHash = hash
	return nil
}
