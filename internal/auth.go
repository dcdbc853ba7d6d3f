package internal

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// Claims is the identity carried by a session token.
type Claims struct {
	UserID int    `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration, issuer string) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

// Issue signs a token for the user valid for the configured TTL.
func (t *Tokens) Issue(userID int, role string) (string, error) {
	now := t.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    t.issuer,
		},
	})
	return tok.SignedString(t.secret)
}

// Verify checks signature, algorithm and expiry. Every failure is ErrUnauthorized.
func (t *Tokens) Verify(tokenStr string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		return nil, ErrUnauthorized
	}
	cl, ok := tok.Claims.(*Claims)
	if !ok {
		return nil, ErrUnauthorized
	}
	return cl, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func bearerToken(header string) string {
	scheme, tok, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// ------------------- Handlers -------------------

func Register(repo Repository, allowAdminSignup bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, validationErr("bad json"))
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)
		if req.Username == "" || req.Email == "" || req.Password == "" {
			fail(c, validationErr("fill all fields"))
			return
		}

		role := req.Role
		switch role {
		case "":
			role = RoleUser
		case RoleUser:
		case RoleAdmin:
			if !allowAdminSignup {
				fail(c, forbiddenErr("admin registration is disabled"))
				return
			}
		default:
			fail(c, validationErr("unknown role"))
			return
		}

		hash, err := HashPassword(req.Password)
		if err != nil {
			// bcrypt rejects passwords longer than 72 bytes.
			fail(c, validationErr("bad password"))
			return
		}

		id, err := repo.CreateUser(c.Request.Context(), User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         role,
		})
		if err != nil {
			failStore(c, err, "failed to register user", "username or email already exists")
			return
		}
		logAction(c, "register", "user_id", id, "role", role)
		c.JSON(http.StatusOK, gin.H{"message": "user registered"})
	}
}

func Login(repo Repository, tokens *Tokens, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, validationErr("bad json"))
			return
		}
		if req.Username == "" || req.Password == "" {
			fail(c, validationErr("fill all fields"))
			return
		}

		u, err := repo.UserByUsername(c.Request.Context(), req.Username)
		if errors.Is(err, ErrUserNotFound) {
			m.loginOutcome("unknown_user")
			fail(c, authenticationErr("user not found"))
			return
		}
		if err != nil {
			failStore(c, err, "failed to log in", "failed to log in")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			m.loginOutcome("bad_password")
			fail(c, authenticationErr("invalid password"))
			return
		}

		s, err := tokens.Issue(u.ID, u.Role)
		if err != nil {
			_ = c.Error(err)
			fail(c, storageErr("failed to issue token"))
			return
		}
		m.loginOutcome("success")
		logAction(c, "login", "user_id", u.ID)
		c.JSON(http.StatusOK, gin.H{"token": s})
	}
}
