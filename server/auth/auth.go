// Package auth authenticates clients of the compile-as-a-service HTTP API
// (server/api, cmd/cilantro-serve): callers hold a bcrypt-hashed API key and
// exchange it for a short-lived JWT bearer token, the same two-step shape
// TunaQuest's server/token.go uses for username/password login, adapted here
// since cilantro-serve has no notion of a user account, only named API
// keys.
//
// Keys are persisted with modernc.org/sqlite (pure Go, no cgo), the same
// driver internal/history uses. Database errors are wrapped with
// server/serr's multi-cause Error so callers can test for them uniformly
// with errors.Is(err, serr.ErrDB) alongside the package's own sentinels.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
	"golang.org/x/crypto/bcrypt"

	"github.com/shine00chang/cilantro/server/serr"
)

// ErrBadCredentials is returned by Verify when name does not exist or secret
// does not match its stored hash.
var ErrBadCredentials = errors.New("the supplied API key name/secret combination is incorrect")

// ErrNotFound is returned when no key with a given ID exists.
var ErrNotFound = errors.New("no such API key")

// issuer is the JWT "iss" claim used by every token this package issues and
// required of every token it validates.
const issuer = "cilantro-serve"

// Key is one registered API key's metadata. It carries no secret: Issue
// returns the plaintext once, and only its bcrypt digest is persisted.
type Key struct {
	ID      uuid.UUID
	Name    string
	Created time.Time
}

// Store is a sqlite-backed API key registry.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at file and ensures
// its schema exists.
func Open(file string) (*Store, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		hashed_secret TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(stmt); err != nil {
		return serr.WrapDB("init schema", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Issue generates a new random secret for name, stores its bcrypt hash, and
// returns the key's metadata along with the plaintext secret. The plaintext
// is never stored and is returned exactly once; the caller must record it.
func (s *Store) Issue(ctx context.Context, name string) (Key, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return Key{}, "", fmt.Errorf("generate secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Key{}, "", fmt.Errorf("hash secret: %w", err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return Key{}, "", fmt.Errorf("generate id: %w", err)
	}
	now := time.Now()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, name, hashed_secret, created) VALUES (?, ?, ?, ?)`,
		id.String(), name, string(hash), now.Unix())
	if err != nil {
		return Key{}, "", serr.WrapDB("insert api key", err)
	}

	return Key{ID: id, Name: name, Created: now}, secret, nil
}

// Verify checks secret against the stored hash for name and returns the
// key's metadata on success.
func (s *Store) Verify(ctx context.Context, name, secret string) (Key, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, hashed_secret, created FROM api_keys WHERE name = ?`, name)

	var idStr, hash string
	var createdUnix int64
	if err := row.Scan(&idStr, &hash, &createdUnix); err != nil {
		if err == sql.ErrNoRows {
			return Key{}, ErrBadCredentials
		}
		return Key{}, serr.WrapDB("query api key", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return Key{}, ErrBadCredentials
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return Key{}, fmt.Errorf("parse id %q: %w", idStr, err)
	}
	return Key{ID: id, Name: name, Created: time.Unix(createdUnix, 0)}, nil
}

// byID is used by ValidateBearer to confirm a key still exists; unlike
// TunaQuest's user tokens, a key has no password or logout time to fold into
// the signing key, so revocation works by deleting the row outright rather
// than by invalidating a per-user signing secret.
func (s *Store) byID(ctx context.Context, id uuid.UUID) (Key, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, created FROM api_keys WHERE id = ?`, id.String())
	var name string
	var createdUnix int64
	if err := row.Scan(&name, &createdUnix); err != nil {
		if err == sql.ErrNoRows {
			return Key{}, ErrNotFound
		}
		return Key{}, serr.WrapDB("query api key by id", err)
	}
	return Key{ID: id, Name: name, Created: time.Unix(createdUnix, 0)}, nil
}

// GenerateJWT issues a bearer token for key, signed with secret, valid for
// one hour. Grounded on TunaQuest's server.token.go generateJWT.
func GenerateJWT(secret []byte, key Key) (string, error) {
	claims := &jwt.MapClaims{
		"iss": issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
		"sub": key.ID.String(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(secret)
}

// ValidateBearer parses authHeader, the value of an Authorization header,
// validates the JWT it carries against secret and store, and returns the key
// it identifies.
func ValidateBearer(ctx context.Context, authHeader string, secret []byte, store *Store) (Key, error) {
	tokStr, err := bearerToken(authHeader)
	if err != nil {
		return Key{}, err
	}

	var key Key
	_, err = jwt.Parse(tokStr, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}
		id, err := uuid.Parse(subj)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subject UUID: %w", err)
		}
		key, err = store.byID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("subject could not be validated: %w", err)
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))
	if err != nil {
		return Key{}, err
	}

	return key, nil
}

func bearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(strings.TrimSpace(parts[0]), "bearer") {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}
	return strings.TrimSpace(parts[1]), nil
}
