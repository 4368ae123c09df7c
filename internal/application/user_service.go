package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/julee/knowledge-service/internal/domain/entity"
	repo "github.com/julee/knowledge-service/internal/domain/repository"
	"github.com/julee/knowledge-service/pkg/helpers"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService orchestrates user use cases: listing, creation, partial
// update, credential issuance, avatar upload and search.
type UserService struct {
	Repo         repo.UserRepository
	Orgs         repo.OrganisationRepository
	JWT          *helpers.JWTManager
	GCS          *storage.Client
	GCSBucket    string
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Events       EventPublisher
}

func NewUserService(userRepo repo.UserRepository, orgRepo repo.OrganisationRepository, jwt *helpers.JWTManager, gcs *storage.Client, gcsBucket string, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, events EventPublisher) *UserService {
	return &UserService{
		Repo:         userRepo,
		Orgs:         orgRepo,
		JWT:          jwt,
		GCS:          gcs,
		GCSBucket:    gcsBucket,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Events:       events,
	}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// sessionLive reports whether a session hash exists with a pending expiry.
// go-redis maps a missing key to -2 and a key without expiry to -1; sessions
// are always written with a TTL, so only a positive value counts.
func sessionLive(ttl time.Duration) bool {
	return ttl > 0
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// List returns all users, or the members of one organisation when
// organisationID is non-nil.
func (s *UserService) List(ctx context.Context, organisationID *string) ([]*entity.User, error) {
	users, err := s.Repo.List(ctx, organisationID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

type CreateUserInput struct {
	Name           string
	Email          string
	Password       string
	AvatarURL      string
	OrganisationID *string
}

// Create validates the input, checks the organisation reference if one is
// given, and stores the user. The stored entity carries the generated id.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	var v validate
	v.require("name", in.Name)
	v.require("email", in.Email)
	v.require("password", in.Password)
	if err := v.err(); err != nil {
		return nil, err
	}

	if in.OrganisationID != nil {
		if _, err := s.Orgs.GetByID(ctx, *in.OrganisationID); err != nil {
			return nil, fmt.Errorf("organisation %s: %w", *in.OrganisationID, err)
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:          in.Email,
		Password:       hash,
		Name:           in.Name,
		AvatarURL:      in.AvatarURL,
		OrganisationID: in.OrganisationID,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	publishEvent(ctx, s.Events, s.Logger, EventUserCreated, u.ID, map[string]any{
		"email": u.Email,
		"name":  u.Name,
	})
	_ = s.indexUser(ctx, u)
	return u, nil
}

type UpdateUserInput struct {
	Name           *string
	AvatarURL      *string
	OrganisationID *string
}

// Update applies partial field changes to an existing user. Moving the user
// into an organisation checks the reference first.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*entity.User, error) {
	var v validate
	v.require("id", id)
	if in.Name != nil {
		v.require("name", *in.Name)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if in.OrganisationID != nil {
		if _, err := s.Orgs.GetByID(ctx, *in.OrganisationID); err != nil {
			return nil, fmt.Errorf("organisation %s: %w", *in.OrganisationID, err)
		}
	}

	u, err := s.Repo.Update(ctx, id, repo.UserUpdate{
		Name:           in.Name,
		AvatarURL:      in.AvatarURL,
		OrganisationID: in.OrganisationID,
	})
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		// Refresh the cached session only when one is live; an update must
		// not materialise an unexpiring session hash for a logged-out user.
		if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && sessionLive(ttl) {
			pipe := s.Redis.Pipeline()
			pipe.HSet(ctx, key, map[string]any{
				"name":       u.Name,
				"avatar_url": u.AvatarURL,
				"updated_at": nowRFC3339(),
			})
			pipe.Expire(ctx, key, ttl)
			if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
				s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
			}
		}
	}

	publishEvent(ctx, s.Events, s.Logger, EventUserUpdated, u.ID, map[string]any{
		"email": u.Email,
		"name":  u.Name,
	})
	_ = s.indexUser(ctx, u)
	return u, nil
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Authenticate validates email/password and returns the user without issuing
// tokens. An unknown email is indistinguishable from a wrong password, but
// storage faults keep their taxonomy so the caller knows a retry may help.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate %s: %w", email, err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates an access/refresh pair and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"avatar_url": u.AvatarURL,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

type LoginResult struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return &LoginResult{UserID: u.ID, Email: u.Email, Name: u.Name}, pair, nil
}

// Refresh rotates the session id and both tokens. The refresh token's sid
// must match the live session.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, "", ErrInvalidCredentials
		}
		return TokenPair{}, "", fmt.Errorf("refresh %s: %w", claims.UserID, err)
	}
	if s.Redis != nil {
		key := sessionKey(u.ID)
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"sid":        sid,
			"updated_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		_, _ = pipe.Exec(ctx)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, u.ID, nil
}

// UploadAvatar stores the image in GCS and points the user's avatar at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user %s: %w", userID, err)
	}
	if s.GCS == nil || s.GCSBucket == "" {
		// Mapped to the retryable code at the boundary; the user record is fine,
		// only the object store is missing.
		return "", fmt.Errorf("avatar storage not configured: %w", repo.ErrUnavailable)
	}
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, id+ext))
	url, err := helpers.UploadImageToGCS(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u, err = s.Repo.Update(ctx, u.ID, repo.UserUpdate{AvatarURL: &url})
	if err != nil {
		return "", fmt.Errorf("update user %s: %w", userID, err)
	}
	_ = s.indexUser(ctx, u)
	return url, nil
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	if u.OrganisationID != nil {
		doc["organisation_id"] = *u.OrganisationID
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

// Search performs a multi_match query over name and email.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
