package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/julee/knowledge-service/internal/domain/repository"
	"github.com/julee/knowledge-service/pkg/helpers"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newUserFixture() (*UserService, *fakeUserRepo, *fakeOrgRepo, *capturePublisher) {
	users := newFakeUserRepo()
	orgs := newFakeOrgRepo()
	events := &capturePublisher{}
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	svc := NewUserService(users, orgs, jwt, nil, "", nil, testLogger(), nil, "", events)
	return svc, users, orgs, events
}

func TestUserServiceCreate(t *testing.T) {
	svc, _, _, events := newUserFixture()

	u, err := svc.Create(context.Background(), CreateUserInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2secret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.Nil(t, u.OrganisationID)

	// The stored password is a bcrypt hash, never the plain text.
	assert.NotEqual(t, "hunter2secret", u.Password)
	assert.True(t, helpers.CompareHashAndPassword(u.Password, "hunter2secret"))

	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "ada@example.com", got.Email)

	require.Equal(t, []string{EventUserCreated}, events.types())
	assert.Equal(t, u.ID, events.events[0].EntityID)
	assert.Equal(t, "ada@example.com", events.events[0].Data["email"])
}

func TestUserServiceCreateMissingFields(t *testing.T) {
	svc, users, _, _ := newUserFixture()

	_, err := svc.Create(context.Background(), CreateUserInput{Email: "  "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")

	all, err := users.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserServiceCreateUnknownOrganisation(t *testing.T) {
	svc, users, _, events := newUserFixture()

	_, err := svc.Create(context.Background(), CreateUserInput{
		Name:           "Ada",
		Email:          "ada@example.com",
		Password:       "hunter2secret",
		OrganisationID: strptr("no-such-org"),
	})
	require.ErrorIs(t, err, repo.ErrNotFound)

	// Nothing persisted, nothing published.
	all, err := users.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, events.types())
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	in := CreateUserInput{Name: "Ada", Email: "ada@example.com", Password: "hunter2secret"}
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	in.Name = "Other Ada"
	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, repo.ErrConflict)

	all, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ada", all[0].Name)
}

func TestUserServiceUpdatePartial(t *testing.T) {
	svc, _, _, events := newUserFixture()

	u, err := svc.Create(context.Background(), CreateUserInput{
		Name:      "Ada",
		Email:     "ada@example.com",
		Password:  "hunter2secret",
		AvatarURL: "https://example.com/a.png",
	})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), u.ID, UpdateUserInput{Name: strptr("Ada L.")})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	// Untouched fields survive a partial update.
	assert.Equal(t, "https://example.com/a.png", got.AvatarURL)
	assert.Equal(t, "ada@example.com", got.Email)

	assert.Equal(t, []string{EventUserCreated, EventUserUpdated}, events.types())
}

func TestUserServiceUpdateNotFound(t *testing.T) {
	svc, users, _, _ := newUserFixture()

	_, err := svc.Update(context.Background(), "missing", UpdateUserInput{Name: strptr("x")})
	require.ErrorIs(t, err, repo.ErrNotFound)

	all, err := users.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserServiceUpdateIntoUnknownOrganisation(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	u, err := svc.Create(context.Background(), CreateUserInput{Name: "Ada", Email: "ada@example.com", Password: "hunter2secret"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), u.ID, UpdateUserInput{OrganisationID: strptr("no-such-org")})
	require.ErrorIs(t, err, repo.ErrNotFound)

	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OrganisationID)
}

func TestUserServiceListFilterByOrganisation(t *testing.T) {
	svc, _, orgs, _ := newUserFixture()

	acme := orgEntity(t, orgs, "Acme")
	other := orgEntity(t, orgs, "Other")

	_, err := svc.Create(context.Background(), CreateUserInput{Name: "Ada", Email: "ada@example.com", Password: "hunter2secret", OrganisationID: &acme})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateUserInput{Name: "Bob", Email: "bob@example.com", Password: "hunter2secret", OrganisationID: &other})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateUserInput{Name: "Eve", Email: "eve@example.com", Password: "hunter2secret"})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	members, err := svc.List(context.Background(), &acme)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Ada", members[0].Name)
}

func TestUserServiceAuthenticate(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	_, err := svc.Create(context.Background(), CreateUserInput{Name: "Ada", Email: "ada@example.com", Password: "hunter2secret"})
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "ada@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = svc.Authenticate(context.Background(), "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "hunter2secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserServiceLoginAndRefresh(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	u, err := svc.Create(context.Background(), CreateUserInput{Name: "Ada", Email: "ada@example.com", Password: "hunter2secret"})
	require.NoError(t, err)

	res, pair, err := svc.Login(context.Background(), "ada@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.NotEmpty(t, claims.SessionID)

	next, userID, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	// Refresh rotates the session id.
	nextClaims, err := svc.JWT.ParseAccessToken(next.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, claims.SessionID, nextClaims.SessionID)
}

func TestUserServiceLoginDuringOutage(t *testing.T) {
	svc, users, _, _ := newUserFixture()
	users.fail = repo.ErrUnavailable

	// A storage outage must stay retryable, not masquerade as a bad password.
	_, _, err := svc.Login(context.Background(), "ada@example.com", "hunter2secret")
	require.ErrorIs(t, err, repo.ErrUnavailable)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionLive(t *testing.T) {
	// go-redis TTL results: -2 missing key, -1 no expiry, >0 live session.
	assert.False(t, sessionLive(-2*time.Second))
	assert.False(t, sessionLive(-1*time.Second))
	assert.False(t, sessionLive(0))
	assert.True(t, sessionLive(time.Minute))
}

func TestUserServiceRefreshRejectsGarbage(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	_, _, err := svc.Refresh(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserServiceUploadAvatarWithoutGCS(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	u, err := svc.Create(context.Background(), CreateUserInput{Name: "Ada", Email: "ada@example.com", Password: "hunter2secret"})
	require.NoError(t, err)

	// Without an object store the failure is retryable, not internal.
	_, err = svc.UploadAvatar(context.Background(), u.ID, strings.NewReader("png"), "a.png", "image/png")
	require.ErrorIs(t, err, repo.ErrUnavailable)
}

func TestUserServiceListUnavailable(t *testing.T) {
	svc, users, _, _ := newUserFixture()
	users.fail = repo.ErrUnavailable

	_, err := svc.List(context.Background(), nil)
	require.ErrorIs(t, err, repo.ErrUnavailable)
}

func TestUserServiceCreateSurvivesEventFailure(t *testing.T) {
	svc, _, _, events := newUserFixture()
	events.fail = errors.New("broker down")

	u, err := svc.Create(context.Background(), CreateUserInput{Name: "Ada", Email: "ada@example.com", Password: "hunter2secret"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserServiceSearchWithoutES(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	hits, err := svc.Search(context.Background(), "ada", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// orgEntity seeds an organisation and returns its id.
func orgEntity(t *testing.T, orgs *fakeOrgRepo, name string) string {
	t.Helper()
	svc := NewOrganisationService(orgs, testLogger(), nil)
	o, err := svc.Create(context.Background(), CreateOrganisationInput{Name: name})
	require.NoError(t, err)
	return o.ID
}
