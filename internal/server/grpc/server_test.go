package grpcserver

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/and161185/bliss-auth/internal/acquire"
	"github.com/and161185/bliss-auth/internal/api/authv1"
	"github.com/and161185/bliss-auth/internal/convert"
	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/identity"
	"github.com/and161185/bliss-auth/internal/limiter"
	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/promote"
	"github.com/and161185/bliss-auth/internal/repository"
	"github.com/and161185/bliss-auth/internal/repository/redisstore"
	"github.com/and161185/bliss-auth/internal/service"
	"github.com/and161185/bliss-auth/internal/token/tokentest"
)

const bufSize = 1 << 20

// memDurable stands in for Postgres; rows are keyed by account identity.
type memDurable struct {
	mu       sync.Mutex
	creds    map[model.AccountID]model.PermanentCredential
	profiles map[model.AccountID]model.Profile
}

var _ repository.DurableStore = (*memDurable)(nil)

func (m *memDurable) FindCredentialByIdentity(_ context.Context, id model.AccountID) (*model.PermanentCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &c, nil
}

func (m *memDurable) FindProfileByIdentity(_ context.Context, id model.AccountID) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &p, nil
}

func (m *memDurable) CreateCredential(_ context.Context, c *model.PermanentCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[c.AccountID]; ok {
		return errs.ErrAlreadyExists
	}
	m.creds[c.AccountID] = *c
	return nil
}

func (m *memDurable) CreateProfile(_ context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.AccountID]; ok {
		return errs.ErrAlreadyExists
	}
	m.profiles[p.AccountID] = *p
	return nil
}

type stack struct {
	client authv1.ClientAuthClient
	mr     *miniredis.Miniredis
	clock  *tokentest.Clock
}

func startStack(t *testing.T, limit int) *stack {
	t.Helper()
	log := zaptest.NewLogger(t)
	clock := tokentest.NewClock(time.Now().UTC().Truncate(time.Second))
	codec := tokentest.Codec(t, tokentest.Key(t), clock)
	ids, err := identity.NewDeriver("magic-word")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	durable := &memDurable{creds: map[model.AccountID]model.PermanentCredential{}, profiles: map[model.AccountID]model.Profile{}}
	opts := service.Options{StoreTimeout: time.Second, Now: clock.Now, Logger: log}
	tm := service.NewTransientManager(ids, codec, redisstore.NewTransientStore(rdb, ""), durable, opts)
	pm := service.NewPermanentManager(ids, codec, durable, tm, opts)
	acq := acquire.New(acquire.NewPassword(), nil, tm, pm, log)
	gate := promote.New(codec, pm, log)

	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RecoverUnary(log),
		LoggingUnary(log),
		ThrottleUnary(limiter.NewRedis(rdb, "", limit, time.Minute), log, authv1.ClientAuth_RegisterBasic_FullMethodName),
		BearerUnary(),
	))
	authv1.RegisterClientAuthServer(gs, New(acq, tm, gate, log))

	lis := bufconn.Listen(bufSize)
	go func() { _ = gs.Serve(lis) }()
	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close(); gs.Stop(); _ = lis.Close() })

	return &stack{client: authv1.NewClientAuthClient(cc), mr: mr, clock: clock}
}

func withBearer(tok string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func TestServer_FullLifecycle(t *testing.T) {
	s := startStack(t, 100)
	ctx := context.Background()
	reg := &authv1.RegisterBasicRequest{Email: "a@x.com", Username: "alice", Password: "pw"}

	r1, err := s.client.RegisterBasic(ctx, reg)
	require.NoError(t, err)
	require.Equal(t, authv1.StatusSuccess, r1.Status)
	require.Equal(t, "TRANSIENT", r1.TokenType)
	require.NotEmpty(t, r1.Token)

	dup, err := s.client.RegisterBasic(ctx, reg)
	require.NoError(t, err)
	require.Equal(t, convert.CodeAlreadyTransient, dup.Code)

	s.clock.Advance(time.Hour)
	re, err := s.client.ReissueTransient(ctx, &authv1.ReissueTransientRequest{Email: "a@x.com"})
	require.NoError(t, err)
	require.Equal(t, authv1.StatusSuccess, re.Status)
	require.Equal(t, r1.RevokeTime, re.RevokeTime)
	require.Equal(t, r1.ExpiresAt, re.ExpiresAt)

	missing, err := s.client.ReissueTransient(ctx, &authv1.ReissueTransientRequest{Email: "b@x.com"})
	require.NoError(t, err)
	require.Equal(t, convert.CodeNotFound, missing.Code)

	noTok, err := s.client.Promote(ctx, &authv1.PromoteRequest{})
	require.NoError(t, err)
	require.Equal(t, convert.CodeUnauthenticated, noTok.Code)

	early, err := s.client.Promote(withBearer(r1.Token), &authv1.PromoteRequest{})
	require.NoError(t, err)
	require.Equal(t, convert.CodeProfileIncomplete, early.Code)

	prof, err := s.client.CompleteProfile(withBearer(r1.Token), &authv1.CompleteProfileRequest{
		Category: "artist", DateOfBirth: "1990-05-17", OriginCountry: "Nepal",
	})
	require.NoError(t, err)
	require.Equal(t, authv1.StatusSuccess, prof.Status)
	require.NotEmpty(t, prof.ImageLink)

	badDate, err := s.client.CompleteProfile(withBearer(r1.Token), &authv1.CompleteProfileRequest{DateOfBirth: "yesterday"})
	require.NoError(t, err)
	require.Equal(t, convert.CodeInvalidInput, badDate.Code)

	s.clock.Advance(time.Minute)
	perm, err := s.client.Promote(withBearer(r1.Token), &authv1.PromoteRequest{})
	require.NoError(t, err)
	require.Equal(t, authv1.StatusSuccess, perm.Status)
	require.Equal(t, "PERMANENT", perm.TokenType)
	require.Greater(t, perm.RevokeTime, r1.RevokeTime)
	require.Equal(t, "a@x.com", perm.Email)

	twice, err := s.client.Promote(withBearer(perm.Token), &authv1.PromoteRequest{})
	require.NoError(t, err)
	require.Equal(t, convert.CodeTokenWrongClass, twice.Code)

	garbage, err := s.client.Promote(withBearer("x.y.z"), &authv1.PromoteRequest{})
	require.NoError(t, err)
	require.Equal(t, convert.CodeTokenMalformed, garbage.Code)

	rot, err := s.client.Rotate(withBearer(perm.Token), &authv1.RotateRequest{})
	require.NoError(t, err)
	require.Equal(t, "PERMANENT", rot.TokenType)

	again, err := s.client.RegisterBasic(ctx, reg)
	require.NoError(t, err)
	require.Equal(t, convert.CodeAlreadyPermanent, again.Code)

	noMail, err := s.client.RegisterBasic(ctx, &authv1.RegisterBasicRequest{Username: "x", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, convert.CodeMissingEmail, noMail.Code)

	s.clock.Advance(25 * time.Hour)
	expired, err := s.client.Promote(withBearer(r1.Token), &authv1.PromoteRequest{})
	require.NoError(t, err)
	require.Equal(t, convert.CodeTokenExpired, expired.Code)
}

func TestServer_OAuthUnknownProvider(t *testing.T) {
	s := startStack(t, 100)

	_, err := s.client.OAuthCallback(context.Background(), &authv1.OAuthCallbackRequest{Provider: "google"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	res, err := s.client.OAuthCallback(context.Background(), &authv1.OAuthCallbackRequest{Provider: "myspace", Code: "c"})
	require.NoError(t, err)
	require.Equal(t, convert.CodeInvalidInput, res.Code)
}

func TestServer_Throttled(t *testing.T) {
	s := startStack(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.client.RegisterBasic(ctx, &authv1.RegisterBasicRequest{Email: "t@x.com", Password: "pw"})
		require.NoError(t, err)
	}
	_, err := s.client.RegisterBasic(ctx, &authv1.RegisterBasicRequest{Email: "t@x.com", Password: "pw"})
	require.Equal(t, codes.ResourceExhausted, status.Code(err))

	_, err = s.client.ReissueTransient(ctx, &authv1.ReissueTransientRequest{Email: "t@x.com"})
	require.NoError(t, err, "reissue is not throttled")
}

func TestServer_StoreDownIsUnavailable(t *testing.T) {
	s := startStack(t, 100)
	s.mr.Close()

	_, err := s.client.ReissueTransient(context.Background(), &authv1.ReissueTransientRequest{Email: "a@x.com"})
	require.Equal(t, codes.Unavailable, status.Code(err))
}
