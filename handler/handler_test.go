package handler

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sljivkov/feedoracle/domain"
	"github.com/sljivkov/feedoracle/oracle"
)

var (
	registryAddr = common.HexToAddress("0x47Fb2585D2C56Fe188D0E6ec628a38b74fCeeeDf")
	usdc         = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	uni          = common.HexToAddress("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984")
	crv          = common.HexToAddress("0xD533a949740bb3306d119CC777fa900bA034cd52")

	now = time.Unix(1_700_000_000, 0)
)

// MockRegistry implements domain.FeedRegistry for testing
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Decimals(ctx context.Context, base, quote common.Address) (uint8, error) {
	args := m.Called(ctx, base, quote)

	return args.Get(0).(uint8), args.Error(1)
}

func (m *MockRegistry) LatestRoundData(ctx context.Context, base, quote common.Address) (domain.RoundData, error) {
	args := m.Called(ctx, base, quote)

	return args.Get(0).(domain.RoundData), args.Error(1)
}

type testServer struct {
	routes   http.Handler
	adapter  *oracle.Adapter
	registry *MockRegistry
	ownerKey *ecdsa.PrivateKey
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	reg := new(MockRegistry)
	adapter, err := oracle.New(registryAddr, crypto.PubkeyToAddress(key.PublicKey),
		func(common.Address) (domain.FeedRegistry, error) { return reg, nil },
		oracle.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	h := New(adapter, zap.NewNop())
	h.now = func() time.Time { return now }

	return &testServer{
		routes:   h.Routes(),
		adapter:  adapter,
		registry: reg,
		ownerKey: key,
	}
}

func (s *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func (s *testServer) post(t *testing.T, path string, key *ecdsa.PrivateKey, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	if key != nil {
		sig, err := Sign(key, raw)
		require.NoError(t, err)
		req.Header.Set(SignatureHeader, sig)
	}

	rec := httptest.NewRecorder()
	s.routes.ServeHTTP(rec, req)

	return rec
}

func deadline() int64 {
	return now.Add(time.Minute).Unix()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))

	return v
}

func TestGetPrice(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.adapter.SetTimeGaps(s.adapter.Owner(),
		[]common.Address{usdc, uni}, []time.Duration{24 * time.Hour, time.Hour}))

	s.registry.On("LatestRoundData", mock.Anything, usdc, domain.USD).Return(domain.RoundData{
		Answer: big.NewInt(100000000), UpdatedAt: now.Add(-time.Minute),
	}, nil)
	s.registry.On("Decimals", mock.Anything, usdc, domain.USD).Return(uint8(8), nil)
	s.registry.On("LatestRoundData", mock.Anything, uni, domain.USD).Return(domain.RoundData{
		Answer: big.NewInt(600000000), UpdatedAt: now.Add(-2 * time.Hour),
	}, nil)
	s.registry.On("Decimals", mock.Anything, uni, domain.USD).Return(uint8(8), nil)

	t.Run("ok", func(t *testing.T) {
		rec := s.get(t, "/prices/"+usdc.Hex())
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[PriceResponse](t, rec)
		assert.Equal(t, usdc, resp.Asset)
		assert.Equal(t, usdc, resp.Target)
		assert.Equal(t, "1000000000000000000", resp.Price)
		assert.Equal(t, "1.000000000000000000", resp.Formatted)
	})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "invalid address", path: "/prices/0x123", status: http.StatusBadRequest},
		{name: "no max delay", path: "/prices/" + crv.Hex(), status: http.StatusNotFound},
		{name: "outdated", path: "/prices/" + uni.Hex(), status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.get(t, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestGetPriceFeedNotFound(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.adapter.SetTimeGaps(s.adapter.Owner(), []common.Address{crv}, []time.Duration{time.Hour}))
	s.registry.On("LatestRoundData", mock.Anything, crv, domain.USD).Return(domain.RoundData{}, domain.ErrFeedNotFound)

	rec := s.get(t, "/prices/"+crv.Hex())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Feed not found", decode[ErrorResponse](t, rec).Error)
}

func TestReadAccessors(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.adapter.SetTimeGaps(s.adapter.Owner(), []common.Address{usdc}, []time.Duration{time.Hour}))
	require.NoError(t, s.adapter.SetTokenRemappings(s.adapter.Owner(), []common.Address{crv}, []common.Address{uni}))

	rec := s.get(t, "/registry")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, registryAddr, decode[AddressResponse](t, rec).Address)

	rec = s.get(t, "/owner")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, s.adapter.Owner(), decode[AddressResponse](t, rec).Address)

	rec = s.get(t, "/time-gaps/"+usdc.Hex())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, TimeGapResponse{Asset: usdc, Configured: true, Seconds: 3600}, decode[TimeGapResponse](t, rec))

	rec = s.get(t, "/time-gaps/"+uni.Hex())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[TimeGapResponse](t, rec).Configured)

	rec = s.get(t, "/remappings/"+crv.Hex())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uni, decode[RemappingResponse](t, rec).Target)

	rec = s.get(t, "/remappings/"+usdc.Hex())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usdc, decode[RemappingResponse](t, rec).Target)

	rec = s.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminTimeGaps(t *testing.T) {
	s := newTestServer(t)

	stranger, err := crypto.GenerateKey()
	require.NoError(t, err)

	tests := []struct {
		name   string
		key    *ecdsa.PrivateKey
		req    TimeGapsRequest
		status int
	}{
		{
			name:   "unsigned",
			req:    TimeGapsRequest{Assets: []common.Address{usdc}, Gaps: []uint64{3600}, Deadline: deadline()},
			status: http.StatusUnauthorized,
		},
		{
			name:   "expired",
			key:    s.ownerKey,
			req:    TimeGapsRequest{Assets: []common.Address{usdc}, Gaps: []uint64{3600}, Deadline: now.Add(-time.Second).Unix()},
			status: http.StatusUnauthorized,
		},
		{
			name:   "deadline too far ahead",
			key:    s.ownerKey,
			req:    TimeGapsRequest{Assets: []common.Address{usdc}, Gaps: []uint64{3600}, Deadline: now.Add(MaxRequestTTL + time.Second).Unix()},
			status: http.StatusUnauthorized,
		},
		{
			name:   "not owner",
			key:    stranger,
			req:    TimeGapsRequest{Assets: []common.Address{usdc}, Gaps: []uint64{3600}, Deadline: deadline()},
			status: http.StatusForbidden,
		},
		{
			name:   "length mismatch",
			key:    s.ownerKey,
			req:    TimeGapsRequest{Assets: []common.Address{usdc, uni}, Gaps: []uint64{3600}, Deadline: deadline()},
			status: http.StatusBadRequest,
		},
		{
			name:   "gap too large",
			key:    s.ownerKey,
			req:    TimeGapsRequest{Assets: []common.Address{usdc, uni}, Gaps: []uint64{86400, 259200}, Deadline: deadline()},
			status: http.StatusBadRequest,
		},
		{
			name:   "gap beyond duration range",
			key:    s.ownerKey,
			req:    TimeGapsRequest{Assets: []common.Address{usdc}, Gaps: []uint64{math.MaxUint64}, Deadline: deadline()},
			status: http.StatusBadRequest,
		},
		{
			name:   "zero asset",
			key:    s.ownerKey,
			req:    TimeGapsRequest{Assets: []common.Address{usdc, {}}, Gaps: []uint64{86400, 86400}, Deadline: deadline()},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.post(t, "/admin/time-gaps", tt.key, tt.req)
			assert.Equal(t, tt.status, rec.Code)

			_, ok, err := s.adapter.TimeGap(usdc)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	t.Run("oversized gap reports its value", func(t *testing.T) {
		rec := s.post(t, "/admin/time-gaps", s.ownerKey, TimeGapsRequest{
			Assets:   []common.Address{usdc},
			Gaps:     []uint64{math.MaxUint64},
			Deadline: deadline(),
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		msg := decode[ErrorResponse](t, rec).Error
		assert.Contains(t, msg, "time gap too large")
		assert.Contains(t, msg, "18446744073709551615s")
	})

	t.Run("deadline at the limit", func(t *testing.T) {
		rec := s.post(t, "/admin/time-gaps", s.ownerKey, TimeGapsRequest{
			Assets:   []common.Address{crv},
			Gaps:     []uint64{60},
			Deadline: now.Add(MaxRequestTTL).Unix(),
		})
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("owner", func(t *testing.T) {
		rec := s.post(t, "/admin/time-gaps", s.ownerKey, TimeGapsRequest{
			Assets:   []common.Address{usdc, uni},
			Gaps:     []uint64{86400, 3600},
			Deadline: deadline(),
		})
		require.Equal(t, http.StatusNoContent, rec.Code)

		gap, ok, err := s.adapter.TimeGap(uni)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, time.Hour, gap)
	})
}

func TestAdminRemappingsRegistryOwner(t *testing.T) {
	s := newTestServer(t)

	rec := s.post(t, "/admin/remappings", s.ownerKey, RemappingsRequest{
		Assets: []common.Address{crv, {}}, Remaps: []common.Address{uni, uni}, Deadline: deadline(),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	target, err := s.adapter.Remapping(crv)
	require.NoError(t, err)
	assert.Equal(t, crv, target)

	rec = s.post(t, "/admin/remappings", s.ownerKey, RemappingsRequest{
		Assets: []common.Address{crv}, Remaps: []common.Address{uni}, Deadline: deadline(),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	target, err = s.adapter.Remapping(crv)
	require.NoError(t, err)
	assert.Equal(t, uni, target)

	rec = s.post(t, "/admin/registry", s.ownerKey, RegistryRequest{Deadline: deadline()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	next := common.HexToAddress("0x00000000000000000000000000000000000000f2")
	rec = s.post(t, "/admin/registry", s.ownerKey, RegistryRequest{Registry: next, Deadline: deadline()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, next, decode[AddressResponse](t, rec).Address)

	newOwner, err := crypto.GenerateKey()
	require.NoError(t, err)
	newOwnerAddr := crypto.PubkeyToAddress(newOwner.PublicKey)

	rec = s.post(t, "/admin/owner", s.ownerKey, OwnerRequest{Owner: newOwnerAddr, Deadline: deadline()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, newOwnerAddr, s.adapter.Owner())

	// the previous owner is locked out
	rec = s.post(t, "/admin/remappings", s.ownerKey, RemappingsRequest{
		Assets: []common.Address{crv}, Remaps: []common.Address{crv}, Deadline: deadline(),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSignRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)
	body := []byte(`{"deadline":1}`)

	sig, err := Sign(key, body)
	require.NoError(t, err)

	got, err := RecoverSigner(body, sig)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	t.Run("wallet style recovery id", func(t *testing.T) {
		raw, err := hexutil.Decode(sig)
		require.NoError(t, err)
		raw[64] += 27

		got, err := RecoverSigner(body, hexutil.Encode(raw))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("tampered body", func(t *testing.T) {
		got, err := RecoverSigner([]byte(`{"deadline":2}`), sig)
		if err == nil {
			assert.NotEqual(t, want, got)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := RecoverSigner(body, "0x1234")
		assert.ErrorIs(t, err, errBadSignature)

		_, err = RecoverSigner(body, "")
		assert.ErrorIs(t, err, errBadSignature)
	})
}
