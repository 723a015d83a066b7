// Package apis provides HTTP clients for the oracle's admin surface
package apis

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/sljivkov/feedoracle/handler"
)

// requestTTL bounds how long a signed request stays valid; the server caps it
// at handler.MaxRequestTTL
const requestTTL = 2 * time.Minute

// AdminClient sends signed owner requests to a running oracle server
type AdminClient struct {
	baseURL string
	key     *ecdsa.PrivateKey
	client  *http.Client
	log     *zap.Logger
	now     func() time.Time
}

// NewAdminClient creates a new AdminClient signing with key
func NewAdminClient(baseURL string, key *ecdsa.PrivateKey, log *zap.Logger) *AdminClient {
	return &AdminClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
		now: time.Now,
	}
}

// Address returns the address requests are signed with
func (c *AdminClient) Address() common.Address {
	return crypto.PubkeyToAddress(c.key.PublicKey)
}

func (c *AdminClient) deadline() int64 {
	return c.now().Add(requestTTL).Unix()
}

// SetFeedRegistry points the oracle at another registry
func (c *AdminClient) SetFeedRegistry(ctx context.Context, registry common.Address) error {
	return c.post(ctx, "/admin/registry", handler.RegistryRequest{
		Registry: registry,
		Deadline: c.deadline(),
	})
}

// SetTimeGaps sets time gaps for assets
func (c *AdminClient) SetTimeGaps(ctx context.Context, assets []common.Address, gaps []time.Duration) error {
	seconds := make([]uint64, len(gaps))
	for i, gap := range gaps {
		if gap < 0 {
			return fmt.Errorf("negative time gap at index %d: %s", i, gap)
		}
		if gap%time.Second != 0 {
			return fmt.Errorf("time gap at index %d is not a whole number of seconds: %s", i, gap)
		}
		seconds[i] = uint64(gap / time.Second)
	}

	return c.post(ctx, "/admin/time-gaps", handler.TimeGapsRequest{
		Assets:   assets,
		Gaps:     seconds,
		Deadline: c.deadline(),
	})
}

// SetTokenRemappings remaps assets to the feeds of remaps
func (c *AdminClient) SetTokenRemappings(ctx context.Context, assets, remaps []common.Address) error {
	return c.post(ctx, "/admin/remappings", handler.RemappingsRequest{
		Assets:   assets,
		Remaps:   remaps,
		Deadline: c.deadline(),
	})
}

// TransferOwnership hands the owner role to newOwner
func (c *AdminClient) TransferOwnership(ctx context.Context, newOwner common.Address) error {
	return c.post(ctx, "/admin/owner", handler.OwnerRequest{
		Owner:    newOwner,
		Deadline: c.deadline(),
	})
}

// post signs body and sends it to path
func (c *AdminClient) post(ctx context.Context, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	sig, err := handler.Sign(c.key, raw)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handler.SignatureHeader, sig)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	c.log.Info("admin request accepted", zap.String("path", path), zap.Int("status", resp.StatusCode))

	return nil
}

// StatusError is a non-2xx response from the oracle server
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oracle returned %d: %s", e.StatusCode, e.Message)
}

func decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return &StatusError{StatusCode: resp.StatusCode, Message: "unreadable body"}
	}

	var errResp handler.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Error}
}
