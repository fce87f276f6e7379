package oracle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/goccy/go-json"
)

const DefaultRPCURL = "https://api.mainnet-beta.solana.com"

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result *uint64   `json:"result"`
	Error  *rpcError `json:"error,omitempty"`
}

// RPCOracle asks a JSON-RPC endpoint for the current slot using getSlot.
type RPCOracle struct {
	url    string
	client *http.Client
}

var _ Oracle = (*RPCOracle)(nil)

func NewRPCOracle(url string) *RPCOracle {
	return &RPCOracle{
		url:    url,
		client: httpClient,
	}
}

func (o *RPCOracle) Progress(ctx context.Context) (float64, error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: "getSlot"})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return 0, errors.WithDetails(fmt.Errorf("%w: %w", ErrOracleUnavailable, err), "url", o.url)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, errors.WithDetails(fmt.Errorf("%w: %w", ErrOracleUnavailable, err), "url", o.url)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return 0, errors.WithDetails(
			fmt.Errorf("%w: %s: %s", ErrOracleUnavailable, resp.Status, strings.TrimSpace(string(b))),
			"url", o.url,
		)
	}

	var r rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return 0, errors.WithDetails(fmt.Errorf("%w: %w", ErrOracleParse, err), "url", o.url)
	}
	if r.Error != nil {
		return 0, errors.WithDetails(
			fmt.Errorf("%w: rpc error: %s", ErrOracleUnavailable, r.Error.Message),
			"url", o.url, "code", r.Error.Code,
		)
	}
	if r.Result == nil {
		return 0, errors.WithDetails(fmt.Errorf("%w: response has no result", ErrOracleParse), "url", o.url)
	}
	return Progress(float64(*r.Result)), nil
}
