package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/0xmhha/blocketa/internal/util/mathutil"
	btypes "github.com/0xmhha/blocketa/pkg/types"
)

// ErrFetch wraps every failure to retrieve or decode a block sample
var ErrFetch = errors.New("block fetch failed")

// Client wraps the Ethereum client and exposes block samples
type Client struct {
	eth *ethclient.Client
	rpc *rpc.Client
}

// New creates a new client instance
func New(ctx context.Context, url string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	return &Client{
		eth: ethclient.NewClient(rpcClient),
		rpc: rpcClient,
	}, nil
}

// Close closes the client connection
func (c *Client) Close() {
	c.rpc.Close()
}

// ChainID returns the chain ID
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.eth.ChainID(ctx)
}

// BlockNumber returns the latest block number
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// HeaderByNumber returns the header of a block by number
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return c.eth.HeaderByNumber(ctx, number)
}

// LatestBlock asks the node for the head block number, then reads that
// block's header for its timestamp.
func (c *Client) LatestBlock(ctx context.Context) (btypes.BlockSample, error) {
	return fetchLatest(ctx, c)
}

// BlockSampleAt returns the sample for a specific block number
func (c *Client) BlockSampleAt(ctx context.Context, number uint64) (btypes.BlockSample, error) {
	return fetchAt(ctx, c, number)
}

// HeaderReader is the subset of the node API needed to build samples
type HeaderReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

func fetchLatest(ctx context.Context, r HeaderReader) (btypes.BlockSample, error) {
	number, err := r.BlockNumber(ctx)
	if err != nil {
		return btypes.BlockSample{}, fmt.Errorf("%w: block number: %w", ErrFetch, err)
	}
	return fetchAt(ctx, r, number)
}

func fetchAt(ctx context.Context, r HeaderReader, number uint64) (btypes.BlockSample, error) {
	header, err := r.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return btypes.BlockSample{}, fmt.Errorf("%w: header %d: %w", ErrFetch, number, err)
	}
	if header == nil {
		return btypes.BlockSample{}, fmt.Errorf("%w: header %d not found", ErrFetch, number)
	}
	return SampleFromHeader(header)
}

// SampleFromHeader converts a header into a block sample
func SampleFromHeader(header *types.Header) (btypes.BlockSample, error) {
	if header.Number == nil || !header.Number.IsUint64() {
		return btypes.BlockSample{}, fmt.Errorf("%w: header has invalid number", ErrFetch)
	}
	ts, err := mathutil.Uint64ToInt64(header.Time)
	if err != nil {
		return btypes.BlockSample{}, fmt.Errorf("%w: timestamp: %w", ErrFetch, err)
	}
	return btypes.BlockSample{
		Number:    header.Number.Uint64(),
		Timestamp: ts,
	}, nil
}
