package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	muxgo "github.com/muxinc/mux-go"
)

// Mux is the Provider backed by Mux Video.
type Mux struct {
	client *muxgo.APIClient
}

// NewMux builds a client whose calls give up after timeout; zero means no
// limit beyond the caller's context.
func NewMux(tokenID string, tokenSecret string, timeout time.Duration) *Mux {
	cfg := muxgo.NewConfiguration(
		muxgo.WithBasicAuth(tokenID, tokenSecret),
		muxgo.WithTimeout(timeout),
	)
	return &Mux{client: muxgo.NewAPIClient(cfg)}
}

func (m *Mux) CreateAsset(ctx context.Context, sourceURL string) (Asset, error) {
	req := muxgo.CreateAssetRequest{
		Input:          []muxgo.InputSettings{{Url: sourceURL}},
		PlaybackPolicy: []muxgo.PlaybackPolicy{muxgo.PUBLIC},
	}

	resp, err := m.client.AssetsApi.CreateAsset(req, muxgo.WithContext(ctx))
	if err != nil {
		return Asset{}, fmt.Errorf("mux create asset: %w", err)
	}

	if len(resp.Data.PlaybackIds) == 0 {
		return Asset{}, errors.New("mux asset was created without a playback id")
	}

	return Asset{
		ID:         resp.Data.Id,
		PlaybackID: resp.Data.PlaybackIds[0].Id,
	}, nil
}

// DeleteAsset treats an asset Mux no longer knows as deleted.
func (m *Mux) DeleteAsset(ctx context.Context, assetID string) error {
	err := m.client.AssetsApi.DeleteAsset(assetID, muxgo.WithContext(ctx))
	if err == nil {
		return nil
	}

	var nf muxgo.NotFoundError
	if errors.As(err, &nf) {
		return nil
	}
	return fmt.Errorf("mux delete asset[%s]: %w", assetID, err)
}
