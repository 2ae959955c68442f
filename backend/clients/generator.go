package clients

import (
	"context"
	"fmt"
	"time"

	"lectoria/backend/config"
	"lectoria/backend/models"
	"lectoria/backend/services"

	"github.com/go-resty/resty/v2"
)

// GeneratorClient is the thin wrapper around the external generative model.
// It sends a generation context plus photo references and gets a module
// draft back; everything the draft claims is validated downstream.
type GeneratorClient struct {
	http *resty.Client
	url  string
}

func NewGeneratorClient(cfg *config.Config) *GeneratorClient {
	client := resty.New().
		SetTimeout(120 * time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.GeneratorAPIKey != "" {
		client.SetAuthToken(cfg.GeneratorAPIKey)
	}
	return &GeneratorClient{http: client, url: cfg.GeneratorAPIURL}
}

type generateRequest struct {
	Context   *services.GenerationContext `json:"context"`
	PhotoURLs []string                    `json:"photoUrls,omitempty"`
}

// GenerateModule performs the single generator round-trip.
func (g *GeneratorClient) GenerateModule(ctx context.Context, genCtx *services.GenerationContext, photoURLs []string) (*models.ModuleDraft, error) {
	var draft models.ModuleDraft
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(generateRequest{Context: genCtx, PhotoURLs: photoURLs}).
		SetResult(&draft).
		Post(g.url)
	if err != nil {
		return nil, fmt.Errorf("generator call: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("generator returned %s: %s", resp.Status(), resp.String())
	}
	return &draft, nil
}
