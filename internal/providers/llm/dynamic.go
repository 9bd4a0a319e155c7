package llm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sandevgo/jarvis/internal/config"
	"github.com/sandevgo/jarvis/internal/core"
)

// DynamicProvider lets the model be switched at runtime without rebuilding the dispatcher.
type DynamicProvider struct {
	config  *config.AppConfig
	current atomic.Value
	mu      sync.RWMutex
	factory func(ctx context.Context, cfg *config.AppConfig) (core.AIProvider, error)
}

func NewDynamicProvider(ctx context.Context, cfg *config.AppConfig) (*DynamicProvider, error) {
	return newDynamicProvider(ctx, cfg, NewProvider)
}

func newDynamicProvider(
	ctx context.Context,
	cfg *config.AppConfig,
	factory func(ctx context.Context, cfg *config.AppConfig) (core.AIProvider, error),
) (*DynamicProvider, error) {
	d := &DynamicProvider{
		config:  cfg,
		factory: factory,
	}

	provider, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial provider: %w", err)
	}

	d.current.Store(&provider)
	return d, nil
}

func (d *DynamicProvider) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	provider := *d.current.Load().(*core.AIProvider)
	return provider.Chat(ctx, history)
}

func (d *DynamicProvider) GetModel() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config.GetModel()
}

func (d *DynamicProvider) GetProvider() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config.GetProvider()
}

// SetModel swaps the active provider. The config is restored if the new provider cannot be built.
func (d *DynamicProvider) SetModel(ctx context.Context, model string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	prevProvider, prevModel := d.config.Provider, d.config.Model
	if err := d.config.SetModel(model); err != nil {
		return err
	}

	newProvider, err := d.factory(ctx, d.config)
	if err != nil {
		d.config.Provider, d.config.Model = prevProvider, prevModel
		return fmt.Errorf("failed to create provider: %w", err)
	}

	d.current.Store(&newProvider)
	return nil
}
