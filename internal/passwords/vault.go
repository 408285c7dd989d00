package passwords

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/config"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/hashicorp/vault/api"
)

const (
	defaultVaultMount = "secret"
	defaultVaultPath  = "idea-hub/security"
)

// VaultStore keeps the record in a HashiCorp Vault KV v2 secrets engine.
//
// The KV v2 engine must be enabled at the configured mount:
//
//	vault secrets enable -path=secret kv-v2
type VaultStore struct {
	client *api.Client
	mount  string
	path   string
}

// NewVaultStore creates a client for cfg.VaultAddress authenticated with
// cfg.VaultToken. Empty values fall back to VAULT_ADDR and VAULT_TOKEN as
// read by the Vault client itself.
func NewVaultStore(cfg config.Store) (*VaultStore, error) {
	vc := api.DefaultConfig()
	if vc.Error != nil {
		return nil, fmt.Errorf("vault config: %w", vc.Error)
	}
	if cfg.VaultAddress != "" {
		vc.Address = cfg.VaultAddress
	}
	vc.HttpClient.Transport = &http.Transport{Proxy: http.ProxyFromEnvironment}

	client, err := api.NewClient(vc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.VaultToken != "" {
		client.SetToken(cfg.VaultToken)
	}
	return newVaultStore(client, cfg.VaultMount, cfg.VaultPath), nil
}

func newVaultStore(client *api.Client, mount, path string) *VaultStore {
	if mount == "" {
		mount = defaultVaultMount
	}
	if path == "" {
		path = defaultVaultPath
	}
	return &VaultStore{client: client, mount: mount, path: path}
}

// dataPath is the KV v2 read/write path; the "/data/" segment is required.
func (s *VaultStore) dataPath() string {
	return fmt.Sprintf("%s/data/%s", s.mount, s.path)
}

// metadataPath addresses every version of the secret at once.
func (s *VaultStore) metadataPath() string {
	return fmt.Sprintf("%s/metadata/%s", s.mount, s.path)
}

func (s *VaultStore) Load(ctx context.Context) (*models.PasswordRecord, error) {
	secret, err := s.client.Logical().ReadWithContext(ctx, s.dataPath())
	if err != nil {
		return nil, fmt.Errorf("read password record from Vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, ErrNotFound
	}

	// KV v2 wraps the payload in a "data" key; a deleted version has none.
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok || data == nil {
		return nil, ErrNotFound
	}
	raw, ok := data["record"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: invalid KV v2 secret format at %s", ErrCorrupt, s.dataPath())
	}
	return decodeRecord([]byte(raw))
}

func (s *VaultStore) Save(ctx context.Context, rec *models.PasswordRecord) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"record": string(raw),
		},
	}
	if _, err := s.client.Logical().WriteWithContext(ctx, s.dataPath(), payload); err != nil {
		return fmt.Errorf("write password record to Vault: %w", err)
	}
	return nil
}

// Delete removes the secret and its version history.
func (s *VaultStore) Delete(ctx context.Context) error {
	if _, err := s.client.Logical().DeleteWithContext(ctx, s.metadataPath()); err != nil {
		return fmt.Errorf("delete password record from Vault: %w", err)
	}
	return nil
}
