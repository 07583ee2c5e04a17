package secretmanager

import (
	"os"
	"time"

	vault "github.com/hashicorp/vault-client-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a vault client when VAULT_ADDR is set, nil otherwise.
// config.LoadConfig overlays credentials only when a client is present.
var Module = fx.Module("secretmanager", fx.Provide(ProvideVault))

const requestTimeout = 10 * time.Second

func ProvideVault() (*vault.Client, error) {
	addr := os.Getenv("VAULT_ADDR")
	if addr == "" {
		return nil, nil
	}

	client, err := vault.New(
		vault.WithEnvironment(),
		vault.WithRequestTimeout(requestTimeout),
	)
	if err != nil {
		return nil, err
	}

	if os.Getenv("VAULT_TOKEN") == "" {
		zap.L().Warn("[Vault] VAULT_TOKEN is empty, secret reads will be unauthenticated", zap.String("addr", addr))
	}
	return client, nil
}
