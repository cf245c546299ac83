// internal/license/keygen.go
package license

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"sort"

	"github.com/keygen-sh/keygen-go/v3"
	"go.uber.org/zap"
)

var (
	ErrLicenseExpired  = errors.New("license has expired")
	ErrLicenseNotFound = errors.New("license not found")
)

// Settings описывает продукт Keygen.sh, под которым выпущен ключ.
type Settings struct {
	AccountID    string
	ProductID    string
	ProductToken string
}

// KeygenValidator handles license validation using Keygen.sh
type KeygenValidator struct {
	logger      *zap.Logger
	fingerprint func() (string, error)
	validate    func(ctx context.Context, licenseKey, fingerprint string) (*keygen.License, error)
	activate    func(ctx context.Context, lic *keygen.License, fingerprint string) (*keygen.Machine, error)
}

// NewKeygenValidator creates a new Keygen license validator
func NewKeygenValidator(settings Settings, logger *zap.Logger) *KeygenValidator {
	keygen.Account = settings.AccountID
	keygen.Product = settings.ProductID
	keygen.Token = settings.ProductToken

	return &KeygenValidator{
		logger:      logger.Named("license"),
		fingerprint: machineFingerprint,
		validate: func(ctx context.Context, licenseKey, fingerprint string) (*keygen.License, error) {
			keygen.LicenseKey = licenseKey
			return keygen.Validate(ctx, fingerprint)
		},
		activate: func(ctx context.Context, lic *keygen.License, fingerprint string) (*keygen.Machine, error) {
			return lic.Activate(ctx, fingerprint)
		},
	}
}

// ValidateLicense validates a license key with Keygen and activates this
// machine when the license has not been activated on it yet.
func (kv *KeygenValidator) ValidateLicense(ctx context.Context, licenseKey string) error {
	kv.logger.Info("Validating license", zap.String("key", maskKey(licenseKey)))

	fingerprint, err := kv.fingerprint()
	if err != nil {
		return fmt.Errorf("failed to generate machine fingerprint: %w", err)
	}

	lic, err := kv.validate(ctx, licenseKey, fingerprint)
	switch {
	case errors.Is(err, keygen.ErrLicenseNotActivated):
		if lic == nil {
			return ErrLicenseNotFound
		}
		kv.logger.Info("License not activated, attempting activation")
		machine, activateErr := kv.activate(ctx, lic, fingerprint)
		if activateErr != nil {
			return fmt.Errorf("failed to activate license: %w", activateErr)
		}
		kv.logger.Info("License activated successfully", zap.String("machine_id", machine.ID))
	case errors.Is(err, keygen.ErrLicenseExpired):
		return ErrLicenseExpired
	case err != nil:
		return fmt.Errorf("license validation failed: %w", err)
	}

	if lic == nil {
		return ErrLicenseNotFound
	}
	kv.logger.Info("License validation successful", zap.String("license_id", lic.ID))
	return nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:8] + "..."
}

// machineFingerprint хэширует hostname, первый MAC-адрес активного интерфейса и ОС.
func machineFingerprint() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	var macs []string
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0 && len(iface.HardwareAddr) > 0 {
			macs = append(macs, iface.HardwareAddr.String())
		}
	}
	sort.Strings(macs)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fingerprintOf(hostname, macs, runtime.GOOS), nil
}

func fingerprintOf(hostname string, macs []string, goos string) string {
	mac := "none"
	if len(macs) > 0 {
		mac = macs[0]
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%s", hostname, mac, goos)))
	return fmt.Sprintf("%x", hash)
}
