package credential

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-errors/errors"
	"golang.org/x/sync/singleflight"
)

// PasswordKey is the phoenix.conf entry holding the full-access http password.
const PasswordKey = "http-password"

var (
	// ErrConfigurationMissing is returned when the configuration file does not exist.
	ErrConfigurationMissing = errors.New("phoenixd configuration file is missing")

	// ErrCredentialNotFound is returned when the configuration file exists but
	// holds no http password.
	ErrCredentialNotFound = errors.New("http password not found in phoenixd configuration")
)

// DefaultPath returns the location phoenixd writes its configuration to.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".phoenix", "phoenix.conf")
	}

	return filepath.Join(home, ".phoenix", "phoenix.conf")
}

type Config struct {
	Path   string
	Logger Logger
}

// Resolver reads the daemon's http password once and keeps it until
// Invalidate is called.
type Resolver struct {
	path  string
	log   Logger
	read  func(path string) (string, error)
	group singleflight.Group
	mu    sync.RWMutex
	// generation is bumped by Invalidate. A read only caches its secret if
	// no invalidation happened while it ran.
	generation uint64
	secret     string
	resolved   bool
}

func NewResolver(config *Config) *Resolver {
	resolver := &Resolver{
		path: config.Path,
		read: readSecret,
	}

	if resolver.path == "" {
		resolver.path = DefaultPath()
	}

	if config.Logger != nil {
		resolver.log = config.Logger
	} else {
		resolver.log = noopLogger{}
	}

	return resolver
}

// Resolve returns the cached secret, reading the configuration file on first
// use. Concurrent callers waiting on the first read share its result.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	r.mu.RLock()
	if r.resolved {
		secret := r.secret
		r.mu.RUnlock()
		return secret, nil
	}
	generation := r.generation
	r.mu.RUnlock()

	key := strconv.FormatUint(generation, 10)

	result := r.group.DoChan(key, func() (interface{}, error) {
		r.mu.RLock()
		if r.resolved {
			secret := r.secret
			r.mu.RUnlock()
			return secret, nil
		}
		r.mu.RUnlock()

		secret, err := r.read(r.path)
		if err != nil {
			return "", err
		}

		r.mu.Lock()
		if r.generation == generation {
			r.secret = secret
			r.resolved = true
		}
		r.mu.Unlock()

		r.log.Debugf("Resolved http password from %v", r.path)

		return secret, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return "", res.Err
		}

		return res.Val.(string), nil
	}
}

// Invalidate drops the cached secret so the next Resolve reads the file again.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.secret = ""
	r.resolved = false
	r.generation++
	r.mu.Unlock()

	r.log.Infof("Invalidated cached http password")
}

func readSecret(path string) (string, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", ErrConfigurationMissing
	} else if err != nil {
		return "", errors.Errorf("could not open %v: %v", path, err)
	}

	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) != PasswordKey {
			continue
		}

		if secret := strings.TrimSpace(value); secret != "" {
			return secret, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", errors.Errorf("could not read %v: %v", path, err)
	}

	return "", ErrCredentialNotFound
}
