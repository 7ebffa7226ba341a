package frame

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrMalformed marks a frame whose length or shape does not match the
	// selected wire profile. The caller logs and discards the frame.
	ErrMalformed = errors.New("frame: malformed frame")

	// ErrUnknownProfile is returned by New for an unregistered profile name.
	ErrUnknownProfile = errors.New("frame: unknown wire profile")
)

// Decoder turns one raw frame into a decoded record for a single wire
// profile.
type Decoder interface {
	Name() string
	Decode(f *Frame) (*Record, error)
}

// Factory builds a profile decoder from its profile-specific options.
type Factory func(opts map[string]interface{}) (Decoder, error)

type profile struct {
	factory Factory
	seqBits int
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]profile)
)

// Register adds a wire profile under the given name. seqBits is the width in
// bits of the node-local sequence counter the profile carries. Profiles
// register themselves from init functions.
func Register(name string, seqBits int, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("frame: profile %q registered twice", name))
	}
	registry[name] = profile{factory: f, seqBits: seqBits}
}

// New builds the decoder for the named profile with the given options.
func New(name string, opts map[string]interface{}) (Decoder, error) {
	registryMu.RLock()
	p, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p.factory(opts)
}

// SeqBits reports the sequence counter width of the named profile.
func SeqBits(name string) (int, error) {
	registryMu.RLock()
	p, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p.seqBits, nil
}

// Profiles lists the registered profile names, sorted.
func Profiles() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
